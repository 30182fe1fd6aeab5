package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-matcher/internal/debounce"
	"github.com/spigell/job-matcher/internal/server"
	"github.com/spigell/job-matcher/internal/storage"
)

const (
	app       = "job-matcher"
	envPrefix = "JOB_MATCHER"
)

type Config struct {
	Storage    StorageConfig    `mapstructure:"storage"`
	AI         *AIConfig        `mapstructure:"ai"`
	Server     server.Config    `mapstructure:"server"`
	Headhunter HeadhunterConfig `mapstructure:"headhunter"`
}

type StorageConfig struct {
	Backend  string              `mapstructure:"backend"`
	Dir      string              `mapstructure:"dir"`
	Debounce time.Duration       `mapstructure:"debounce"`
	Redis    storage.RedisConfig `mapstructure:"redis"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string        `mapstructure:"api-key"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type HeadhunterConfig struct {
	TokenFile        string   `mapstructure:"token-file"`
	UserAgent        string   `mapstructure:"user-agent"`
	ExcludeEmployers []string `mapstructure:"exclude-employers"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "job-matcher scores how well your resume matches a set of job descriptions",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().Bool("ephemeral", false, "keep the resume and jobs in memory only")
	rootCmd.PersistentFlags().String("storage", "", "storage backend: file, redis or memory")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("ephemeral", rootCmd.PersistentFlags().Lookup("ephemeral"))
	viper.BindPFlag("storage.backend", rootCmd.PersistentFlags().Lookup("storage"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("storage.backend", storage.BackendFile)
	viper.SetDefault("storage.dir", "")
	viper.SetDefault("storage.debounce", debounce.DefaultDelay)
	viper.SetDefault("storage.redis.addr", "localhost:6379")
	viper.SetDefault("storage.redis.password", "")
	viper.SetDefault("storage.redis.db", 0)
	viper.SetDefault("storage.redis.prefix", "job-matcher:")
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.api-key", "")
	viper.SetDefault("ai.gemini.api-key-file", "")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("ai.gemini.timeout", 60*time.Second)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.allowed-origins", []string{"*"})
	viper.SetDefault("headhunter.token-file", "")
	viper.SetDefault("headhunter.user-agent", "")
	viper.SetDefault("headhunter.exclude-employers", []string{})
}

func initConfig() {
	// .env is optional, real environment variables win.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The config file is optional unless given explicitly.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	return config, nil
}
