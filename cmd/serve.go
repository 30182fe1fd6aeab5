package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resume/jobs form and analysis as a JSON API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		analyzer, err := newAnalyzer(ctx, e.config.AI, e.logger)
		if err != nil {
			return err
		}

		if !viper.GetBool("debug") {
			gin.SetMode(gin.ReleaseMode)
		}

		controller := e.newController(ctx, analyzer)
		// Pending edits are written on shutdown instead of being lost.
		defer controller.Close()

		e.logger.Info("starting the job-matcher api", zap.String("version", version))
		return server.New(e.config.Server, controller, e.logger).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
