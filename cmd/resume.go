package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/extract"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Show or replace the stored resume",
}

var resumeSetCmd = &cobra.Command{
	Use:   "set [text]",
	Short: "Replace the resume with text, a file (--file) or stdin (-)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		text, err := readResume(cmd, args)
		if err != nil {
			return err
		}

		controller := e.newController(ctx, nil)
		controller.SetResume(text)
		controller.Close()

		e.logger.Info("resume saved", zap.Int("length", len(text)))
		return nil
	},
}

var resumeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored resume",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		controller := e.newController(ctx, nil)
		defer controller.Discard()

		fmt.Fprintln(cmd.OutOrStdout(), controller.Snapshot().Resume)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
	resumeCmd.AddCommand(resumeSetCmd, resumeShowCmd)

	resumeSetCmd.Flags().StringP("file", "f", "", "read the resume from a .txt, .md, .pdf or .docx file")
}

func readResume(cmd *cobra.Command, args []string) (string, error) {
	file, _ := cmd.Flags().GetString("file")

	switch {
	case file != "" && len(args) > 0:
		return "", errors.New("pass either resume text or --file, not both")
	case file != "":
		return extract.File(file)
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	case len(args) == 1:
		return args[0], nil
	default:
		return "", errors.New("resume text, - for stdin or --file is required")
	}
}
