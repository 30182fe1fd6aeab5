package cmd

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/extract"
	"github.com/spigell/job-matcher/internal/headhunter"
	"github.com/spigell/job-matcher/internal/matching"
	"github.com/spigell/job-matcher/internal/secrets"
	"github.com/spigell/job-matcher/internal/session"
	"github.com/spigell/job-matcher/internal/utils"
)

const (
	PromptBack    = "back"
	listPreviewLn = 60
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage the job descriptions to match against",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored job descriptions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		controller := e.newController(ctx, nil)
		defer controller.Discard()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tID\tTITLE\tDESCRIPTION")
		for i, job := range controller.Snapshot().Jobs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, job.ID,
				utils.SingleLine(job.Title),
				utils.TruncateForLog(utils.SingleLine(job.Description), listPreviewLn),
			)
		}
		return w.Flush()
	},
}

var jobsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job description",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		descriptionFile, _ := cmd.Flags().GetString("description-file")

		if descriptionFile != "" {
			if description != "" {
				return errors.New("pass either --description or --description-file, not both")
			}
			if description, err = extract.File(descriptionFile); err != nil {
				return err
			}
		}

		controller := e.newController(ctx, nil)
		defer controller.Close()

		job := addJob(controller, title, description)
		e.logger.Info("job added", zap.String("job_id", job.ID), zap.String("title", title))
		fmt.Fprintln(cmd.OutOrStdout(), job.ID)
		return nil
	},
}

var jobsRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a job description; choose interactively when no id is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		controller := e.newController(ctx, nil)
		defer controller.Close()

		id := ""
		if len(args) == 1 {
			id = args[0]
		} else {
			id, err = selectJob(controller.Snapshot().Jobs)
			if err != nil {
				return err
			}
			if id == "" {
				return nil
			}
		}

		if !controller.RemoveJob(id) {
			e.logger.Warn("job not found", zap.String("job_id", id))
			return nil
		}

		e.logger.Info("job removed", zap.String("job_id", id))
		return nil
	},
}

var jobsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace the title or description of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		rawField, _ := cmd.Flags().GetString("field")
		value, _ := cmd.Flags().GetString("value")

		field, err := session.ParseField(rawField)
		if err != nil {
			return err
		}

		controller := e.newController(ctx, nil)
		defer controller.Close()

		ok, err := controller.UpdateJob(args[0], field, value)
		if err != nil {
			return err
		}
		if !ok {
			e.logger.Warn("job not found", zap.String("job_id", args[0]))
			return nil
		}

		e.logger.Info("job updated", zap.String("job_id", args[0]), zap.String("field", string(field)))
		return nil
	},
}

var jobsImportHHCmd = &cobra.Command{
	Use:   "import-hh [vacancy-id...]",
	Short: "Import job descriptions from hh.ru vacancies by id or by search",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		search, _ := cmd.Flags().GetString("search")
		limit, _ := cmd.Flags().GetInt("limit")

		if search == "" && len(args) == 0 {
			return errors.New("vacancy ids or --search is required")
		}

		hh, err := newHeadhunter(e)
		if err != nil {
			return err
		}

		ids := args
		if search != "" {
			found, err := hh.Search(ctx, &headhunter.SearchParams{Text: search, Limit: limit})
			if err != nil {
				return err
			}
			if removed := found.ExcludeEmployers(e.config.Headhunter.ExcludeEmployers); len(removed) > 0 {
				e.logger.Info("excluding vacancies of configured employers",
					zap.Strings("excluded_vacancies", removed),
					zap.Int("vacancies_left", found.Len()),
				)
			}
			e.logger.Info("found vacancies", zap.String("search", search), zap.Int("count", found.Len()))
			ids = append(ids, found.IDs()...)
		}

		controller := e.newController(ctx, nil)
		defer controller.Close()

		dropDefaultRow(controller)

		for _, id := range ids {
			vacancy, err := hh.GetVacancy(ctx, id)
			if err != nil {
				return err
			}
			job, err := vacancy.ToJob()
			if err != nil {
				return err
			}
			added := controller.AddJobWith(job.Title, job.Description)
			e.logger.Info("imported vacancy",
				zap.String("vacancy_id", id),
				zap.String("job_id", added.ID),
				zap.String("title", added.Title),
			)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsListCmd, jobsAddCmd, jobsRemoveCmd, jobsUpdateCmd, jobsImportHHCmd)

	jobsAddCmd.Flags().StringP("title", "t", "", "job title")
	jobsAddCmd.Flags().StringP("description", "D", "", "job description text")
	jobsAddCmd.Flags().String("description-file", "", "read the job description from a file")

	jobsUpdateCmd.Flags().String("field", "", "field to replace: title or description")
	jobsUpdateCmd.Flags().String("value", "", "new value")
	_ = jobsUpdateCmd.MarkFlagRequired("field")

	jobsImportHHCmd.Flags().StringP("search", "s", "", "search hh.ru and import the found vacancies")
	jobsImportHHCmd.Flags().Int("limit", 5, "maximum number of vacancies to import with --search")
}

func newHeadhunter(e *env) (*headhunter.Client, error) {
	token := ""
	if e.config.Headhunter.TokenFile != "" {
		var err error
		token, err = secrets.Load(secrets.Source{
			Name: "headhunter token",
			File: e.config.Headhunter.TokenFile,
		})
		if err != nil {
			return nil, err
		}
	}

	hh := headhunter.New(e.logger, token)
	if e.config.Headhunter.UserAgent != "" {
		hh.UserAgent = e.config.Headhunter.UserAgent
	}
	return hh, nil
}

// dropDefaultRow removes untouched blank rows so imports do not leave an invalid job behind.
func dropDefaultRow(controller *session.Controller) {
	for _, job := range controller.Snapshot().Jobs {
		if strings.TrimSpace(job.Title) == "" && strings.TrimSpace(job.Description) == "" {
			controller.RemoveJob(job.ID)
		}
	}
}

// addJob appends a job and drops the untouched default row, so the first
// added job leaves a list that can be analyzed.
func addJob(controller *session.Controller, title, description string) matching.JobDescription {
	dropDefaultRow(controller)
	return controller.AddJobWith(title, description)
}

func selectJob(jobs []matching.JobDescription) (string, error) {
	if len(jobs) == 0 {
		return "", errors.New("there are no jobs")
	}

	items := make([]string, 0, len(jobs)+1)
	for i, job := range jobs {
		title := utils.SingleLine(job.Title)
		if title == "" {
			title = "(untitled)"
		}
		items = append(items, fmt.Sprintf("#%d %s [%s]", i+1, title, job.ID))
	}

	jobPrompt := promptui.Select{
		Label: "Choose a job and press ENTER",
		Items: append(items, PromptBack),
	}

	idx, _, err := jobPrompt.Run()
	if err != nil {
		return "", err
	}
	if idx >= len(jobs) {
		return "", nil
	}
	return jobs[idx].ID, nil
}
