package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/craftlab/skillforge/pkg/presenter"
	"github.com/craftlab/skillforge/pkg/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate <id>",
	Short: "Run the validation pipeline against a draft entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		jsonOutput, _ := cmd.Flags().GetBool("json")

		service, err := newService(ctx)
		if err != nil {
			return err
		}
		defer service.Close()

		e, err := service.Get(ctx, args[0])
		if err != nil {
			return err
		}

		pipeline, err := validation.NewPipeline()
		if err != nil {
			return err
		}
		result := pipeline.Run(ctx, e)

		if jsonOutput {
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		if result.Valid {
			presenter.Success("no blocking issues")
		} else {
			presenter.Warning(fmt.Sprintf("%d blocking issue(s)", len(result.Errors)))
		}
		for _, issue := range result.Errors {
			presenter.Warning(fmt.Sprintf("[%s] %s", issue.Type, issue.Description))
		}
		for _, issue := range result.Warnings {
			presenter.Info(fmt.Sprintf("warning [%s] %s", issue.Type, issue.Description))
		}
		for _, issue := range result.Suggestions {
			presenter.Info(fmt.Sprintf("suggestion: %s", issue.Suggestion))
		}

		presenter.Separator()
		for section, present := range result.Completeness {
			status := "missing"
			if present {
				status = "ok"
			}
			presenter.Info(fmt.Sprintf("%-10s %s", section, status))
		}
		if result.ReadyToExport {
			presenter.Success("ready to export")
		} else {
			presenter.Info("not ready to export")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().Bool("json", false, "output the validation result as JSON")
}
