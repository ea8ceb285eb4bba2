package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/craftlab/skillforge/pkg/presenter"
)

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import an externally authored solution document",
	Long: `Import a YAML solution document (skills, grants, handoffs, routing).
The imported draft always gets a fresh id, an empty conversation, and the
fixed post-import phase, regardless of any status in the source document.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		links, _ := cmd.Flags().GetStringSlice("link")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(err, "failed to read import file")
		}

		service, err := newService(ctx)
		if err != nil {
			return err
		}
		defer service.Close()

		e, err := service.ImportFromYAML(ctx, data, links)
		if err != nil {
			return err
		}
		presenter.Success(fmt.Sprintf("imported %s as %s (phase %s)", e.Name, e.ID, e.Phase))
		fmt.Println(e.ID)
		return nil
	},
}

func init() {
	importCmd.Flags().StringSlice("link", nil, "externally linked domain reference ids")
}
