package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/craftlab/skillforge/pkg/presenter"
)

// UpdateConfig holds configuration for the update command.
type UpdateConfig struct {
	File   string
	Inline string
}

// NewUpdateConfig returns update defaults.
func NewUpdateConfig() *UpdateConfig {
	return &UpdateConfig{}
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Apply an update-description to a draft entity",
	Long: `Apply a flat update-description object to a draft entity. Keys follow
the mutation grammar: <collection>_push, <collection>_update,
<collection>_delete, dotted nested paths, or bare top-level fields.
The description is read from --json, from --file, or from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		config := NewUpdateConfig()
		config.File, _ = cmd.Flags().GetString("file")
		config.Inline, _ = cmd.Flags().GetString("json")

		var raw []byte
		switch {
		case config.Inline != "":
			raw = []byte(config.Inline)
		case config.File != "":
			data, err := os.ReadFile(config.File)
			if err != nil {
				return errors.Wrap(err, "failed to read update file")
			}
			raw = data
		default:
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return errors.Wrap(err, "failed to read update from stdin")
			}
			raw = data
		}

		var updates map[string]any
		if err := json.Unmarshal(raw, &updates); err != nil {
			return errors.Wrap(err, "failed to parse update-description")
		}

		service, err := newService(ctx)
		if err != nil {
			return err
		}
		defer service.Close()

		e, report, err := service.UpdateState(ctx, args[0], updates)
		if err != nil {
			return err
		}

		for _, instErr := range report.Errors {
			presenter.Warning(fmt.Sprintf("rejected instruction %q: %s", instErr.Key, instErr.Reason))
		}
		presenter.Success(fmt.Sprintf("applied %d instruction(s) to %s", len(report.Applied), e.ID))
		return nil
	},
}

func init() {
	updateCmd.Flags().String("file", "", "read the update-description from a JSON file")
	updateCmd.Flags().String("json", "", "inline update-description JSON object")
}
