package main

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/craftlab/skillforge/pkg/presenter"
	"github.com/craftlab/skillforge/pkg/types/entity"
)

// CreateConfig holds configuration for the create command.
type CreateConfig struct {
	Kind    string
	Initial string
}

// NewCreateConfig returns create defaults.
func NewCreateConfig() *CreateConfig {
	return &CreateConfig{
		Kind: string(entity.KindSolution),
	}
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new draft entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		config := NewCreateConfig()
		config.Kind, _ = cmd.Flags().GetString("kind")
		config.Initial, _ = cmd.Flags().GetString("initial")

		kind := entity.Kind(config.Kind)
		if kind != entity.KindSolution && kind != entity.KindSkill {
			return errors.Errorf("unknown kind %q (want solution or skill)", config.Kind)
		}

		var initial map[string]any
		if config.Initial != "" {
			if err := json.Unmarshal([]byte(config.Initial), &initial); err != nil {
				return errors.Wrap(err, "failed to parse initial fields")
			}
		}

		service, err := newService(ctx)
		if err != nil {
			return err
		}
		defer service.Close()

		e, report, err := service.Create(ctx, kind, args[0], initial)
		if err != nil {
			return err
		}
		for _, instErr := range report.Errors {
			presenter.Warning(fmt.Sprintf("rejected instruction %q: %s", instErr.Key, instErr.Reason))
		}
		presenter.Success(fmt.Sprintf("created %s %s (%s)", kind, e.Name, e.ID))
		fmt.Println(e.ID)
		return nil
	},
}

func init() {
	createCmd.Flags().String("kind", string(entity.KindSolution), "entity kind (solution, skill)")
	createCmd.Flags().String("initial", "", "initial fields as an update-description JSON object")
}
