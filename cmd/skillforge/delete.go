package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/craftlab/skillforge/pkg/presenter"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a draft entity",
	Long:  `Delete the stored document for an entity id. Deleting an absent id succeeds.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		service, err := newService(ctx)
		if err != nil {
			return err
		}
		defer service.Close()

		if err := service.Delete(ctx, args[0]); err != nil {
			return err
		}
		presenter.Success(fmt.Sprintf("deleted %s", args[0]))
		return nil
	},
}
