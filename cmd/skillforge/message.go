package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/craftlab/skillforge/pkg/presenter"
)

var messageCmd = &cobra.Command{
	Use:   "message <id> <content>",
	Short: "Append a conversation message to a draft entity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		role, _ := cmd.Flags().GetString("role")

		service, err := newService(ctx)
		if err != nil {
			return err
		}
		defer service.Close()

		e, err := service.AppendMessage(ctx, args[0], role, args[1])
		if err != nil {
			return err
		}
		presenter.Success(fmt.Sprintf("appended message %s (%d total)",
			e.Conversation[len(e.Conversation)-1].ID, len(e.Conversation)))
		return nil
	},
}

func init() {
	messageCmd.Flags().String("role", "user", "message role (user, assistant, system)")
}
