package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored draft entities",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		jsonOutput, _ := cmd.Flags().GetBool("json")

		service, err := newService(ctx)
		if err != nil {
			return err
		}
		defer service.Close()

		summaries, err := service.List(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			data, err := json.MarshalIndent(summaries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tNAME\tPHASE\tPROGRESS\tSKILLS\tTOOLS\tMESSAGES\tUPDATED")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f%%\t%d\t%d\t%d\t%s\n",
				s.ID, s.Kind, s.Name, s.Phase, s.Progress,
				s.SkillCount, s.ToolCount, s.MessageCount,
				s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().Bool("json", false, "output as JSON")
}
