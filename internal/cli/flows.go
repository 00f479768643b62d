package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "List the flows clean --flow accepts",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := loadSettings()
		service, err := settings.FlowService(settings.Logger())
		if err != nil {
			return err
		}
		for _, name := range service.GetAvailableFlows() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flowsCmd)
}
