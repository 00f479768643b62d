package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"ordernorm/internal/flow/flows"
	flowservice "ordernorm/internal/flow/service"
	"ordernorm/pkg/address"
	"ordernorm/pkg/value"
)

var (
	addressKind string
	addressMode string
)

var addressCmd = &cobra.Command{
	Use:   "address <text>...",
	Short: "Split a postal address into its fields",
	Long: `Address decomposes a comma-separated address into street, number, box,
postal code, city and country, plus the template fields for the given kind.

Example:
  ordernorm address "Rue de la Loi 16, 1000 Brussels, Belgium"
  ordernorm address "Main St 12, Box 3, 2000 Antwerp" --kind supplier --mode advanced`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAddress,
}

func init() {
	rootCmd.AddCommand(addressCmd)

	addressCmd.Flags().StringVar(&addressKind, "kind", string(address.Customer), "address kind (customer, supplier)")
	addressCmd.Flags().StringVar(&addressMode, "mode", string(address.ModeStrict), "parser (strict, advanced, simple)")
}

func runAddress(cmd *cobra.Command, args []string) error {
	settings := loadSettings()
	service, err := settings.FlowService(settings.Logger())
	if err != nil {
		return err
	}

	// Unquoted addresses arrive split on spaces.
	input := value.ObjectOf(
		"address", strings.Join(args, " "),
		"kind", addressKind,
		"mode", addressMode,
	)
	result, err := service.Execute(context.Background(), flows.DecomposeAddress, value.FromObject(input), flowservice.Origin{
		Source: flowservice.SourceCLI,
	})
	if err != nil {
		return err
	}
	return writeValue(cmd.OutOrStdout(), result.Output)
}
