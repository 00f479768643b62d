package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ordernorm/pkg/mapping"
	"ordernorm/pkg/value"
)

var rulesFile string

var mapCmd = &cobra.Command{
	Use:   "map <file|->",
	Short: "Rename and transform record fields with a rule table",
	Long: `Map applies a YAML rule table to a JSON record. Rules whose input field
is missing are reported on stderr and skipped.

Example:
  ordernorm map export.json --rules rules.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runMap,
}

func init() {
	rootCmd.AddCommand(mapCmd)

	mapCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML rule table (default: rules_file from config)")
}

func runMap(cmd *cobra.Command, args []string) error {
	settings := loadSettings()
	path := rulesFile
	if path == "" {
		path = settings.RulesFile
	}
	if path == "" {
		return fmt.Errorf("no rule table: pass --rules or set rules_file in the config")
	}

	rules, err := mapping.LoadRulesFile(path, mapping.DefaultRegistry)
	if err != nil {
		return err
	}
	record, err := readObjectFile(args[0])
	if err != nil {
		return err
	}

	mapped, warnings := mapping.NewMapper(settings.Logger()).Map(record, rules)
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s\n", w)
	}
	return writeValue(cmd.OutOrStdout(), value.FromObject(mapped))
}
