package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ordernorm/internal/flow/flows"
	"ordernorm/internal/worker"
	"ordernorm/pkg/value"
)

var (
	concurrency  int
	outputDir    string
	indent       int
	flowName     string
	batchTimeout time.Duration
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file|->...",
	Short: "Normalize JSON records",
	Long: `Clean runs a flow over each JSON file, concurrently:
- "-" reads standard input
- results go to stdout, or one file per input with --output-dir
- other flows (assemble_document, map_record, ...) are picked with --flow

Example:
  ordernorm clean order.json
  cat order.json | ordernorm clean - --indent 0
  ordernorm clean exports/*.json --concurrency 8 --output-dir ./clean
  ordernorm clean document.json --flow assemble_document`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: config, then CPU count)")
	cleanCmd.Flags().StringVar(&outputDir, "output-dir", "", "write one cleaned file per input into this directory")
	cleanCmd.Flags().IntVar(&indent, "indent", 2, "spaces of indentation, 0 for compact output")
	cleanCmd.Flags().StringVar(&flowName, "flow", flows.CleanRecord, "flow to run")
	cleanCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout")
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	settings := loadSettings()
	if concurrency > 0 {
		settings.Concurrency = concurrency
	}

	service, err := settings.FlowService(settings.Logger())
	if err != nil {
		return err
	}
	if !service.Has(flowName) {
		return fmt.Errorf("unknown flow %q (available: %s)", flowName, strings.Join(service.GetAvailableFlows(), ", "))
	}

	if outputDir != "" {
		if err := checkOutputNames(args); err != nil {
			return err
		}
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	processor := worker.NewBatchProcessor(service, flowName, settings.Concurrency)
	results := processor.ProcessFiles(ctx, args)

	stderr := cmd.ErrOrStderr()
	failures := 0
	for _, result := range results {
		if result.Error != nil {
			failures++
			fmt.Fprintf(stderr, "✗ %v\n", result.Error)
			continue
		}

		data, err := render(result.Output, indent)
		if err != nil {
			failures++
			fmt.Fprintf(stderr, "✗ %s: %v\n", result.Path, err)
			continue
		}

		if outputDir == "" {
			if _, err := cmd.OutOrStdout().Write(append(data, '\n')); err != nil {
				return err
			}
			continue
		}

		target := filepath.Join(outputDir, outputName(result.Path))
		if err := os.WriteFile(target, append(data, '\n'), 0644); err != nil {
			failures++
			fmt.Fprintf(stderr, "✗ %s: %v\n", result.Path, err)
			continue
		}
		if verbose {
			fmt.Fprintf(stderr, "✓ %s -> %s (run %s)\n", result.Path, target, result.RunID)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d inputs failed", failures, len(results))
	}
	return nil
}

func render(v value.Value, spaces int) ([]byte, error) {
	if spaces <= 0 {
		return v.MarshalJSON()
	}
	return value.Indent(v, strings.Repeat(" ", spaces))
}

func outputName(path string) string {
	if path == worker.StdinPath {
		return "stdin.json"
	}
	return filepath.Base(path)
}

// checkOutputNames rejects inputs that would overwrite each other in the
// output directory. Repeating the same path is fine, it is cleaned once.
func checkOutputNames(paths []string) error {
	owners := make(map[string]string, len(paths))
	for _, p := range paths {
		name := outputName(p)
		if prev, ok := owners[name]; ok && prev != p {
			return fmt.Errorf("inputs %s and %s would both be written to %s", prev, p, filepath.Join(outputDir, name))
		}
		owners[name] = p
	}
	return nil
}

// readObjectFile decodes a JSON object from path or stdin.
func readObjectFile(path string) (*value.Object, error) {
	rc, err := worker.OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	v, err := value.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	obj, ok := v.Object()
	if !ok {
		return nil, fmt.Errorf("%s: expected a JSON object, got %s", path, v.Kind())
	}
	return obj, nil
}

func writeValue(w io.Writer, v value.Value) error {
	data, err := render(v, indent)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
