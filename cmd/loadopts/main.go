// Command loadopts normalizes a data-loading query string into load options and
// processing options and prints the result as JSON.
//
// Usage:
//
//	loadopts parse 'take=10&requireTotalCount=true&tzOffset=-60'
//	loadopts parse --schema fields.yaml 'filter[0][0]=int1&filter[0][1]=%3D&filter[0][2]=4'
//	loadopts schema fields.yaml
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/asaidimu/go-loadoptions/core/options"
	"github.com/asaidimu/go-loadoptions/core/schema"
	"github.com/asaidimu/go-loadoptions/querystring"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool

	// Parse flags
	schemaPath      string
	strict          bool
	noDateInference bool
	failOnError     bool

	logger = zap.NewNop()
)

// errRejected is returned by parse under --fail-on-error when issues were
// reported.
var errRejected = errors.New("query string contains invalid parameters")

var rootCmd = &cobra.Command{
	Use:           "loadopts",
	Short:         "Normalize data-loading query strings",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse [query]",
	Short: "Parse a query string and print the load and processing options",
	Long: `Decodes a query string in bracket notation, normalizes it and prints
{errors, loadOptions, processingOptions} as JSON.

Filter and search values are coerced with the field kinds declared in the
schema file. ISO-8601 date-times on undeclared fields become dates unless
--no-date-inference is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

var schemaCmd = &cobra.Command{
	Use:   "schema [file]",
	Short: "Print the field kinds declared by a schema file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchema,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	parseCmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "YAML or JSON file declaring field kinds")
	parseCmd.Flags().BoolVar(&strict, "strict", false, "Report filter and search literals that cannot be coerced")
	parseCmd.Flags().BoolVar(&noDateInference, "no-date-inference", false, "Leave date-times on undeclared fields as text")
	parseCmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "Exit with a non-zero status when issues are reported")

	rootCmd.AddCommand(parseCmd, schemaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	var s schema.TypeSchema
	if schemaPath != "" {
		loaded, err := schema.LoadFile(schemaPath)
		if err != nil {
			return err
		}
		s = loaded
		logger.Debug("Schema loaded", zap.String("path", schemaPath), zap.Int("fields", len(s)))
	}

	params, err := querystring.Parse(args[0])
	if err != nil {
		return err
	}

	opts := []options.ParserOption{
		options.WithLogger(logger),
		options.WithDateInference(!noDateInference),
	}
	if strict {
		opts = append(opts, options.WithStrictCoercion())
	}
	parser, err := options.NewParser(opts...)
	if err != nil {
		return err
	}

	result := parser.Parse(params, s)
	if err := writeJSON(cmd, result); err != nil {
		return err
	}

	if failOnError && result.HasErrors() {
		return fmt.Errorf("%w: %d issue(s)", errRejected, len(result.Errors))
	}
	return nil
}

func runSchema(cmd *cobra.Command, args []string) error {
	s, err := schema.LoadFile(args[0])
	if err != nil {
		return err
	}

	fields := make([]string, 0, len(s))
	for field := range s {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := cmd.OutOrStdout()
	for _, field := range fields {
		fmt.Fprintf(out, "%s\t%s\n", field, s.KindOf(field))
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
