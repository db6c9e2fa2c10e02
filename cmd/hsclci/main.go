package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hsclci/internal/converter"
)

var (
	// Global flags
	configPath string
	exportDir  string
	dumpFormat string
	verbose    bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hsclci",
	Short: "Convert HSC Chemistry simulation results to life cycle inventories",
	Long: `hsclci converts HSC Chemistry process simulation results into
Brightway-format life cycle inventories, disaggregated by unit process.

A conversion run reads the simulation workbook and the stream-to-LCI
mapping workbook named in the metadata file, classifies each stream as
a technosphere or biosphere flow, links the resulting exchanges against
the reference databases in the LCI store, writes the new database, and
exports the inventories to a spreadsheet.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// convertCmd runs the full conversion pipeline
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert simulation results and write the LCI database",
	Long: `Runs the full pipeline: extract streams, classify flows, build one
inventory per unit process plus the global activity, link exchanges,
write the database to the LCI store, and export a spreadsheet report.`,
	RunE: runConvert,
}

// validateCmd dry-runs the input checks
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the mapping and simulation files without writing anything",
	RunE:  runValidate,
}

// databasesCmd lists the databases in the LCI store
var databasesCmd = &cobra.Command{
	Use:   "databases",
	Short: "List the databases available in the LCI store",
	RunE:  runDatabases,
}

// dumpCmd serializes a stored database to stdout
var dumpCmd = &cobra.Command{
	Use:   "dump <database>",
	Short: "Serialize a stored database to stdout as JSON or YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func runConvert(cmd *cobra.Command, args []string) error {
	opts := []converter.Option{converter.WithLogger(logger)}
	if exportDir != "" {
		opts = append(opts, converter.WithExportDir(exportDir))
	}

	c, err := converter.New(configPath, opts...)
	if err != nil {
		return err
	}
	defer c.Close()

	report, err := c.Convert(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Created database %s\n", report.String())
	if report.Unmapped > 0 {
		fmt.Printf("Dropped %d unmapped streams (see log)\n", report.Unmapped)
	}
	fmt.Printf("Inventories exported to: %s\n", report.ExportPath)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	c, err := converter.New(configPath, converter.WithLogger(logger))
	if err != nil {
		return err
	}
	defer c.Close()

	v, err := c.Validate(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Mapping covers %d streams; simulation yields %d streams\n",
		v.MappedStreams, v.ExtractedStreams)
	if len(v.Unmapped) > 0 {
		fmt.Printf("Streams without LCI mapping: %s\n", strings.Join(v.Unmapped, ", "))
		return fmt.Errorf("%d streams are unmapped", len(v.Unmapped))
	}
	fmt.Println("All extracted streams are mapped")
	return nil
}

func runDatabases(cmd *cobra.Command, args []string) error {
	c, err := converter.New(configPath, converter.WithLogger(logger))
	if err != nil {
		return err
	}
	defer c.Close()

	names, err := c.ListDatabases(context.Background())
	if err != nil {
		return err
	}

	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runDump(cmd *cobra.Command, args []string) error {
	c, err := converter.New(configPath, converter.WithLogger(logger))
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Dump(context.Background(), args[0], dumpFormat, cmd.OutOrStdout())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "metadata.yaml", "project metadata file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	convertCmd.Flags().StringVar(&exportDir, "export-dir", "", "override the export directory")
	dumpCmd.Flags().StringVarP(&dumpFormat, "format", "f", "json", "output format (json or yaml)")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(databasesCmd)
	rootCmd.AddCommand(dumpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
