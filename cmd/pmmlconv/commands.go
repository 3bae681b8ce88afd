package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/pmmlconv/internal/pipeline"
	"github.com/ajitpratap0/pmmlconv/pkg/converter"
	"github.com/ajitpratap0/pmmlconv/pkg/schema"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgWhite)
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		// no configuration needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pmmlconv v%s\n", version)
			fmt.Fprintf(out, "PMML version: 4.2\n")
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available converters",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			titleColor.Fprintln(out, "Available converters:")
			for _, info := range reg.List() {
				modes := make([]string, len(info.Modes))
				for i, m := range info.Modes {
					modes[i] = string(m)
				}
				successColor.Fprintf(out, "  %s", info.Name)
				infoColor.Fprintf(out, " [%s] %s\n", strings.Join(modes, ", "), info.Description)
				infoColor.Fprintf(out, "      estimator type: %s\n", info.Type)
			}
			return nil
		},
	}
}

func newConvertCommand(a *app) *cobra.Command {
	var (
		job        pipeline.Job
		mode       string
		duplicate  bool
		compressor string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an estimator to a PMML document",
		Long: `Convert an estimator file to PMML 4.2.

The input schema comes from a schema file (YAML, JSON or Avro) or is
inferred from sample records.

Example:
  pmmlconv convert -e model.json -s schema.yaml -o model.pmml
  pmmlconv convert -e model.yaml --samples rows.ndjson --target label -o s3://models/m.pmml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("mode") {
				if _, err := converter.ParseMode(mode); err != nil {
					return err
				}
				a.cfg.Conversion.Mode = mode
			}
			if cmd.Flags().Changed("duplicate-data-fields") {
				a.cfg.Conversion.DuplicateDataFields = duplicate
			}
			if cmd.Flags().Changed("compression") {
				a.cfg.Output.Compression = compressor
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			reg, err := a.registry()
			if err != nil {
				return err
			}
			res, err := pipeline.New(a.cfg, reg, a.log).Run(cmd.Context(), job)
			if err != nil {
				return err
			}

			a.log.Info("document written",
				zap.String("conversion_id", res.ConversionID),
				zap.String("destination", res.Destination),
				zap.Int64("bytes", res.Bytes),
				zap.Duration("duration", res.Duration))
			return nil
		},
	}

	cmd.Flags().StringVarP(&job.Estimator, "estimator", "e", "", "Path to the estimator file, .json or .yaml (required)")
	cmd.Flags().StringVarP(&job.Schema, "schema", "s", "", "Path to the schema file, .yaml, .json or .avsc")
	cmd.Flags().StringVar(&job.Samples, "samples", "", "Infer the schema from a JSON or NDJSON file of records")
	cmd.Flags().StringSliceVarP(&job.Targets, "target", "t", nil, "Output field names (repeatable)")
	cmd.Flags().StringVarP(&job.Output, "output", "o", "", "Destination: -, a path, s3://bucket/key or gs://bucket/object")
	cmd.Flags().StringVar(&mode, "mode", "", "Require the converter to perform this mode (classification, regression)")
	cmd.Flags().BoolVar(&duplicate, "duplicate-data-fields", false, "Emit every data field twice, as older releases did")
	cmd.Flags().StringVar(&compressor, "compression", "", "Compress the document (none, gzip, zstd, lz4, snappy, s2, deflate)")
	_ = cmd.MarkFlagRequired("estimator")
	cmd.MarkFlagsMutuallyExclusive("schema", "samples")

	return cmd
}

func newBatchCommand(a *app) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "batch MANIFEST",
		Short: "Run every conversion listed in a manifest",
		Long: `Run the conversions listed in a YAML manifest concurrently.

Example manifest:
  workers: 4
  jobs:
    - name: credit
      estimator: credit.json
      schema: credit.yaml
      output: s3://models/credit.pmml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := pipeline.LoadManifest(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				manifest.Workers = workers
			}

			reg, err := a.registry()
			if err != nil {
				return err
			}
			results := pipeline.New(a.cfg, reg, a.log).RunAll(cmd.Context(), manifest.Jobs, manifest.Workers)
			return printResults(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent conversions; overrides the manifest (0 means one per CPU)")
	return cmd
}

func printResults(out io.Writer, results []pipeline.Result) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			errorColor.Fprintf(out, "✗ %s", r.Job)
			infoColor.Fprintf(out, ": %v\n", r.Err)
			continue
		}
		successColor.Fprintf(out, "✓ %s", r.Job)
		infoColor.Fprintf(out, " -> %s (%d bytes, %s)\n", r.Destination, r.Bytes, r.Duration.Round(time.Millisecond))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(results))
	}
	return nil
}

func newInferCommand(a *app) *cobra.Command {
	var (
		samples       string
		targets       []string
		output        string
		maxCategories int
	)

	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Infer a schema file from sample records",
		Long: `Infer a schema from sample records and write it as YAML.

String columns become categorical with their values in first-seen order;
integral numbers become integer, other numbers double. A summary is printed
to stderr.

Example:
  pmmlconv infer --samples rows.ndjson --target label -o schema.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := pipeline.LoadSamples(samples)
			if err != nil {
				return err
			}

			engine := schema.NewInferenceEngine(a.log, schema.WithMaxCategories(maxCategories))
			tc, fields, err := engine.Infer(records, targets...)
			if err != nil {
				return err
			}
			printInferred(cmd.ErrOrStderr(), fields)

			data, err := schema.MarshalYAML(tc)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0o600)
		},
	}

	cmd.Flags().StringVar(&samples, "samples", "", "JSON or NDJSON file of records, optionally compressed (required)")
	cmd.Flags().StringSliceVarP(&targets, "target", "t", nil, "Output field names (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Where to write the schema YAML")
	cmd.Flags().IntVar(&maxCategories, "max-categories", 1000, "Largest vocabulary accepted for a categorical field")
	_ = cmd.MarkFlagRequired("samples")
	return cmd
}

func printInferred(out io.Writer, fields []schema.InferredField) {
	titleColor.Fprintln(out, "Inferred fields:")
	for _, f := range fields {
		successColor.Fprintf(out, "  %-20s", f.Name)
		infoColor.Fprintf(out, " %-8s confidence=%.2f", f.Kind, f.Confidence)
		if f.Nullable {
			infoColor.Fprint(out, " nullable")
		}
		if len(f.Values) > 0 {
			infoColor.Fprintf(out, " values=%d", len(f.Values))
		}
		if f.Stats != nil {
			infoColor.Fprintf(out, " min=%g max=%g", f.Stats.Min, f.Stats.Max)
		}
		fmt.Fprintln(out)
	}
}
