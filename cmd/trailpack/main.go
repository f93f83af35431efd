package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/trailpack/trailpack"
	"github.com/trailpack/trailpack/export"
	"github.com/trailpack/trailpack/i18n"
	"github.com/trailpack/trailpack/packing"
	"github.com/trailpack/trailpack/pyst"
	"github.com/trailpack/trailpack/standard"
	"github.com/trailpack/trailpack/table"
)

func main() {
	cmd := &cli.Command{
		Name:  "trailpack",
		Usage: "Validate tabular datasets and pack them as self-describing Parquet",
		Commands: []*cli.Command{
			validateCommand(),
			packCommand(),
			inspectCommand(),
			suggestCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func standardFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "standard",
		Value: "1.0.0",
		Usage: "standard version to validate against",
	}
}

func langFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "lang",
		Value: "en",
		Usage: "report language (en, de)",
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate a CSV or packed Parquet file",
		ArgsUsage: "<data.csv | file.parquet>",
		Flags: []cli.Flag{
			standardFlag(),
			langFlag(),
			&cli.StringFlag{
				Name:  "inconsistencies",
				Usage: "write type-inconsistency records to this CSV file",
			},
			&cli.BoolFlag{
				Name:  "enforce-thresholds",
				Usage: "turn data-quality threshold breaches into warnings",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return cli.Exit("expected exactly one input file", 2)
			}
			path := c.Args().First()
			i18n.SetLanguage(c.String("lang"))

			spec, err := standard.Load(c.String("standard"))
			if err != nil {
				return err
			}
			var opts []trailpack.ValidatorOption
			if c.Bool("enforce-thresholds") {
				opts = append(opts, trailpack.WithQualityThresholds())
			}
			validator := trailpack.NewStandardValidator(spec, opts...)

			var result *trailpack.ValidationResult
			switch {
			case strings.HasSuffix(path, ".parquet"):
				tbl, pkg, err := packing.ReadFile(ctx, path)
				if err != nil {
					return err
				}
				result = validator.ValidateAll(pkg, tbl, nil)
			default:
				tbl, err := readCSVFile(path)
				if err != nil {
					return err
				}
				result = validator.ValidateDataQuality(tbl, nil)
			}

			printResult(result)
			if out := c.String("inconsistencies"); out != "" && len(result.Inconsistencies) > 0 {
				if err := result.ExportInconsistencies(out); err != nil {
					return err
				}
				log.Printf("wrote %d inconsistency records to %s", len(result.Inconsistencies), out)
			}
			if !result.IsValid() {
				return cli.Exit(result.Summary(), 1)
			}
			return nil
		},
	}
}

// packMeta is the on-disk shape of the --meta file.
type packMeta struct {
	Details  export.Details            `json:"details"`
	Mappings map[string]export.Mapping `json:"mappings"`
}

func packCommand() *cli.Command {
	return &cli.Command{
		Name:      "pack",
		Usage:     "Export a CSV file as a packed Parquet data package",
		ArgsUsage: "<data.csv>",
		Flags: []cli.Flag{
			standardFlag(),
			&cli.StringFlag{
				Name:     "meta",
				Required: true,
				Usage:    "JSON file with package details and column mappings",
			},
			&cli.StringFlag{
				Name:     "out",
				Required: true,
				Usage:    "output Parquet path",
			},
			&cli.BoolFlag{
				Name:  "block-on-non-compliant",
				Usage: "refuse to write when validation reports errors",
			},
			&cli.BoolFlag{
				Name:  "enforce-thresholds",
				Usage: "turn data-quality threshold breaches into warnings",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return cli.Exit("expected exactly one input file", 2)
			}
			tbl, err := readCSVFile(c.Args().First())
			if err != nil {
				return err
			}

			metaBytes, err := os.ReadFile(c.String("meta"))
			if err != nil {
				return err
			}
			var meta packMeta
			if err := json.Unmarshal(metaBytes, &meta); err != nil {
				return fmt.Errorf("parse %s: %w", c.String("meta"), err)
			}
			if meta.Details.SourceFile == "" {
				meta.Details.SourceFile = c.Args().First()
			}

			spec, err := standard.Load(c.String("standard"))
			if err != nil {
				return err
			}
			var opts []export.Option
			if c.Bool("block-on-non-compliant") {
				opts = append(opts, export.BlockOnNonCompliant())
			}
			if c.Bool("enforce-thresholds") {
				opts = append(opts, export.WithValidatorOptions(trailpack.WithQualityThresholds()))
			}

			out, err := os.Create(c.String("out"))
			if err != nil {
				return err
			}
			res, err := export.New(spec, opts...).Export(ctx, out, tbl, meta.Mappings, meta.Details)
			if closeErr := out.Close(); err == nil {
				err = closeErr
			}
			if res != nil {
				fmt.Print(export.Report(res, meta.Details))
			}
			if err != nil {
				os.Remove(c.String("out"))
				return err
			}
			log.Printf("wrote %s (%s)", c.String("out"), res.Level)
			return nil
		},
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the descriptor embedded in a packed Parquet file",
		ArgsUsage: "<file.parquet>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return cli.Exit("expected exactly one input file", 2)
			}
			tbl, pkg, err := packing.ReadFile(ctx, c.Args().First())
			if err != nil {
				return err
			}
			if pkg == nil {
				return cli.Exit("no descriptor embedded in this file", 1)
			}
			pretty, err := json.MarshalIndent(pkg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(pretty))
			log.Printf("%d rows, %d columns", tbl.NumRows(), tbl.NumCols())
			return nil
		},
	}
}

func suggestCommand() *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Query the PyST vocabulary service for concept suggestions",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   pyst.DefaultHost,
				Sources: cli.EnvVars("PYST_HOST"),
				Usage:   "PyST service base URL",
			},
			&cli.StringFlag{
				Name:    "auth-token",
				Sources: cli.EnvVars("PYST_AUTH_TOKEN"),
				Usage:   "PyST authentication token",
			},
			&cli.StringFlag{
				Name:  "language",
				Value: "en",
				Usage: "ISO 639-1 language code",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return cli.Exit("expected exactly one query", 2)
			}
			client := pyst.NewClient(c.String("host"), pyst.WithAuthToken(c.String("auth-token")))
			concepts, err := client.Suggest(ctx, c.Args().First(), c.String("language"))
			if err != nil {
				return err
			}
			if len(concepts) == 0 {
				fmt.Println("no suggestions")
				return nil
			}
			for _, concept := range concepts {
				fmt.Printf("%s\t%s\n", concept.Label, concept.IRI)
			}
			return nil
		},
	}
}

func readCSVFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return table.ReadCSV(f)
}

func printResult(r *trailpack.ValidationResult) {
	fmt.Printf("%s\n", r.Level())
	printFindings("ERRORS", r.Errors)
	printFindings("WARNINGS", r.Warnings)
	printFindings("INFO", r.Info)
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		fmt.Println("\nAll checks passed.")
	}
}

func printFindings(heading string, fs []trailpack.Finding) {
	if len(fs) == 0 {
		return
	}
	fmt.Printf("\n%s (%d):\n", heading, len(fs))
	for _, f := range fs {
		label := i18n.T(f.Code, paramStrings(f.Params))
		if f.Field != "" {
			fmt.Printf("  - [%s] %s: %s\n", f.Field, label, f.Message)
		} else {
			fmt.Printf("  - %s: %s\n", label, f.Message)
		}
	}
}

func paramStrings(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}
