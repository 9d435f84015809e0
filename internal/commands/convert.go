package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidmtz-dev/bancos-reader/internal/batch"
	"github.com/davidmtz-dev/bancos-reader/internal/logger"
	"github.com/davidmtz-dev/bancos-reader/internal/parser"
	"github.com/davidmtz-dev/bancos-reader/internal/store"
	"github.com/davidmtz-dev/bancos-reader/internal/writer"
)

func newConvertCommand() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "convert <statement.pdf> [statement2.pdf ...]",
		Short: "Convert statement PDFs to CSV movement files",
		Long: `Convert extracts the transaction movements from one or more BBVA
statement PDFs (debit account or credit card; the layout is detected from the
filename and page-one content) and writes one CSV file per input.

When the configuration names a store path, extracted movements are also
dumped to a local database for debugging and backup.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logger.New()

			runner := batch.Runner{
				Workers: cfg.Batch.Workers,
				Defaults: parser.Defaults{
					Currency:      cfg.Defaults.Currency,
					ReferenceYear: cfg.Defaults.ReferenceYear,
				},
				Log: log,
			}
			results := runner.Run(cmd.Context(), args)

			var dump *store.Store
			if cfg.Store.Path != "" {
				dump, err = store.Open(cfg.Store.Path)
				if err != nil {
					return err
				}
				defer dump.Close()
			}

			csvWriter := &writer.CSVWriter{IncludeHeader: cfg.Output.IncludeHeader}
			failed := 0
			for _, res := range results {
				if res.Err != nil {
					failed++
					continue
				}

				outPath := csvPathFor(res.Path, outputDir)
				if err := csvWriter.WriteToFile(outPath, res.Movements); err != nil {
					log.Error().Str("file", filepath.Base(res.Path)).Err(err).Msg("csv write failed")
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d movement(s) -> %s\n",
					filepath.Base(res.Path), len(res.Movements), outPath)

				if dump != nil {
					if err := dump.Save(filepath.Base(res.Path), res.Movements); err != nil {
						log.Warn().Str("file", filepath.Base(res.Path)).Err(err).Msg("store dump failed")
					}
				}
			}

			if failed == len(results) {
				return fmt.Errorf("all %d document(s) failed", failed)
			}
			if failed > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d of %d document(s) failed\n", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for CSV output (defaults to each input's directory)")

	return cmd
}

func csvPathFor(inputPath, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)) + ".csv"
	if outputDir != "" {
		return filepath.Join(outputDir, base)
	}
	return filepath.Join(filepath.Dir(inputPath), base)
}
