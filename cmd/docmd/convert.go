package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgallion1/docmd/internal/config"
	"github.com/dgallion1/docmd/internal/convert"
	"github.com/dgallion1/docmd/internal/mdcheck"
)

var convertCmd = &cobra.Command{
	Use:   "convert [input.docx] [output.md]",
	Short: "Convert one DOCX file to text and Markdown tables",
	Long: `Convert writes every non-empty paragraph followed by a blank line and
every table as a Markdown pipe table, in document order. The output file is
overwritten. If the input does not exist, a notice is printed and nothing is
written.

Paths come from the positional arguments, --input/--output, the
DOCMD_INPUT_PATH/DOCMD_OUTPUT_PATH environment variables, or the config file.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("input", "i", "", "input .docx path")
	convertCmd.Flags().StringP("output", "o", "", "output text/Markdown path")
	convertCmd.Flags().Bool("verify", false, "re-read the output and warn if tables do not parse as Markdown tables")

	viper.BindPFlag(config.KeyInputPath, convertCmd.Flags().Lookup("input"))
	viper.BindPFlag(config.KeyOutputPath, convertCmd.Flags().Lookup("output"))
	viper.BindPFlag(config.KeyVerify, convertCmd.Flags().Lookup("verify"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		viper.Set(config.KeyInputPath, args[0])
	}
	if len(args) > 1 {
		viper.Set(config.KeyOutputPath, args[1])
	}

	cfg := config.Load(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := newLogger(cfg, cmd.ErrOrStderr())

	conv := convert.New(log, cmd.OutOrStdout())
	res, err := conv.Convert(convert.Options{
		InputPath:  cfg.InputPath,
		OutputPath: cfg.OutputPath,
	})
	if err != nil {
		log.Error("conversion failed", "input", cfg.InputPath, "error", err)
		return err
	}
	if res.Missing {
		return nil
	}

	log.Info("converted",
		"input", cfg.InputPath,
		"output", cfg.OutputPath,
		"paragraphs", res.Paragraphs,
		"tables", res.Tables,
		"bytes", res.Bytes,
		"blake3", res.Digest,
	)
	if res.RaggedRows > 0 {
		log.Warn("table rows differ from header width, written as-is", "rows", res.RaggedRows)
	}

	if cfg.Verify {
		return verifyOutput(log, cfg.OutputPath, res)
	}
	return nil
}

// verifyOutput re-reads the written file as GFM and compares its table count
// with the tables that were written with at least a header row.
func verifyOutput(log *slog.Logger, path string, res convert.Result) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	s := mdcheck.Inspect(data)
	written := res.Tables - res.EmptyTables
	if s.Tables != written {
		log.Warn("markdown table count differs from tables written",
			"written", written,
			"parsed", s.Tables,
		)
		return nil
	}
	log.Debug("verified output", "tables", s.Tables, "table_rows", s.TableRows, "paragraphs", s.Paragraphs)
	return nil
}
