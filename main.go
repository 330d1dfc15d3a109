package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tosih/thermtable/pkg/logging"
	"github.com/tosih/thermtable/pkg/models"
	"github.com/tosih/thermtable/pkg/reader"
)

// errFailedGroups makes generate exit non-zero after writing a partial header
var errFailedGroups = errors.New("one or more sensor groups have no table")

type options struct {
	config  string
	verbose bool
	logJSON bool
	noColor bool
	logger  *pterm.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "thermtable",
		Short: "Generate thermistor ADC lookup tables for firmware",
		Long: `thermtable reads a board file listing temperature sensors and writes
thermistortable.h, a C header with one ADC to temperature table per group of
identical thermistors. Entries are placed where linear interpolation would
otherwise be least accurate.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = logging.Setup(logging.Options{
				Verbose: opts.verbose,
				JSON:    opts.logJSON,
				NoColor: opts.noColor,
				Output:  cmd.ErrOrStderr(),
			})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.config, "config", "c", "board.yaml", "board file (.yaml, .yml or .toml)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output")
	pf.BoolVar(&opts.logJSON, "log-json", false, "log as JSON lines")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	addSettingsFlags(pf)

	root.AddCommand(
		newGenerateCommand(opts),
		newPreviewCommand(opts),
		newListCommand(opts),
		newAnalyzeCommand(opts),
		newExportCommand(opts),
		newCompareCommand(opts),
		newServeCommand(opts),
		newWatchCommand(opts),
		newAddSensorCommand(opts),
	)
	return root
}

// addSettingsFlags registers the flags that override board settings
func addSettingsFlags(fs *pflag.FlagSet) {
	fs.IntP("num-temps", "n", models.DefaultNumTemps, "entries per table")
	fs.Int("max-adc", models.DefaultMaxADC, "largest ADC code")
	fs.Float64("t0", models.DefaultT0, "Beta reference temperature in C")
	fs.Float64("r1", 0, "parallel resistor in ohms, 0 for none")
	fs.Int("workers", models.DefaultWorkers, "groups generated concurrently")
}

// applySettingsFlags copies explicitly set flags over the file settings
func applySettingsFlags(fs *pflag.FlagSet, s *models.Settings) error {
	var err error
	if fs.Changed("num-temps") {
		if s.NumTemps, err = fs.GetInt("num-temps"); err != nil {
			return err
		}
	}
	if fs.Changed("max-adc") {
		if s.MaxADC, err = fs.GetInt("max-adc"); err != nil {
			return err
		}
	}
	if fs.Changed("t0") {
		if s.T0, err = fs.GetFloat64("t0"); err != nil {
			return err
		}
	}
	if fs.Changed("r1") {
		if s.R1, err = fs.GetFloat64("r1"); err != nil {
			return err
		}
	}
	if fs.Changed("workers") {
		if s.Workers, err = fs.GetInt("workers"); err != nil {
			return err
		}
	}
	return nil
}

// loadBoard reads the board file named by --config and applies flag overrides
func loadBoard(cmd *cobra.Command, path string) (*models.Board, error) {
	board, err := reader.ReadBoard(path)
	if err != nil {
		return nil, err
	}
	if err := applySettingsFlags(cmd.Flags(), &board.Settings); err != nil {
		return nil, err
	}
	if err := reader.Validate(board); err != nil {
		return nil, err
	}
	return board, nil
}
