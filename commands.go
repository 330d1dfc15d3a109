package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tosih/thermtable/pkg/compare"
	"github.com/tosih/thermtable/pkg/editor"
	"github.com/tosih/thermtable/pkg/export"
	"github.com/tosih/thermtable/pkg/models"
	"github.com/tosih/thermtable/pkg/reader"
	"github.com/tosih/thermtable/pkg/renderer"
	"github.com/tosih/thermtable/pkg/sampler"
	"github.com/tosih/thermtable/pkg/scanner"
	"github.com/tosih/thermtable/pkg/table"
	"github.com/tosih/thermtable/pkg/watch"
	"github.com/tosih/thermtable/pkg/web"
)

// generateTables runs the generator over the thermistors of board
func generateTables(ctx context.Context, board *models.Board, logger *pterm.Logger) (*table.Generator, *models.TableSet, error) {
	g := table.NewGenerator(board.Settings, logger)
	set, err := g.Generate(ctx, board.Thermistors())
	if err != nil {
		return g, nil, err
	}
	return g, set, nil
}

// curvesOf returns the dense curve of a table generated by g
func curvesOf(g *table.Generator) web.CurveFunc {
	return func(t *models.Table) (sampler.Curve, error) {
		return g.Curve(t.Params)
	}
}

// outputDir resolves the header folder. Relative folders are taken from the
// directory of the board file.
func outputDir(board *models.Board, override string) string {
	if override != "" {
		return override
	}
	folder := board.Settings.Folder
	if folder == "" {
		folder = models.DefaultFolder
	}
	if filepath.IsAbs(folder) {
		return folder
	}
	return filepath.Join(filepath.Dir(board.Source), folder)
}

// writeHeader renders set into dir, optionally keeping a backup of the
// previous header
func writeHeader(set *models.TableSet, dir string, backup bool) (string, error) {
	if backup {
		name, err := editor.CreateBackup(filepath.Join(dir, models.HeaderFilename))
		switch {
		case err == nil:
			pterm.Info.Printf("Backup created: %s\n", name)
		case !errors.Is(err, os.ErrNotExist):
			return "", fmt.Errorf("create backup: %w", err)
		}
	}
	return export.WriteHeader(set, dir)
}

func newGenerateCommand(opts *options) *cobra.Command {
	var (
		output string
		backup bool
		stdout bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write thermistortable.h for the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := loadBoard(cmd, opts.config)
			if err != nil {
				return err
			}
			_, set, err := generateTables(cmd.Context(), board, opts.logger)
			if err != nil {
				return err
			}

			if stdout {
				if _, err := cmd.OutOrStdout().Write(export.RenderHeader(set)); err != nil {
					return err
				}
			} else {
				path, err := writeHeader(set, outputDir(board, output), backup)
				if err != nil {
					return err
				}
				pterm.Success.Printf("%d table(s) of %d entries written to %s\n",
					len(set.Valid()), set.Settings.NumTemps, path)
			}

			renderer.ReportFailures(set)
			if len(set.Failed()) > 0 {
				return errFailedGroups
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output folder, overrides the board folder setting")
	cmd.Flags().BoolVar(&backup, "backup", false, "keep a timestamped copy of the previous header")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "print the header instead of writing it")
	return cmd
}

func newPreviewCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "preview [sensor...]",
		Short: "Show generated tables in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := loadBoard(cmd, opts.config)
			if err != nil {
				return err
			}
			_, set, err := generateTables(cmd.Context(), board, opts.logger)
			if err != nil {
				return err
			}
			renderer.DisplayTables(set, args, board.SensorNames())
			return nil
		},
	}
}

func newListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List board sensors and the table serving each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := loadBoard(cmd, opts.config)
			if err != nil {
				return err
			}
			_, set, err := generateTables(cmd.Context(), board, opts.logger)
			if err != nil {
				return err
			}
			renderer.ListSensors(board, set)
			return nil
		},
	}
}

func newAnalyzeCommand(opts *options) *cobra.Command {
	var (
		from  int
		to    int
		limit float64
	)

	cmd := &cobra.Command{
		Use:   "analyze <sensor>",
		Short: "Report the interpolation error for a range of table sizes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := loadBoard(cmd, opts.config)
			if err != nil {
				return err
			}
			sensor, err := findSensor(board, args[0])
			if err != nil {
				return err
			}

			g := table.NewGenerator(board.Settings, opts.logger)
			return scanner.AnalyzeSizes(cmd.Context(), g, sensor.Name, sensor.Params, from, to, limit)
		},
	}

	cmd.Flags().IntVar(&from, "from", 2, "smallest table size")
	cmd.Flags().IntVar(&to, "to", 64, "largest table size")
	cmd.Flags().Float64Var(&limit, "limit", 1.0, "acceptable error in C")
	return cmd
}

// findSensor looks up a thermistor by name, suggesting close names on a miss
func findSensor(board *models.Board, name string) (models.Sensor, error) {
	for _, s := range board.Sensors {
		if strings.EqualFold(s.Name, name) {
			if len(s.Params) == 0 {
				return s, fmt.Errorf("sensor %s has no thermistor parameters", s.Name)
			}
			return s, nil
		}
	}
	err := fmt.Errorf("unknown sensor %q", name)
	if hints := renderer.Suggest(name, board.SensorNames()); len(hints) > 0 {
		err = fmt.Errorf("%w, did you mean %s", err, strings.Join(hints, ", "))
	}
	return models.Sensor{}, err
}

func newExportCommand(opts *options) *cobra.Command {
	var (
		format string
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tables as CSV files or HTML charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := loadBoard(cmd, opts.config)
			if err != nil {
				return err
			}
			g, set, err := generateTables(cmd.Context(), board, opts.logger)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = outputDir(board, "")
			}

			var files []string
			switch format {
			case "csv":
				files, err = export.ExportTablesToCSV(set, dir)
			case "chart":
				files, err = export.ExportCharts(set, dir, curvesOf(g))
			default:
				return fmt.Errorf("unknown export format %q, use csv or chart", format)
			}
			if err != nil {
				return err
			}

			for _, f := range files {
				pterm.Info.Println(f)
			}
			renderer.ReportFailures(set)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or chart")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "export folder, defaults to the header folder")
	return cmd
}

func newCompareCommand(opts *options) *cobra.Command {
	var numTemps int

	cmd := &cobra.Command{
		Use:   "compare [other-board]",
		Short: "Compare tables against another board file or table size",
		Long: `compare generates the tables of the board and of either another board
file or the same board with --with-num-temps entries, and shows how the
interpolated temperatures differ per sensor.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := loadBoard(cmd, opts.config)
			if err != nil {
				return err
			}

			var other *models.Board
			label := board.Source
			switch {
			case len(args) == 1:
				if other, err = loadBoard(cmd, args[0]); err != nil {
					return err
				}
				label = other.Source
			case numTemps > 0:
				copied := *board
				copied.Settings.NumTemps = numTemps
				other = &copied
				label = fmt.Sprintf("%s (%d entries)", board.Source, numTemps)
			default:
				return errors.New("compare needs another board file or --with-num-temps")
			}

			_, before, err := generateTables(cmd.Context(), board, opts.logger)
			if err != nil {
				return err
			}
			_, after, err := generateTables(cmd.Context(), other, opts.logger)
			if err != nil {
				return err
			}

			compare.CompareSets(fmt.Sprintf("%s (%d entries)", board.Source, board.Settings.NumTemps), label, before, after)
			return nil
		},
	}

	cmd.Flags().IntVar(&numTemps, "with-num-temps", 0, "compare against the same board with this many entries")
	return cmd
}

func newServeCommand(opts *options) *cobra.Command {
	var (
		port   int
		open   bool
		reload bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tables, header and charts over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			board, err := loadBoard(cmd, opts.config)
			if err != nil {
				return err
			}
			g, set, err := generateTables(ctx, board, opts.logger)
			if err != nil {
				return err
			}
			renderer.ReportFailures(set)

			server := web.NewServer(board, set, curvesOf(g), port)

			if reload {
				go watchBoard(ctx, cmd, opts, func(b *models.Board, g *table.Generator, s *models.TableSet) {
					server.Update(b, s, curvesOf(g))
					pterm.Info.Printf("Reloaded %s\n", b.Source)
				})
			}
			return server.Start(ctx, open)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port")
	cmd.Flags().BoolVar(&open, "open", false, "open the viewer in the default browser")
	cmd.Flags().BoolVarP(&reload, "watch", "w", false, "reload when the board file changes")
	return cmd
}

// watchBoard regenerates the board tables on every change of the board file
// and hands each successful result to apply
func watchBoard(ctx context.Context, cmd *cobra.Command, opts *options, apply func(*models.Board, *table.Generator, *models.TableSet)) error {
	return watch.Run(ctx, opts.config, watch.Options{Logger: opts.logger}, func(ctx context.Context) error {
		board, err := loadBoard(cmd, opts.config)
		if err != nil {
			return err
		}
		g, set, err := generateTables(ctx, board, opts.logger)
		if err != nil {
			return err
		}
		apply(board, g, set)
		return nil
	})
}

func newWatchCommand(opts *options) *cobra.Command {
	var (
		output string
		backup bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate thermistortable.h whenever the board file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			regenerate := func(board *models.Board, _ *table.Generator, set *models.TableSet) {
				path, err := writeHeader(set, outputDir(board, output), backup)
				if err != nil {
					pterm.Error.Printf("Write failed: %v\n", err)
					return
				}
				pterm.Success.Printf("%d table(s) written to %s\n", len(set.Valid()), path)
				renderer.ReportFailures(set)
			}

			board, err := loadBoard(cmd, opts.config)
			if err != nil {
				return err
			}
			g, set, err := generateTables(cmd.Context(), board, opts.logger)
			if err != nil {
				return err
			}
			regenerate(board, g, set)

			pterm.Info.Printf("Watching %s, press Ctrl+C to stop\n", opts.config)
			return watchBoard(cmd.Context(), cmd, opts, regenerate)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output folder, overrides the board folder setting")
	cmd.Flags().BoolVar(&backup, "backup", false, "keep a timestamped copy of the previous header")
	return cmd
}

func newAddSensorCommand(opts *options) *cobra.Command {
	var backup bool

	cmd := &cobra.Command{
		Use:   "add-sensor",
		Short: "Interactively add a sensor to the board file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := reader.ReadBoard(opts.config)
			if errors.Is(err, os.ErrNotExist) {
				pterm.Info.Printf("Creating %s\n", opts.config)
				board = &models.Board{Settings: models.DefaultSettings(), Source: opts.config}
				err = nil
			}
			if err != nil {
				return err
			}

			err = editor.InteractiveAddSensor(board, backup)
			if errors.Is(err, editor.ErrCancelled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&backup, "backup", true, "keep a timestamped copy of the previous board file")
	return cmd
}
