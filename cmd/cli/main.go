package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"rolstat/domain/core"
	"rolstat/domain/rol"
	"rolstat/internal"
	"rolstat/internal/config"
	"rolstat/internal/container"
	"rolstat/internal/errors"
	"rolstat/ports"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "rol",
		Short:         "Organize raw data into a ROL and its frequency table",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newApplyCmd(),
		newShowCmd(),
		newClearCmd(),
		newChartsCmd(),
		newExportCmd(),
		newWatchCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

// openContainer wires the services against the configured store, so the CLI
// shares its ROL with a running server.
func openContainer(ctx context.Context) (*container.Container, error) {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
	return container.New(ctx, cfg, logger)
}

func newApplyCmd() *cobra.Command {
	var mode string
	var file string
	var yes bool

	cmd := &cobra.Command{
		Use:   "apply [values...]",
		Short: "Sort raw values into a ROL and persist it",
		Long: `Sort raw values into a ROL, show the frequency table and persist the ROL.

Values come from the arguments or from a CSV/XLSX file.

Example: rol apply 3 1 2 2 --mode numeric
         rol apply --file dados.xlsx --mode auto`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sortMode, err := rol.ParseSortMode(mode)
			if err != nil {
				return err
			}
			c, err := openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			values := args
			if file != "" {
				if values, err = c.Importer.ReadCells(file); err != nil {
					return err
				}
			}
			if overflow := c.Workbench.SetRaw(values); overflow > 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(fmt.Sprintf("%d value(s) do not fit the grid and were ignored", overflow)))
			}

			res, err := c.Workbench.Apply(ctx, sortMode, yes)
			var nonNumeric *rol.NonNumericError
			if stderrors.As(err, &nonNumeric) && confirm(cmd.InOrStdin(), cmd.OutOrStdout(), err) {
				res, err = c.Workbench.Apply(ctx, sortMode, true)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render("ROL"))
			fmt.Fprintln(out, gridTable(res.Grid))
			fmt.Fprintln(out, res.Info)
			fmt.Fprintln(out, frequencyTable(res.Table))
			if !res.Persisted {
				fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("ROL was not persisted"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(rol.ModeAuto), "Sort mode: numeric, alpha or auto")
	cmd.Flags().StringVar(&file, "file", "", "Read values from a CSV or XLSX file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Sort alphabetically without asking when values are not numeric")
	return cmd
}

// confirm asks whether to fall back to alphabetical order
func confirm(in io.Reader, out io.Writer, cause error) bool {
	msg := cause.Error()
	var appErr *errors.AppError
	if stderrors.As(cause, &appErr) {
		msg = appErr.Message
	}
	fmt.Fprintf(out, "%s [s/N] ", warnStyle.Render(msg))
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the persisted ROL and its frequency table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			values := c.Workbench.Persisted(ctx)
			out := cmd.OutOrStdout()
			if len(values) == 0 {
				fmt.Fprintln(out, dimStyle.Render(rol.EmptySummary))
				return nil
			}
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("ROL (%d values)", len(values))))
			fmt.Fprintln(out, strings.Join(values, ", "))
			fmt.Fprintln(out, rol.Summary(values))
			fmt.Fprintln(out, frequencyTable(rol.Build(values).Cells()))
			return nil
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the persisted ROL",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			if err := c.Workbench.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("ROL cleared"))
			return nil
		},
	}
}

func newChartsCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Render the charts of the persisted ROL as PNG files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			if err := c.Charts.Load(ctx); err != nil {
				return err
			}
			view := c.Charts.View()
			if view.Data == nil {
				return core.ErrNothingToRender
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			for _, spec := range view.Charts {
				path := filepath.Join(outDir, string(spec.Kind)+".png")
				if err := writeChart(c, spec.Kind, path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", successStyle.Render(path), dimStyle.Render(spec.Title))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "charts", "Directory for the PNG files")
	return cmd
}

func writeChart(c *container.Container, kind rol.ChartKind, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Charts.WriteChart(kind, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newExportCmd() *cobra.Command {
	var out string
	var name string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the persisted ROL and its frequency table to XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			values := c.Workbench.Persisted(ctx)
			if len(values) == 0 {
				return errors.NotFound("generated ROL")
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := writeWorkbook(f, name, values); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("wrote "+out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "rol.xlsx", "Output file")
	cmd.Flags().StringVar(&name, "name", "", "Frequency table name")
	return cmd
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print changes to the persisted ROL made by other processes",
		Long: `Print changes to the persisted ROL as they happen.

Cross-process changes are seen with the file and postgres backends.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			out := cmd.OutOrStdout()
			sub := c.Hub.Subscribe(core.NewOrigin(), func(ev ports.ChangeEvent) {
				fmt.Fprintln(out, describeChange(ev))
			})
			defer sub.Close()

			fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("watching %s store, Ctrl+C to stop", c.Config.Store.Backend)))
			return c.Watch(ctx)
		},
	}
}
