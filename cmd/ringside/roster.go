package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Args:  cobra.ExactArgs(1),
	Short: "Replace the live roster with a roster file (YAML or JSON, any schema version)",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open roster: %w", err)
			}
			defer f.Close()
			r = f
		}
		if err := a.keeper.ImportRoster(ctx, r); err != nil {
			return err
		}
		state := a.keeper.State()
		fmt.Fprintf(stdout, "Imported %d competitors in %d categories, %d rings.\n",
			len(state.Competitors), len(state.Categories), len(a.keeper.Rings()))
		return nil
	}),
}

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Args:  cobra.ExactArgs(1),
	Short: "Write the live roster as a YAML file",
	RunE: withApp(func(_ context.Context, a *app, args []string) error {
		if args[0] == "-" {
			return a.keeper.ExportRoster(stdout)
		}
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create file: %w", err)
		}
		if err := a.keeper.ExportRoster(f); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close file: %w", err)
		}
		return nil
	}),
}
