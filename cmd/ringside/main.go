package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"

	"github.com/alanjwade/tournament-manager-sub000/internal/database"
	"github.com/alanjwade/tournament-manager-sub000/internal/tournament"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/style"
)

var (
	stdout = colorable.NewColorableStdout()
	stderr = colorable.NewColorableStderr()
)

var (
	aOptions string
	aVerbose bool
)

var rootCmd = &cobra.Command{
	Version:       "0.3.0",
	Use:           "ringside",
	Short:         "Structures martial arts tournaments into rings and brackets",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `Ringside keeps the roster of a martial arts tournament, derives the rings
from it, orders competitors inside each ring and seeds sparring brackets.
`,
}

type app struct {
	log    *slog.Logger
	opts   *Options
	db     *database.DB
	keeper *tournament.Keeper
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	} else if aVerbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

func openApp(ctx context.Context) (*app, error) {
	opts, err := loadOptions(aOptions)
	if err != nil {
		return nil, err
	}
	log := newLogger(opts.Debug)
	db, err := database.New(log, opts.DB)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	keeper, err := tournament.New(ctx, log, db, opts.Keeper)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create keeper: %w", err)
	}
	return &app{log: log, opts: opts, db: db, keeper: keeper}, nil
}

func (a *app) Close() {
	a.db.Close()
}

// withApp runs fn against a freshly opened database and keeper.
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd.Context(), a, args)
	}
}

func main() {
	color.NoColor = !style.StdoutSupportsColor()
	color.Output = stdout
	color.Error = stderr

	p := rootCmd.PersistentFlags()
	p.StringVarP(&aOptions, "options", "o", "", "options file (defaults to $"+envOptions+")")
	p.BoolVarP(&aVerbose, "verbose", "v", false, "log progress to stderr")

	rootCmd.AddCommand(importCmd, exportCmd)
	rootCmd.AddCommand(ringsCmd, orderCmd, bracketCmd, bracketsCmd)
	rootCmd.AddCommand(checkpointCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(stderr, style.WithSE("error:", 1, 31), err)
		os.Exit(1)
	}
}
