package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var checkpointCmd = &cobra.Command{
	Use:     "checkpoint",
	Aliases: []string{"cp"},
	Short:   "Save, compare and restore snapshots of the roster",
}

var checkpointCreateCmd = &cobra.Command{
	Use:   "create [NAME]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Save a checkpoint of the live roster",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		name := ""
		if len(args) != 0 {
			name = args[0]
		}
		info, err := a.keeper.CreateCheckpoint(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Created checkpoint %q (%s).\n", info.Name, info.ID)
		return nil
	}),
}

var checkpointListCmd = &cobra.Command{
	Use:   "list",
	Args:  cobra.NoArgs,
	Short: "List checkpoints, newest first",
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		infos, err := a.keeper.ListCheckpoints(ctx)
		if err != nil {
			return err
		}
		printCheckpoints(stdout, infos, time.Now())
		return nil
	}),
}

var checkpointDiffCmd = &cobra.Command{
	Use:   "diff ID",
	Args:  cobra.ExactArgs(1),
	Short: "Show what changed since a checkpoint and which rings need reprinting",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		d, err := a.keeper.DiffCheckpoint(ctx, args[0])
		if err != nil {
			return err
		}
		if aJSON {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		}
		printDiff(stdout, d)
		return nil
	}),
}

var checkpointRestoreCmd = &cobra.Command{
	Use:   "restore ID",
	Args:  cobra.ExactArgs(1),
	Short: "Replace the live roster with a checkpoint",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.keeper.RestoreCheckpoint(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Restored checkpoint %s.\n", args[0])
		return nil
	}),
}

var checkpointDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Args:  cobra.ExactArgs(1),
	Short: "Delete a checkpoint",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.keeper.DeleteCheckpoint(ctx, args[0])
	}),
}

func init() {
	checkpointDiffCmd.Flags().BoolVar(&aJSON, "json", false, "print the diff as JSON")
	checkpointCmd.AddCommand(
		checkpointCreateCmd,
		checkpointListCmd,
		checkpointDiffCmd,
		checkpointRestoreCmd,
		checkpointDeleteCmd,
	)
}
