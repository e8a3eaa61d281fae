package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alanjwade/tournament-manager-sub000/internal/bracket"
	"github.com/alanjwade/tournament-manager-sub000/internal/ring"
	"github.com/alanjwade/tournament-manager-sub000/internal/roster"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/sliceutil"
)

var (
	aType   string
	aSub    string
	aJSON   bool
	aOutDir string
	aDryRun bool
	aJobs   int
)

var ringsCmd = &cobra.Command{
	Use:   "rings",
	Args:  cobra.NoArgs,
	Short: "List the rings derived from the roster",
	RunE: withApp(func(_ context.Context, a *app, _ []string) error {
		state := a.keeper.State()
		printRings(stdout, &state, a.keeper.Rings())
		return nil
	}),
}

var orderCmd = &cobra.Command{
	Use:   "order RING",
	Args:  cobra.ExactArgs(1),
	Short: "Assign ranks to the members of a ring",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		t, err := roster.CompetitionTypeFromString(aType)
		if err != nil {
			return err
		}
		sub, err := roster.SubGroupFromString(aSub)
		if err != nil {
			return err
		}
		if sub != roster.SubGroupNone && t != roster.TypeSparring {
			return fmt.Errorf("sub-groups exist only for sparring rings")
		}
		r, members, err := a.keeper.Ring(args[0], t)
		if err != nil {
			return err
		}
		if aDryRun {
			members = inSubGroup(members, sub)
		} else {
			members, err = a.keeper.OrderRing(ctx, r.Key.WithSubGroup(sub))
			if err != nil {
				return err
			}
		}
		printMembers(stdout, t, members)
		return nil
	}),
}

var bracketCmd = &cobra.Command{
	Use:   "bracket RING",
	Args:  cobra.ExactArgs(1),
	Short: "Seed the sparring bracket of a ring",
	RunE: withApp(func(_ context.Context, a *app, args []string) error {
		sub, err := roster.SubGroupFromString(aSub)
		if err != nil {
			return err
		}
		r, _, err := a.keeper.Ring(args[0], roster.TypeSparring)
		if err != nil {
			return err
		}
		b, err := a.keeper.Bracket(r.Key, sub)
		if err != nil {
			return err
		}
		id := r.Ident()
		id.SubGroup = sub
		if aJSON {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(b)
		}
		printBracket(stdout, id.String(), b)
		return nil
	}),
}

// inSubGroup keeps the sparring members of one sub-group. SubGroupNone keeps everyone.
func inSubGroup(members []roster.Competitor, sub roster.SubGroup) []roster.Competitor {
	if sub == roster.SubGroupNone {
		return members
	}
	return sliceutil.FilterMap(members, func(c roster.Competitor) (roster.Competitor, bool) {
		return c, c.Sparring.SubGroup == sub
	})
}

type bracketJob struct {
	ident ring.Ident
	key   ring.Key
	b     *bracket.Bracket
}

// sparringJobs lists every bracket to seed: one per sub-group of a split ring, one per
// ring otherwise.
func sparringJobs(rings []ring.Ring, competitors []roster.Competitor) []bracketJob {
	var jobs []bracketJob
	for i := range rings {
		r := &rings[i]
		if r.Key.Type != roster.TypeSparring {
			continue
		}
		subs := ring.SubGroups(r, competitors)
		if len(subs) == 0 {
			subs = []roster.SubGroup{roster.SubGroupNone}
		}
		for _, sub := range subs {
			id := r.Ident()
			id.SubGroup = sub
			jobs = append(jobs, bracketJob{ident: id, key: r.Key})
		}
	}
	return jobs
}

var bracketsCmd = &cobra.Command{
	Use:   "brackets",
	Args:  cobra.NoArgs,
	Short: "Seed the brackets of all sparring rings",
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		state := a.keeper.State()
		jobs := sparringJobs(a.keeper.Rings(), state.Competitors)
		if aOutDir != "" {
			if err := os.MkdirAll(aOutDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}

		eg, gctx := errgroup.WithContext(ctx)
		eg.SetLimit(max(aJobs, 1))
		for i := range jobs {
			job := &jobs[i]
			eg.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				b, err := a.keeper.Bracket(job.key, job.ident.SubGroup)
				if err != nil {
					return fmt.Errorf("ring %v: %w", job.ident, err)
				}
				job.b = b
				if aOutDir == "" {
					return nil
				}
				data, err := json.MarshalIndent(b, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal bracket: %w", err)
				}
				path := filepath.Join(aOutDir, job.ident.String()+".json")
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("write bracket: %w", err)
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}

		if aOutDir != "" {
			fmt.Fprintf(stdout, "Wrote %d brackets to %s.\n", len(jobs), aOutDir)
			return nil
		}
		for i, job := range jobs {
			if i != 0 {
				fmt.Fprintln(stdout)
			}
			printBracket(stdout, job.ident.String(), job.b)
		}
		return nil
	}),
}

func init() {
	orderCmd.Flags().StringVarP(&aType, "type", "t", "forms", "competition type (forms or sparring)")
	orderCmd.Flags().StringVarP(&aSub, "sub", "s", "", "order only this sparring sub-group (a or b)")
	orderCmd.Flags().BoolVarP(&aDryRun, "dry-run", "n", false, "show the current ranks without reordering")
	bracketCmd.Flags().StringVarP(&aSub, "sub", "s", "", "sparring sub-group (a or b)")
	bracketCmd.Flags().BoolVar(&aJSON, "json", false, "print the bracket as JSON")
	bracketsCmd.Flags().StringVar(&aOutDir, "out", "", "write one JSON file per bracket into this directory")
	bracketsCmd.Flags().IntVarP(&aJobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of brackets seeded at once")
}
