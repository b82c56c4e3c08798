package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/novaengine/novasim/internal/replay"
)

var (
	flagReplayIn       string
	flagReplayArchive  string
	flagReplayRealtime bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Play a recorded trace back",
	Long: `Load a trace from a file or the archive, reset the simulation to its
seed and play every frame. Recorded checksums are compared against the
live state; any mismatch fails the command.

Examples:
  novasim replay --in run.replay
  novasim replay --archive nightly`,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&flagReplayIn, "in", "", "trace file to play")
	replayCmd.Flags().StringVar(&flagReplayArchive, "archive", "", "archived trace name to play")
	replayCmd.Flags().BoolVar(&flagReplayRealtime, "realtime", false, "pace frames by the wall clock")
	replayCmd.MarkFlagsMutuallyExclusive("in", "archive")
	replayCmd.MarkFlagsOneRequired("in", "archive")
}

func runReplay(_ *cobra.Command, _ []string) error {
	a, err := newApp(0, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := a.sim
	if flagReplayIn != "" {
		if err := s.LoadReplay(flagReplayIn); err != nil {
			return fmt.Errorf("load trace: %w", err)
		}
	} else {
		ar, err := a.openArchive(ctx)
		if err != nil {
			return err
		}
		tr, err := ar.Load(ctx, flagReplayArchive)
		ar.Close()
		if err != nil {
			return fmt.Errorf("load archived trace: %w", err)
		}
		if err := s.LoadTrace(tr); err != nil {
			return fmt.Errorf("load trace: %w", err)
		}
	}

	if err := s.PlayLoaded(); err != nil {
		return err
	}
	if flagReplayRealtime {
		err = s.RunPaced(ctx, uint64(s.LoadedFrames()))
	} else {
		err = s.RunSteps(ctx, s.LoadedFrames())
	}
	steps := s.Steps()
	div := s.Divergences()
	s.StopPlayback()
	if err != nil {
		return err
	}

	fmt.Printf("replayed %d frames, %d divergences (final checksum %s)\n",
		steps, div, replay.Checksum(replay.Snapshot(s.World())))
	if div > 0 {
		return fmt.Errorf("replay diverged on %d frames", div)
	}
	return nil
}
