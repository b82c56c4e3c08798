package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/novaengine/novasim/internal/replay"
)

var (
	flagRecordSteps    int
	flagRecordOut      string
	flagRecordSeed     uint64
	flagRecordRealtime bool
	flagRecordArchive  string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a run to a trace",
	Long: `Reset the simulation to the seed, run it for the given number of steps
and write the recorded trace to a file, the archive, or both.

Examples:
  novasim record --steps 600 --out run.replay
  novasim record --steps 600 --seed 42 --archive nightly --realtime`,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().IntVar(&flagRecordSteps, "steps", 600, "number of simulation steps")
	recordCmd.Flags().StringVar(&flagRecordOut, "out", "", "trace file to write")
	recordCmd.Flags().Uint64Var(&flagRecordSeed, "seed", 0, "global seed (default: sim.seed from config)")
	recordCmd.Flags().BoolVar(&flagRecordRealtime, "realtime", false, "pace steps by the wall clock")
	recordCmd.Flags().StringVar(&flagRecordArchive, "archive", "", "also store the trace in the archive under this name")
}

func runRecord(cmd *cobra.Command, _ []string) error {
	if flagRecordOut == "" && flagRecordArchive == "" {
		return fmt.Errorf("record: need --out or --archive")
	}
	if flagRecordSteps <= 0 {
		return fmt.Errorf("record: --steps must be positive")
	}
	a, err := newApp(flagRecordSeed, cmd.Flags().Changed("seed"))
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := a.sim
	s.StartRecording(a.cfg.Sim.Seed)
	if flagRecordRealtime {
		err = s.RunPaced(ctx, uint64(flagRecordSteps))
	} else {
		err = s.RunSteps(ctx, flagRecordSteps)
	}
	if err != nil && ctx.Err() == nil {
		return err
	}
	if ctx.Err() != nil {
		a.log.Info("interrupted, keeping partial trace", zap.Uint64("steps", s.Steps()))
	}

	if err := s.StopRecording(flagRecordOut); err != nil {
		return fmt.Errorf("save trace: %w", err)
	}
	tr := s.Trace()
	if flagRecordArchive != "" {
		ar, err := a.openArchive(context.Background())
		if err != nil {
			return err
		}
		defer ar.Close()
		if err := ar.Save(context.Background(), flagRecordArchive, tr); err != nil {
			return fmt.Errorf("archive trace: %w", err)
		}
	}

	fmt.Printf("recorded %d frames (seed %d, final checksum %s)\n",
		len(tr.Frames), tr.Seed, replay.Checksum(replay.Snapshot(s.World())))
	return nil
}
