package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage archived traces",
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived traces",
	Long: `List every trace in the configured archive, ordered by name.

Examples:
  novasim archive list
  novasim --config prod.toml archive list`,
	Args: cobra.NoArgs,
	RunE: runArchiveList,
}

func init() {
	archiveCmd.AddCommand(archiveListCmd)
}

func runArchiveList(_ *cobra.Command, _ []string) error {
	a, err := newApp(0, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ar, err := a.openArchive(ctx)
	if err != nil {
		return err
	}
	defer ar.Close()

	infos, err := ar.List(ctx)
	if err != nil {
		return fmt.Errorf("list traces: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No traces archived yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSEED\tVERSION\tFRAMES\tCHECKSUM\tCREATED")
	for _, in := range infos {
		sum := in.FinalChecksum
		if len(sum) > 12 {
			sum = sum[:12]
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\n",
			in.Name, in.Seed, in.Version, in.FrameCount, sum, in.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
