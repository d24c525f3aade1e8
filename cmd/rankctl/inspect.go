package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/organforge/pipework"
)

var inspectFormat string

func init() {
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "table", "table, yaml or json")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Show a rank and its pipes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rank, err := readRankFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch inspectFormat {
		case "yaml":
			return pipework.WriteRank(out, rank, ".yml")
		case "json":
			return pipework.WriteRank(out, rank, ".json")
		case "table":
			printRank(out, rank)
			return nil
		}
		return fmt.Errorf("unknown format %q", inspectFormat)
	},
}

func printRank(out io.Writer, rank *pipework.Rank) {
	fmt.Fprintf(out, "%q: %d pipes from MIDI note %d", rank.Name(), rank.NumberOfLogicalPipes(), rank.FirstMidiNoteNumber())
	if rank.IsPercussive() {
		fmt.Fprint(out, ", percussive")
	}
	if w := rank.Windchest(); w != nil {
		fmt.Fprintf(out, ", windchest %q", w.Name)
	}
	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "PIPE\tKIND\tATTACKS\tRELEASES\tSAMPLE")
	for i, p := range rank.Pipes() {
		sample := ""
		if !p.IsDummy() {
			sample = p.Attack(0).FileName
			if sample == "" {
				sample = p.Attack(0).FullPath
			}
		}
		fmt.Fprintf(tw, "%v\t%v\t%d\t%d\t%v\n", rank.PipeLabel(i), p.Kind(), p.NumAttacks(), p.NumReleases(), sample)
	}
	tw.Flush()
}
