package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/organforge/pipework"
	"github.com/organforge/pipework/odf"
)

var (
	exportOrdinal   int
	exportWindchest int
	exportTemplates string

	extractRank int
	extractRoot string
)

func init() {
	f := exportCmd.Flags()
	f.IntVar(&exportOrdinal, "ordinal", 1, "section number of the first rank")
	f.IntVar(&exportWindchest, "windchest", 0, "windchest group number; 0 takes it from --organ or leaves it out")
	f.StringVar(&exportTemplates, "templates", "", "use the templates in this directory instead of the builtin ones")
	f.StringVar(&organPath, "organ", "", "organ file whose windchest groups number the rank windchests")

	extractCmd.Flags().IntVar(&extractRank, "rank", 0, "section number of the rank to extract; 0 lists the ranks")
	extractCmd.Flags().StringVar(&extractRoot, "root", "", "folder sample paths are relative to; defaults to the folder of ODF")

	rootCmd.AddCommand(exportCmd, extractCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export FILE...",
	Short: "Write ranks as definition file sections",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var w *odf.Writer
		var err error
		if exportTemplates != "" {
			w, err = odf.NewFromTemplates(exportTemplates)
		} else {
			w, err = odf.New()
		}
		if err != nil {
			return err
		}
		var organ *pipework.Organ
		if organPath != "" {
			if organ, err = readOrganFile(organPath); err != nil {
				return err
			}
		}
		var buf bytes.Buffer
		for i, path := range args {
			rank, err := readRankFile(path)
			if err != nil {
				return err
			}
			windchest := exportWindchest
			if windchest == 0 && organ != nil && rank.Windchest() != nil {
				windchest = organ.WindchestIndex(organ.Windchest(rank.Windchest().Name)) + 1
			}
			if i > 0 {
				buf.WriteString("\n")
			}
			if err := w.Rank(&buf, rank, exportOrdinal+i, windchest); err != nil {
				return fmt.Errorf("%v: %w", path, err)
			}
		}
		return output(cmd.OutOrStdout(), buf.Bytes())
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract ODF",
	Short: "Read a rank section of a definition file into a rank file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := extractRoot
		if root == "" {
			root = filepath.Dir(args[0])
		}
		r, err := odf.Open(args[0], root)
		if err != nil {
			return err
		}
		if extractRank == 0 {
			for _, n := range r.Ranks() {
				rank, err := r.Rank(n)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rank%v %q %d pipes\n", odf.Ordinal(n), rank.Name(), rank.NumberOfLogicalPipes())
			}
			return nil
		}
		rank, err := r.Rank(extractRank)
		if err != nil {
			return err
		}
		if outputPath == "" {
			return pipework.WriteRank(cmd.OutOrStdout(), rank, "")
		}
		return writeRankFile(outputPath, rank)
	},
}

// output writes contents to --output, or to out when it is not given.
func output(out io.Writer, contents []byte) error {
	if outputPath == "" {
		_, err := out.Write(contents)
		return err
	}
	if original, err := os.ReadFile(outputPath); err == nil && bytes.Equal(original, contents) {
		return nil
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not read %v: %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, contents, 0o644); err != nil {
		return fmt.Errorf("could not write %v: %w", outputPath, err)
	}
	return nil
}
