package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/organforge/pipework"
	"github.com/organforge/pipework/borrow"
	"github.com/organforge/pipework/session"
)

var (
	organPath   string
	borrowReq   borrow.Request
	errBadPipes = errors.New("rank has references to missing pipes")
)

func init() {
	for _, c := range []*cobra.Command{borrowCmd, checkCmd} {
		c.Flags().StringVar(&organPath, "organ", "", "organ file listing the manuals and stops (required)")
		c.MarkFlagRequired("organ")
	}
	f := borrowCmd.Flags()
	f.IntVar(&borrowReq.Manual, "manual", 1, "manual of the stop to borrow from, 1 for the first manual in the organ file")
	f.IntVar(&borrowReq.Stop, "stop", 1, "stop to borrow from, counted from 1")
	f.IntVar(&borrowReq.SourcePipe, "from", 1, "first pipe of the stop to borrow, counted from 1")
	f.IntVar(&borrowReq.TargetPipe, "to", 1, "first pipe of the rank to rewrite, counted from 1")
	f.IntVar(&borrowReq.Following, "following", 0, "how many further pipes to borrow")

	rootCmd.AddCommand(borrowCmd, checkCmd)
}

var borrowCmd = &cobra.Command{
	Use:   "borrow FILE",
	Short: "Make pipes play the samples of another stop",
	Long: `Rewrites pipes of the rank in FILE to reference pipes of a stop. The run
stops at the end of the stop or of the rank, whichever comes first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		organ, err := loadOrgan(organPath)
		if err != nil {
			return err
		}
		req := borrowReq
		req.Manual--
		req.Stop--
		req.SourcePipe--
		req.TargetPipe--
		target, _ := filepath.Abs(args[0])
		return editRank(cmd, args[0], func(s *session.Session) error {
			s.View(func(r *pipework.Rank) { attachRank(organ, target, r) })
			res, err := s.Borrow(organ, req)
			if err != nil {
				return err
			}
			log.Info("pipes borrowed", zap.Int("first", res.First+1), zap.Int("count", res.Count()))
			for i, ref := range res.References {
				fmt.Fprintf(cmd.OutOrStdout(), "pipe %03d -> %v\n", res.First+i+1, ref)
			}
			return nil
		})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Check that the borrowed pipes of a rank exist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		organ, err := loadOrgan(organPath)
		if err != nil {
			return err
		}
		rank, err := readRankFile(args[0])
		if err != nil {
			return err
		}
		bad := borrow.Check(organ, rank)
		if len(bad) == 0 {
			return nil
		}
		idx := make([]int, 0, len(bad))
		for i := range bad {
			idx = append(idx, i)
		}
		sort.Ints(idx)
		for _, i := range idx {
			fmt.Fprintf(cmd.OutOrStdout(), "%v: %v\n", rank.PipeLabel(i), bad[i])
		}
		return fmt.Errorf("%w: %d pipes", errBadPipes, len(bad))
	},
}

// loadOrgan reads the organ file and the rank files its stops name. A rank
// file that cannot be read leaves the declared pipe count in use.
func loadOrgan(path string) (*pipework.Organ, error) {
	organ, err := readOrganFile(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	for _, m := range organ.Manuals {
		for _, st := range m.Stops {
			if st.RankFile == "" {
				continue
			}
			p := st.RankFile
			if !filepath.IsAbs(p) {
				p = filepath.Join(dir, p)
			}
			rank, err := readRankFile(p)
			if err != nil {
				log.Warn("could not load stop rank", zap.String("stop", st.Name), zap.Error(err))
				continue
			}
			st.Rank = rank
		}
	}
	return organ, nil
}

// attachRank replaces the rank of the stop whose rank file is path with
// rank, so that borrowing from the rank itself can be caught.
func attachRank(organ *pipework.Organ, path string, rank *pipework.Rank) {
	dir, _ := filepath.Abs(filepath.Dir(organPath))
	for _, m := range organ.Manuals {
		for _, st := range m.Stops {
			if st.RankFile == "" {
				continue
			}
			p := st.RankFile
			if !filepath.IsAbs(p) {
				p = filepath.Join(dir, p)
			}
			if filepath.Clean(p) == path {
				st.Rank = rank
			}
		}
	}
}
