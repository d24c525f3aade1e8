package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/organforge/pipework/importer"
	"github.com/organforge/pipework/session"
)

var (
	importMode       string
	importConvention string
	importOdfRoot    string
	importVerbose    bool
)

func init() {
	f := importCmd.Flags()
	f.StringVarP(&importMode, "mode", "m", "import", "import, add, add-tremulant, add-releases or scan")
	f.StringVar(&importConvention, "convention", "", "naming convention to use; see the conventions command")
	f.StringVar(&importOdfRoot, "odf-root", "", "folder file names are made relative to; defaults to ROOT")
	f.BoolVarP(&importVerbose, "verbose", "v", false, "list every sample and unmatched file")
	f.String("attack-prefix", "", "prefix of folders with further attacks")
	f.String("release-prefix", "", "prefix of release folders")
	f.String("tremulant-prefix", "", "prefix of the tremulant folder")
	f.Bool("one-attack", false, "load only one attack per pipe")
	f.Bool("load-release", true, "load releases and let attacks play their release part")
	f.Bool("key-press-time", true, "read the max key press time from release folder names")
	f.String("matcher", "", "how file names map to pipes: midi, ordinal or position")
	f.StringSlice("ext", nil, "sample file extensions")

	rootCmd.AddCommand(importCmd, conventionsCmd)
}

var importCmd = &cobra.Command{
	Use:   "import FILE ROOT",
	Short: "Load pipe samples from a folder",
	Long: `Assigns the sample files in ROOT to the pipes of the rank in FILE.

Modes:
  import         clear the rank and load it from scratch (asks if the rank has samples)
  add            add the samples to the pipes, keeping what they have
  add-tremulant  add the samples as tremulant samples
  add-releases   add only the releases
  scan           only report what an import would do`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := importer.ParseMode(importMode)
		if err != nil {
			return err
		}
		opts, err := importOptions(cmd)
		if err != nil {
			return err
		}
		root := args[1]
		return editRank(cmd, args[0], func(s *session.Session) error {
			rep, err := s.Import(root, mode, opts)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), rep, importVerbose)
			return nil
		})
	},
}

var conventionsCmd = &cobra.Command{
	Use:   "conventions",
	Short: "List the naming conventions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, c := range importer.LoadConventions(cfg.ConventionDir) {
			origin := "builtin"
			if c.User {
				origin = "user"
			}
			fmt.Fprintf(out, "%-12s %-8s matcher=%v attack=%q release=%q tremulant=%q\n",
				c.Name, origin, c.Matcher, c.AttackPrefix, c.ReleasePrefix, c.TremulantPrefix)
		}
		return nil
	},
}

// importOptions starts from the configuration and applies the flags given.
func importOptions(cmd *cobra.Command) (importer.Options, error) {
	if importConvention != "" {
		cfg.Convention = importConvention
	}
	opts, err := cfg.ImportOptions()
	if err != nil {
		return opts, err
	}
	f := cmd.Flags()
	for name, dst := range map[string]*string{
		"attack-prefix":    &opts.AttackPrefix,
		"release-prefix":   &opts.ReleasePrefix,
		"tremulant-prefix": &opts.TremulantPrefix,
	} {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	for name, dst := range map[string]*bool{
		"one-attack":     &opts.LoadOnlyOneAttack,
		"load-release":   &opts.LoadRelease,
		"key-press-time": &opts.ExtractKeyPressTime,
	} {
		if f.Changed(name) {
			*dst, _ = f.GetBool(name)
		}
	}
	if f.Changed("matcher") {
		name, _ := f.GetString("matcher")
		if opts.Matcher, err = importer.MatcherByName(name); err != nil {
			return opts, err
		}
	}
	if f.Changed("ext") {
		opts.Extensions, _ = f.GetStringSlice("ext")
	}
	opts.OdfRoot = importOdfRoot
	opts.Logger = log.With(zap.String("cmd", "import"))
	return opts, nil
}

func printReport(out io.Writer, rep importer.Report, verbose bool) {
	fmt.Fprintf(out, "%v %v: %d attacks, %d releases, %d unmatched\n", rep.Mode, rep.Root, rep.Attacks, rep.Releases, rep.Unmatched)
	if rep.KeyPressParseFailures > 0 {
		fmt.Fprintf(out, "%d release folders had no readable key press time\n", rep.KeyPressParseFailures)
	}
	for _, d := range rep.UnreadableDirs {
		fmt.Fprintf(out, "unreadable: %v\n", d)
	}
	if !verbose {
		return
	}
	for _, smp := range rep.Samples {
		kind := "attack"
		if smp.Release {
			kind = "release"
		}
		fmt.Fprintf(out, "  pipe %03d %-7s %-4v %v\n", smp.Pipe+1, kind, smp.Tremulant, smp.FileName)
	}
	for _, f := range rep.UnmatchedFiles {
		fmt.Fprintf(out, "  unmatched %v\n", f)
	}
}
