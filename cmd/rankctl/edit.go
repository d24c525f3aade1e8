package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/organforge/pipework"
	"github.com/organforge/pipework/session"
)

var (
	newName      string
	newPipes     int
	newFirstNote int
	newForce     bool
)

func init() {
	newCmd.Flags().StringVar(&newName, "name", "", "rank name")
	newCmd.Flags().IntVar(&newPipes, "pipes", 61, "number of logical pipes")
	newCmd.Flags().IntVar(&newFirstNote, "first-note", 36, "MIDI note of the first pipe")
	newCmd.Flags().BoolVar(&newForce, "force", false, "overwrite an existing file")

	setFlags := setCmd.Flags()
	setFlags.String("name", "", "rank name")
	setFlags.String("windchest", "", "windchest group name")
	setFlags.Int("harmonic", 8, "harmonic number")
	setFlags.Float64("pitch-correction", 0, "pitch correction in cents")
	setFlags.Bool("percussive", false, "percussive rank; deletes all releases")
	setFlags.Bool("retuning", true, "rank accepts retuning")
	setFlags.Float64("min-velocity-volume", 100, "volume at the lowest velocity")
	setFlags.Float64("max-velocity-volume", 100, "volume at the highest velocity")
	setFlags.Float64("amplitude", 100, "amplitude level")
	setFlags.Float64("gain", 0, "gain in dB")
	setFlags.Float64("pitch-tuning", 0, "pitch tuning in cents")
	setFlags.Int("tracker-delay", 0, "tracker delay in ms")

	rootCmd.AddCommand(newCmd, resizeCmd, shiftCmd, clearCmd, setCmd)
}

var newCmd = &cobra.Command{
	Use:   "new FILE",
	Short: "Create a rank file with dummy pipes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err == nil && !newForce {
			return fmt.Errorf("%v exists, use --force to overwrite", path)
		}
		rank := pipework.NewRank(newName)
		rank.SetNumberOfLogicalPipes(newPipes)
		rank.SetFirstMidiNoteNumber(newFirstNote)
		return writeRankFile(path, rank)
	},
}

var resizeCmd = &cobra.Command{
	Use:   "resize FILE PIPES",
	Short: "Change the number of logical pipes",
	Long:  `Growing adds dummy pipes at the top. Shrinking deletes the top pipes and asks first.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid pipe count %q", args[1])
		}
		return editRank(cmd, args[0], func(s *session.Session) error {
			s.LogicalPipes().Int().Set(n)
			return nil
		})
	},
}

var shiftCmd = &cobra.Command{
	Use:   "shift FILE NOTE",
	Short: "Change the MIDI note of the first pipe",
	Long: `The pipes keep sounding the notes they sounded before. Pipes shifted out
of the rank are deleted, so a rank with samples asks first.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid MIDI note %q", args[1])
		}
		return editRank(cmd, args[0], func(s *session.Session) error {
			s.FirstMidiNote().Int().Set(note)
			return nil
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear FILE [PIPE...]",
	Short: "Reset pipes to dummy pipes",
	Long:  `Without pipe numbers every pipe is cleared after asking. Pipe numbers start from 1.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRank(cmd, args[0], func(s *session.Session) error {
			if len(args) == 1 {
				s.ClearAllPipes()
				return nil
			}
			var errs []error
			for _, a := range args[1:] {
				n, err := strconv.Atoi(a)
				if err != nil {
					errs = append(errs, fmt.Errorf("invalid pipe number %q", a))
					continue
				}
				s.ClearPipeAt(n - 1)
			}
			return errors.Join(errs...)
		})
	},
}

var setCmd = &cobra.Command{
	Use:   "set FILE",
	Short: "Set rank attributes",
	Long:  `Only the attributes given as flags change. Values out of range are clamped.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		return editRank(cmd, args[0], func(s *session.Session) error {
			if f.Changed("percussive") {
				v, _ := f.GetBool("percussive")
				s.SetPercussive(v)
			}
			if f.Changed("harmonic") {
				v, _ := f.GetInt("harmonic")
				s.HarmonicNumber().Int().Set(v)
			}
			if f.Changed("tracker-delay") {
				v, _ := f.GetInt("tracker-delay")
				s.TrackerDelay().Int().Set(v)
			}
			floats := map[string]func(*pipework.Rank, float64){
				"pitch-correction":    (*pipework.Rank).SetPitchCorrection,
				"min-velocity-volume": (*pipework.Rank).SetMinVelocityVolume,
				"max-velocity-volume": (*pipework.Rank).SetMaxVelocityVolume,
				"amplitude":           (*pipework.Rank).SetAmplitudeLevel,
				"gain":                (*pipework.Rank).SetGain,
				"pitch-tuning":        (*pipework.Rank).SetPitchTuning,
			}
			for name, set := range floats {
				if f.Changed(name) {
					v, _ := f.GetFloat64(name)
					s.Edit("Set."+name, 0, func(r *pipework.Rank) { set(r, v) })
				}
			}
			if f.Changed("name") {
				v, _ := f.GetString("name")
				s.Edit("Set.name", 0, func(r *pipework.Rank) { r.SetName(v) })
			}
			if f.Changed("windchest") {
				v, _ := f.GetString("windchest")
				s.Edit("Set.windchest", 0, func(r *pipework.Rank) {
					if v == "" {
						r.SetWindchest(nil)
					} else {
						r.SetWindchest(&pipework.WindchestGroup{Name: v})
					}
				})
			}
			if f.Changed("retuning") {
				v, _ := f.GetBool("retuning")
				s.Edit("Set.retuning", 0, func(r *pipework.Rank) { r.SetAcceptsRetuning(v) })
			}
			return nil
		})
	},
}
