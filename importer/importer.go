// Package importer fills the pipes of a rank from a folder of sample files.
//
// The folder layout is a naming convention:
//
//	root/
//	  036-C.wav ...         main attacks
//	  <attack prefix>*/     further attacks of the same pipes
//	  <release prefix>*/    releases, "rel500" holds releases for key presses
//	                        up to 500 ms
//	  <tremulant prefix>*/  the same layout again, sampled with the tremulant on
//
// Import is best effort: files that match no pipe and folders that cannot be
// read are counted in the Report and logged, and the rank is left valid.
package importer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/organforge/pipework"
)

type (
	// Mode selects what an import does with the rank.
	Mode int

	Options struct {
		// AttackPrefix names folders of further attacks; empty disables them.
		AttackPrefix string
		// ReleasePrefix names folders of releases; empty disables them.
		ReleasePrefix string
		// TremulantPrefix names the folder holding the tremulant samples;
		// empty disables it.
		TremulantPrefix string

		LoadOnlyOneAttack bool

		// LoadRelease pairs releases from the release folders with the pipes
		// and marks attacks to play their own release part.
		LoadRelease bool

		// ExtractKeyPressTime reads the max key press time of releases from
		// the number after the release prefix in the folder name.
		ExtractKeyPressTime bool

		Matcher Matcher

		// Extensions of sample files, with the dot. Case is ignored.
		Extensions []string

		// OdfRoot is the folder file names are made relative to; when empty
		// the import root is used.
		OdfRoot string

		Logger *zap.Logger
	}

	// Sample is one file the import assigns to a pipe.
	Sample struct {
		Pipe            int
		Path            string
		FileName        string
		Release         bool
		Tremulant       pipework.Tremulant
		MaxKeyPressTime pipework.Optional[int]
	}

	// Report summarizes an import.
	Report struct {
		Root     string
		Mode     Mode
		Attacks  int
		Releases int

		Unmatched      int
		UnmatchedFiles []string
		UnreadableDirs []string

		// KeyPressParseFailures counts release folders whose name had
		// something after the prefix that is not a number.
		KeyPressParseFailures int

		// Samples is the plan of the import, in the order it is applied.
		Samples []Sample
	}

	scanner struct {
		opts   Options
		mode   Mode
		w      Window
		perc   bool
		report *Report
		log    *zap.Logger
	}
)

const (
	// ModeImport clears the rank and loads it from scratch.
	ModeImport Mode = iota
	// ModeAdd adds the samples to the pipes, keeping what they have.
	ModeAdd
	// ModeAddTremulant adds the samples as tremulant samples.
	ModeAddTremulant
	// ModeAddReleases adds only the releases.
	ModeAddReleases
	// ModeScan only plans the import; the rank is not changed.
	ModeScan
)

var ErrNotDirectory = errors.New("import root is not a directory")

func (m Mode) String() string {
	switch m {
	case ModeImport:
		return "import"
	case ModeAdd:
		return "add"
	case ModeAddTremulant:
		return "add-tremulant"
	case ModeAddReleases:
		return "add-releases"
	case ModeScan:
		return "scan"
	}
	return "unknown"
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	for m := ModeImport; m <= ModeScan; m++ {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown import mode %q", s)
}

// DefaultOptions returns the options the editor starts with.
func DefaultOptions() Options {
	return Options{
		ReleasePrefix:       pipework.DefaultReleasePrefix,
		TremulantPrefix:     "trem",
		LoadRelease:         true,
		ExtractKeyPressTime: true,
		Matcher:             MidiNumberMatcher{},
		Extensions:          []string{".wav", ".wv"},
	}
}

// Import clears every pipe of rank and fills the pipes from root.
func Import(rank *pipework.Rank, root string, opts Options) (Report, error) {
	return Run(rank, root, ModeImport, opts)
}

// Add adds the samples found under root to the pipes of rank, after the
// samples they already have.
func Add(rank *pipework.Rank, root string, opts Options) (Report, error) {
	return Run(rank, root, ModeAdd, opts)
}

// AddTremulant adds the samples found under root as the tremulant samples
// of the pipes.
func AddTremulant(rank *pipework.Rank, root string, opts Options) (Report, error) {
	return Run(rank, root, ModeAddTremulant, opts)
}

// AddReleases adds only the releases found under root.
func AddReleases(rank *pipework.Rank, root string, opts Options) (Report, error) {
	return Run(rank, root, ModeAddReleases, opts)
}

// Scan reports what Import would do without changing rank.
func Scan(rank *pipework.Rank, root string, opts Options) (Report, error) {
	return Run(rank, root, ModeScan, opts)
}

// Run imports from root in the given mode. The only error is a root that is
// not a readable directory; everything else ends up in the report.
func Run(rank *pipework.Rank, root string, mode Mode, opts Options) (Report, error) {
	opts = opts.withDefaults()
	report := Report{Root: root, Mode: mode}
	info, err := os.Stat(root)
	if err != nil {
		return report, fmt.Errorf("%w: %v", ErrNotDirectory, err)
	}
	if !info.IsDir() {
		return report, fmt.Errorf("%w: %v", ErrNotDirectory, root)
	}
	s := &scanner{
		opts:   opts,
		mode:   mode,
		w:      Window{FirstNote: rank.FirstMidiNoteNumber(), Pipes: rank.NumberOfLogicalPipes()},
		perc:   rank.IsPercussive(),
		report: &report,
		log:    opts.Logger.With(zap.String("root", root), zap.Stringer("mode", mode)),
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return report, fmt.Errorf("could not read import root: %w", err)
	}
	switch mode {
	case ModeAddTremulant:
		s.scanLayout(root, entries, pipework.TremulantOn)
	default:
		trem := s.tremulantDirs(entries)
		state := pipework.TremulantAny
		if len(trem) > 0 {
			state = pipework.TremulantOff
		}
		s.scanLayout(root, entries, state)
		for _, name := range trem {
			dir := filepath.Join(root, name)
			sub, err := os.ReadDir(dir)
			if err != nil {
				s.unreadable(dir, err)
				continue
			}
			s.scanLayout(dir, sub, pipework.TremulantOn)
		}
	}
	if mode != ModeScan {
		s.apply(rank)
		rank.SetPipesRootPath(root)
	}
	s.log.Info("import finished",
		zap.Int("attacks", report.Attacks),
		zap.Int("releases", report.Releases),
		zap.Int("unmatched", report.Unmatched),
		zap.Int("unreadableDirs", len(report.UnreadableDirs)))
	return report, nil
}

func (o Options) withDefaults() Options {
	if o.Matcher == nil {
		o.Matcher = MidiNumberMatcher{}
	}
	if len(o.Extensions) == 0 {
		o.Extensions = DefaultOptions().Extensions
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

func (s *scanner) tremulantDirs(entries []fs.DirEntry) []string {
	if s.opts.TremulantPrefix == "" {
		return nil
	}
	return prefixedDirs(s.report.Root, entries, s.opts.TremulantPrefix)
}

// scanLayout plans the samples of one layout folder: the root itself or a
// tremulant folder.
func (s *scanner) scanLayout(dir string, entries []fs.DirEntry, trem pipework.Tremulant) {
	if s.mode != ModeAddReleases {
		s.scanAttacks(dir, entries, trem)
		if !s.opts.LoadOnlyOneAttack && s.opts.AttackPrefix != "" {
			for _, name := range prefixedDirs(dir, entries, s.opts.AttackPrefix) {
				if s.isTremulantDir(name) {
					continue
				}
				s.scanFolder(filepath.Join(dir, name), false, trem, pipework.None[int]())
			}
		}
	}
	if s.perc || s.opts.ReleasePrefix == "" {
		return
	}
	if !s.opts.LoadRelease && s.mode != ModeAddReleases {
		return
	}
	for _, name := range prefixedDirs(dir, entries, s.opts.ReleasePrefix) {
		if s.isTremulantDir(name) {
			continue
		}
		s.scanFolder(filepath.Join(dir, name), true, trem, s.keyPressTime(name))
	}
}

func (s *scanner) isTremulantDir(name string) bool {
	return s.opts.TremulantPrefix != "" && hasPrefixFold(name, s.opts.TremulantPrefix)
}

func (s *scanner) scanAttacks(dir string, entries []fs.DirEntry, trem pipework.Tremulant) {
	s.match(dir, s.sampleFiles(entries), false, trem, pipework.None[int]())
}

func (s *scanner) scanFolder(dir string, release bool, trem pipework.Tremulant, keyPress pipework.Optional[int]) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.unreadable(dir, err)
		return
	}
	s.match(dir, s.sampleFiles(entries), release, trem, keyPress)
}

// match assigns the files of one folder to pipes. When two files map to the
// same pipe the first in natural order wins.
func (s *scanner) match(dir string, files []string, release bool, trem pipework.Tremulant, keyPress pipework.Optional[int]) {
	taken := make(map[int]bool, len(files))
	for pos, name := range files {
		path := filepath.Join(dir, name)
		pipe, ok := s.opts.Matcher.Match(name, pos, s.w)
		if !ok || taken[pipe] {
			s.unmatched(path)
			continue
		}
		taken[pipe] = true
		s.report.Samples = append(s.report.Samples, Sample{
			Pipe:            pipe,
			Path:            path,
			FileName:        s.relative(path),
			Release:         release,
			Tremulant:       trem,
			MaxKeyPressTime: keyPress,
		})
		if release {
			s.report.Releases++
		} else {
			s.report.Attacks++
		}
	}
}

func (s *scanner) keyPressTime(folder string) pipework.Optional[int] {
	if !s.opts.ExtractKeyPressTime {
		return pipework.None[int]()
	}
	ms, err := pipework.KeyPressTimeFromFolder(folder, s.opts.ReleasePrefix)
	if err != nil {
		s.report.KeyPressParseFailures++
		s.log.Warn("release folder has no key press time", zap.String("folder", folder), zap.Error(err))
	}
	return ms
}

func (s *scanner) sampleFiles(entries []fs.DirEntry) []string {
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if slices.ContainsFunc(s.opts.Extensions, func(x string) bool { return strings.ToLower(x) == ext }) {
			files = append(files, e.Name())
		}
	}
	slices.SortFunc(files, naturalCompare)
	return files
}

func (s *scanner) relative(path string) string {
	base := s.opts.OdfRoot
	if base == "" {
		base = s.report.Root
	}
	if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func (s *scanner) unmatched(path string) {
	s.report.Unmatched++
	s.report.UnmatchedFiles = append(s.report.UnmatchedFiles, path)
	s.log.Warn("sample matches no pipe", zap.String("file", path))
}

func (s *scanner) unreadable(dir string, err error) {
	s.report.UnreadableDirs = append(s.report.UnreadableDirs, dir)
	s.log.Warn("could not read folder", zap.String("dir", dir), zap.Error(err))
}

// apply writes the planned samples into rank. Samples a pipe refuses, such
// as a release for a borrowed pipe, are moved to the unmatched files.
func (s *scanner) apply(rank *pipework.Rank) {
	if s.mode == ModeImport {
		rank.ClearAllPipes()
	}
	loadRelease := s.opts.LoadRelease && !s.perc
	for _, smp := range s.report.Samples {
		p := rank.Pipe(smp.Pipe)
		if p == nil {
			continue
		}
		var ok bool
		if smp.Release {
			r := pipework.NewRelease(smp.Path, smp.FileName)
			r.IsTremulant = smp.Tremulant
			r.MaxKeyPressTime = smp.MaxKeyPressTime
			if ok = p.AddRelease(r); !ok {
				s.report.Releases--
			}
		} else {
			a := pipework.NewAttack(smp.Path, smp.FileName)
			a.IsTremulant = smp.Tremulant
			a.LoadRelease = loadRelease
			if ok = p.AddAttack(a); !ok {
				s.report.Attacks--
			}
		}
		if !ok {
			s.unmatched(smp.Path)
		}
	}
}

// prefixedDirs returns the subfolders of dir whose name starts with prefix,
// in natural order. Case is ignored. Symbolic links are followed; a link
// whose target is missing is kept so that reading it reports the folder.
func prefixedDirs(dir string, entries []fs.DirEntry, prefix string) []string {
	var dirs []string
	for _, e := range entries {
		if isDir(dir, e) && hasPrefixFold(e.Name(), prefix) {
			dirs = append(dirs, e.Name())
		}
	}
	slices.SortFunc(dirs, naturalCompare)
	return dirs
}

func isDir(dir string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.IsDir()
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err != nil || info.IsDir()
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func naturalCompare(a, b string) int {
	switch {
	case naturalLess(a, b):
		return -1
	case naturalLess(b, a):
		return 1
	}
	return 0
}
