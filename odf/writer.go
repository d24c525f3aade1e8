package odf

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig"

	"github.com/organforge/pipework"
)

//go:embed templates/*
var templateFS embed.FS

type (
	// Writer renders ranks through the "rank" template.
	Writer struct {
		Template *template.Template
	}

	rankMacros struct {
		Ordinal   int
		Windchest int
		Rank      *pipework.Rank
		Pipes     []pipeMacros
	}

	pipeMacros struct {
		Key      string
		Label    string
		Path     string
		Samples  bool
		First    *pipework.Attack
		Attacks  []attackMacros
		Releases []releaseMacros
	}

	attackMacros struct {
		Key    string
		Path   string
		Attack *pipework.Attack
	}

	releaseMacros struct {
		Key     string
		Path    string
		Release *pipework.Release
	}
)

var funcs = template.FuncMap{
	"ord":      Ordinal,
	"yn":       Bool,
	"sentinel": Sentinel,
}

// New returns a writer using the builtin templates.
func New() (*Writer, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf(`could not create templates: %v`, err)
	}
	return &Writer{Template: tmpl}, nil
}

// NewFromTemplates returns a writer using the templates in a directory. The
// directory must define a "rank" template.
func NewFromTemplates(templateDirectory string) (*Writer, error) {
	globPtrn := filepath.Join(templateDirectory, "*.tmpl")
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).Funcs(funcs).ParseGlob(globPtrn)
	if err != nil {
		return nil, fmt.Errorf(`could not create template based on directory "%v": %v`, templateDirectory, err)
	}
	return &Writer{Template: tmpl}, nil
}

// Rank writes rank as section RankNNN, NNN being ordinal. windchest is the
// ordinal of the rank's windchest group; 0 leaves the key out.
func (w *Writer) Rank(out io.Writer, rank *pipework.Rank, ordinal, windchest int) error {
	data, err := newRankMacros(rank, ordinal, windchest)
	if err != nil {
		return err
	}
	if err := w.Template.ExecuteTemplate(out, "rank", data); err != nil {
		return fmt.Errorf(`could not execute template "rank": %v`, err)
	}
	return nil
}

// WriteRank writes rank with the builtin templates.
func WriteRank(out io.Writer, rank *pipework.Rank, ordinal, windchest int) error {
	w, err := New()
	if err != nil {
		return err
	}
	return w.Rank(out, rank, ordinal, windchest)
}

// ErrNoSamplePath is returned for a sample of a pipe that has no path.
var ErrNoSamplePath = errors.New("sample has no path")

func newRankMacros(rank *pipework.Rank, ordinal, windchest int) (rankMacros, error) {
	m := rankMacros{Ordinal: ordinal, Windchest: windchest, Rank: rank}
	for i, p := range rank.Pipes() {
		pm := pipeMacros{Key: pipeKey(i), Label: rank.PipeLabel(i)}
		switch p.Kind() {
		case pipework.PipeDummy:
			pm.Path = Dummy
		case pipework.PipeBorrowed:
			pm.Path = p.Attack(0).FullPath
		case pipework.PipeSamples:
			pm.Samples = true
			pm.First = p.Attack(0)
			pm.Path = samplePath(pm.First.FileName, pm.First.FullPath)
			if pm.Path == "" {
				return m, fmt.Errorf("%w: %v first attack", ErrNoSamplePath, pm.Label)
			}
			for a := 1; a < p.NumAttacks(); a++ {
				atk := p.Attack(a)
				pm.Attacks = append(pm.Attacks, attackMacros{
					Key:    pm.Key + "Attack" + Ordinal(a),
					Path:   samplePath(atk.FileName, atk.FullPath),
					Attack: atk,
				})
			}
			for r := 0; r < p.NumReleases(); r++ {
				rel := p.Release(r)
				pm.Releases = append(pm.Releases, releaseMacros{
					Key:     pm.Key + "Release" + Ordinal(r+1),
					Path:    samplePath(rel.FileName, rel.FullPath),
					Release: rel,
				})
			}
		}
		m.Pipes = append(m.Pipes, pm)
	}
	return m, nil
}

func samplePath(fileName, fullPath string) string {
	if fileName == "" {
		fileName = fullPath
	}
	return FixSeparator(filepath.ToSlash(fileName))
}
