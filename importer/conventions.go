package importer

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

//go:embed conventions/*
var conventionFS embed.FS

type (
	// Convention is a named set of import options, stored as a YAML file.
	Convention struct {
		Name                string
		AttackPrefix        string
		ReleasePrefix       string
		TremulantPrefix     string
		LoadOnlyOneAttack   bool
		LoadRelease         bool
		ExtractKeyPressTime bool
		Matcher             string
		Extensions          []string

		User bool `yaml:"-"`
	}

	Conventions []Convention
)

// LoadConventions returns the builtin conventions and the ones found in
// userDir, sorted by name. A user convention replaces a builtin one of the
// same name. Files that do not parse are skipped.
func LoadConventions(userDir string) Conventions {
	byName := map[string]Convention{}
	loadConventionsFromFs(conventionFS, "conventions", false, byName)
	if userDir != "" {
		if info, err := os.Stat(userDir); err == nil && info.IsDir() {
			loadConventionsFromFs(os.DirFS(userDir), ".", true, byName)
		}
	}
	ret := make(Conventions, 0, len(byName))
	for _, c := range byName {
		ret = append(ret, c)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret
}

// UserConventionDir is where user conventions live by default.
func UserConventionDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "pipework", "conventions")
}

func loadConventionsFromFs(fsys fs.FS, root string, user bool, byName map[string]Convention) {
	fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(path); ext != ".yml" && ext != ".yaml" {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil
		}
		var c Convention
		if yaml.UnmarshalStrict(data, &c) != nil {
			return nil
		}
		if c.Name == "" {
			base := filepath.Base(path)
			c.Name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		c.User = user
		byName[c.Name] = c
		return nil
	})
}

// Find returns the convention called name.
func (c Conventions) Find(name string) (Convention, bool) {
	for _, v := range c {
		if v.Name == name {
			return v, true
		}
	}
	return Convention{}, false
}

// Options turns the convention into import options.
func (c Convention) Options() (Options, error) {
	m, err := MatcherByName(c.Matcher)
	if err != nil {
		return Options{}, fmt.Errorf("convention %v: %w", c.Name, err)
	}
	return Options{
		AttackPrefix:        c.AttackPrefix,
		ReleasePrefix:       c.ReleasePrefix,
		TremulantPrefix:     c.TremulantPrefix,
		LoadOnlyOneAttack:   c.LoadOnlyOneAttack,
		LoadRelease:         c.LoadRelease,
		ExtractKeyPressTime: c.ExtractKeyPressTime,
		Matcher:             m,
		Extensions:          append([]string(nil), c.Extensions...),
	}, nil
}
