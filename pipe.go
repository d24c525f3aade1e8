package pipework

import (
	"encoding/json"
	"errors"

	"gopkg.in/yaml.v3"
)

type (
	// Pipe is one logical note of a rank. It always has at least one attack:
	// a dummy pipe has a single attack with an empty path, a borrowed pipe a
	// single attack whose path is a Reference, and a pipe with samples one or
	// more real attacks and zero or more releases. The attack list is never
	// empty, so "the first attack of pipe N" is always valid.
	Pipe struct {
		attacks  []Attack
		releases []Release
	}

	// PipeKind is the content state of a pipe. Transitions: Dummy to Samples
	// or Borrowed, and both back to Dummy with Clear. A pipe never holds
	// samples and a reference at the same time.
	PipeKind int

	// pipeData is the serialized form of a Pipe.
	pipeData struct {
		Attacks  []Attack  `yaml:",omitempty"`
		Releases []Release `yaml:",omitempty"`
	}
)

const (
	PipeDummy PipeKind = iota
	PipeSamples
	PipeBorrowed
)

var ErrNoAttacks = errors.New("pipe has no attacks")

func (k PipeKind) String() string {
	switch k {
	case PipeDummy:
		return "dummy"
	case PipeSamples:
		return "samples"
	case PipeBorrowed:
		return "borrowed"
	}
	return "unknown"
}

// NewDummyPipe returns a pipe holding only the empty placeholder attack.
func NewDummyPipe() Pipe {
	return Pipe{attacks: []Attack{{}}}
}

func (p *Pipe) Kind() PipeKind {
	if len(p.attacks) > 0 && IsReference(p.attacks[0].FullPath) {
		return PipeBorrowed
	}
	for i := range p.attacks {
		if !p.attacks[i].IsEmpty() {
			return PipeSamples
		}
	}
	return PipeDummy
}

func (p *Pipe) IsDummy() bool    { return p.Kind() == PipeDummy }
func (p *Pipe) IsBorrowed() bool { return p.Kind() == PipeBorrowed }

// Reference returns the pipe this pipe borrows its sound from.
func (p *Pipe) Reference() (Reference, bool) {
	if !p.IsBorrowed() {
		return Reference{}, false
	}
	ref, err := ParseReference(p.attacks[0].FullPath)
	return ref, err == nil
}

func (p *Pipe) NumAttacks() int  { return len(p.attacks) }
func (p *Pipe) NumReleases() int { return len(p.releases) }

// Attack returns the attack at index i for editing, or nil if i is out of
// range.
func (p *Pipe) Attack(i int) *Attack {
	if i < 0 || i >= len(p.attacks) {
		return nil
	}
	return &p.attacks[i]
}

func (p *Pipe) Release(i int) *Release {
	if i < 0 || i >= len(p.releases) {
		return nil
	}
	return &p.releases[i]
}

// Attacks returns a copy of the attacks in load order.
func (p *Pipe) Attacks() []Attack {
	return append([]Attack(nil), p.attacks...)
}

// Releases returns a copy of the releases in load order.
func (p *Pipe) Releases() []Release {
	return append([]Release(nil), p.releases...)
}

// AddAttack appends an attack. On a dummy or borrowed pipe the attack
// replaces the placeholder. Attacks without a path, or with a reference
// string as path, are refused; use Borrow for references.
func (p *Pipe) AddAttack(a Attack) bool {
	if a.IsEmpty() || IsReference(a.FullPath) {
		return false
	}
	switch p.Kind() {
	case PipeDummy, PipeBorrowed:
		p.attacks = []Attack{a}
	case PipeSamples:
		p.attacks = append(p.attacks, a)
	}
	return true
}

// AddRelease appends a release. Only a pipe with a real attack takes
// releases; dummy and borrowed pipes refuse them.
func (p *Pipe) AddRelease(r Release) bool {
	if r.FullPath == "" || p.Kind() != PipeSamples {
		return false
	}
	p.releases = append(p.releases, r)
	return true
}

// DeleteAttack removes the attack at index i. The last attack of a pipe
// cannot be deleted; false is returned in that case.
func (p *Pipe) DeleteAttack(i int) bool {
	if i < 0 || i >= len(p.attacks) || len(p.attacks) == 1 {
		return false
	}
	p.attacks = append(p.attacks[:i], p.attacks[i+1:]...)
	return true
}

func (p *Pipe) DeleteRelease(i int) bool {
	if i < 0 || i >= len(p.releases) {
		return false
	}
	p.releases = append(p.releases[:i], p.releases[i+1:]...)
	return true
}

// Clear returns the pipe to the dummy state.
func (p *Pipe) Clear() {
	p.attacks = []Attack{{}}
	p.releases = nil
}

// Borrow clears the pipe and makes it refer to ref.
func (p *Pipe) Borrow(ref Reference) {
	p.Clear()
	s := ref.String()
	p.attacks[0].FullPath = s
	p.attacks[0].FileName = s
}

func (p *Pipe) clearReleases() {
	p.releases = nil
}

// Copy makes a deep copy of a Pipe.
func (p *Pipe) Copy() Pipe {
	return Pipe{attacks: p.Attacks(), releases: p.Releases()}
}

func (p Pipe) MarshalYAML() (interface{}, error) {
	return pipeData{Attacks: p.attacks, Releases: p.releases}, nil
}

func (p *Pipe) UnmarshalYAML(node *yaml.Node) error {
	var d pipeData
	if err := node.Decode(&d); err != nil {
		return err
	}
	return p.fromData(d)
}

func (p Pipe) MarshalJSON() ([]byte, error) {
	return json.Marshal(pipeData{Attacks: p.attacks, Releases: p.releases})
}

func (p *Pipe) UnmarshalJSON(data []byte) error {
	var d pipeData
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	return p.fromData(d)
}

func (p *Pipe) fromData(d pipeData) error {
	if len(d.Attacks) == 0 {
		return ErrNoAttacks
	}
	for i, a := range d.Attacks {
		if IsReference(a.FullPath) && (i > 0 || len(d.Attacks) > 1 || len(d.Releases) > 0) {
			return errors.New("borrowed pipe cannot hold samples")
		}
		if a.IsEmpty() && (i > 0 || len(d.Attacks) > 1 || len(d.Releases) > 0) {
			return errors.New("pipe with samples has an attack without a path")
		}
	}
	p.attacks = d.Attacks
	p.releases = d.Releases
	return nil
}
