package pipework

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// rankData is the serialized form of a Rank.
type rankData struct {
	Name              string  `yaml:",omitempty"`
	Windchest         string  `yaml:",omitempty"`
	FirstMidiNote     int
	HarmonicNumber    int
	PitchCorrection   float64 `yaml:",omitempty"`
	Percussive        bool    `yaml:",omitempty"`
	AcceptsRetuning   bool
	MinVelocityVolume float64
	MaxVelocityVolume float64
	AmplitudeLevel    float64
	Gain              float64 `yaml:",omitempty"`
	PitchTuning       float64 `yaml:",omitempty"`
	TrackerDelay      int     `yaml:",omitempty"`
	PipesRootPath     string  `yaml:",omitempty"`
	Pipes             []Pipe
}

var errNoPipes = errors.New("rank has no pipes")

func (r *Rank) data() rankData {
	d := rankData{
		Name:              r.name,
		FirstMidiNote:     r.firstMidiNote,
		HarmonicNumber:    r.harmonicNumber,
		PitchCorrection:   r.pitchCorrection,
		Percussive:        r.percussive,
		AcceptsRetuning:   r.acceptsRetuning,
		MinVelocityVolume: r.minVelocityVolume,
		MaxVelocityVolume: r.maxVelocityVolume,
		AmplitudeLevel:    r.amplitudeLevel,
		Gain:              r.gain,
		PitchTuning:       r.pitchTuning,
		TrackerDelay:      r.trackerDelay,
		PipesRootPath:     r.pipesRootPath,
		Pipes:             r.pipes,
	}
	if r.windchest != nil {
		d.Windchest = r.windchest.Name
	}
	return d
}

// fromData loads d through the setters, so out of range values in a file
// are clamped like any other edit.
func (r *Rank) fromData(d rankData) error {
	if len(d.Pipes) == 0 {
		return errNoPipes
	}
	if len(d.Pipes) > MaxLogicalPipes {
		return fmt.Errorf("rank has %d pipes, at most %d allowed", len(d.Pipes), MaxLogicalPipes)
	}
	n := NewRank(d.Name)
	n.pipes = d.Pipes
	n.firstMidiNote = midiNoteRange.Clamp(d.FirstMidiNote)
	n.SetHarmonicNumber(d.HarmonicNumber)
	n.SetPitchCorrection(d.PitchCorrection)
	n.SetPercussive(d.Percussive)
	n.SetAcceptsRetuning(d.AcceptsRetuning)
	n.SetMinVelocityVolume(d.MinVelocityVolume)
	n.SetMaxVelocityVolume(d.MaxVelocityVolume)
	n.SetAmplitudeLevel(d.AmplitudeLevel)
	n.SetGain(d.Gain)
	n.SetPitchTuning(d.PitchTuning)
	n.SetTrackerDelay(d.TrackerDelay)
	n.SetPipesRootPath(d.PipesRootPath)
	if d.Windchest != "" {
		n.windchest = &WindchestGroup{Name: d.Windchest}
	}
	*r = *n
	return nil
}

func (r *Rank) MarshalYAML() (interface{}, error) { return r.data(), nil }

func (r *Rank) UnmarshalYAML(node *yaml.Node) error {
	var d rankData
	if err := node.Decode(&d); err != nil {
		return err
	}
	return r.fromData(d)
}

func (r *Rank) MarshalJSON() ([]byte, error) { return json.Marshal(r.data()) }

func (r *Rank) UnmarshalJSON(b []byte) error {
	var d rankData
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	return r.fromData(d)
}

// ReadRank reads a rank file. The contents are tried as JSON first and then
// as YAML.
func ReadRank(r io.Reader) (*Rank, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read rank: %w", err)
	}
	var rank Rank
	if errJSON := json.Unmarshal(b, &rank); errJSON != nil {
		if errYaml := yaml.Unmarshal(b, &rank); errYaml != nil {
			return nil, fmt.Errorf("could not unmarshal rank: %v / %v", errYaml, errJSON)
		}
	}
	if rank.pipes == nil {
		return nil, errNoPipes
	}
	return &rank, nil
}

// WriteRank writes the rank as JSON when path ends with .json, and as YAML
// otherwise.
func WriteRank(w io.Writer, rank *Rank, path string) error {
	var contents []byte
	var err error
	if filepath.Ext(path) == ".json" {
		contents, err = json.MarshalIndent(rank, "", "  ")
	} else {
		contents, err = yaml.Marshal(rank)
	}
	if err != nil {
		return fmt.Errorf("could not marshal rank: %w", err)
	}
	if _, err := w.Write(contents); err != nil {
		return fmt.Errorf("could not write rank: %w", err)
	}
	return nil
}

// ReadOrgan reads an organ description from YAML.
func ReadOrgan(r io.Reader) (*Organ, error) {
	var o Organ
	if err := yaml.NewDecoder(r).Decode(&o); err != nil {
		return nil, fmt.Errorf("could not unmarshal organ: %w", err)
	}
	return &o, nil
}
