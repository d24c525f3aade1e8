package pipework

type (
	// Organ is the part of an organ definition that pipe borrowing needs:
	// the manuals and their stops. Manuals and stops are addressed by their
	// index.
	Organ struct {
		Name       string            `yaml:",omitempty"`
		Manuals    []*Manual         `yaml:",omitempty"`
		Windchests []*WindchestGroup `yaml:",omitempty"`
	}

	// Manual is a keyboard of the organ. Only the first manual can be the
	// pedal.
	Manual struct {
		Name    string  `yaml:",omitempty"`
		IsPedal bool    `yaml:",omitempty"`
		Stops   []*Stop `yaml:",omitempty"`
	}

	// Stop is a stop of a manual. A stop either owns a Rank, or, when the
	// rank is not loaded, just declares how many pipes it has. RankFile
	// names the rank file of the stop, relative to the organ file.
	Stop struct {
		Name     string `yaml:",omitempty"`
		Pipes    int    `yaml:",omitempty"`
		RankFile string `yaml:",omitempty"`
		Rank     *Rank  `yaml:"-" json:"-"`
	}
)

// HasPedals reports whether the first manual is a pedal.
func (o *Organ) HasPedals() bool {
	return len(o.Manuals) > 0 && o.Manuals[0].IsPedal
}

func (o *Organ) NumManuals() int { return len(o.Manuals) }

// NumStops returns the number of stops on manual m, or 0 if there is no such
// manual.
func (o *Organ) NumStops(m int) int {
	if m < 0 || m >= len(o.Manuals) {
		return 0
	}
	return len(o.Manuals[m].Stops)
}

// Stop returns stop s of manual m, or nil.
func (o *Organ) Stop(m, s int) *Stop {
	if s < 0 || s >= o.NumStops(m) {
		return nil
	}
	return o.Manuals[m].Stops[s]
}

// StopPipeCount returns the number of pipes of stop s on manual m.
func (o *Organ) StopPipeCount(m, s int) int {
	st := o.Stop(m, s)
	if st == nil {
		return 0
	}
	return st.NumberOfLogicalPipes()
}

// StopRank returns the rank owned by stop s on manual m, or nil when the
// stop has no rank loaded.
func (o *Organ) StopRank(m, s int) *Rank {
	st := o.Stop(m, s)
	if st == nil {
		return nil
	}
	return st.Rank
}

// NumberOfLogicalPipes is the pipe count of the stop's rank, or the declared
// pipe count when no rank is loaded.
func (s *Stop) NumberOfLogicalPipes() int {
	if s.Rank != nil {
		return s.Rank.NumberOfLogicalPipes()
	}
	return max(s.Pipes, 0)
}

// Windchest returns the windchest group with the given name, adding it if
// the organ does not have one yet.
func (o *Organ) Windchest(name string) *WindchestGroup {
	for _, w := range o.Windchests {
		if w.Name == name {
			return w
		}
	}
	w := &WindchestGroup{Name: name}
	o.Windchests = append(o.Windchests, w)
	return w
}

// WindchestIndex returns the index of w in the organ, or -1.
func (o *Organ) WindchestIndex(w *WindchestGroup) int {
	for i, c := range o.Windchests {
		if c == w {
			return i
		}
	}
	return -1
}
