// Package session wraps a rank for interactive editing. Destructive edits are
// confirmed through a Confirmer before they happen, every edit can be undone,
// and the state can be written to a recovery file.
package session

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/organforge/pipework"
	"github.com/organforge/pipework/borrow"
	"github.com/organforge/pipework/importer"
)

type (
	// Confirmer asks the user a yes/no question.
	Confirmer func(prompt string) bool

	Session struct {
		mu      sync.Mutex
		rank    *pipework.Rank
		confirm Confirmer
		log     *zap.Logger

		undoStack       []*pipework.Rank
		redoStack       []*pipework.Rank
		prevUndoKind    string
		undoSkipCounter int

		changedSinceSave     bool
		changedSinceRecovery bool
		recoveryFilePath     string
	}
)

const maxUndo = 64

// Always confirms everything.
func Always(string) bool { return true }

// Never declines everything.
func Never(string) bool { return false }

// New returns a session editing rank. A nil confirm declines every
// destructive edit; a nil log discards log output.
func New(rank *pipework.Rank, confirm Confirmer, log *zap.Logger) *Session {
	if rank == nil {
		rank = pipework.NewRank("")
	}
	if confirm == nil {
		confirm = Never
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{rank: rank, confirm: confirm, log: log}
}

// Rank returns a copy of the rank being edited.
func (s *Session) Rank() *pipework.Rank {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rank.Copy()
}

// View calls f with the rank being edited. f must not modify the rank.
func (s *Session) View(f func(r *pipework.Rank)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.rank)
}

// Edit applies f to the rank as one undoable edit. Consecutive edits of the
// same kind are merged into one undo step, up to skip of them.
func (s *Session) Edit(kind string, skip int, f func(r *pipework.Rank)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveUndo(kind, skip)
	f(s.rank)
}

// SetNumberOfLogicalPipes changes the pipe count to n. Shrinking deletes the
// top pipes and is done only when the user confirms.
func (s *Session) SetNumberOfLogicalPipes(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.rank.NumberOfLogicalPipes()
	n = max(min(n, pipework.MaxLogicalPipes), 1)
	switch {
	case n == cur:
		return false
	case n > cur:
		s.saveUndo("SetNumberOfLogicalPipes", 0)
		return s.rank.SetNumberOfLogicalPipes(n)
	}
	prompt := fmt.Sprintf("Delete pipes %d to %d of rank %q?", n+1, cur, s.rank.Name())
	if !s.confirm(prompt) {
		s.log.Info("shrink declined", zap.String("rank", s.rank.Name()), zap.Int("pipes", cur), zap.Int("requested", n))
		return false
	}
	s.saveUndo("SetNumberOfLogicalPipes", 0)
	s.rank.ShrinkTo(n)
	s.log.Info("rank shrunk", zap.String("rank", s.rank.Name()), zap.Int("from", cur), zap.Int("to", n))
	return true
}

// SetFirstMidiNoteNumber moves the rank to start at note first. Moving a rank
// that has samples discards the pipes shifted out of it, so the user is
// asked first.
func (s *Session) SetFirstMidiNoteNumber(first int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.rank.FirstMidiNoteNumber()
	first = max(min(first, pipework.MaxMidiNote), 0)
	if first == old {
		return false
	}
	if !s.rank.HasOnlyDummyPipes() {
		d := first - old
		if d < 0 {
			d = -d
		}
		prompt := fmt.Sprintf("Shifting rank %q from note %d to %d discards %d pipes. Continue?", s.rank.Name(), old, first, min(d, s.rank.NumberOfLogicalPipes()))
		if !s.confirm(prompt) {
			s.log.Info("shift declined", zap.String("rank", s.rank.Name()), zap.Int("from", old), zap.Int("to", first))
			return false
		}
	}
	s.saveUndo("SetFirstMidiNoteNumber", 0)
	s.rank.SetFirstMidiNoteNumber(first)
	return true
}

// ClearAllPipes resets every pipe to a dummy pipe after confirmation. A rank
// that is already all dummies is left alone.
func (s *Session) ClearAllPipes() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rank.HasOnlyDummyPipes() {
		return false
	}
	if !s.confirm(fmt.Sprintf("Clear all pipes of rank %q?", s.rank.Name())) {
		return false
	}
	s.saveUndo("ClearAllPipes", 0)
	s.rank.ClearAllPipes()
	return true
}

func (s *Session) ClearPipeAt(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.rank.Pipe(i)
	if p == nil || p.IsDummy() {
		return false
	}
	s.saveUndo("ClearPipeAt", 0)
	return s.rank.ClearPipeAt(i)
}

func (s *Session) SetPercussive(v bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rank.IsPercussive() == v {
		return false
	}
	if v && hasReleases(s.rank) && !s.confirm(fmt.Sprintf("Making rank %q percussive deletes its releases. Continue?", s.rank.Name())) {
		return false
	}
	s.saveUndo("SetPercussive", 0)
	s.rank.SetPercussive(v)
	return true
}

// Import runs the importer on the rank as one undoable edit. ModeImport
// replaces the content of the rank, so it is confirmed unless the rank holds
// only dummy pipes. A failed run leaves the rank and the undo history as
// they were.
func (s *Session) Import(root string, mode importer.Mode, opts importer.Options) (importer.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == importer.ModeImport && !s.rank.HasOnlyDummyPipes() &&
		!s.confirm(fmt.Sprintf("Replace the pipes of rank %q with samples from %v?", s.rank.Name(), root)) {
		return importer.Report{Root: root, Mode: mode}, ErrDeclined
	}
	if opts.Logger == nil {
		opts.Logger = s.log
	}
	if mode == importer.ModeScan {
		return importer.Run(s.rank, root, mode, opts)
	}
	work := s.rank.Copy()
	rep, err := importer.Run(work, root, mode, opts)
	if err != nil {
		return rep, err
	}
	s.saveUndo("Import."+mode.String(), 0)
	s.rank = work
	return rep, nil
}

// Borrow points pipes of the rank at pipes of another stop of src.
func (s *Session) Borrow(src borrow.Source, req borrow.Request) (borrow.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := borrow.Plan(src, s.rank, req); err != nil {
		return borrow.Result{}, err
	}
	s.saveUndo("Borrow", 0)
	return borrow.Resolve(src, s.rank, req)
}

func hasReleases(r *pipework.Rank) bool {
	for _, p := range r.Pipes() {
		if p.NumReleases() > 0 {
			return true
		}
	}
	return false
}
