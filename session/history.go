package session

import (
	"errors"

	"github.com/organforge/pipework"
)

// ErrDeclined is returned when the user declines a destructive edit.
var ErrDeclined = errors.New("declined by user")

func (s *Session) Undo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.undoStack) == 0 {
		return
	}
	s.redoStack = append(s.redoStack, s.rank.Copy())
	s.rank = s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.limitUndoRedoLengths()
	s.prevUndoKind = ""
	s.markChanged()
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack) > 0
}

func (s *Session) Redo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.redoStack) == 0 {
		return
	}
	s.undoStack = append(s.undoStack, s.rank.Copy())
	s.rank = s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.limitUndoRedoLengths()
	s.prevUndoKind = ""
	s.markChanged()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStack) > 0
}

func (s *Session) ClearUndoHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undoStack = s.undoStack[:0]
	s.redoStack = s.redoStack[:0]
	s.prevUndoKind = ""
}

// ChangedSinceSave reports whether the rank was edited after the last
// MarkSaved.
func (s *Session) ChangedSinceSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changedSinceSave
}

func (s *Session) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changedSinceSave = false
}

// saveUndo pushes the current rank on the undo stack. Up to skip consecutive
// edits of the same kind share one undo step.
func (s *Session) saveUndo(kind string, skip int) {
	s.markChanged()
	if s.prevUndoKind == kind && s.undoSkipCounter < skip {
		s.undoSkipCounter++
		return
	}
	s.prevUndoKind = kind
	s.undoSkipCounter = 0
	s.undoStack = append(s.undoStack, s.rank.Copy())
	s.redoStack = s.redoStack[:0]
	s.limitUndoRedoLengths()
}

func (s *Session) markChanged() {
	s.changedSinceSave = true
	s.changedSinceRecovery = true
}

func (s *Session) limitUndoRedoLengths() {
	if len(s.undoStack) >= maxUndo {
		s.undoStack = s.undoStack[len(s.undoStack)-maxUndo:]
	}
	if len(s.redoStack) >= maxUndo {
		s.redoStack = s.redoStack[len(s.redoStack)-maxUndo:]
	}
}

// setRankNoUndo replaces the rank without touching the history.
func (s *Session) setRankNoUndo(r *pipework.Rank) {
	s.rank = r
	s.markChanged()
}
