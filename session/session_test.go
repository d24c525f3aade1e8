package session_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/organforge/pipework"
	"github.com/organforge/pipework/borrow"
	"github.com/organforge/pipework/importer"
	"github.com/organforge/pipework/session"
)

func loadedRank(n int) *pipework.Rank {
	r := pipework.NewRank("Principal 8")
	r.SetNumberOfLogicalPipes(n)
	for i := 0; i < n; i++ {
		r.AddAttack(i, fmt.Sprintf("/s/%03d.wav", 36+i), true)
	}
	return r
}

// recorder confirms with answer and remembers the prompts.
type recorder struct {
	answer  bool
	prompts []string
}

func (r *recorder) confirm(prompt string) bool {
	r.prompts = append(r.prompts, prompt)
	return r.answer
}

func TestShrinkAsks(t *testing.T) {
	assert := assert.New(t)
	rec := &recorder{answer: false}
	s := session.New(loadedRank(10), rec.confirm, nil)

	assert.False(s.SetNumberOfLogicalPipes(4))
	assert.Len(rec.prompts, 1)
	assert.Equal(10, s.Rank().NumberOfLogicalPipes())

	rec.answer = true
	assert.True(s.SetNumberOfLogicalPipes(4))
	assert.Equal(4, s.Rank().NumberOfLogicalPipes())

	// growing never asks
	assert.True(s.SetNumberOfLogicalPipes(6))
	assert.Len(rec.prompts, 2)
}

func TestShiftAsksOnlyWithContent(t *testing.T) {
	assert := assert.New(t)
	rec := &recorder{answer: false}
	s := session.New(pipework.NewRank("Empty"), rec.confirm, nil)
	assert.True(s.SetFirstMidiNoteNumber(48))
	assert.Empty(rec.prompts)

	s = session.New(loadedRank(12), rec.confirm, nil)
	assert.False(s.SetFirstMidiNoteNumber(39))
	assert.Len(rec.prompts, 1)
	assert.Equal(36, s.Rank().FirstMidiNoteNumber())

	rec.answer = true
	assert.True(s.SetFirstMidiNoteNumber(39))
	r := s.Rank()
	assert.Equal(39, r.FirstMidiNoteNumber())
	assert.Equal("/s/039.wav", r.Pipe(0).Attack(0).FullPath)
	assert.True(r.Pipe(11).IsDummy())
}

func TestClearAllPipes(t *testing.T) {
	assert := assert.New(t)
	rec := &recorder{answer: true}
	s := session.New(pipework.NewRank("Empty"), rec.confirm, nil)
	assert.False(s.ClearAllPipes())
	assert.Empty(rec.prompts)

	s = session.New(loadedRank(3), rec.confirm, nil)
	assert.True(s.ClearAllPipes())
	assert.True(s.Rank().HasOnlyDummyPipes())
	assert.Equal(3, s.Rank().NumberOfLogicalPipes())
}

func TestUndoRedo(t *testing.T) {
	assert := assert.New(t)
	s := session.New(loadedRank(5), session.Always, nil)
	assert.False(s.CanUndo())

	s.SetNumberOfLogicalPipes(2)
	s.ClearAllPipes()
	assert.True(s.CanUndo())

	s.Undo()
	assert.False(s.Rank().HasOnlyDummyPipes())
	assert.Equal(2, s.Rank().NumberOfLogicalPipes())
	s.Undo()
	assert.Equal(5, s.Rank().NumberOfLogicalPipes())
	assert.False(s.CanUndo())

	assert.True(s.CanRedo())
	s.Redo()
	assert.Equal(2, s.Rank().NumberOfLogicalPipes())

	// a new edit drops the redo stack
	s.SetNumberOfLogicalPipes(3)
	assert.False(s.CanRedo())
}

func TestIntViews(t *testing.T) {
	assert := assert.New(t)
	s := session.New(pipework.NewRank("Flute"), session.Never, nil)

	pipes := s.LogicalPipes().Int()
	assert.True(pipes.Set(1000))
	assert.Equal(pipework.MaxLogicalPipes, pipes.Value())
	assert.False(pipes.Add(1))
	// shrinking is declined
	assert.False(pipes.Add(-1))
	assert.Equal(pipework.MaxLogicalPipes, pipes.Value())

	harmonic := s.HarmonicNumber().Int()
	assert.True(harmonic.Set(0))
	assert.Equal(1, harmonic.Value())
	assert.False(harmonic.Set(-5))

	delay := s.TrackerDelay().Int()
	assert.True(delay.Add(20))
	assert.Equal(20, delay.Value())

	note := s.FirstMidiNote().Int()
	assert.True(note.Set(-3))
	assert.Equal(0, note.Value())
}

func TestImport(t *testing.T) {
	assert := assert.New(t)
	root := t.TempDir()
	for note := 36; note < 40; note++ {
		p := filepath.Join(root, fmt.Sprintf("%03d.wav", note))
		assert.NoError(os.WriteFile(p, nil, 0o644))
	}
	rec := &recorder{answer: false}
	s := session.New(loadedRank(4), rec.confirm, nil)

	_, err := s.Import(root, importer.ModeImport, importer.DefaultOptions())
	assert.ErrorIs(err, session.ErrDeclined)
	assert.Equal("/s/036.wav", s.Rank().Pipe(0).Attack(0).FullPath)

	rec.answer = true
	rep, err := s.Import(root, importer.ModeImport, importer.DefaultOptions())
	assert.NoError(err)
	assert.Equal(4, rep.Attacks)
	assert.Equal(filepath.Join(root, "036.wav"), s.Rank().Pipe(0).Attack(0).FullPath)

	_, err = s.Import(filepath.Join(root, "missing"), importer.ModeAdd, importer.DefaultOptions())
	assert.Error(err)

	s.Undo()
	assert.Equal("/s/036.wav", s.Rank().Pipe(0).Attack(0).FullPath)
}

func TestBorrow(t *testing.T) {
	assert := assert.New(t)
	o := &pipework.Organ{Manuals: []*pipework.Manual{{Name: "Great", Stops: []*pipework.Stop{{Name: "Principal 8", Pipes: 61}}}}}
	s := session.New(loadedRank(4), session.Never, nil)

	_, err := s.Borrow(o, borrow.Request{Manual: 3})
	assert.ErrorIs(err, borrow.ErrNoSuchManual)
	assert.False(s.CanUndo())

	res, err := s.Borrow(o, borrow.Request{Manual: 0, Stop: 0, SourcePipe: 0, TargetPipe: 1, Following: 1})
	assert.NoError(err)
	assert.Equal(2, res.Count())
	assert.True(s.Rank().Pipe(2).IsBorrowed())
	s.Undo()
	assert.False(s.Rank().Pipe(2).IsBorrowed())
}

func TestRecovery(t *testing.T) {
	assert := assert.New(t)
	dir := filepath.Join(t.TempDir(), "recovery")
	s := session.New(loadedRank(3), session.Always, nil)
	path := session.NewRecoveryFilePath(dir)
	s.SetRecoveryFilePath(path)

	// nothing changed yet
	assert.NoError(s.SaveRecovery())
	files, err := session.RecoveryFiles(dir)
	assert.NoError(err)
	assert.Empty(files)

	s.SetNumberOfLogicalPipes(5)
	assert.NoError(s.SaveRecovery())
	files, err = session.RecoveryFiles(dir)
	assert.NoError(err)
	assert.Equal([]string{path}, files)

	restored := session.New(nil, session.Always, nil)
	assert.NoError(restored.LoadRecovery(path))
	r := restored.Rank()
	assert.Equal(5, r.NumberOfLogicalPipes())
	assert.Equal("/s/037.wav", r.Pipe(1).Attack(0).FullPath)
	assert.True(restored.ChangedSinceSave())
	assert.False(restored.CanUndo())

	assert.NoError(restored.DeleteRecovery())
	_, err = os.Stat(path)
	assert.True(os.IsNotExist(err))
}
