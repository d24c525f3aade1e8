package pipework_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/organforge/pipework"
)

func samplePath(dir string, note int) string {
	return filepath.Join(string(filepath.Separator)+"samples", dir, fmt.Sprintf("%03d.wav", note))
}

// loadedRank returns a rank of n pipes from note 36 where each pipe has one
// attack and one release named after its note.
func loadedRank(t *testing.T, n int) *pipework.Rank {
	t.Helper()
	r := pipework.NewRank("Principal 8")
	r.SetNumberOfLogicalPipes(n)
	for i := 0; i < n; i++ {
		note := r.MidiNoteOf(i)
		if !r.AddAttack(i, samplePath("", note), true) {
			t.Fatalf("AddAttack(%v) failed", i)
		}
		if !r.AddRelease(i, samplePath("rel", note), false) {
			t.Fatalf("AddRelease(%v) failed", i)
		}
	}
	return r
}

func checkStructure(t *testing.T, r *pipework.Rank) {
	t.Helper()
	count := 0
	for i, p := range r.Pipes() {
		if p.NumAttacks() < 1 {
			t.Fatalf("pipe %v has no attacks", i)
		}
		count++
	}
	if count != r.NumberOfLogicalPipes() {
		t.Fatalf("pipe list length mismatch, got %v, expected %v", count, r.NumberOfLogicalPipes())
	}
}

func TestNewRankDefaults(t *testing.T) {
	r := pipework.NewRank("Gedackt")
	if r.NumberOfLogicalPipes() != 1 {
		t.Fatalf("pipe count, got %v, expected 1", r.NumberOfLogicalPipes())
	}
	if r.FirstMidiNoteNumber() != 36 {
		t.Fatalf("first note, got %v, expected 36", r.FirstMidiNoteNumber())
	}
	if r.HarmonicNumber() != 8 || !r.AcceptsRetuning() || r.AmplitudeLevel() != 100 {
		t.Fatalf("unexpected defaults: %v %v %v", r.HarmonicNumber(), r.AcceptsRetuning(), r.AmplitudeLevel())
	}
	if !r.HasOnlyDummyPipes() {
		t.Fatalf("new rank should hold only dummy pipes")
	}
	checkStructure(t, r)
}

func TestSettersClamp(t *testing.T) {
	r := pipework.NewRank("")
	r.SetHarmonicNumber(0)
	r.SetGain(100)
	r.SetPitchTuning(-5000)
	r.SetTrackerDelay(20000)
	r.SetAmplitudeLevel(-1)
	r.SetFirstMidiNoteNumber(300)
	if r.HarmonicNumber() != 1 {
		t.Fatalf("harmonic number, got %v, expected 1", r.HarmonicNumber())
	}
	if r.Gain() != 40 {
		t.Fatalf("gain, got %v, expected 40", r.Gain())
	}
	if r.PitchTuning() != -1800 {
		t.Fatalf("pitch tuning, got %v, expected -1800", r.PitchTuning())
	}
	if r.TrackerDelay() != 10000 {
		t.Fatalf("tracker delay, got %v, expected 10000", r.TrackerDelay())
	}
	if r.AmplitudeLevel() != 0 {
		t.Fatalf("amplitude, got %v, expected 0", r.AmplitudeLevel())
	}
	if r.FirstMidiNoteNumber() != pipework.MaxMidiNote {
		t.Fatalf("first note, got %v, expected %v", r.FirstMidiNoteNumber(), pipework.MaxMidiNote)
	}
}

func TestGrowKeepsPipes(t *testing.T) {
	r := loadedRank(t, 4)
	if !r.SetNumberOfLogicalPipes(10) {
		t.Fatalf("growing should report a change")
	}
	if r.NumberOfLogicalPipes() != 10 {
		t.Fatalf("pipe count, got %v, expected 10", r.NumberOfLogicalPipes())
	}
	for i := 0; i < 4; i++ {
		if got, want := r.Pipe(i).Attack(0).FullPath, samplePath("", 36+i); got != want {
			t.Fatalf("pipe %v moved, got %v, expected %v", i, got, want)
		}
	}
	for i := 4; i < 10; i++ {
		if !r.Pipe(i).IsDummy() {
			t.Fatalf("pipe %v should be a dummy", i)
		}
	}
	checkStructure(t, r)
}

func TestSmallerCountDoesNotShrink(t *testing.T) {
	r := loadedRank(t, 5)
	if r.SetNumberOfLogicalPipes(2) {
		t.Fatalf("SetNumberOfLogicalPipes with a smaller count should not change anything")
	}
	if r.NumberOfLogicalPipes() != 5 {
		t.Fatalf("pipe count, got %v, expected 5", r.NumberOfLogicalPipes())
	}
	r.ShrinkTo(2)
	if r.NumberOfLogicalPipes() != 2 {
		t.Fatalf("pipe count after ShrinkTo, got %v, expected 2", r.NumberOfLogicalPipes())
	}
	if got, want := r.Pipe(1).Attack(0).FullPath, samplePath("", 37); got != want {
		t.Fatalf("shrink should drop the top pipes, got %v, expected %v", got, want)
	}
	r.ShrinkTo(0)
	if r.NumberOfLogicalPipes() != 1 {
		t.Fatalf("a rank keeps at least one pipe, got %v", r.NumberOfLogicalPipes())
	}
	checkStructure(t, r)
}

func TestPipeCountClamped(t *testing.T) {
	r := pipework.NewRank("")
	r.SetNumberOfLogicalPipes(1000)
	if r.NumberOfLogicalPipes() != pipework.MaxLogicalPipes {
		t.Fatalf("pipe count, got %v, expected %v", r.NumberOfLogicalPipes(), pipework.MaxLogicalPipes)
	}
	checkStructure(t, r)
}

func TestShiftOnDummyRankOnlyChangesAttribute(t *testing.T) {
	r := pipework.NewRank("")
	r.SetNumberOfLogicalPipes(8)
	r.SetFirstMidiNoteNumber(48)
	if r.FirstMidiNoteNumber() != 48 || r.NumberOfLogicalPipes() != 8 || !r.HasOnlyDummyPipes() {
		t.Fatalf("unexpected state after shift: %v %v", r.FirstMidiNoteNumber(), r.NumberOfLogicalPipes())
	}
}

func TestShiftUp(t *testing.T) {
	r := loadedRank(t, 12)
	r.SetFirstMidiNoteNumber(39)
	if r.NumberOfLogicalPipes() != 12 {
		t.Fatalf("pipe count, got %v, expected 12", r.NumberOfLogicalPipes())
	}
	for i := 0; i <= 8; i++ {
		if got, want := r.Pipe(i).Attack(0).FullPath, samplePath("", 39+i); got != want {
			t.Fatalf("pipe %v, got %v, expected %v", i, got, want)
		}
		if r.MidiNoteOf(i) != 39+i {
			t.Fatalf("pipe %v sounds %v, expected %v", i, r.MidiNoteOf(i), 39+i)
		}
	}
	for i := 9; i < 12; i++ {
		if !r.Pipe(i).IsDummy() {
			t.Fatalf("pipe %v should be a dummy after the shift", i)
		}
	}
	checkStructure(t, r)
}

func TestShiftDown(t *testing.T) {
	r := loadedRank(t, 6)
	r.SetFirstMidiNoteNumber(34)
	for i := 0; i < 2; i++ {
		if !r.Pipe(i).IsDummy() {
			t.Fatalf("pipe %v should be a dummy after the shift", i)
		}
	}
	for i := 2; i < 6; i++ {
		if got, want := r.Pipe(i).Attack(0).FullPath, samplePath("", 34+i); got != want {
			t.Fatalf("pipe %v, got %v, expected %v", i, got, want)
		}
	}
	checkStructure(t, r)
}

func TestShiftBeyondRankLeavesDummies(t *testing.T) {
	r := loadedRank(t, 4)
	r.SetFirstMidiNoteNumber(36 + 40)
	if r.NumberOfLogicalPipes() != 4 || !r.HasOnlyDummyPipes() {
		t.Fatalf("shifting past the rank should leave %v dummies", 4)
	}
}

func TestClearAllPipes(t *testing.T) {
	r := loadedRank(t, 7)
	r.ClearAllPipes()
	if r.NumberOfLogicalPipes() != 7 || !r.HasOnlyDummyPipes() {
		t.Fatalf("ClearAllPipes should keep the count and leave dummies")
	}
	checkStructure(t, r)
}

func TestPercussiveDropsReleases(t *testing.T) {
	r := loadedRank(t, 3)
	r.SetPercussive(true)
	for i, p := range r.Pipes() {
		if p.NumReleases() != 0 {
			t.Fatalf("pipe %v kept %v releases", i, p.NumReleases())
		}
	}
	if r.AddRelease(0, samplePath("rel", 36), false) {
		t.Fatalf("percussive rank should refuse releases")
	}
	if r.Pipe(0).Attack(0).LoadRelease {
		t.Fatalf("attack loaded before percussive still has LoadRelease")
	}
}

func TestAddReleaseKeyPressTime(t *testing.T) {
	r := pipework.NewRank("")
	r.AddAttack(0, samplePath("", 36), true)
	r.AddRelease(0, samplePath("rel500", 36), true)
	r.AddRelease(0, samplePath("rel", 36), true)
	r.AddRelease(0, samplePath("release2", 36), true)
	if v, ok := r.Pipe(0).Release(0).MaxKeyPressTime.Get(); !ok || v != 500 {
		t.Fatalf("max key press time, got %v, expected 500", r.Pipe(0).Release(0).MaxKeyPressTime)
	}
	for i := 1; i < 3; i++ {
		if r.Pipe(0).Release(i).MaxKeyPressTime.IsSet() {
			t.Fatalf("release %v should have no limit, got %v", i, r.Pipe(0).Release(i).MaxKeyPressTime)
		}
	}
}

func TestAddReleaseToDummyRefused(t *testing.T) {
	r := pipework.NewRank("")
	if r.AddRelease(0, samplePath("rel", 36), false) {
		t.Fatalf("dummy pipe took a release")
	}
	if !r.Pipe(0).IsDummy() || r.Pipe(0).NumReleases() != 0 {
		t.Fatalf("pipe 1, got kind %v, expected dummy", r.Pipe(0).Kind())
	}
}

func TestKeyPressTimeFromFolder(t *testing.T) {
	for _, c := range []struct {
		folder string
		ms     int
		set    bool
		err    bool
	}{
		{"rel500", 500, true, false},
		{"REL_1000", 1000, true, false},
		{"rel", 0, false, false},
		{"relX", 0, false, true},
		{"release2", 0, false, true},
		{"attack", 0, false, true},
		{"rel999999", pipework.MaxTimeMillis, true, false},
	} {
		got, err := pipework.KeyPressTimeFromFolder(c.folder, pipework.DefaultReleasePrefix)
		ms, set := got.Get()
		if ms != c.ms || set != c.set || (err != nil) != c.err {
			t.Fatalf("KeyPressTimeFromFolder(%q), got %v %v %v, expected %v %v", c.folder, ms, set, err, c.ms, c.set)
		}
		if err != nil && !errors.Is(err, pipework.ErrKeyPressTime) {
			t.Fatalf("KeyPressTimeFromFolder(%q), got error %v, expected ErrKeyPressTime", c.folder, err)
		}
	}
}

func TestPropagateAttackProperties(t *testing.T) {
	r := loadedRank(t, 4)
	r.AddAttack(2, samplePath("loud", 38), true)
	src := r.Pipe(0).Attack(0)
	src.SetCuePoint(1200)
	src.SetAttackVelocity(40)
	if n := r.PropagateAttackProperties(0, 0); n != 3 {
		t.Fatalf("changed attacks, got %v, expected 3", n)
	}
	for i := 1; i < 4; i++ {
		a := r.Pipe(i).Attack(0)
		if v, _ := a.CuePoint.Get(); v != 1200 || a.AttackVelocity != 40 {
			t.Fatalf("pipe %v was not updated: %v %v", i, a.CuePoint, a.AttackVelocity)
		}
	}
	if r.Pipe(2).Attack(1).CuePoint.IsSet() {
		t.Fatalf("attack from another folder should not change")
	}
}

func TestPropagateReleaseProperties(t *testing.T) {
	r := loadedRank(t, 3)
	r.Pipe(1).Release(0).SetReleaseEnd(800)
	if n := r.PropagateReleaseProperties(1, 0); n != 2 {
		t.Fatalf("changed releases, got %v, expected 2", n)
	}
	if v, _ := r.Pipe(2).Release(0).ReleaseEnd.Get(); v != 800 {
		t.Fatalf("release end, got %v, expected 800", v)
	}
}

func TestDeleteLastAttackRefused(t *testing.T) {
	r := loadedRank(t, 2)
	if r.DeleteAttack(0, 0) {
		t.Fatalf("deleting the only attack should be refused")
	}
	r.AddAttack(0, samplePath("trem", 36), true)
	if !r.DeleteAttack(0, 0) {
		t.Fatalf("deleting one of two attacks should succeed")
	}
	if got, want := r.Pipe(0).Attack(0).FullPath, samplePath("trem", 36); got != want {
		t.Fatalf("remaining attack, got %v, expected %v", got, want)
	}
	if !r.DeleteRelease(1, 0) || r.Pipe(1).NumReleases() != 0 {
		t.Fatalf("DeleteRelease failed")
	}
}

func TestPipeIndexFor(t *testing.T) {
	r := loadedRank(t, 5)
	if i, ok := r.PipeIndexFor(38); !ok || i != 2 {
		t.Fatalf("PipeIndexFor(38), got %v %v, expected 2 true", i, ok)
	}
	if _, ok := r.PipeIndexFor(41); ok {
		t.Fatalf("note 41 is above the rank")
	}
	if _, ok := r.PipeIndexFor(35); ok {
		t.Fatalf("note 35 is below the rank")
	}
}

func TestPipeLabel(t *testing.T) {
	r := pipework.NewRank("")
	if l := r.PipeLabel(0); !strings.HasPrefix(l, "Pipe001 (036 ") {
		t.Fatalf("label, got %q", l)
	}
}

func TestRankCopyIsDeep(t *testing.T) {
	r := loadedRank(t, 3)
	c := r.Copy()
	c.ClearPipeAt(1)
	c.Pipe(0).Attack(0).SetAttackStart(10)
	if r.Pipe(1).IsDummy() {
		t.Fatalf("clearing the copy cleared the original")
	}
	if r.Pipe(0).Attack(0).AttackStart != 0 {
		t.Fatalf("editing the copy edited the original")
	}
}
