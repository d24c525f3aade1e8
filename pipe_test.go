package pipework_test

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/organforge/pipework"
)

func TestDummyPipe(t *testing.T) {
	p := pipework.NewDummyPipe()
	if p.Kind() != pipework.PipeDummy {
		t.Fatalf("kind, got %v, expected %v", p.Kind(), pipework.PipeDummy)
	}
	if p.NumAttacks() != 1 || !p.Attack(0).IsEmpty() {
		t.Fatalf("dummy pipe should have one empty attack")
	}
	if p.DeleteAttack(0) {
		t.Fatalf("the placeholder attack cannot be deleted")
	}
}

func TestAddAttackReplacesPlaceholder(t *testing.T) {
	p := pipework.NewDummyPipe()
	if !p.AddAttack(pipework.NewAttack("/s/036.wav", "036.wav")) {
		t.Fatalf("AddAttack failed")
	}
	if p.NumAttacks() != 1 || p.Kind() != pipework.PipeSamples {
		t.Fatalf("got %v attacks of kind %v, expected 1 of kind samples", p.NumAttacks(), p.Kind())
	}
	p.AddAttack(pipework.NewAttack("/s/a1/036.wav", "a1/036.wav"))
	if p.NumAttacks() != 2 {
		t.Fatalf("second attack should append, got %v attacks", p.NumAttacks())
	}
	if p.AddAttack(pipework.Attack{}) {
		t.Fatalf("attack without a path should be refused")
	}
	if p.AddAttack(pipework.NewAttack("REF:001:001:001", "")) {
		t.Fatalf("reference as attack should be refused")
	}
}

func TestDummyRefusesRelease(t *testing.T) {
	p := pipework.NewDummyPipe()
	if p.AddRelease(pipework.NewRelease("/s/rel/036.wav", "rel/036.wav")) {
		t.Fatalf("dummy pipe should refuse releases")
	}
	if p.Kind() != pipework.PipeDummy || p.NumReleases() != 0 {
		t.Fatalf("got kind %v with %v releases, expected a dummy", p.Kind(), p.NumReleases())
	}
	p.AddAttack(pipework.NewAttack("/s/036.wav", "036.wav"))
	if !p.AddRelease(pipework.NewRelease("/s/rel/036.wav", "rel/036.wav")) {
		t.Fatalf("pipe with an attack should take releases")
	}
}

func TestUnmarshalRejectsMixedPipes(t *testing.T) {
	for _, src := range []string{
		"attacks:\n  - fullpath: /s/036.wav\n  - fullpath: REF:001:002:003\n",
		"attacks:\n  - fullpath: REF:001:002:003\nreleases:\n  - fullpath: /s/rel/036.wav\n",
		"attacks:\n  - {}\nreleases:\n  - fullpath: /s/rel/036.wav\n",
		"attacks:\n  - fullpath: /s/036.wav\n  - {}\n",
	} {
		var p pipework.Pipe
		if err := yaml.Unmarshal([]byte(src), &p); err == nil {
			t.Fatalf("Unmarshal(%q) should fail, got kind %v", src, p.Kind())
		}
	}
	var p pipework.Pipe
	if err := yaml.Unmarshal([]byte("attacks:\n  - fullpath: REF:001:002:003\n"), &p); err != nil || !p.IsBorrowed() {
		t.Fatalf("borrowed pipe, got %v %v", p.Kind(), err)
	}
}

func TestBorrowAndClear(t *testing.T) {
	p := pipework.NewDummyPipe()
	p.AddAttack(pipework.NewAttack("/s/036.wav", "036.wav"))
	p.AddRelease(pipework.NewRelease("/s/rel/036.wav", "rel/036.wav"))
	ref := pipework.Reference{Manual: 1, Stop: 2, Pipe: 3}
	p.Borrow(ref)
	if p.Kind() != pipework.PipeBorrowed {
		t.Fatalf("kind, got %v, expected borrowed", p.Kind())
	}
	if p.NumAttacks() != 1 || p.NumReleases() != 0 {
		t.Fatalf("borrowed pipe should have one attack and no releases, got %v and %v", p.NumAttacks(), p.NumReleases())
	}
	if got, ok := p.Reference(); !ok || got != ref {
		t.Fatalf("reference, got %v, expected %v", got, ref)
	}
	if p.AddRelease(pipework.NewRelease("/s/rel/036.wav", "")) {
		t.Fatalf("borrowed pipe should refuse releases")
	}
	p.Clear()
	if p.Kind() != pipework.PipeDummy || p.NumAttacks() != 1 || p.NumReleases() != 0 {
		t.Fatalf("cleared pipe should be a dummy")
	}
}

func TestAttackOptionalSetters(t *testing.T) {
	var a pipework.Attack
	a.SetCuePoint(-1)
	if a.CuePoint.IsSet() {
		t.Fatalf("negative cue point should unset it")
	}
	a.SetCuePoint(pipework.MaxSampleOffset + 5)
	if v, _ := a.CuePoint.Get(); v != pipework.MaxSampleOffset {
		t.Fatalf("cue point, got %v, expected %v", v, pipework.MaxSampleOffset)
	}
	a.SetAttackVelocity(200)
	if a.AttackVelocity != pipework.MaxVelocity {
		t.Fatalf("velocity, got %v, expected %v", a.AttackVelocity, pipework.MaxVelocity)
	}
	a.SetAttackStart(-10)
	if a.AttackStart != 0 {
		t.Fatalf("attack start, got %v, expected 0", a.AttackStart)
	}
	a.ClearCuePoint()
	if a.CuePoint.IsSet() {
		t.Fatalf("ClearCuePoint did not unset")
	}
}

func TestPipeYamlRejectsEmpty(t *testing.T) {
	var p pipework.Pipe
	if err := yaml.Unmarshal([]byte("releases: []\n"), &p); err == nil {
		t.Fatalf("pipe without attacks should not unmarshal")
	}
}

func TestPipeJsonKeepsOptionals(t *testing.T) {
	p := pipework.NewDummyPipe()
	a := pipework.NewAttack("/s/036.wav", "036.wav")
	a.SetMaxKeyPressTime(300)
	a.IsTremulant = pipework.TremulantOn
	p.AddAttack(a)
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var q pipework.Pipe
	if err := json.Unmarshal(b, &q); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	got := q.Attack(0)
	if v, ok := got.MaxKeyPressTime.Get(); !ok || v != 300 {
		t.Fatalf("max key press time, got %v, expected 300", got.MaxKeyPressTime)
	}
	if got.CuePoint.IsSet() {
		t.Fatalf("unset cue point came back set")
	}
	if got.IsTremulant != pipework.TremulantOn {
		t.Fatalf("tremulant, got %v, expected on", got.IsTremulant)
	}
}
