// Package borrow makes pipes of a rank play the samples of pipes of another
// stop. A borrowed pipe holds a reference in place of its sample path.
package borrow

import (
	"errors"
	"fmt"

	"github.com/organforge/pipework"
)

type (
	// Source is the organ the borrowed pipes come from. *pipework.Organ
	// implements it.
	Source interface {
		HasPedals() bool
		NumManuals() int
		NumStops(manual int) int
		StopPipeCount(manual, stop int) int
		// StopRank returns the rank of the stop if it is loaded, or nil.
		StopRank(manual, stop int) *pipework.Rank
	}

	// Request selects the pipes to borrow. All indexes are 0-based.
	Request struct {
		Manual     int
		Stop       int
		SourcePipe int
		TargetPipe int
		// Following is how many pipes after the first to borrow as well.
		Following int
	}

	// Result tells which pipes of the target rank were rewritten.
	Result struct {
		First      int
		References []pipework.Reference
	}

	// Location is a pipe of a stop, by 0-based indexes.
	Location struct {
		Manual, Stop, Pipe int
	}
)

var (
	ErrNoSuchManual   = errors.New("no such manual")
	ErrNoSuchStop     = errors.New("no such stop")
	ErrPipeOutOfRange = errors.New("pipe out of range")
	ErrSelfReference  = errors.New("pipe cannot borrow from itself")
)

// Count is the number of pipes rewritten.
func (r Result) Count() int { return len(r.References) }

// Plan validates req and returns the references Resolve would write,
// without changing target.
func Plan(src Source, target *pipework.Rank, req Request) (Result, error) {
	if req.Manual < 0 || req.Manual >= src.NumManuals() {
		return Result{}, fmt.Errorf("%w: %d", ErrNoSuchManual, req.Manual)
	}
	if req.Stop < 0 || req.Stop >= src.NumStops(req.Manual) {
		return Result{}, fmt.Errorf("%w: %d on manual %d", ErrNoSuchStop, req.Stop, req.Manual)
	}
	srcCount := src.StopPipeCount(req.Manual, req.Stop)
	if req.SourcePipe < 0 || req.SourcePipe >= srcCount {
		return Result{}, fmt.Errorf("%w: source pipe %d, stop has %d", ErrPipeOutOfRange, req.SourcePipe, srcCount)
	}
	tgtCount := target.NumberOfLogicalPipes()
	if req.TargetPipe < 0 || req.TargetPipe >= tgtCount {
		return Result{}, fmt.Errorf("%w: target pipe %d, rank has %d", ErrPipeOutOfRange, req.TargetPipe, tgtCount)
	}
	if src.StopRank(req.Manual, req.Stop) == target && req.SourcePipe == req.TargetPipe {
		return Result{}, ErrSelfReference
	}
	n := 1 + min(max(req.Following, 0), srcCount-1-req.SourcePipe, tgtCount-1-req.TargetPipe)
	res := Result{First: req.TargetPipe, References: make([]pipework.Reference, n)}
	for i := range res.References {
		res.References[i] = ReferenceFor(src, req.Manual, req.Stop, req.SourcePipe+i)
	}
	return res, nil
}

// Resolve makes pipes of target borrow from the stop selected by req: the
// target pipe borrows the source pipe, and as many of the Following pipes as
// both ranks have. Each rewritten pipe loses its samples first. On error
// target is not changed.
func Resolve(src Source, target *pipework.Rank, req Request) (Result, error) {
	res, err := Plan(src, target, req)
	if err != nil {
		return res, err
	}
	for i, ref := range res.References {
		target.Pipe(res.First + i).Borrow(ref)
	}
	return res, nil
}

// ReferenceFor returns the reference to pipe of stop on manual. Manuals are
// numbered from 0 when the organ has a pedal and from 1 otherwise, stops
// and pipes from 1.
func ReferenceFor(src Source, manual, stop, pipe int) pipework.Reference {
	if !src.HasPedals() {
		manual++
	}
	return pipework.Reference{Manual: manual, Stop: stop + 1, Pipe: pipe + 1}
}

// Locate is the inverse of ReferenceFor. It fails when the reference points
// outside the organ.
func Locate(src Source, ref pipework.Reference) (Location, error) {
	l := Location{Manual: ref.Manual, Stop: ref.Stop - 1, Pipe: ref.Pipe - 1}
	if !src.HasPedals() {
		l.Manual--
	}
	if l.Manual < 0 || l.Manual >= src.NumManuals() {
		return l, fmt.Errorf("%w: %v", ErrNoSuchManual, ref)
	}
	if l.Stop < 0 || l.Stop >= src.NumStops(l.Manual) {
		return l, fmt.Errorf("%w: %v", ErrNoSuchStop, ref)
	}
	if l.Pipe < 0 || l.Pipe >= src.StopPipeCount(l.Manual, l.Stop) {
		return l, fmt.Errorf("%w: %v", ErrPipeOutOfRange, ref)
	}
	return l, nil
}

// Check returns the borrowed pipes of rank whose reference does not point
// to a pipe of src, by pipe index.
func Check(src Source, rank *pipework.Rank) map[int]error {
	bad := map[int]error{}
	for i, p := range rank.Pipes() {
		ref, ok := p.Reference()
		if !ok {
			continue
		}
		if _, err := Locate(src, ref); err != nil {
			bad[i] = err
		}
	}
	return bad
}
