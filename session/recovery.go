package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/organforge/pipework"
)

type recoveryData struct {
	Rank             *pipework.Rank
	ChangedSinceSave bool
}

const recoveryExt = ".recovery.json"

// NewRecoveryFilePath returns a fresh recovery file name in dir.
func NewRecoveryFilePath(dir string) string {
	return filepath.Join(dir, uuid.NewString()+recoveryExt)
}

// RecoveryFiles lists the recovery files in dir, newest first.
func RecoveryFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read recovery directory: %w", err)
	}
	type file struct {
		path string
		mod  int64
	}
	var files []file
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recoveryExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, file{filepath.Join(dir, e.Name()), info.ModTime().UnixNano()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod > files[j].mod })
	ret := make([]string, len(files))
	for i, f := range files {
		ret[i] = f.path
	}
	return ret, nil
}

func (s *Session) RecoveryFilePath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recoveryFilePath
}

func (s *Session) SetRecoveryFilePath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recoveryFilePath = path
}

// MarshalRecovery returns the recovery snapshot of the session.
func (s *Session) MarshalRecovery() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marshalRecovery()
}

func (s *Session) marshalRecovery() ([]byte, error) {
	out, err := json.Marshal(recoveryData{Rank: s.rank, ChangedSinceSave: s.changedSinceSave})
	if err != nil {
		return nil, fmt.Errorf("could not marshal recovery data: %w", err)
	}
	return out, nil
}

// SaveRecovery writes the recovery file if the rank changed since the last
// write.
func (s *Session) SaveRecovery() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.changedSinceRecovery {
		return nil
	}
	if s.recoveryFilePath == "" {
		return errors.New("no recovery file path")
	}
	out, err := s.marshalRecovery()
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.recoveryFilePath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		os.MkdirAll(dir, os.ModePerm)
	}
	file, err := os.Create(s.recoveryFilePath)
	if err != nil {
		return fmt.Errorf("could not create recovery file: %w", err)
	}
	defer file.Close()
	if _, err = file.Write(out); err != nil {
		return fmt.Errorf("could not write recovery file: %w", err)
	}
	s.changedSinceRecovery = false
	s.log.Debug("recovery saved", zap.String("path", s.recoveryFilePath))
	return nil
}

// UnmarshalRecovery replaces the rank with a recovery snapshot. The undo
// history is cleared.
func (s *Session) UnmarshalRecovery(b []byte) error {
	var d recoveryData
	if err := json.Unmarshal(b, &d); err != nil {
		return fmt.Errorf("could not unmarshal recovery data: %w", err)
	}
	if d.Rank == nil {
		return errors.New("recovery data has no rank")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRankNoUndo(d.Rank)
	s.changedSinceSave = d.ChangedSinceSave
	s.changedSinceRecovery = false
	s.undoStack = s.undoStack[:0]
	s.redoStack = s.redoStack[:0]
	s.prevUndoKind = ""
	return nil
}

// LoadRecovery reads a recovery file. Later saves go to the same file.
func (s *Session) LoadRecovery(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read recovery file: %w", err)
	}
	if err := s.UnmarshalRecovery(b); err != nil {
		return err
	}
	s.SetRecoveryFilePath(path)
	return nil
}

// DeleteRecovery removes the recovery file, e.g. after the rank was saved.
func (s *Session) DeleteRecovery() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recoveryFilePath == "" {
		return nil
	}
	if err := os.Remove(s.recoveryFilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not remove recovery file: %w", err)
	}
	s.changedSinceRecovery = true
	return nil
}
