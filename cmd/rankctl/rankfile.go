package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/organforge/pipework"
	"github.com/organforge/pipework/session"
)

func readRankFile(path string) (*pipework.Rank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open rank file: %w", err)
	}
	defer f.Close()
	rank, err := pipework.ReadRank(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return rank, nil
}

func readOrganFile(path string) (*pipework.Organ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open organ file: %w", err)
	}
	defer f.Close()
	return pipework.ReadOrgan(f)
}

// writeRankFile writes rank to path, creating the directory if needed. The
// file is left alone when its contents would not change.
func writeRankFile(path string, rank *pipework.Rank) error {
	var buf bytes.Buffer
	if err := pipework.WriteRank(&buf, rank, path); err != nil {
		return err
	}
	if original, err := os.ReadFile(path); err == nil && bytes.Equal(original, buf.Bytes()) {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create directory %v: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("could not write rank file %v: %w", path, err)
	}
	return nil
}

// editRank runs f on a session over the rank file at path and writes the
// rank back when f changed it. If the write fails, the edited rank is kept in
// a recovery file.
func editRank(cmd *cobra.Command, path string, f func(s *session.Session) error) error {
	rank, err := readRankFile(path)
	if err != nil {
		return err
	}
	s := session.New(rank, confirmer(cmd.InOrStdin(), cmd.ErrOrStderr()), log)
	s.SetRecoveryFilePath(session.NewRecoveryFilePath(cfg.RecoveryDir))
	if err := f(s); err != nil {
		return err
	}
	if !s.ChangedSinceSave() {
		return nil
	}
	out := path
	if outputPath != "" {
		out = outputPath
	}
	if err := writeRankFile(out, s.Rank()); err != nil {
		if rerr := s.SaveRecovery(); rerr != nil {
			log.Error("could not save recovery file", zap.Error(rerr))
			return err
		}
		return fmt.Errorf("%w; the edited rank was saved to %v", err, s.RecoveryFilePath())
	}
	s.MarkSaved()
	log.Info("rank written", zap.String("path", out), zap.String("rank", rank.Name()))
	return nil
}
