package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/organforge/pipework/session"
)

func init() {
	rootCmd.AddCommand(recoverCmd)
}

var recoverCmd = &cobra.Command{
	Use:   "recover [RECOVERY-FILE]",
	Short: "List or restore edits that could not be saved",
	Long: `Without arguments lists the recovery files, newest first. With a recovery
file writes the rank it holds to --output and removes the recovery file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			files, err := session.RecoveryFiles(cfg.RecoveryDir)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		}
		if outputPath == "" {
			return errors.New("give the file to restore to with --output")
		}
		s := session.New(nil, session.Never, log)
		if err := s.LoadRecovery(args[0]); err != nil {
			return err
		}
		if err := writeRankFile(outputPath, s.Rank()); err != nil {
			return err
		}
		return s.DeleteRecovery()
	},
}
