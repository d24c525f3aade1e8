package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/organforge/pipework/importer"
	"github.com/organforge/pipework/watch"
)

func init() {
	f := watchCmd.Flags()
	f.StringVarP(&importMode, "mode", "m", "import", "import mode to preview")
	f.StringVar(&importConvention, "convention", "", "naming convention to use")
	f.BoolVarP(&importVerbose, "verbose", "v", false, "list every sample and unmatched file")
	f.Duration("delay", watch.DefaultDelay, "quiet time before rescanning")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch FILE ROOT",
	Short: "Preview an import whenever the sample folder changes",
	Long: `Scans ROOT as the given import mode would, and scans again each time files
in it change. The rank file is never written.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rank, err := readRankFile(args[0])
		if err != nil {
			return err
		}
		mode, err := importer.ParseMode(importMode)
		if err != nil {
			return err
		}
		opts, err := importOptions(cmd)
		if err != nil {
			return err
		}
		root := args[1]
		out := cmd.OutOrStdout()
		scan := func() {
			// runs on a copy, the loaded rank stays as read
			rep, err := importer.Run(rank.Copy(), root, mode, opts)
			if err != nil {
				log.Warn("scan failed", zap.String("root", root), zap.Error(err))
				return
			}
			printReport(out, rep, importVerbose)
		}
		delay, _ := cmd.Flags().GetDuration("delay")
		w, err := watch.New(root, delay, scan, log)
		if err != nil {
			return err
		}
		defer w.Close()
		scan()
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
