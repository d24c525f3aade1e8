package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/organforge/pipework/config"
	"github.com/organforge/pipework/internal/logging"
	"github.com/organforge/pipework/session"
	"github.com/organforge/pipework/version"
)

var (
	cfg *config.Config
	log *zap.Logger

	envFile    string
	logLevel   string
	assumeYes  bool
	outputPath string
)

var rootCmd = &cobra.Command{
	Use:           "rankctl",
	Short:         "Edit the ranks of an organ definition",
	Long:          `rankctl loads pipe samples into ranks, resizes and shifts them, borrows pipes from other stops and writes them as definition file sections.`,
	Version:       version.VersionOrHash,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		cfg = config.Load(files...)
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		var err error
		log, err = logging.New(logging.Config{
			Level:      cfg.LogLevel,
			OutputPath: cfg.LogFile,
			MaxSize:    cfg.LogMaxSize,
			MaxBackups: cfg.LogMaxBackups,
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "load settings from this .env file instead of ./.env")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "write the result here instead of over the input")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every confirmation")
}

// confirmer asks on stdin unless --yes was given.
func confirmer(in io.Reader, out io.Writer) session.Confirmer {
	if assumeYes {
		return session.Always
	}
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%v [y/N] ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
