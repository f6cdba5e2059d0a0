package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/fit-tracker/config"
	"github.com/lucasjlepore/fit-tracker/fitmsg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version string

// app is the state shared by subcommands after flag parsing.
type app struct {
	cfg config.Config
	log *logrus.Logger
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}
	var (
		envFile   string
		logLevel  string
		logFormat string
		dbPath    string
	)

	root := &cobra.Command{
		Use:          "fittrack",
		Short:        "Extract and export heart rate data from fit files",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			a.cfg = config.Load(files...)
			if cmd.Flags().Changed("log-level") {
				a.cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				a.cfg.LogFormat = logFormat
			}
			if cmd.Flags().Changed("db") {
				a.cfg.DBPath = dbPath
			}
			log, err := newLogger(cmd.ErrOrStderr(), a.cfg.LogLevel, a.cfg.LogFormat)
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", "", "Load configuration from this .env file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVar(&dbPath, "db", "fittrack.db", "Path to the sample archive")

	root.AddCommand(newTypeCommand(a))
	root.AddCommand(newHRCommand(a))
	root.AddCommand(newCSVCommand(a))
	root.AddCommand(newLineCommand(a))
	root.AddCommand(newPlotCommand(a))
	root.AddCommand(newSummarizeCommand(a))
	root.AddCommand(newDumpCommand(a))
	root.AddCommand(newExportCommand(a))
	root.AddCommand(newImportCommand(a))
	root.AddCommand(newWatchCommand(a))

	return root
}

func newLogger(w io.Writer, level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	switch strings.ToLower(format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	default:
		return nil, fmt.Errorf("log format %q: want text or json", format)
	}
	return log, nil
}

// decode reads a fit file, logging decode warnings.
func (a *app) decode(path string) (*fitmsg.Bundle, error) {
	bundle, err := fitmsg.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for _, w := range fitmsg.Warnings(bundle) {
		a.log.WithField("file", filepath.Base(path)).Warn(w)
	}
	return bundle, nil
}

// create opens path for writing; "-" is stdout.
func create(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// outputName derives "<base>.<ext>" in the working directory from a fit path.
func outputName(path, ext string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + ext
}
