package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"cv-image-editor/internal/config"
)

var (
	version   = "3.0.0"
	verbose   bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "imgedit",
	Short: "Headless front end for the CV image editor",
	Long: `imgedit runs the editor's transform pipeline without a window.

It applies rotation, flips, brightness/contrast, blur and a named filter
to an image, optionally crops the result through a virtual viewport exactly
as the desktop editor does, and writes the committed image.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"imgedit %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// newLogger builds the command logger: warnings only unless --verbose.
func newLogger() (*logrus.Logger, config.Config, error) {
	cfg := config.FromEnv(config.Default())
	cfg.LogFormat = logFormat
	if verbose {
		cfg.Debug = true
	} else if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if err := cfg.Validate(); err != nil {
		return nil, cfg, err
	}
	return config.NewLogger(cfg, os.Stderr), cfg, nil
}
