// CV Image Editor - desktop application
// Author: Ervins Strauhmanis
// License: MIT
// Version: 3.0.0 - Linear History Editor

package main

import (
	"flag"
	"fmt"
	"os"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/sirupsen/logrus"

	"cv-image-editor/internal/config"
	"cv-image-editor/internal/gui"
)

const (
	AppName    = "CV Image Editor"
	AppID      = "com.strauhmanis.cv-image-editor"
	AppVersion = "3.0.0"
)

func main() {
	cfg := config.FromEnv(config.Default())

	debugMode := flag.Bool("debug", cfg.Debug, "Enable debug mode with verbose logging")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	flag.IntVar(&cfg.ViewportWidth, "width", cfg.ViewportWidth, "Initial image viewport width")
	flag.IntVar(&cfg.ViewportHeight, "height", cfg.ViewportHeight, "Initial image viewport height")
	flag.IntVar(&cfg.JPEGQuality, "jpeg-quality", cfg.JPEGQuality, "JPEG quality used when saving (1-100)")
	flag.Parse()
	cfg.Debug = *debugMode

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	logger := config.NewLogger(cfg, os.Stdout)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": cfg.Debug,
	}).Info("Starting CV Image Editor")
	logger.Debug("Debug logging enabled")

	myApp := app.NewWithID(AppID)
	myApp.SetIcon(theme.DocumentIcon())

	mainApp := gui.NewApplication(myApp, cfg, logger)
	if path := flag.Arg(0); path != "" {
		if err := mainApp.LoadImageFromPath(path); err != nil {
			logger.WithError(err).WithField("filepath", path).Error("Failed to open image from command line")
		}
	}
	mainApp.ShowAndRun()

	logger.Info("Application shutting down gracefully")
}
