// Runtime configuration and logger setup
package config

import (
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Environment variables read by FromEnv.
const (
	EnvLogLevel    = "IMGEDIT_LOG_LEVEL"
	EnvLogFormat   = "IMGEDIT_LOG_FORMAT"
	EnvJPEGQuality = "IMGEDIT_JPEG_QUALITY"
)

// Config controls logging, the initial viewport and codec output.
type Config struct {
	Debug          bool
	LogLevel       string // overrides the level implied by Debug when set
	LogFormat      string // "text" or "json"; empty picks by Debug
	ViewportWidth  int
	ViewportHeight int
	JPEGQuality    int
}

func Default() Config {
	return Config{
		ViewportWidth:  800,
		ViewportHeight: 600,
		JPEGQuality:    95,
	}
}

// FromEnv overlays environment variables on cfg.
func FromEnv(cfg Config) Config {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		if strings.EqualFold(v, "debug") {
			cfg.Debug = true
		}
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := os.Getenv(EnvJPEGQuality); v != "" {
		if q, err := strconv.Atoi(v); err == nil {
			cfg.JPEGQuality = q
		}
	}
	return cfg
}

func (c Config) Validate() error {
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.ViewportWidth, c.ViewportHeight)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be between 1 and 100, got %d", c.JPEGQuality)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format: %q", c.LogFormat)
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) Viewport() image.Point {
	return image.Point{X: c.ViewportWidth, Y: c.ViewportHeight}
}

// NewLogger builds the application logger: colored text at debug level in
// debug mode, JSON at info level otherwise.
func NewLogger(c Config, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	format := c.LogFormat
	if format == "" {
		format = "json"
		if c.Debug {
			format = "text"
		}
	}

	if c.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	if c.LogLevel != "" {
		if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
			logger.SetLevel(lvl)
		}
	}

	if format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   c.Debug,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return logger
}
