package common

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger = log.New(os.Stderr, "[svslabel] ", log.LstdFlags|log.Lmicroseconds)
)

func Logf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}

// RotationConfig controls the rotating log file attached by SetupRotation.
type RotationConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

// SetupRotation tees log output into a size-rotated file under the configured
// directory while keeping stderr output intact.
func SetupRotation(cfg RotationConfig) error {
	if cfg.Directory == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return err
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 25
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 7
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 5
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Directory, "svslabel.log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxAge:     cfg.MaxAgeDays,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return nil
}
