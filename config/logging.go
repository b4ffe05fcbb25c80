package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

const (
	logDir      = "logs"
	logFileName = "discovery-api.log"
)

// LogWriter receives application, gin and gorm output. It stays on stdout
// until InitLogging succeeds.
var LogWriter io.Writer = os.Stdout

// LogFilePath is the file the log monitor tails.
func LogFilePath() string {
	return filepath.Join(logDir, logFileName)
}

// InitLogging tees the standard logger into LogFilePath. If the file cannot
// be opened output stays on stdout and the returned file is nil.
func InitLogging() (*os.File, io.Writer) {
	logFile, err := openLogFile(LogFilePath())
	if err != nil {
		log.Printf("Warning: logging to stdout only: %v", err)
		LogWriter = os.Stdout
	} else {
		LogWriter = io.MultiWriter(os.Stdout, logFile)
	}
	log.SetOutput(LogWriter)
	return logFile, LogWriter
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
