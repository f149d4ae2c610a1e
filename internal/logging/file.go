package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// openSessionFile creates <logDir>/session_<timestamp>.log and points
// latest.log at it.
func openSessionFile(logDir string) (*os.File, string, error) {
	if !filepath.IsAbs(logDir) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("get working directory: %w", err)
		}
		logDir = filepath.Join(cwd, logDir)
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, "", fmt.Errorf("create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(logDir, fmt.Sprintf("session_%s.log", timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, "", fmt.Errorf("create log file: %w", err)
	}

	latestPath := filepath.Join(logDir, "latest.log")
	_ = os.Remove(latestPath)
	_ = os.Symlink(filepath.Base(logPath), latestPath)

	return file, logPath, nil
}
