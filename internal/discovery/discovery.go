package discovery

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wagiedev/provider-bridge-go/internal/errors"
)

const (
	// relScriptPath is the bridge script location relative to a build or
	// install root.
	relScriptPath = "dist/bridge/provider-bridge.js"

	// maxSearchDepth bounds the upward ancestor search from the current
	// working directory.
	maxSearchDepth = 5
)

// Config holds configuration for bridge script discovery.
type Config struct {
	// ScriptPath is an explicit script path that skips all searching.
	ScriptPath string

	// StartDir overrides the upward-search starting directory. Defaults
	// to the current working directory; tests use this.
	StartDir string

	// Logger is an optional logger for discovery operations.
	Logger *slog.Logger
}

// Locate finds the bridge service script.
//
// Search order:
//  1. The explicit path in Config.ScriptPath (if provided, used alone).
//  2. The packaged resource path next to the running executable. This is
//     the path packaged builds install to.
//  3. Upward from the starting directory through at most maxSearchDepth
//     ancestors, checking relScriptPath under each. This covers dev
//     builds run from somewhere inside the project tree.
//
// Failure returns a ServiceNotFoundError naming the starting directory
// and every candidate checked.
func Locate(cfg *Config) (string, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	log = log.With("component", "discovery")

	if cfg.ScriptPath != "" {
		log.Debug("using explicit script path", "path", cfg.ScriptPath)

		if _, err := os.Stat(cfg.ScriptPath); err == nil {
			return cfg.ScriptPath, nil
		}

		return "", &errors.ServiceNotFoundError{
			StartDir:      cfg.ScriptPath,
			SearchedPaths: []string{cfg.ScriptPath},
		}
	}

	searched := make([]string, 0, maxSearchDepth+2)

	// Packaged resource path first; works for installed builds.
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), relScriptPath)
		searched = append(searched, candidate)

		log.Debug("checking packaged resource path", "path", candidate)

		if _, err := os.Stat(candidate); err == nil {
			log.Debug("found bridge script at resource path", "path", candidate)

			return candidate, nil
		}
	}

	startDir := cfg.StartDir
	if startDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}

		startDir = cwd
	}

	log.Debug("searching upward for bridge script", "start", startDir)

	dir := startDir

	for i := 0; i < maxSearchDepth; i++ {
		candidate := filepath.Join(dir, relScriptPath)
		searched = append(searched, candidate)

		if _, err := os.Stat(candidate); err == nil {
			log.Debug("found bridge script", "path", candidate)

			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	log.Warn("bridge script not found", "start", startDir, "searched", searched)

	return "", &errors.ServiceNotFoundError{StartDir: startDir, SearchedPaths: searched}
}
