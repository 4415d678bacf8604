package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// File is the on-disk host configuration, read from a TOML file. All
// fields are optional; zero values leave the corresponding Option alone.
//
// Example:
//
//	script_path = "/opt/app/dist/bridge/provider-bridge.js"
//	node_path = "/usr/local/bin/node"
//	ready_timeout_ms = 10000
type File struct {
	ScriptPath     string `toml:"script_path"`
	NodePath       string `toml:"node_path"`
	WorkingDir     string `toml:"working_dir"`
	ReadyTimeoutMS int    `toml:"ready_timeout_ms"`
}

// DefaultFilePath returns the conventional config file location under the
// user's config directory.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determine user config directory: %w", err)
	}

	return filepath.Join(dir, "provider-bridge", "config.toml"), nil
}

// LoadFile reads the TOML configuration at path. An empty path means the
// default location; a missing file at the default location is not an
// error and yields an empty File.
func LoadFile(path string) (*File, error) {
	useDefault := path == ""

	if useDefault {
		var err error

		path, err = DefaultFilePath()
		if err != nil {
			return nil, err
		}
	}

	var f File

	if _, err := toml.DecodeFile(path, &f); err != nil {
		if useDefault && os.IsNotExist(err) {
			return &File{}, nil
		}

		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	return &f, nil
}

// Apply overlays the file's non-zero fields onto opts.
func (f *File) Apply(opts *Options) {
	if f.ScriptPath != "" {
		opts.ScriptPath = f.ScriptPath
	}

	if f.NodePath != "" {
		opts.NodePath = f.NodePath
	}

	if f.WorkingDir != "" {
		opts.WorkingDir = f.WorkingDir
	}

	if f.ReadyTimeoutMS > 0 {
		opts.ReadyTimeout = time.Duration(f.ReadyTimeoutMS) * time.Millisecond
	}
}
