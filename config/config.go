// Package config loads the optional .basicstructrc.toml project file that
// selects the emitter target without needing a flag for it, the same way sqlcode's cmd package reads a project-root config
// file before touching the database.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds every setting the transpile pipeline accepts from
// .basicstructrc.toml. Every field has a sane zero-value fallback, so a
// missing file (the common case) is never an error.
type Config struct {
	// IndentWidth is decoded from indent_width. Nothing reads it: the Go
	// emitter always indents with one tab per nesting level.
	IndentWidth int `toml:"indent_width"`

	// ProcPrefix is decoded from proc_prefix. Nothing reads it: procedures
	// extracted from GOSUB targets are always named by cflow.ProcName with
	// the "f_" prefix.
	ProcPrefix string `toml:"proc_prefix"`

	// Target names the emitter backend to use. Only "go" exists today;
	// the field exists so a second backend doesn't need a new flag.
	Target string `toml:"target"`
}

// Default returns the configuration the pipeline runs with when no
// .basicstructrc.toml is present.
func Default() Config {
	return Config{ProcPrefix: "f_", Target: "go"}
}

// Load searches dir and its ancestors for .basicstructrc.toml and
// decodes it, falling back to Default() without error when no file is
// found anywhere up the tree.
func Load(dir string) (Config, error) {
	path, found, err := findConfigFile(dir)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if !found {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

const configFileName = ".basicstructrc.toml"

func findConfigFile(dir string) (path string, found bool, err error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false, err
	}
	for {
		candidate := filepath.Join(abs, configFileName)
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, true, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", false, nil
		}
		abs = parent
	}
}
