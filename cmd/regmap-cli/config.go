package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors the optional rc file. Every key is optional; a
// value applies only when present in the file and the matching flag was
// not set on the command line.
type fileConfig struct {
	Profile  string `toml:"profile"`
	Addr     string `toml:"addr"`
	Port     int    `toml:"port"`
	Serial   string `toml:"serial"`
	Baud     int    `toml:"baud"`
	Slave    int    `toml:"slave"`
	Trace    string `toml:"trace"`
	LogLevel string `toml:"log_level"`
}

// defaultConfigPath returns ~/.config/regmap/cli.toml (or the platform
// equivalent).
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "regmap", "cli.toml")
}

// applyFileConfig overlays the rc file onto cfg. A missing default rc
// file is fine; a missing file named via -config is an error.
func applyFileConfig(cfg *Config, setFlags map[string]bool) error {
	path := cfg.ConfigFile
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path == "" {
		return nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load config %s: %w", path, err)
	}

	if meta.IsDefined("profile") && !setFlags["profile"] {
		cfg.Profile = strings.TrimSpace(raw.Profile)
	}
	if meta.IsDefined("addr") && !setFlags["addr"] {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("port") && !setFlags["port"] {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("serial") && !setFlags["serial"] {
		cfg.Serial = strings.TrimSpace(raw.Serial)
	}
	if meta.IsDefined("baud") && !setFlags["baud"] {
		cfg.Baud = raw.Baud
	}
	if meta.IsDefined("slave") && !setFlags["slave"] {
		cfg.Slave = raw.Slave
	}
	if meta.IsDefined("trace") && !setFlags["trace"] {
		cfg.Trace = strings.TrimSpace(raw.Trace)
	}
	if meta.IsDefined("log_level") && !setFlags["log_level"] {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	return nil
}
