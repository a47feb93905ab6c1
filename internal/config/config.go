package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"rosedb/internal/logging"
	"rosedb/pkg/codec"
)

// Encryption modes accepted in [store] encryption.
const (
	EncryptionNone       = "none"
	EncryptionShift      = "shift"
	EncryptionPassphrase = "passphrase"
)

type Config struct {
	Store StoreConfig `toml:"store"`
	Log   LogConfig   `toml:"log"`
}

type StoreConfig struct {
	File       string `toml:"file"`
	Format     string `toml:"format"`
	Mkfile     bool   `toml:"mkfile"`
	Encryption string `toml:"encryption"`
	// Bolt, when set, keeps the document in a bbolt database instead of File.
	Bolt     string `toml:"bolt"`
	Document string `toml:"document"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Defaults returns a Config with sane defaults.
func Defaults() *Config {
	return &Config{
		Store: StoreConfig{
			File:       "~/.rosedb/data.json",
			Mkfile:     true,
			Encryption: EncryptionNone,
			Document:   "default",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads a TOML config file and returns the parsed Config.
// If path is empty, ~/.rosedb/config.toml is used when it exists.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = expandHome("~/.rosedb/config.toml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks every setting and returns all problems joined, each
// prefixed with its section.field name.
func (c *Config) Validate() error {
	var errs []error
	if c.Store.File == "" && c.Store.Bolt == "" {
		errs = append(errs, errors.New("store.file: either file or bolt must be set"))
	}
	if c.Store.Bolt != "" && c.Store.Document == "" {
		errs = append(errs, errors.New("store.document: required with store.bolt"))
	}
	if c.Store.Format != "" {
		if _, err := codec.ForFormat(c.Store.Format); err != nil {
			errs = append(errs, fmt.Errorf("store.format: %w", err))
		}
	}
	switch strings.ToLower(c.Store.Encryption) {
	case "", EncryptionNone, EncryptionShift, EncryptionPassphrase:
	default:
		errs = append(errs, fmt.Errorf("store.encryption: unknown mode %q", c.Store.Encryption))
	}
	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// ExpandHome resolves a leading ~/ to the user's home directory.
func ExpandHome(path string) string {
	return expandHome(path)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
