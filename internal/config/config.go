package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/shlex"
)

const (
	EnvConfig      = "ELFSYM_CONFIG"
	EnvVerbose     = "ELFSYM_VERBOSE"
	EnvDemangle    = "ELFSYM_DEMANGLE"
	EnvDefinedOnly = "ELFSYM_DEFINED_ONLY"
	EnvOptions     = "ELFSYM_OPTIONS"
)

const (
	appDir   = "elfsym"
	fileName = "config.toml"
)

type Archive struct {
	SkipInvalid bool `toml:"skip-invalid"`
}

type Config struct {
	Verbose     bool    `toml:"verbose"`
	Demangle    bool    `toml:"demangle"`
	DefinedOnly bool    `toml:"defined-only"`
	Archive     Archive `toml:"archive"`

	File string `toml:"-"`
}

// Load reads the configuration from file. When file is empty, the file
// named by ELFSYM_CONFIG is used, then the default location in the user
// configuration directory; the default file is allowed to be missing.
// Environment overrides are applied on the result.
func Load(file string) (Config, error) {
	return load(file, os.LookupEnv)
}

func load(file string, lookup func(string) (string, bool)) (Config, error) {
	var (
		cfg      Config
		optional bool
	)
	if file == "" {
		file, _ = lookup(EnvConfig)
	}
	if file == "" {
		file, optional = DefaultPath(), true
	}
	if file != "" {
		c, err := DecodeFile(file)
		switch {
		case err == nil:
			cfg = c
		case optional && errors.Is(err, fs.ErrNotExist):
		default:
			return cfg, err
		}
	}
	return cfg, cfg.Env(lookup)
}

// DefaultPath gives $XDG_CONFIG_HOME/elfsym/config.toml (~/.config when
// unset) or the empty string when no configuration directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDir, fileName)
}

func DecodeFile(file string) (Config, error) {
	r, err := os.Open(file)
	if err != nil {
		return Config{}, err
	}
	defer r.Close()

	cfg, err := Decode(r)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", file, err)
	}
	cfg.File = file
	return cfg, nil
}

// Decode parses a TOML document. Keys that do not match any option are
// rejected.
func Decode(r io.Reader) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeReader(r, &cfg)
	if err != nil {
		return cfg, err
	}
	if keys := meta.Undecoded(); len(keys) > 0 {
		list := make([]string, 0, len(keys))
		for _, k := range keys {
			list = append(list, k.String())
		}
		return cfg, fmt.Errorf("unknown option(s): %s", strings.Join(list, ", "))
	}
	return cfg, nil
}

// Env overrides the options with the values of the ELFSYM_* variables.
func (c *Config) Env(lookup func(string) (string, bool)) error {
	vars := []struct {
		Name  string
		Value *bool
	}{
		{Name: EnvVerbose, Value: &c.Verbose},
		{Name: EnvDemangle, Value: &c.Demangle},
		{Name: EnvDefinedOnly, Value: &c.DefinedOnly},
	}
	for _, v := range vars {
		str, ok := lookup(v.Name)
		if !ok || str == "" {
			continue
		}
		b, err := strconv.ParseBool(str)
		if err != nil {
			return fmt.Errorf("%s: %q is not a boolean", v.Name, str)
		}
		*v.Value = b
	}
	return nil
}

// Options splits ELFSYM_OPTIONS with shell quoting rules. The result is
// meant to be placed before the arguments of a command.
func Options() ([]string, error) {
	str, ok := os.LookupEnv(EnvOptions)
	if !ok || strings.TrimSpace(str) == "" {
		return nil, nil
	}
	return shlex.Split(str)
}
