// Package config loads archmap settings from an optional YAML file, a .env
// file and ARCHMAP_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the analysis root.
const FileName = ".archmap.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ARCHMAP_"

// Config holds run settings. Zero MaxFiles keeps every module. Zero
// CacheEntries disables the parse memo.
type Config struct {
	OutDir           string   `yaml:"out_dir"`
	TopN             int      `yaml:"top_n"`
	MaxFiles         int      `yaml:"max_files"`
	MaxFileSize      int64    `yaml:"max_file_size"`
	Workers          int      `yaml:"workers"`
	Exclude          []string `yaml:"exclude"`
	SkipDirs         []string `yaml:"skip_dirs"`
	SkipTests        bool     `yaml:"skip_tests"`
	CriticalPerLayer int      `yaml:"critical_per_layer"`
	CacheEntries     int      `yaml:"cache_entries"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		OutDir:           "archmap-out",
		TopN:             10,
		MaxFileSize:      1 << 20,
		Workers:          runtime.NumCPU(),
		Exclude:          []string{"**.min.js"},
		CriticalPerLayer: 5,
		CacheEntries:     256,
	}
}

// Validate rejects settings no run can honor.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.OutDir) == "" {
		errs = append(errs, errors.New("out_dir must not be empty"))
	}
	for name, v := range map[string]int64{
		"top_n":              int64(c.TopN),
		"max_files":          int64(c.MaxFiles),
		"max_file_size":      c.MaxFileSize,
		"workers":            int64(c.Workers),
		"critical_per_layer": int64(c.CriticalPerLayer),
		"cache_entries":      int64(c.CacheEntries),
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", name, v))
		}
	}
	return errors.Join(errs...)
}

// Load reads settings for root using the process environment.
func Load(root, path string) (Config, error) {
	return LoadWith(root, path, os.LookupEnv)
}

// LoadWith reads settings for root. path names the YAML file; when empty,
// root/.archmap.yaml is used if it exists. Values from root/.env apply
// only where lookup has no value. Environment values override the file.
func LoadWith(root, path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, FileName)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	dotenv, err := godotenv.Read(filepath.Join(root, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("reading .env: %w", err)
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := applyEnv(&cfg, env); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config, env func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := env(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := env(EnvPrefix + key); ok {
			*dst = SplitList(v)
		}
	}

	var errs []error
	num := func(key string, set func(int64)) {
		v, ok := env(EnvPrefix + key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
			return
		}
		set(n)
	}

	str("OUT_DIR", &cfg.OutDir)
	num("TOP_N", func(n int64) { cfg.TopN = int(n) })
	num("MAX_FILES", func(n int64) { cfg.MaxFiles = int(n) })
	num("MAX_FILE_SIZE", func(n int64) { cfg.MaxFileSize = n })
	num("WORKERS", func(n int64) { cfg.Workers = int(n) })
	num("CRITICAL_PER_LAYER", func(n int64) { cfg.CriticalPerLayer = int(n) })
	num("CACHE_ENTRIES", func(n int64) { cfg.CacheEntries = int(n) })
	list("EXCLUDE", &cfg.Exclude)
	list("SKIP_DIRS", &cfg.SkipDirs)

	if v, ok := env(EnvPrefix + "SKIP_TESTS"); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSKIP_TESTS: %w", EnvPrefix, err))
		} else {
			cfg.SkipTests = b
		}
	}

	return errors.Join(errs...)
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
