// Package config layers jxfetch settings from defaults, the project config
// file, JXFETCH_* environment variables and command-line overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/3leaps/jxfetch/internal/host/listing"
	"github.com/3leaps/jxfetch/internal/model"
	"github.com/3leaps/jxfetch/internal/platform"
)

const (
	KeyListingURL      = "listing.url"
	KeyMinisignKey     = "listing.minisign_key"
	KeyMajor           = "toolchain.major"
	KeyStorePath       = "store.path"
	KeyConnectTimeout  = "fetch.connect_timeout"
	KeyReadTimeout     = "fetch.read_timeout"
	KeyUserAgent       = "fetch.user_agent"
	KeyJournalPath     = "journal.path"
	KeyCacheDir        = "cache.dir"
	KeyGenerateOutput  = "generate.output"
	KeyGeneratePackage = "generate.package"
	KeyLogLevel        = "log.level"
)

const (
	DefaultListingURL = "https://jdk.java.net/jextract/"
	DefaultMajor      = 25
	DefaultStorePath  = "jextract.version"
	DefaultOutput     = "jextract_version_gen.go"
	DefaultPackage    = "jextract"

	// ProjectConfigName is looked up in the working directory and its parents.
	ProjectConfigName = ".jxfetch.json"
	envPrefix         = "JXFETCH"
)

// pathKeys hold filesystem paths resolved against the project root.
var pathKeys = []string{KeyMinisignKey, KeyStorePath, KeyJournalPath, KeyCacheDir, KeyGenerateOutput}

type loadSettings struct {
	workingDir string
	configPath string
	overrides  map[string]any
}

// Option configures Load. Useful for tests to override paths.
type Option func(*loadSettings)

// WithWorkingDir overrides the directory used for project config discovery.
func WithWorkingDir(dir string) Option {
	return func(s *loadSettings) {
		s.workingDir = dir
	}
}

// WithConfigFile explicitly sets the project config path instead of discovery.
func WithConfigFile(path string) Option {
	return func(s *loadSettings) {
		s.configPath = path
	}
}

// WithOverrides injects values typically coming from CLI flags. They win over
// every other layer.
func WithOverrides(overrides map[string]any) Option {
	return func(s *loadSettings) {
		if s.overrides == nil {
			s.overrides = make(map[string]any, len(overrides))
		}
		for k, v := range overrides {
			s.overrides[k] = v
		}
	}
}

// Config is one loaded configuration.
type Config struct {
	v    *viper.Viper
	file string // project config file that was merged, if any
	root string // base for relative paths
}

// Load resolves configuration using the precedence:
// defaults < project config < environment variables < overrides.
func Load(opts ...Option) (*Config, error) {
	settings := loadSettings{}
	for _, opt := range opts {
		opt(&settings)
	}

	workingDir := strings.TrimSpace(settings.workingDir)
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		workingDir = wd
	}

	configPath := strings.TrimSpace(settings.configPath)
	explicit := configPath != ""
	if !explicit {
		path, err := findProjectConfig(workingDir)
		if err != nil {
			return nil, err
		}
		configPath = path
	} else if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(workingDir, configPath)
	}

	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	merged, err := mergeConfigFile(v, configPath, explicit)
	if err != nil {
		return nil, fmt.Errorf("load project config: %w", err)
	}

	for k, val := range settings.overrides {
		v.Set(k, val)
	}

	cfg := &Config{v: v, root: workingDir}
	if merged {
		cfg.file = configPath
		cfg.root = filepath.Dir(configPath)
	}
	return cfg, nil
}

// File returns the project config file in use, or "" when none was found.
func (c *Config) File() string {
	return c.file
}

// Root returns the directory relative paths are resolved against.
func (c *Config) Root() string {
	return c.root
}

func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// Settings builds and validates the effective settings.
func (c *Config) Settings() (model.Settings, error) {
	s := model.Settings{
		ListingURL:     strings.TrimSpace(c.v.GetString(KeyListingURL)),
		MinisignKey:    c.path(KeyMinisignKey),
		Major:          c.v.GetInt(KeyMajor),
		StorePath:      c.path(KeyStorePath),
		UserAgent:      strings.TrimSpace(c.v.GetString(KeyUserAgent)),
		JournalPath:    c.path(KeyJournalPath),
		CacheDir:       c.path(KeyCacheDir),
		GenerateOutput: c.path(KeyGenerateOutput),
		GeneratePkg:    strings.TrimSpace(c.v.GetString(KeyGeneratePackage)),
		LogLevel:       strings.TrimSpace(c.v.GetString(KeyLogLevel)),
	}
	var unparsed []string
	var err error
	if s.ConnectTimeout, err = c.duration(KeyConnectTimeout); err != nil {
		unparsed = append(unparsed, err.Error())
	}
	if s.ReadTimeout, err = c.duration(KeyReadTimeout); err != nil {
		unparsed = append(unparsed, err.Error())
	}
	if err := invalid(append(unparsed, problems(s)...)); err != nil {
		return model.Settings{}, err
	}
	return s, nil
}

// duration reads a timeout that must spell out its unit ("5s", "750ms"). Bare
// numbers from the environment or flags would otherwise count as nanoseconds.
func (c *Config) duration(key string) (time.Duration, error) {
	switch v := c.v.Get(key).(type) {
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be a duration with a unit such as 5s, got %q", key, v)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("%s must be a duration with a unit such as 5s, got %v", key, v)
	}
}

func (c *Config) path(key string) string {
	p := strings.TrimSpace(c.v.GetString(key))
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.root, p)
}

// MinTimeout is the smallest accepted fetch timeout.
const MinTimeout = time.Millisecond

// Validate reports every semantic problem in s as one error.
func Validate(s model.Settings) error {
	return invalid(problems(s))
}

func invalid(problems []string) error {
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func problems(s model.Settings) []string {
	var problems []string

	if u, err := url.Parse(s.ListingURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("%s must be an absolute http(s) URL, got %q", KeyListingURL, s.ListingURL))
	}
	if s.Major <= 0 {
		problems = append(problems, fmt.Sprintf("%s must be positive, got %d", KeyMajor, s.Major))
	}
	if s.StorePath == "" {
		problems = append(problems, KeyStorePath+" must not be empty")
	}
	if s.ConnectTimeout < MinTimeout {
		problems = append(problems, fmt.Sprintf("%s must be at least %s, got %s", KeyConnectTimeout, MinTimeout, s.ConnectTimeout))
	}
	if s.ReadTimeout < MinTimeout {
		problems = append(problems, fmt.Sprintf("%s must be at least %s, got %s", KeyReadTimeout, MinTimeout, s.ReadTimeout))
	}
	if s.LogLevel != "" {
		if _, err := logrus.ParseLevel(s.LogLevel); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", KeyLogLevel, err))
		}
	}

	return problems
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyListingURL, DefaultListingURL)
	v.SetDefault(KeyMinisignKey, "")
	v.SetDefault(KeyMajor, DefaultMajor)
	v.SetDefault(KeyStorePath, DefaultStorePath)
	v.SetDefault(KeyConnectTimeout, listing.DefaultConnectTimeout.String())
	v.SetDefault(KeyReadTimeout, listing.DefaultReadTimeout.String())
	v.SetDefault(KeyUserAgent, "")
	v.SetDefault(KeyJournalPath, "")
	v.SetDefault(KeyCacheDir, platform.DefaultCacheRoot())
	v.SetDefault(KeyGenerateOutput, DefaultOutput)
	v.SetDefault(KeyGeneratePackage, DefaultPackage)
	v.SetDefault(KeyLogLevel, "info")
}

// mergeConfigFile validates and merges path. A missing file is only an error
// when it was named explicitly. Reports whether anything was merged.
func mergeConfigFile(v *viper.Viper, path string, explicit bool) (bool, error) {
	if strings.TrimSpace(path) == "" {
		return false, nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("config path %s is a directory", path)
	}
	// #nosec G304 -- config loader intentionally reads the project config file
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return true, nil
	}
	if err := ValidateDocument(data); err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

func findProjectConfig(startDir string) (string, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, ProjectConfigName)
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config path %s is a directory", candidate)
			}
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
