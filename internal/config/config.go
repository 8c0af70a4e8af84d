package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/citegraph/internal/constants"
	"github.com/Paintersrp/citegraph/internal/graph"
	"github.com/Paintersrp/citegraph/internal/layout"
	"github.com/Paintersrp/citegraph/internal/store"
)

type LayoutConfig struct {
	Direction   string  `yaml:"direction"    json:"direction"`
	NodeWidth   float64 `yaml:"node_width"   json:"node_width"`
	NodeHeight  float64 `yaml:"node_height"  json:"node_height"`
	NodeSpacing float64 `yaml:"node_spacing" json:"node_spacing"`
	RankSpacing float64 `yaml:"rank_spacing" json:"rank_spacing"`
	MarginX     float64 `yaml:"margin_x"     json:"margin_x"`
	MarginY     float64 `yaml:"margin_y"     json:"margin_y"`
}

// Options converts the configuration into layout engine options.
func (lc LayoutConfig) Options() (layout.Options, layout.Size, error) {
	dir, err := layout.ParseDirection(lc.Direction)
	if err != nil {
		return layout.Options{}, layout.Size{}, err
	}
	opts := layout.DefaultOptions()
	opts.Direction = dir
	opts.NodeSpacing = lc.NodeSpacing
	opts.RankSpacing = lc.RankSpacing
	opts.Margin = layout.Margin{X: lc.MarginX, Y: lc.MarginY}
	return opts, layout.Size{Width: lc.NodeWidth, Height: lc.NodeHeight}, nil
}

type ReviewConfig struct {
	Directory string `yaml:"directory" json:"directory"`
	Limit     int    `yaml:"limit"     json:"limit"`
}

type BackupConfig struct {
	Bucket          string `yaml:"bucket"            json:"bucket"`
	Prefix          string `yaml:"prefix"            json:"prefix"`
	Region          string `yaml:"region"            json:"region"`
	Endpoint        string `yaml:"endpoint"          json:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"     json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"-"`
}

func (bc BackupConfig) Enabled() bool {
	return strings.TrimSpace(bc.Bucket) != ""
}

// Library is one configured paper collection.
type Library struct {
	Dir         string        `yaml:"dir"          json:"dir"`
	Store       string        `yaml:"store"        json:"store"`
	PostgresDSN string        `yaml:"postgres_dsn" json:"-"`
	Staleness   string        `yaml:"staleness"    json:"staleness"`
	Layout      LayoutConfig  `yaml:"layout"       json:"layout"`
	Weights     graph.Weights `yaml:"weights"      json:"weights"`
	Review      ReviewConfig  `yaml:"review"       json:"review"`
	Backup      BackupConfig  `yaml:"backup"       json:"backup"`
}

// UnmarshalYAML decodes over the defaults so partial blocks such as a single
// weight override keep the remaining defaults.
func (lib *Library) UnmarshalYAML(value *yaml.Node) error {
	type plain Library
	raw := plain(*NewLibrary(""))
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*lib = Library(raw)
	return nil
}

type Config struct {
	Libraries      map[string]*Library `yaml:"libraries"       json:"libraries"`
	CurrentLibrary string              `yaml:"current_library" json:"current_library"`
	LogLevel       string              `yaml:"log_level"       json:"log_level"`

	home   string   `yaml:"-"`
	active *Library `yaml:"-"`
}

const (
	defaultLibraryName = "default"
	defaultStaleness   = "60s"
	defaultReviewLimit = 10
)

func NewLibrary(dir string) *Library {
	opts := layout.DefaultOptions()
	return &Library{
		Dir:       dir,
		Store:     string(store.KindFile),
		Staleness: defaultStaleness,
		Layout: LayoutConfig{
			Direction:   string(opts.Direction),
			NodeWidth:   layout.DefaultNodeSize.Width,
			NodeHeight:  layout.DefaultNodeSize.Height,
			NodeSpacing: opts.NodeSpacing,
			RankSpacing: opts.RankSpacing,
			MarginX:     opts.Margin.X,
			MarginY:     opts.Margin.Y,
		},
		Weights: graph.DefaultWeights(),
		Review:  ReviewConfig{Directory: constants.ReviewDir, Limit: defaultReviewLimit},
	}
}

func (lib *Library) ensureDefaults() {
	lib.Dir = strings.TrimSpace(lib.Dir)
	if lib.Store == "" {
		lib.Store = string(store.KindFile)
	}
	if lib.Staleness == "" {
		lib.Staleness = defaultStaleness
	}
	if strings.TrimSpace(lib.Review.Directory) == "" {
		lib.Review.Directory = constants.ReviewDir
	}
	if lib.Review.Limit <= 0 {
		lib.Review.Limit = defaultReviewLimit
	}
}

// Validate checks the values that would otherwise fail deep inside a command.
func (lib *Library) Validate() error {
	kind, err := store.ParseKind(lib.Store)
	if err != nil {
		return err
	}
	if kind == store.KindPostgres && strings.TrimSpace(lib.PostgresDSN) == "" {
		return fmt.Errorf("store %q requires postgres_dsn", kind)
	}
	if _, err := lib.StalenessDuration(); err != nil {
		return err
	}
	if _, _, err := lib.Layout.Options(); err != nil {
		return err
	}
	return lib.Weights.Validate()
}

func (lib *Library) StalenessDuration() (time.Duration, error) {
	d, err := time.ParseDuration(lib.Staleness)
	if err != nil {
		return 0, fmt.Errorf("invalid staleness %q: %w", lib.Staleness, err)
	}
	return d, nil
}

// ReviewDir resolves the review log directory against the library directory.
func (lib *Library) ReviewDir() string {
	dir := lib.Review.Directory
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(lib.Dir, dir)
}

func Load(home string) (*Config, error) {
	path := GetConfigPath(home)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{home: home}
	if len(strings.TrimSpace(string(data))) == 0 {
		cfg.Libraries = map[string]*Library{
			defaultLibraryName: NewLibrary(""),
		}
		cfg.CurrentLibrary = defaultLibraryName
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.ensureInitialized(); err != nil {
		return nil, err
	}

	lib, err := cfg.ActiveLibrary()
	if err != nil {
		return nil, err
	}
	if err := lib.Validate(); err != nil {
		return nil, fmt.Errorf("library %q: %w", cfg.CurrentLibrary, err)
	}

	return cfg, nil
}

func (cfg *Config) ensureInitialized() error {
	if cfg.Libraries == nil {
		cfg.Libraries = make(map[string]*Library)
	}

	if cfg.CurrentLibrary == "" {
		if len(cfg.Libraries) == 0 {
			cfg.Libraries[defaultLibraryName] = NewLibrary("")
			cfg.CurrentLibrary = defaultLibraryName
		} else {
			cfg.CurrentLibrary = cfg.LibraryNames()[0]
		}
	}

	return cfg.setActiveLibrary(cfg.CurrentLibrary)
}

func (cfg *Config) setActiveLibrary(name string) error {
	if name == "" {
		return fmt.Errorf("library name cannot be empty")
	}
	lib, ok := cfg.Libraries[name]
	if !ok {
		return fmt.Errorf("library %q does not exist", name)
	}
	if lib == nil {
		lib = NewLibrary("")
		cfg.Libraries[name] = lib
	}

	lib.ensureDefaults()
	cfg.CurrentLibrary = name
	cfg.active = lib

	syncLibraryWithViper(name, lib)
	return nil
}

func syncLibraryWithViper(name string, lib *Library) {
	viper.Set("library", name)
	viper.Set("library_dir", lib.Dir)
	viper.Set("store", lib.Store)
	viper.Set("layout.direction", lib.Layout.Direction)
}

func (cfg *Config) ActiveLibrary() (*Library, error) {
	if cfg.active != nil {
		return cfg.active, nil
	}

	if cfg.CurrentLibrary == "" {
		return nil, fmt.Errorf("no library is currently selected")
	}

	if err := cfg.setActiveLibrary(cfg.CurrentLibrary); err != nil {
		return nil, err
	}

	return cfg.active, nil
}

func (cfg *Config) LibraryNames() []string {
	names := make([]string, 0, len(cfg.Libraries))
	for name := range cfg.Libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SwitchLibrary makes name current and persists the choice.
func (cfg *Config) SwitchLibrary(name string) error {
	if err := cfg.setActiveLibrary(name); err != nil {
		return err
	}
	return cfg.Save()
}

// ActivateLibrary selects name for this process only.
func (cfg *Config) ActivateLibrary(name string) error {
	return cfg.setActiveLibrary(name)
}

func (cfg *Config) AddLibrary(name string, lib *Library, makeCurrent bool) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("library name cannot be empty")
	}

	if cfg.Libraries == nil {
		cfg.Libraries = make(map[string]*Library)
	}

	if existing, exists := cfg.Libraries[trimmed]; exists && existing.Dir != "" {
		return fmt.Errorf("library %q already exists", trimmed)
	}

	if lib == nil {
		lib = NewLibrary("")
	}
	lib.ensureDefaults()
	if err := lib.Validate(); err != nil {
		return err
	}
	cfg.Libraries[trimmed] = lib

	// A fresh config carries an unconfigured default library; replace it.
	if placeholder, ok := cfg.Libraries[defaultLibraryName]; ok && trimmed != defaultLibraryName && placeholder.Dir == "" {
		delete(cfg.Libraries, defaultLibraryName)
		if cfg.CurrentLibrary == defaultLibraryName {
			cfg.CurrentLibrary = ""
			cfg.active = nil
		}
	}

	if cfg.CurrentLibrary == "" || makeCurrent {
		if err := cfg.setActiveLibrary(trimmed); err != nil {
			return err
		}
	}

	return cfg.Save()
}

func (cfg *Config) RemoveLibrary(name string) error {
	if len(cfg.Libraries) <= 1 {
		return fmt.Errorf("cannot remove the last library")
	}

	if _, exists := cfg.Libraries[name]; !exists {
		return fmt.Errorf("library %q does not exist", name)
	}

	delete(cfg.Libraries, name)

	if cfg.CurrentLibrary == name {
		cfg.active = nil
		cfg.CurrentLibrary = ""
		if err := cfg.ensureInitialized(); err != nil {
			return err
		}
	}

	return cfg.Save()
}

func (cfg *Config) Path() string {
	home := cfg.home
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return ""
		}
	}
	return GetConfigPath(home)
}

func (cfg *Config) Save() error {
	if _, err := cfg.ActiveLibrary(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	configPath := cfg.Path()
	if configPath == "" {
		return fmt.Errorf("cannot resolve config path")
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o600)
}
