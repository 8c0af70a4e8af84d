package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/viper"

	"github.com/Paintersrp/citegraph/internal/config"
	"github.com/Paintersrp/citegraph/internal/constants"
	"github.com/Paintersrp/citegraph/internal/graph"
	"github.com/Paintersrp/citegraph/internal/layout"
	corpussvc "github.com/Paintersrp/citegraph/internal/services/corpus"
	"github.com/Paintersrp/citegraph/internal/store"
	"github.com/Paintersrp/citegraph/internal/store/file"
	"github.com/Paintersrp/citegraph/internal/store/postgres"
	"github.com/Paintersrp/citegraph/pkg/logger"
)

type State struct {
	Config      *config.Config
	Library     *config.Library
	LibraryName string
	Home        string
	Dir         string
	Store       store.Store
	Corpus      *corpussvc.Service
	Watcher     *LibraryWatcher
	View        *ViewState
	RootStatus  *RootStatus
}

type RootStatus struct {
	mu   sync.RWMutex
	line string
}

func (r *RootStatus) Set(line string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.line = line
}

func (r *RootStatus) Line() string {
	if r == nil {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.line
}

// NewState returns a State rooted at the user's home directory. Nothing is
// loaded until LoadConfig or Open is called.
func NewState() (*State, error) {
	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}
	return &State{Home: home, RootStatus: &RootStatus{}}, nil
}

// LoadConfig reads the configuration once. A library without a directory is
// not an error here so that init and library commands can repair it.
func (s *State) LoadConfig() (*config.Config, error) {
	if s.Config != nil {
		return s.Config, nil
	}

	cfg, err := LoadConfig(s.Home)
	var initErr *config.ConfigInitError
	if errors.As(err, &initErr) {
		cfg, err = config.Load(s.Home)
	}
	if err != nil {
		return nil, err
	}
	s.Config = cfg
	return cfg, nil
}

// Open loads the configuration, opens the active library's store and wires
// the watcher to the corpus service. Calling Open again is a no-op.
func (s *State) Open(ctx context.Context, libraryOverride string) error {
	if s.Corpus != nil {
		return nil
	}

	cfg, err := s.LoadConfig()
	if err != nil {
		return err
	}
	if libraryOverride != "" {
		if err := cfg.ActivateLibrary(libraryOverride); err != nil {
			return err
		}
	}

	lib, err := cfg.ActiveLibrary()
	if err != nil {
		return err
	}
	if lib.Dir == "" {
		return &config.ConfigInitError{}
	}
	if err := lib.Validate(); err != nil {
		return fmt.Errorf("library %q: %w", cfg.CurrentLibrary, err)
	}

	return s.openLibrary(ctx, cfg.CurrentLibrary, lib)
}

func (s *State) openLibrary(ctx context.Context, name string, lib *config.Library) error {
	st, err := OpenStore(ctx, lib)
	if err != nil {
		return err
	}

	staleness, err := lib.StalenessDuration()
	if err != nil {
		_ = st.Close()
		return err
	}
	corpus := corpussvc.NewService(st, staleness)

	view, err := LoadViewState(lib.Dir)
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("failed to load view state: %w", err)
	}
	if view.Direction == "" {
		view.Direction = layout.Direction(lib.Layout.Direction)
	}

	s.Library = lib
	s.LibraryName = name
	s.Dir = lib.Dir
	s.Store = st
	s.Corpus = corpus
	s.View = view
	if s.RootStatus == nil {
		s.RootStatus = &RootStatus{}
	}

	// Only the file store changes underneath us; a watcher failure degrades
	// to staleness based reloads.
	if _, ok := st.(*file.Store); ok {
		watcher, err := NewLibraryWatcher(lib.Dir)
		if err != nil {
			logger.Warn("library watcher unavailable", "dir", lib.Dir, "err", err)
		} else {
			watcher.OnChange(corpus.QueueUpdate)
			s.Watcher = watcher
		}
	}

	return nil
}

// OpenLibrary opens lib directly, bypassing the configuration file.
func OpenLibrary(ctx context.Context, name string, lib *config.Library) (*State, error) {
	s := &State{RootStatus: &RootStatus{}}
	if err := s.openLibrary(ctx, name, lib); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenStore builds the store configured for lib.
func OpenStore(ctx context.Context, lib *config.Library) (store.Store, error) {
	kind, err := store.ParseKind(lib.Store)
	if err != nil {
		return nil, err
	}
	switch kind {
	case store.KindPostgres:
		return postgres.Open(ctx, lib.PostgresDSN)
	default:
		return file.New(lib.Dir)
	}
}

// Weights returns the bridge weights of the active library.
func (s *State) Weights() graph.Weights {
	if s == nil || s.Library == nil {
		return graph.DefaultWeights()
	}
	return s.Library.Weights
}

// BuildOptions returns graph build options from the library layout
// settings and the persisted view.
func (s *State) BuildOptions() (graph.BuildOptions, error) {
	opts, size, err := s.Library.Layout.Options()
	if err != nil {
		return graph.BuildOptions{}, err
	}
	if s.View != nil && s.View.Direction != "" {
		opts.Direction = s.View.Direction
	}
	build := graph.BuildOptions{
		Direction: opts.Direction,
		NodeSize:  size,
		Layout:    layout.NewLayered(opts),
	}
	if s.View != nil {
		build.Hidden = s.View.HiddenSet()
	}
	return build, nil
}

// SaveView persists the view state of the active library.
func (s *State) SaveView() error {
	if s == nil || s.View == nil {
		return nil
	}
	return s.View.Save(s.Dir)
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory. err: %s", err)
	}

	return home, nil
}

func LoadConfig(home string) (*config.Config, error) {
	viper.AddConfigPath(home + constants.ConfigDir)
	viper.SetConfigName(constants.ConfigFile)
	viper.SetConfigType(constants.ConfigFileType)
	_ = viper.ReadInConfig()

	err := config.EnsureConfigExists(home)
	if err != nil {
		return nil, err
	}

	return config.Load(home)
}

// Close releases the watcher, the corpus service and the store.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	var errs []error
	if s.Watcher != nil {
		if err := s.Watcher.Close(); err != nil {
			errs = append(errs, err)
		}
		s.Watcher = nil
	}
	if s.Corpus != nil {
		if err := s.Corpus.Close(); err != nil && !errors.Is(err, corpussvc.ErrClosed) {
			errs = append(errs, err)
		}
		s.Corpus = nil
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, err)
		}
		s.Store = nil
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
