package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/s2quake/vtree/internal/backend/local"
	"github.com/s2quake/vtree/internal/backend/memory"
	"github.com/s2quake/vtree/internal/config"
	"github.com/s2quake/vtree/internal/logging"
	"github.com/s2quake/vtree/internal/metrics"
	"github.com/s2quake/vtree/internal/snapshot"
	"github.com/s2quake/vtree/internal/storage"
	"github.com/s2quake/vtree/internal/tui"
	"github.com/s2quake/vtree/internal/vpath"
	"github.com/s2quake/vtree/pkg/vtree"
)

// session is one opened storage plus the ambient pieces a command needs.
type session struct {
	cfg      *config.Config
	logger   vtree.Logger
	recorder *metrics.Recorder
	display  *tui.ProgressDisplay
	store    *storage.Storage
	out      io.Writer
}

// loadConfig resolves the effective configuration: file, then .env and
// environment, then flags. A missing vtree.yaml is not an error.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	var (
		cfg *config.Config
		err error
	)
	if globalFlags.configPath != "" {
		cfg, err = config.LoadFile(globalFlags.configPath)
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("config file %s not found: %w", globalFlags.configPath, vtree.ErrInvalidConfig)
		}
	} else {
		cfg, err = config.Load(".")
		if errors.Is(err, config.ErrConfigNotFound) {
			cfg, err = config.Default(), nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if globalFlags.backend != "" {
		cfg.Backend = globalFlags.backend
	}
	if globalFlags.root != "" {
		cfg.Local.Root = globalFlags.root
	}
	if globalFlags.writePolicy != "" {
		cfg.Local.WritePolicy = local.WritePolicy(globalFlags.writePolicy)
	}
	if globalFlags.verbose {
		cfg.Log.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newBackend builds the backend named by cfg.
func newBackend(cfg *config.Config) (vtree.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(cfg.Memory), nil
	case config.BackendLocal:
		return local.New(cfg.Local)
	default:
		return nil, fmt.Errorf("unknown backend %q: %w", cfg.Backend, vtree.ErrInvalidConfig)
	}
}

// openSession opens the configured storage for cmd. Callers must Close it.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Format, cfg.Log.Verbose)
	if err != nil {
		return nil, err
	}

	backend, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	recorder := metrics.NewRecorder()
	display := tui.NewProgressDisplay(cmd.ErrOrStderr())
	store, err := storage.New(recorder.Instrument(backend),
		storage.WithLogger(logger),
		storage.WithProgress(display.Progress()),
	)
	if err != nil {
		backend.Close()
		return nil, err
	}

	s := &session{
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
		display:  display,
		store:    store,
		out:      cmd.OutOrStdout(),
	}

	if cfg.Backend == config.BackendMemory && cfg.Memory.Snapshot != "" {
		stats, err := snapshot.ImportFile(cfg.Memory.Snapshot, store)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to preload %s: %w", cfg.Memory.Snapshot, err)
		}
		logger.Verbose("preloaded %d folders and %d files from %s", stats.Folders, stats.Files, cfg.Memory.Snapshot)
	}
	return s, nil
}

// Close records tree metrics, writes the metrics file when configured and
// closes the storage.
func (s *session) Close() error {
	s.recorder.SetTreeSize(len(s.store.FolderPaths()), len(s.store.FilePaths()))

	var errs []error
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.cfg.MetricsFile != "" {
		if err := s.recorder.WriteToTextfile(s.cfg.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	if zl, ok := s.logger.(*logging.ZapLogger); ok {
		_ = zl.Sync()
	}
	return errors.Join(errs...)
}

// withSession opens a session, runs fn and closes the session, keeping the
// first error.
func withSession(cmd *cobra.Command, fn func(*session) error) (err error) {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// virtualPath turns a command-line argument into a virtual path: a leading
// separator is added and a trailing one dropped.
func virtualPath(arg string) (string, error) {
	p := strings.TrimSpace(arg)
	if p == "" || p == vtree.Root {
		return vtree.Root, nil
	}
	if !strings.HasPrefix(p, vtree.Separator) {
		p = vtree.Separator + p
	}
	p = strings.TrimSuffix(p, vtree.Separator)
	if _, err := vpath.Split(p); err != nil {
		return "", vtree.NewError(vtree.OpResolve, arg, vtree.ErrInvalidPath, err)
	}
	return p, nil
}

// node is a path argument resolved to either a folder or a file.
type node struct {
	isDir  bool
	folder storage.Folder
	file   storage.File
}

// resolve looks up path as a folder first, then as a file. preferFile
// reverses the order for names held by both.
func (s *session) resolve(arg string, preferFile bool) (node, error) {
	path, err := virtualPath(arg)
	if err != nil {
		return node{}, err
	}
	folder, ferr := s.store.ResolveFolder(path)
	file, err := s.store.ResolveFile(path)
	switch {
	case err == nil && (preferFile || ferr != nil):
		return node{file: file}, nil
	case ferr == nil:
		return node{isDir: true, folder: folder}, nil
	default:
		return node{}, ferr
	}
}
