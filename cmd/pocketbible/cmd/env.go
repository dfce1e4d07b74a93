package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/pocketbible/internal/assets"
	"github.com/Aman-CERP/pocketbible/internal/config"
	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
	"github.com/Aman-CERP/pocketbible/internal/logging"
	"github.com/Aman-CERP/pocketbible/internal/output"
	"github.com/Aman-CERP/pocketbible/internal/profiling"
	"github.com/Aman-CERP/pocketbible/internal/search"
	"github.com/Aman-CERP/pocketbible/internal/verse"
)

// lenientConfig marks commands that must run even when the configuration
// on disk is invalid, so it can be inspected or repaired.
const lenientConfig = "lenient-config"

// env is the state shared by every command: global flags, the effective
// configuration and the process logger.
type env struct {
	debug    bool
	json     bool
	external string
	bundled  string
	profile  profiling.Options

	cfg      *config.Config
	logger   *slog.Logger
	cleanup  func()
	profiler *profiling.Session
}

// setup loads configuration, applies flag overrides and installs the
// logger. It runs before every command.
func (e *env) setup(cmd *cobra.Command) error {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		root = cwd
	}

	cfg, loadErr := config.Load(root)
	if loadErr != nil {
		if _, ok := cmd.Annotations[lenientConfig]; !ok {
			return loadErr
		}
		cfg = config.NewConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("external") {
		cfg.Assets.ExternalRoot = e.external
	}
	if flags.Changed("bundled") {
		cfg.Assets.BundledRoot = e.bundled
	}
	if loadErr == nil {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	e.cfg = cfg

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.FilePath = cfg.Logging.File
	logCfg.Console = cmd.ErrOrStderr()
	if e.debug {
		logCfg.Level = "debug"
		if logCfg.FilePath == "" {
			logCfg.FilePath = logging.DefaultLogPath()
		}
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return err
	}
	e.logger = logger
	e.cleanup = cleanup
	slog.SetDefault(logger)

	if loadErr != nil {
		logger.Warn("configuration ignored", bberrors.LogAttr(loadErr))
	}
	logger.Debug("command started",
		slog.String("command", cmd.CommandPath()),
		slog.String("project_root", root))

	if e.profile.Enabled() {
		if e.profiler, err = profiling.Start(e.profile); err != nil {
			return err
		}
	}
	return nil
}

// teardown stops profiling, then flushes and closes the log file. It is
// safe to call more than once.
func (e *env) teardown() error {
	var err error
	if e.profiler != nil {
		err = e.profiler.Stop()
		e.profiler = nil
	}
	if e.cleanup != nil {
		e.log().Debug("command finished",
			slog.String("heap_in_use", profiling.FormatBytes(profiling.HeapInUse())))
		e.cleanup()
		e.cleanup = nil
	}
	return err
}

func (e *env) log() *slog.Logger {
	if e.logger == nil {
		return slog.Default()
	}
	return e.logger
}

// locator builds an asset locator over the configured roots.
func (e *env) locator() *assets.Locator {
	return assets.NewDirLocator(e.cfg.Assets.ExternalRoot, e.cfg.Assets.BundledRoot).
		WithLogger(e.log())
}

// resolve selects an asset root or explains why none qualifies.
func (e *env) resolve() (assets.Resolution, error) {
	res := e.locator().Resolve()
	if !res.Found() {
		return res, notFound(res)
	}
	return res, nil
}

func notFound(res assets.Resolution) error {
	return bberrors.New(bberrors.ErrCodeAssetNotFound, "no asset root holds a complete asset set", nil).
		WithDetail("diagnostic", res.Diagnostic).
		WithSuggestion("Run 'pocketbible locate' to see what is missing, or 'pocketbible build' to generate assets")
}

// verses resolves the roots and opens a loaded verse store.
func (e *env) verses() (*verse.Store, error) {
	res, err := e.resolve()
	if err != nil {
		return nil, err
	}
	return e.versesAt(res)
}

// versesAt opens a loaded verse store on an existing resolution.
func (e *env) versesAt(res assets.Resolution) (*verse.Store, error) {
	store := verse.New(res).WithLogger(e.log())
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

// searchOptions maps the search configuration onto index options.
func (e *env) searchOptions() search.Options {
	return search.Options{
		MaxResults:    e.cfg.Search.MaxResults,
		CacheSize:     e.cfg.Search.ShardCacheSize,
		MaxShardBytes: e.cfg.Search.MaxShardBytes,
		Logger:        e.log(),
	}
}

func (e *env) out(cmd *cobra.Command) *output.Writer {
	return output.New(cmd.OutOrStdout())
}

// emit writes v as JSON when --json is set and reports whether it did.
func (e *env) emit(cmd *cobra.Command, v any) (bool, error) {
	if !e.json {
		return false, nil
	}
	return true, e.out(cmd).JSON(v)
}
