// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Crystalnix/BitPop-sub015/internal/config"
	"github.com/Crystalnix/BitPop-sub015/internal/issue"
	"github.com/Crystalnix/BitPop-sub015/pkg/extension"
	"github.com/Crystalnix/BitPop-sub015/pkg/manifest"
	"github.com/Crystalnix/BitPop-sub015/pkg/types"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. Every Cobra handler
	// receives an App and reads configuration, output streams and the
	// logger through it.
	App struct {
		Config ConfigProvider
		Logger *log.Logger
		stdout io.Writer
		stderr io.Writer

		verbose    bool
		configPath string
		cfg        *config.Config
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// loadRequest describes one extension load issued by a command.
	loadRequest struct {
		Path     string
		Location extension.Location
		Flags    extension.LoadFlags
		Sets     []string
		ID       string
	}
)

// NewApp builds an App from deps, filling unset fields with defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	app.Logger = log.NewWithOptions(app.stderr, log.Options{Prefix: "extctl"})
	app.Logger.SetLevel(log.WarnLevel)
	return app
}

// loadConfig resolves the configuration once per process. A broken config
// file is reported and the defaults are used instead.
func (a *App) loadConfig(ctx context.Context) *config.Config {
	if a.cfg != nil {
		return a.cfg
	}

	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: types.FilesystemPath(a.configPath)})
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.verbose))
		cfg = config.DefaultConfig()
	}
	a.cfg = cfg

	if cfg.UI.Verbose {
		a.verbose = true
	}
	if a.verbose {
		a.Logger.SetLevel(log.DebugLevel)
	}
	return cfg
}

// Stdout returns the writer commands print results to.
func (a *App) Stdout() io.Writer { return a.stdout }

// Stderr returns the writer commands print diagnostics to.
func (a *App) Stderr() io.Writer { return a.stderr }

// loadExtension reads, patches and constructs the extension named by req.
func (a *App) loadExtension(ctx context.Context, req loadRequest) (*extension.Extension, error) {
	cfg := a.loadConfig(ctx)

	m, root, err := readManifest(req.Path)
	if err != nil {
		return nil, err
	}

	for _, set := range req.Sets {
		key, raw, ok := strings.Cut(set, "=")
		if !ok || key == "" {
			return nil, newUsageError(fmt.Errorf("--set %q: want key=json", set))
		}
		if m, err = m.WithRaw(key, raw); err != nil {
			return nil, newUsageError(fmt.Errorf("--set %q: %w", set, err))
		}
	}

	opts := []extension.Option{
		extension.WithSettings(cfg.EngineSettings()),
		extension.WithLogger(a.Logger),
	}
	if req.ID != "" {
		opts = append(opts, extension.WithExplicitID(req.ID))
	}

	flags := req.Flags | cfg.LoadFlags()
	a.Logger.Debug("loading extension", "path", root, "location", req.Location, "flags", flags)

	ext, err := extension.New(root, req.Location, m, flags, opts...)
	if err != nil {
		return nil, loadFailure(root, err)
	}
	return ext, nil
}

// readManifest loads the manifest at path and returns the absolute
// extension root it belongs to.
func readManifest(path string) (*manifest.Manifest, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %s: %w", path, err)
	}

	root := abs
	if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
		root = filepath.Dir(abs)
	}

	m, err := manifest.Load(abs)
	if err != nil {
		return nil, "", manifestFailure(path, err)
	}
	return m, root, nil
}

func manifestFailure(path string, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("read manifest").
		WithResource(path)
	switch {
	case errors.Is(err, manifest.ErrManifestNotFound):
		ctx = ctx.WithIssue(issue.ManifestNotFoundId).
			WithSuggestion("Pass the extension directory or its manifest.json")
	default:
		ctx = ctx.WithIssue(issue.ManifestParseErrorId).
			WithSuggestion("Run 'extctl validate' to list every structural problem")
	}
	return &ExitError{Code: types.ExitInvalidManifest, Err: ctx.Wrap(err).BuildError()}
}

func loadFailure(root string, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("load extension").
		WithResource(root)
	if id, ok := classifyLoadError(err); ok {
		ctx = ctx.WithIssue(id).
			WithSuggestion(fmt.Sprintf("Run 'extctl explain %s' for details", issue.Get(id).Slug()))
	}
	return &ExitError{Code: types.ExitInvalidManifest, Err: ctx.Wrap(err).BuildError()}
}

// classifyLoadError maps a loader error onto the catalog entry that
// explains it best.
func classifyLoadError(err error) (issue.Id, bool) {
	var le *extension.LoadError
	if !errors.As(err, &le) {
		return 0, false
	}
	switch {
	case le.Message == extension.MsgExperimentalFlagRequired:
		return issue.ExperimentalRequiredId, true
	case le.Key == manifest.KeyPermissions || le.Key == manifest.KeyOptionalPermissions:
		return issue.InvalidPermissionId, true
	case le.Key == manifest.KeyContentScripts && strings.Contains(le.Message, "matches"):
		return issue.InvalidMatchPatternId, true
	case strings.Contains(le.Message, "'app.urls") || strings.Contains(le.Message, "extent"):
		return issue.InvalidMatchPatternId, true
	}
	return 0, false
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
