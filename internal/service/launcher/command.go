package launcher

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"

	"pinstrap/internal/archive"
	"pinstrap/internal/cache"
	"pinstrap/internal/config"
	"pinstrap/internal/fetch"
	"pinstrap/internal/handoff"
	"pinstrap/internal/interp"
	"pinstrap/internal/logger"
)

// Environment variables recognized by the launcher.
const (
	// EnvRuntimeOverride forces a specific "major.minor" runtime version.
	EnvRuntimeOverride = "PINSTRAP_RUNTIME"
	// EnvDevMode enables debug logging and prefers a pre-built local artifact.
	EnvDevMode = "PINSTRAP_DEV"
)

// artifactFileMode marks fetched artifacts executable.
const artifactFileMode os.FileMode = 0o755

// Options are inputs accepted by the launcher entry point.
type Options struct {
	// ConfigPath is the path to the launcher INI file.
	ConfigPath string
	// RuntimeName is the base interpreter executable name, e.g. "python".
	RuntimeName string
	// RuntimeOverride is an explicit "major.minor" version, usually from
	// the environment.
	RuntimeOverride string
	// DevMode prefers a pre-built local artifact over the network path.
	DevMode bool
	// Args is the original argument vector to forward to the artifact.
	Args []string
	// OrigArgv is the launcher's own full argv, preserved across re-exec.
	OrigArgv []string
}

// runner holds the collaborators for a single launch. Fields are
// swappable so tests can stub the runtime probe and the final exec.
type runner struct {
	opts     *Options
	selector *interp.Selector
	fetcher  *fetch.Fetcher

	// detect resolves the current runtime version; defaults to probing
	// the interpreter on the search path.
	detect func(ctx context.Context) (interp.Version, error)
	// execFn replaces the process image; defaults to handoff.Exec.
	execFn func(path string, argv []string) error
}

// Run executes the launch lifecycle and is the public entry point for the
// CLI. On success it does not return: the process image has been replaced
// by the target artifact (or by an alternate runtime during re-exec).
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "pinstrap")

	return newRunner(opts).run(ctx)
}

func newRunner(opts *Options) *runner {
	selector := interp.NewSelector(opts.RuntimeName)

	r := &runner{
		opts:     opts,
		selector: selector,
		fetcher:  fetch.New(nil),
		execFn:   handoff.Exec,
	}
	r.detect = selector.DetectCurrent

	return r
}

// run walks the launch stages in order: runtime selection commits
// before anything touches the network or cache, so artifacts are never
// cached under a runtime that may still change.
func (r *runner) run(ctx context.Context) error {
	action, err := r.resolveRuntime(ctx)
	if err != nil {
		return err
	}

	if action.Kind == interp.ReExec {
		logger.InfoKV(ctx, "Re-executing under preferred runtime",
			"executable", action.Executable, "version", action.Version.String())

		return r.execFn(action.Executable, append([]string{action.Executable}, r.opts.OrigArgv...))
	}

	cfg, err := r.loadConfig(ctx)
	if err != nil {
		return err
	}

	if err = r.installAuxiliaryArchive(ctx, cfg); err != nil {
		return err
	}

	artifactPath, err := r.ensureArtifact(ctx, cfg)
	if err != nil {
		return err
	}

	// Terminal stage. Nothing after this call is reachable on success,
	// so every temp file and deferred cleanup has already completed.
	logger.InfoKV(ctx, "Handing off to artifact", "path", artifactPath)

	return r.execFn(artifactPath, append([]string{artifactPath}, r.opts.Args...))
}

// resolveRuntime probes the current interpreter and runs the selection
// decision. The caller commits the decision: a ReExec action replaces the
// process under the selected runtime with the original argv, restarting
// the launcher there.
func (r *runner) resolveRuntime(ctx context.Context) (interp.Action, error) {
	current, err := r.detect(ctx)
	if err != nil {
		return interp.Action{}, fmt.Errorf("detect runtime: %w", err)
	}

	logger.DebugKV(ctx, "Detected runtime",
		"runtime", r.opts.RuntimeName, "version", current.String())

	action, err := r.selector.Select(current, r.opts.RuntimeOverride)
	if err != nil {
		return interp.Action{}, fmt.Errorf("select runtime: %w", err)
	}

	return action, nil
}

// loadConfig picks the schema for the current mode and loads the file.
func (r *runner) loadConfig(ctx context.Context) (*config.Config, error) {
	schema := config.DefaultSchema()
	if r.opts.DevMode {
		schema = config.LocalSchema()
	}

	cfg, err := config.Load(r.opts.ConfigPath, schema)
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Loaded configuration", "path", cfg.Path())

	return cfg, nil
}

// installAuxiliaryArchive fetches the tool archive into the cache and
// extracts it in place. Extraction piggybacks on the fetch result, so a
// cached archive is never re-extracted.
func (r *runner) installAuxiliaryArchive(ctx context.Context, cfg *config.Config) error {
	archiveURL, err := cfg.Required(config.KeyAuxiliaryArchiveURL)
	if err != nil {
		return err
	}

	filename, err := remoteFilename(archiveURL)
	if err != nil {
		return fmt.Errorf("auxiliary archive url: %w", err)
	}

	dest := cache.LocateTool(cfg.Get(config.KeyCacheRoot), filename)

	result, err := r.fetcher.Fetch(ctx, archiveURL, dest, 0)
	if err != nil {
		return fmt.Errorf("fetch auxiliary archive: %w", err)
	}

	if !result.Fetched {
		logger.DebugKV(ctx, "Auxiliary archive already installed", "path", dest)

		return nil
	}

	if err = archive.Install(ctx, dest); err != nil {
		return fmt.Errorf("install auxiliary archive: %w", err)
	}

	return nil
}

// ensureArtifact returns the path of the launchable artifact: the local
// pre-built one in dev mode, otherwise the cached (fetching if needed)
// versioned download.
func (r *runner) ensureArtifact(ctx context.Context, cfg *config.Config) (string, error) {
	if r.opts.DevMode && cfg.Has(config.KeyLocalArtifact) {
		local := cfg.Get(config.KeyLocalArtifact)
		logger.InfoKV(ctx, "Using pre-built local artifact", "path", local)

		return local, nil
	}

	version, err := cfg.Required(config.KeyRuntimeVersion)
	if err != nil {
		return "", err
	}

	baseURL, err := cfg.Required(config.KeyArtifactBaseURL)
	if err != nil {
		return "", err
	}

	pattern, err := cfg.RequiredRaw(config.KeyArtifactFilenamePattern)
	if err != nil {
		return "", err
	}

	key := cache.Key{
		Component: cfg.Get(config.KeyComponentName),
		Version:   version,
		Platform:  cache.PlatformTag(),
	}

	dest := cache.Locate(cfg.Get(config.KeyCacheRoot), key, pattern)

	artifactURL, err := joinURL(baseURL, key.Filename(pattern))
	if err != nil {
		return "", fmt.Errorf("artifact url: %w", err)
	}

	if _, err = r.fetcher.Fetch(ctx, artifactURL, dest, artifactFileMode); err != nil {
		return "", fmt.Errorf("fetch artifact: %w", err)
	}

	return dest, nil
}

// remoteFilename extracts the final path element of a URL.
func remoteFilename(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("no filename in %q", raw)
	}

	return name, nil
}

// joinURL appends a filename to a base URL, normalizing duplicate slashes.
func joinURL(base, filename string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	parsed.Path = path.Join(parsed.Path, filename)

	return parsed.String(), nil
}
