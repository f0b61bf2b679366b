package selfupdate

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"pinstrap/internal/cache"
	"pinstrap/internal/config"
	"pinstrap/internal/fetch"
	"pinstrap/internal/logger"
	"pinstrap/internal/version"
)

var (
	errEmptyDescription = errors.New("release description is empty")
	errNoChecksum       = errors.New("checksum missing for file")
	errBadHTTPStatus    = errors.New("unexpected http status")
)

// Options are inputs accepted by the self-update entry point.
type Options struct {
	// ConfigPath is the path to the launcher INI file; only
	// artifact_base_url is consulted.
	ConfigPath string
	// Target overrides the binary to replace; defaults to the running
	// executable.
	Target string
}

// runner holds the state of a single self-update execution.
type runner struct {
	opts        *Options
	client      *http.Client
	fetcher     *fetch.Fetcher
	description *Description
	baseURL     string
	tempDir     string
}

// Run checks the remote release manifest and replaces the launcher binary
// when a newer version is published. It is the public entry point for the
// `selfupdate` subcommand.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "pinstrap-selfupdate")

	r := &runner{
		opts:    opts,
		client:  http.DefaultClient,
		fetcher: fetch.New(nil),
	}

	defer r.cleanup(ctx)

	if err := r.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Self-update failed", "error", err)

		return err
	}

	return nil
}

// run executes the update workflow:
// 1) Load the repository location from configuration.
// 2) Fetch and parse the release manifest.
// 3) Compare versions.
// 4) Download and verify the platform binary.
// 5) Apply the replacement.
func (r *runner) run(ctx context.Context) error {
	schema := &config.Schema{Required: []string{config.KeyArtifactBaseURL}}

	cfg, err := config.Load(r.opts.ConfigPath, schema)
	if err != nil {
		return err
	}

	if r.baseURL, err = cfg.Required(config.KeyArtifactBaseURL); err != nil {
		return err
	}

	logger.Info(ctx, "Downloading the release description")

	if err = r.fillDescription(ctx); err != nil {
		return fmt.Errorf("download release description: %w", err)
	}

	remote := r.description.VersionNumber
	local := version.Short()

	if semver.Compare("v"+remote, "v"+local) <= 0 {
		logger.InfoKV(ctx, "Launcher is up to date", "version", local)

		return nil
	}

	logger.InfoKV(ctx, "Update available", "local", local, "remote", remote)

	return r.applyUpdate(ctx)
}

// fillDescription downloads and parses the remote release manifest.
func (r *runner) fillDescription(ctx context.Context) error {
	manifestURL, err := r.repositoryURL(ManifestFilename)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, http.NoBody)
	if err != nil {
		return err
	}

	response, err := r.client.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("%s, %s: %w", manifestURL, response.Status, errBadHTTPStatus)
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	var desc Description
	if err = yaml.Unmarshal(data, &desc); err != nil {
		return err
	}

	r.description = &desc

	return nil
}

// applyUpdate downloads the platform binary, verifies its checksum, and
// swaps it over the target executable.
func (r *runner) applyUpdate(ctx context.Context) error {
	if r.description == nil {
		return errEmptyDescription
	}

	binaryName := "pinstrap-" + cache.PlatformTag()

	checksumBase64, ok := r.description.Files[binaryName]
	if !ok {
		return fmt.Errorf("%w: %s", errNoChecksum, binaryName)
	}

	checksum, err := base64.StdEncoding.DecodeString(checksumBase64)
	if err != nil {
		return err
	}

	if r.tempDir, err = os.MkdirTemp("", "pinstrap-selfupdate-"); err != nil {
		return err
	}

	binaryURL, err := r.repositoryURL(binaryName)
	if err != nil {
		return err
	}

	downloaded := filepath.Join(r.tempDir, binaryName)
	if _, err = r.fetcher.Fetch(ctx, binaryURL, downloaded, 0); err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Clean(downloaded))
	if err != nil {
		return err
	}

	target := r.opts.Target
	if target == "" {
		if target, err = os.Executable(); err != nil {
			return fmt.Errorf("resolve running executable: %w", err)
		}
	}

	logger.InfoKV(ctx, "Applying update", "target", target)

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: DefaultFileMode,
		Checksum:   checksum,
		Hash:       DefaultChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return err
	}

	// The apply step leaves the previous binary behind.
	oldName := target + ".old"
	if _, err = os.Stat(oldName); err == nil {
		_ = os.Remove(oldName)
	}

	logger.InfoKV(ctx, "Launcher updated", "version", r.description.VersionNumber)

	return nil
}

// repositoryURL joins a filename onto the artifact repository base URL.
func (r *runner) repositoryURL(fileName string) (string, error) {
	repository, err := url.Parse(r.baseURL)
	if err != nil {
		return "", err
	}

	repository.Path = path.Join(repository.Path, fileName)

	return repository.String(), nil
}

// cleanup removes the temporary download directory.
func (r *runner) cleanup(ctx context.Context) {
	if r.tempDir == "" {
		return
	}

	if err := os.RemoveAll(r.tempDir); err != nil {
		logger.WarnKV(ctx, "Unable to remove temporary directory", "error", err)
	}
}
