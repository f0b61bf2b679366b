package archive

import (
	"archive/tar"
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"pinstrap/internal/logger"
)

var (
	// errUnsupportedFormat indicates an archive extension with no extractor.
	errUnsupportedFormat = errors.New("unsupported archive format")
	// errUnsafePath indicates an entry that would escape the target directory.
	errUnsafePath = errors.New("archive entry escapes target directory")
)

// defaultDirMode is applied to directories created during extraction.
const defaultDirMode os.FileMode = 0o755

// Install extracts the archive at path into its own containing directory.
// Callers skip it when the preceding fetch was a cache hit, which makes
// installation run exactly once per cached archive. Extraction failures
// are fatal; there is no partial-extraction rollback.
func Install(ctx context.Context, path string) error {
	target := filepath.Dir(path)

	logger.InfoKV(ctx, "Extracting archive", "archive", path, "target", target)

	name := strings.ToLower(path)

	switch {
	case strings.HasSuffix(name, ".zip"):
		return extractZip(path, target)
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return extractTarGz(path, target)
	default:
		return fmt.Errorf("%w: %s", errUnsupportedFormat, filepath.Base(path))
	}
}

// entryPath joins an archive entry name onto the target directory,
// rejecting traversal outside it.
func entryPath(target, name string) (string, error) {
	joined := filepath.Join(target, filepath.FromSlash(name))
	if joined != target && !strings.HasPrefix(joined, target+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", errUnsafePath, name)
	}

	return joined, nil
}

func extractZip(path, target string) error {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", path, err)
	}

	defer func() {
		_ = reader.Close()
	}()

	for _, file := range reader.File {
		if err = extractZipEntry(file, target); err != nil {
			return err
		}
	}

	return nil
}

func extractZipEntry(file *zip.File, target string) error {
	dest, err := entryPath(target, file.Name)
	if err != nil {
		return err
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(dest, defaultDirMode)
	}

	if err = os.MkdirAll(filepath.Dir(dest), defaultDirMode); err != nil {
		return err
	}

	source, err := file.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", file.Name, err)
	}

	defer func() {
		_ = source.Close()
	}()

	return writeEntry(dest, source, file.Mode())
}

func extractTarGz(path, target string) error {
	archive, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open archive %s: %w", path, err)
	}

	defer func() {
		_ = archive.Close()
	}()

	decompressor, err := gzip.NewReader(archive)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", path, err)
	}

	defer func() {
		_ = decompressor.Close()
	}()

	reader := tar.NewReader(decompressor)

	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read archive %s: %w", path, err)
		}

		if err = extractTarEntry(reader, header, target); err != nil {
			return err
		}
	}
}

func extractTarEntry(reader *tar.Reader, header *tar.Header, target string) error {
	dest, err := entryPath(target, header.Name)
	if err != nil {
		return err
	}

	switch header.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(dest, defaultDirMode)
	case tar.TypeReg:
		if err = os.MkdirAll(filepath.Dir(dest), defaultDirMode); err != nil {
			return err
		}

		return writeEntry(dest, reader, header.FileInfo().Mode())
	default:
		// Links and special files do not occur in tool archives.
		return nil
	}
}

// writeEntry copies one archive entry to disk with the given mode.
func writeEntry(dest string, source io.Reader, mode os.FileMode) error {
	file, err := os.OpenFile(filepath.Clean(dest), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	if _, err = io.Copy(file, source); err != nil {
		_ = file.Close()

		return fmt.Errorf("write %s: %w", dest, err)
	}

	return file.Close()
}
