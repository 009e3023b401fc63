package adapters

import (
	"archive/tar"
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"

	"extractor-installer/internal/types"
)

// extractArchive unpacks the archive stream into dir. Entries that
// would resolve outside dir, and symlinks pointing out of it, are
// rejected: archive contents come from a third-party publisher and are
// untrusted until verified, and even verified archives must not write
// outside their cache entry.
func extractArchive(ctx context.Context, stream io.Reader, format types.ArchiveFormat, dir string) error {
	switch format {
	case types.ArchiveFormatTarGz:
		return extractTarGz(ctx, stream, dir)
	case types.ArchiveFormatZip:
		return extractZip(ctx, stream, dir)
	default:
		return types.NewInstallError(
			types.FailureExtractionFailed,
			fmt.Sprintf("unsupported archive format %q", format), nil)
	}
}

func extractTarGz(ctx context.Context, stream io.Reader, dir string) error {
	gz, err := gzip.NewReader(stream)
	if err != nil {
		return types.NewInstallError(
			types.FailureExtractionFailed, "archive is not valid gzip", err)
	}
	defer gz.Close()

	reader := tar.NewReader(gz)
	for {
		if ctx.Err() != nil {
			return types.NewInstallError(
				types.FailureCancelled, "extraction cancelled", ctx.Err())
		}
		header, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return types.NewInstallError(
				types.FailureExtractionFailed, "failed to read archive entry", err)
		}
		target, err := securePath(dir, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return types.NewInstallError(
					types.FailureExtractionFailed, "failed to create directory", err)
			}
		case tar.TypeReg:
			if err := writeFile(target, reader, header.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := writeSymlink(dir, target, header.Linkname); err != nil {
				return err
			}
		default:
			log.Ctx(ctx).Debug().Str("entry", header.Name).Msg("skipping unsupported archive entry type")
		}
	}
}

// extractZip spools the stream to a temporary file first; the zip
// directory lives at the end of the archive and needs random access.
func extractZip(ctx context.Context, stream io.Reader, dir string) error {
	spool, err := os.CreateTemp("", "extractor-*.zip")
	if err != nil {
		return types.NewInstallError(
			types.FailureExtractionFailed, "failed to create spool file", err)
	}
	defer func() {
		spool.Close()
		os.Remove(spool.Name())
	}()

	size, err := io.Copy(spool, io.LimitReader(stream, maxEntrySize))
	if err != nil {
		return types.NewInstallError(
			types.FailureExtractionFailed, "failed to spool archive", err)
	}
	zr, err := zip.NewReader(spool, size)
	if err != nil {
		return types.NewInstallError(
			types.FailureExtractionFailed, "archive is not a valid zip", err)
	}

	for _, entry := range zr.File {
		if ctx.Err() != nil {
			return types.NewInstallError(
				types.FailureCancelled, "extraction cancelled", ctx.Err())
		}
		target, err := securePath(dir, entry.Name)
		if err != nil {
			return err
		}
		mode := entry.Mode()
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return types.NewInstallError(
					types.FailureExtractionFailed, "failed to create directory", err)
			}
			continue
		}
		if mode&os.ModeSymlink != 0 {
			linkTarget, err := readZipEntry(entry)
			if err != nil {
				return err
			}
			if err := writeSymlink(dir, target, linkTarget); err != nil {
				return err
			}
			continue
		}
		reader, err := entry.Open()
		if err != nil {
			return types.NewInstallError(
				types.FailureExtractionFailed, "failed to open archive entry", err)
		}
		writeErr := writeFile(target, reader, mode.Perm())
		reader.Close()
		if writeErr != nil {
			return writeErr
		}
	}
	return nil
}

// securePath joins an archive entry name onto the extraction root and
// rejects anything that would escape it.
func securePath(dir string, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", types.NewInstallError(
			types.FailureExtractionFailed,
			fmt.Sprintf("archive entry %q escapes the extraction directory", name), nil)
	}
	target := filepath.Join(dir, cleaned)
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", types.NewInstallError(
			types.FailureExtractionFailed,
			fmt.Sprintf("archive entry %q escapes the extraction directory", name), nil)
	}
	return target, nil
}

// writeSymlink creates a symlink only when its target stays inside the
// extraction root.
func writeSymlink(dir string, path string, linkTarget string) error {
	if filepath.IsAbs(linkTarget) {
		return types.NewInstallError(
			types.FailureExtractionFailed,
			fmt.Sprintf("symlink %q has an absolute target", path), nil)
	}
	resolved := filepath.Join(filepath.Dir(path), filepath.FromSlash(linkTarget))
	rel, err := filepath.Rel(dir, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return types.NewInstallError(
			types.FailureExtractionFailed,
			fmt.Sprintf("symlink %q points outside the extraction directory", path), nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return types.NewInstallError(
			types.FailureExtractionFailed, "failed to create directory", err)
	}
	if err := os.Symlink(linkTarget, path); err != nil {
		return types.NewInstallError(
			types.FailureExtractionFailed, "failed to create symlink", err)
	}
	return nil
}

func writeFile(path string, reader io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return types.NewInstallError(
			types.FailureExtractionFailed, "failed to create directory", err)
	}
	if perm == 0 {
		perm = 0o644
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return types.NewInstallError(
			types.FailureExtractionFailed, "failed to create file", err)
	}
	defer file.Close()
	if _, err := io.Copy(file, io.LimitReader(reader, maxEntrySize)); err != nil {
		return types.NewInstallError(
			types.FailureExtractionFailed, "failed to write file", err)
	}
	return nil
}

func readZipEntry(entry *zip.File) (string, error) {
	reader, err := entry.Open()
	if err != nil {
		return "", types.NewInstallError(
			types.FailureExtractionFailed, "failed to open archive entry", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(io.LimitReader(reader, 4096))
	if err != nil {
		return "", types.NewInstallError(
			types.FailureExtractionFailed, "failed to read archive entry", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// fixToolPermissions makes the extractor binaries and helper scripts
// under tools/ executable, the layout extractor releases ship with.
func fixToolPermissions(dir string) error {
	return filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		slash := filepath.ToSlash(rel)
		if !strings.Contains(slash, "tools/") {
			return nil
		}
		name := entry.Name()
		if name == "extractor" || strings.HasSuffix(name, ".sh") {
			if err := os.Chmod(path, 0o755); err != nil {
				return types.NewInstallError(
					types.FailureExtractionFailed, "failed to set tool permissions", err)
			}
		}
		return nil
	})
}
