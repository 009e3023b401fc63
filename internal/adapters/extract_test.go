package adapters

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"extractor-installer/internal/types"
	"extractor-installer/tests/testutil"
)

func TestExtractTarGz(t *testing.T) {
	dir := t.TempDir()
	archive := testutil.BuildTarGz(t, []testutil.ArchiveEntry{
		{Name: "extractor/"},
		{Name: "extractor/codeql-extractor.yml", Body: "name: swift\n"},
		{Name: "extractor/tools/"},
		{Name: "extractor/tools/extractor", Body: "#!/bin/sh\n", Mode: 0o644},
		{Name: "extractor/docs/link", Link: "../codeql-extractor.yml"},
	})

	err := extractArchive(t.Context(), bytes.NewReader(archive), types.ArchiveFormatTarGz, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "extractor", "codeql-extractor.yml"))
	require.NoError(t, err)
	require.Equal(t, "name: swift\n", string(data))

	target, err := os.Readlink(filepath.Join(dir, "extractor", "docs", "link"))
	require.NoError(t, err)
	require.Equal(t, "../codeql-extractor.yml", target)
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	archive := testutil.BuildZip(t, []testutil.ArchiveEntry{
		{Name: "extractor/codeql-extractor.yml", Body: "name: swift\n"},
		{Name: "extractor/tools/run.sh", Body: "#!/bin/sh\n", Mode: 0o755},
	})

	err := extractArchive(t.Context(), bytes.NewReader(archive), types.ArchiveFormatZip, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "extractor", "codeql-extractor.yml"))
	require.NoError(t, err)
	require.Equal(t, "name: swift\n", string(data))
}

func TestExtractRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	archive := testutil.BuildTarGz(t, []testutil.ArchiveEntry{
		{Name: "../outside.txt", Body: "escape"},
	})

	err := extractArchive(t.Context(), bytes.NewReader(archive), types.ArchiveFormatTarGz, dir)
	require.Error(t, err)
	require.Equal(t, types.FailureExtractionFailed, types.KindOf(err))
	_, statErr := os.Stat(filepath.Join(filepath.Dir(dir), "outside.txt"))
	require.True(t, os.IsNotExist(statErr))
}

func TestExtractRejectsAbsoluteEntry(t *testing.T) {
	dir := t.TempDir()
	archive := testutil.BuildTarGz(t, []testutil.ArchiveEntry{
		{Name: "/etc/hijacked", Body: "escape"},
	})

	err := extractArchive(t.Context(), bytes.NewReader(archive), types.ArchiveFormatTarGz, dir)
	require.Error(t, err)
	require.Equal(t, types.FailureExtractionFailed, types.KindOf(err))
}

func TestExtractRejectsEscapingSymlink(t *testing.T) {
	dir := t.TempDir()
	for _, link := range []string{"../../outside", "/etc/passwd"} {
		archive := testutil.BuildTarGz(t, []testutil.ArchiveEntry{
			{Name: "extractor/link", Link: link},
		})
		err := extractArchive(t.Context(), bytes.NewReader(archive), types.ArchiveFormatTarGz, dir)
		require.Error(t, err, "link %q", link)
		require.Equal(t, types.FailureExtractionFailed, types.KindOf(err))
	}
}

func TestExtractRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	err := extractArchive(t.Context(), bytes.NewReader([]byte("not an archive")), types.ArchiveFormatTarGz, dir)
	require.Error(t, err)
	require.Equal(t, types.FailureExtractionFailed, types.KindOf(err))
}

func TestFixToolPermissions(t *testing.T) {
	dir := t.TempDir()
	toolsDir := filepath.Join(dir, "extractor", "tools")
	require.NoError(t, os.MkdirAll(toolsDir, 0o755))
	for _, name := range []string{"extractor", "index.sh"} {
		require.NoError(t, os.WriteFile(filepath.Join(toolsDir, name), []byte("#!/bin/sh\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extractor", "data.txt"), []byte("x"), 0o644))

	require.NoError(t, fixToolPermissions(dir))

	for _, name := range []string{"extractor", "index.sh"} {
		info, err := os.Stat(filepath.Join(toolsDir, name))
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o755), info.Mode().Perm(), "tool %s", name)
	}
	info, err := os.Stat(filepath.Join(dir, "extractor", "data.txt"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
