// Package testutil provides shared test helpers used across unit and
// integration test packages: in-memory archive builders and canned
// hosting-API payloads.
package testutil

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

// ArchiveEntry describes one file, directory, or symlink inside a
// generated test archive. A Link marks the entry as a symlink; a name
// ending in "/" marks a directory.
type ArchiveEntry struct {
	Name string
	Body string
	Mode int64
	Link string
}

func (e ArchiveEntry) mode() int64 {
	if e.Mode != 0 {
		return e.Mode
	}
	return 0o644
}

// BuildTarGz assembles a gzip-compressed tarball from the entries.
func BuildTarGz(t *testing.T, entries []ArchiveEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, entry := range entries {
		header := &tar.Header{Name: entry.Name, Mode: entry.mode()}
		switch {
		case entry.Link != "":
			header.Typeflag = tar.TypeSymlink
			header.Linkname = entry.Link
		case len(entry.Name) > 0 && entry.Name[len(entry.Name)-1] == '/':
			header.Typeflag = tar.TypeDir
			header.Mode = 0o755
		default:
			header.Typeflag = tar.TypeReg
			header.Size = int64(len(entry.Body))
		}
		require.NoError(t, tw.WriteHeader(header))
		if header.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(entry.Body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// BuildZip assembles a zip archive from the entries. Symlink entries
// are written with the symlink mode bit and the target as content, the
// way common archivers encode them.
func BuildZip(t *testing.T, entries []ArchiveEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range entries {
		header := &zip.FileHeader{Name: entry.Name, Method: zip.Deflate}
		if entry.Link != "" {
			header.SetMode(fs.ModeSymlink | 0o777)
		} else {
			header.SetMode(fs.FileMode(entry.mode()))
		}
		writer, err := zw.CreateHeader(header)
		require.NoError(t, err)
		if entry.Link != "" {
			_, err = writer.Write([]byte(entry.Link))
		} else {
			_, err = writer.Write([]byte(entry.Body))
		}
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// ExtractorArchive builds a tar.gz laid out like a published extractor
// release: a single top-level directory with the manifest and a tools/
// launcher.
func ExtractorArchive(t *testing.T, topDir string, manifestYAML string) []byte {
	t.Helper()
	return BuildTarGz(t, []ArchiveEntry{
		{Name: topDir + "/"},
		{Name: topDir + "/codeql-extractor.yml", Body: manifestYAML},
		{Name: topDir + "/tools/"},
		{Name: topDir + "/tools/extractor", Body: "#!/bin/sh\nexit 0\n", Mode: 0o644},
		{Name: topDir + "/tools/index.sh", Body: "#!/bin/sh\nexit 0\n", Mode: 0o644},
	})
}

// ReleaseJSON renders a hosting-API release payload whose download
// URLs point back at baseURL under /download/<tag>/<name>.
func ReleaseJSON(baseURL string, tag string, assetNames ...string) string {
	type asset struct {
		ID                 int64  `json:"id"`
		Name               string `json:"name"`
		Size               int64  `json:"size"`
		BrowserDownloadURL string `json:"browser_download_url"`
	}
	assets := make([]asset, 0, len(assetNames))
	for i, name := range assetNames {
		assets = append(assets, asset{
			ID:                 int64(i + 1),
			Name:               name,
			Size:               2048,
			BrowserDownloadURL: fmt.Sprintf("%s/download/%s/%s", baseURL, tag, name),
		})
	}
	payload := map[string]any{
		"tag_name":     tag,
		"draft":        false,
		"prerelease":   false,
		"published_at": "2026-01-15T10:00:00Z",
		"assets":       assets,
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

// AttestationJSON renders an attestation-store response holding one
// signed in-toto statement for the given subject digest.
func AttestationJSON(digest string, sourceRepo string, builderID string) string {
	statement := map[string]any{
		"predicateType": "https://slsa.dev/provenance/v1",
		"subject": []map[string]any{
			{"name": "artifact", "digest": map[string]string{"sha256": digest}},
		},
		"predicate": map[string]any{
			"buildDefinition": map[string]any{
				"externalParameters": map[string]any{
					"workflow": map[string]any{"repository": sourceRepo},
				},
			},
			"runDetails": map[string]any{
				"builder": map[string]any{"id": builderID},
			},
		},
	}
	raw, _ := json.Marshal(statement)
	payload := map[string]any{
		"attestations": []map[string]any{
			{
				"bundle": map[string]any{
					"dsseEnvelope": map[string]any{
						"payload":     base64.StdEncoding.EncodeToString(raw),
						"payloadType": "application/vnd.in-toto+json",
						"signatures":  []map[string]string{{"sig": "MEUCIQDtest"}},
					},
				},
			},
		},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}
