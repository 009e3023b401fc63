package adapters

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"extractor-installer/internal/ports"
	"extractor-installer/internal/types"
)

// ManifestReaderAdapter reads extractor manifests out of installed
// cache entries. Release tarballs commonly nest everything under a
// single top-level directory, so the manifest is searched at the entry
// root and one level below it.
type ManifestReaderAdapter struct{}

func NewManifestReaderAdapter() ManifestReaderAdapter {
	return ManifestReaderAdapter{}
}

func (m ManifestReaderAdapter) ReadExtractorManifest(entry types.CacheEntry) (types.ExtractorManifest, string, error) {
	path, ok := locateManifest(entry.Dir, types.ManifestFileName)
	if !ok {
		return types.ExtractorManifest{}, "", types.NewInstallError(
			types.FailureManifestMissing,
			fmt.Sprintf("no %s found under %s", types.ManifestFileName, entry.Dir), nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ExtractorManifest{}, "", types.NewInstallError(
			types.FailureManifestMissing, "failed to read extractor manifest", err)
	}
	var manifest types.ExtractorManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return types.ExtractorManifest{}, "", types.NewInstallError(
			types.FailureManifestMalformed,
			fmt.Sprintf("%s is not valid YAML", path), err)
	}
	return manifest, filepath.Dir(path), nil
}

func (m ManifestReaderAdapter) HasPackManifest(entry types.CacheEntry) bool {
	_, ok := locateManifest(entry.Dir, types.PackManifestFileName)
	return ok
}

// locateManifest checks the directory root first, then each immediate
// subdirectory.
func locateManifest(dir string, fileName string) (string, bool) {
	direct := filepath.Join(dir, fileName)
	if info, err := os.Stat(direct); err == nil && !info.IsDir() {
		return direct, true
	}
	children, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, child := range children {
		if !child.IsDir() {
			continue
		}
		nested := filepath.Join(dir, child.Name(), fileName)
		if info, err := os.Stat(nested); err == nil && !info.IsDir() {
			return nested, true
		}
	}
	return "", false
}

var _ ports.ManifestPort = ManifestReaderAdapter{}
