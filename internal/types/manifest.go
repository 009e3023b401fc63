package types

import "strings"

// ManifestFileName is the self-describing manifest an extractor release
// carries at the root of its archive.
const ManifestFileName = "codeql-extractor.yml"

// PackManifestFileName is the manifest carried by query packs. Packs
// are validated with relaxed requirements.
const PackManifestFileName = "qlpack.yml"

// ExtractorManifest declares an installed extractor's identity and the
// source languages it supports.
type ExtractorManifest struct {
	Name        string   `yaml:"name"`
	DisplayName string   `yaml:"display_name"`
	Version     string   `yaml:"version"`
	Languages   []string `yaml:"languages"`
}

// DeclaredLanguages returns the manifest's language set. Extractors
// that omit the list implicitly support the single language they are
// named after.
func (m ExtractorManifest) DeclaredLanguages() []string {
	if len(m.Languages) > 0 {
		return m.Languages
	}
	if m.Name != "" {
		return []string{m.Name}
	}
	return nil
}

// Supports reports whether the manifest declares the given language,
// case-insensitively.
func (m ExtractorManifest) Supports(language string) bool {
	for _, declared := range m.DeclaredLanguages() {
		if strings.EqualFold(strings.TrimSpace(declared), strings.TrimSpace(language)) {
			return true
		}
	}
	return false
}
