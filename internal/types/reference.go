package types

import "fmt"

// ExtractorReference identifies a release of an extractor repository.
// Owner and Name are validated hosting-service identifiers; Version is
// either an explicit tag or the literal "latest". AssetPattern is an
// optional glob applied to release asset names.
type ExtractorReference struct {
	Owner        string
	Name         string
	Version      string
	AssetPattern string
}

// String re-serializes the reference in the owner/repo[@ref[:pattern]]
// form it was parsed from.
func (r ExtractorReference) String() string {
	out := fmt.Sprintf("%s/%s", r.Owner, r.Name)
	if r.Version != "" && r.Version != "latest" {
		out += "@" + r.Version
	}
	if r.AssetPattern != "" {
		if r.Version == "" || r.Version == "latest" {
			out += "@latest"
		}
		out += ":" + r.AssetPattern
	}
	return out
}

// Slug returns the owner/name pair without version information.
func (r ExtractorReference) Slug() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// IsLatest reports whether the reference floats to the newest release.
func (r ExtractorReference) IsLatest() bool {
	return r.Version == "" || r.Version == "latest"
}
