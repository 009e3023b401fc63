package types

import "time"

// InstallRequestItem is one extractor or pack to install, with the
// languages the caller expects it to cover. Languages are ignored for
// packs.
type InstallRequestItem struct {
	Reference ExtractorReference
	Kind      ItemKind
	Languages []string
}

// InstallationResult is the per-item outcome of an install run. Results
// are returned in the caller's request order regardless of completion
// order.
type InstallationResult struct {
	Reference   ExtractorReference
	Kind        ItemKind
	InstallPath string
	Version     string
	Languages   []string
	Attestation AttestationResult
	CacheReused bool
	Duration    time.Duration
	FailureKind FailureKind
	Err         error
}

// Succeeded reports whether the item installed and validated.
func (r InstallationResult) Succeeded() bool {
	return r.Err == nil
}

// InstallSummary aggregates an install run.
type InstallSummary struct {
	Results []InstallationResult
}

// Failed returns the results that did not succeed, preserving order.
func (s InstallSummary) Failed() []InstallationResult {
	var failed []InstallationResult
	for _, result := range s.Results {
		if !result.Succeeded() {
			failed = append(failed, result)
		}
	}
	return failed
}

// AllSucceeded reports overall success.
func (s InstallSummary) AllSucceeded() bool {
	return len(s.Failed()) == 0
}
