package types

import (
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// FailureKind names the pipeline stage outcome reported per failed
// install item. Kinds are stable strings surfaced to operators.
type FailureKind string

const (
	FailureMalformedReference FailureKind = "MalformedReference"
	FailureReleaseNotFound    FailureKind = "ReleaseNotFound"
	FailureAssetNotFound      FailureKind = "AssetNotFound"
	FailureAssetAmbiguous     FailureKind = "AssetAmbiguous"
	FailureUntrustedArtifact  FailureKind = "UntrustedArtifact"
	FailureExtractionFailed   FailureKind = "ExtractionFailed"
	FailureManifestMissing    FailureKind = "ManifestMissing"
	FailureManifestMalformed  FailureKind = "ManifestMalformed"
	FailureCapabilityMismatch FailureKind = "CapabilityMismatch"
	FailureNetworkError       FailureKind = "NetworkError"
	FailureRateLimited        FailureKind = "RateLimited"
	FailureCancelled          FailureKind = "Cancelled"
)

// InstallError carries the failure kind alongside the underlying
// errbuilder error so the orchestrator can report which stage failed
// without parsing messages.
type InstallError struct {
	Kind FailureKind
	Err  error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// NewInstallError wraps an errbuilder error built from the kind's
// canonical code.
func NewInstallError(kind FailureKind, msg string, cause error) *InstallError {
	builder := errbuilder.New().
		WithCode(codeForKind(kind)).
		WithMsg(msg)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return &InstallError{Kind: kind, Err: builder}
}

// KindOf extracts the failure kind from an error chain. Errors that do
// not originate from the install pipeline map to NetworkError only when
// they carry a transport code; everything else is reported as-is via an
// empty kind.
func KindOf(err error) FailureKind {
	var installErr *InstallError
	if errors.As(err, &installErr) {
		return installErr.Kind
	}
	return ""
}

func codeForKind(kind FailureKind) errbuilder.ErrCode {
	switch kind {
	case FailureMalformedReference:
		return errbuilder.CodeInvalidArgument
	case FailureReleaseNotFound, FailureAssetNotFound, FailureManifestMissing:
		return errbuilder.CodeNotFound
	case FailureAssetAmbiguous, FailureCapabilityMismatch:
		return errbuilder.CodeFailedPrecondition
	case FailureUntrustedArtifact:
		return errbuilder.CodePermissionDenied
	case FailureRateLimited:
		return errbuilder.CodeResourceExhausted
	case FailureNetworkError:
		return errbuilder.CodeUnavailable
	case FailureCancelled:
		return errbuilder.CodeCanceled
	default:
		return errbuilder.CodeInternal
	}
}
