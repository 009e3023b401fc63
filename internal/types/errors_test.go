package types

import (
	"errors"
	"fmt"
	"testing"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/require"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := NewInstallError(FailureReleaseNotFound, "octo-org/swift-extractor has no published release", nil)
	wrapped := fmt.Errorf("installing: %w", err)
	require.Equal(t, FailureReleaseNotFound, KindOf(wrapped))
}

func TestKindOfForeignError(t *testing.T) {
	require.Equal(t, FailureKind(""), KindOf(errors.New("boring")))
	require.Equal(t, FailureKind(""), KindOf(nil))
}

func TestInstallErrorCarriesCode(t *testing.T) {
	cases := []struct {
		kind FailureKind
		code errbuilder.ErrCode
	}{
		{FailureMalformedReference, errbuilder.CodeInvalidArgument},
		{FailureReleaseNotFound, errbuilder.CodeNotFound},
		{FailureAssetAmbiguous, errbuilder.CodeFailedPrecondition},
		{FailureUntrustedArtifact, errbuilder.CodePermissionDenied},
		{FailureRateLimited, errbuilder.CodeResourceExhausted},
		{FailureNetworkError, errbuilder.CodeUnavailable},
		{FailureCancelled, errbuilder.CodeCanceled},
		{FailureExtractionFailed, errbuilder.CodeInternal},
	}
	for _, tc := range cases {
		err := NewInstallError(tc.kind, "message", nil)
		require.Equal(t, tc.code, errbuilder.CodeOf(err), "kind %s", tc.kind)
	}
}

func TestInstallErrorExposesBuilder(t *testing.T) {
	err := NewInstallError(FailureNetworkError, "download interrupted", errors.New("connection reset"))
	var builder *errbuilder.ErrBuilder
	require.True(t, errors.As(err, &builder))
}
