package shared

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestValidIdentifier(t *testing.T) {
	valid := []string{"octo-org", "swift_extractor", "repo.name", "V2", "a"}
	for _, value := range valid {
		require.True(t, ValidIdentifier(value), "value=%q", value)
	}
	invalid := []string{"", ".", "..", "has space", "slash/", "semi;colon", "tilde~"}
	for _, value := range invalid {
		require.False(t, ValidIdentifier(value), "value=%q", value)
	}
}

func TestNormalizeList(t *testing.T) {
	cases := []struct {
		input string
		want  []string
	}{
		{"swift,kotlin", []string{"swift", "kotlin"}},
		{"swift\nkotlin\n", []string{"swift", "kotlin"}},
		{"  swift , , kotlin  ", []string{"swift", "kotlin"}},
		{"", nil},
		{" , \n ", nil},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, NormalizeList(tc.input)); diff != "" {
			t.Fatalf("NormalizeList(%q) mismatch (-want +got):\n%s", tc.input, diff)
		}
	}
}
