package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"fr", "fr"},
		{"FR", "fr"},
		{"de-de", "de-DE"},
		{"DE-DE", "de-DE"},
		{"zh-hant-tw", "zh-Hant-TW"},
		{"source", "source"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Canonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonical_Invalid(t *testing.T) {
	for _, in := range []string{"", "not a language", "und", "123456789"} {
		_, err := Canonical(in)
		assert.ErrorIs(t, err, ErrInvalidCode, "code %q", in)
	}
}

func TestCanonicalTranslation_RejectsSource(t *testing.T) {
	_, err := CanonicalTranslation("source")
	assert.Error(t, err)

	got, err := CanonicalTranslation("pt-br")
	require.NoError(t, err)
	assert.Equal(t, "pt-BR", got)
}

func TestCanonicalList(t *testing.T) {
	got, err := CanonicalList([]string{"fr", "de-de", "FR", "de-DE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"fr", "de-DE"}, got)

	got, err = CanonicalList(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = CanonicalList([]string{"fr", "source"})
	assert.Error(t, err)
}

func TestIsSource(t *testing.T) {
	assert.True(t, IsSource("source"))
	assert.False(t, IsSource("Source"))
	assert.False(t, IsSource("fr"))
}
