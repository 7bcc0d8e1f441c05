package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/catalog-sync/internal/contentdef"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

func TestNormalizePrimary(t *testing.T) {
	t.Parallel()

	t.Run("promotes first", func(t *testing.T) {
		t.Parallel()
		in := []contentdef.AudioAssetDef{{URL: ptr("a")}, {URL: ptr("b")}}
		out, err := normalizePrimary(in)
		require.NoError(t, err)
		assert.True(t, out[0].IsPrimary)
		assert.False(t, out[1].IsPrimary)
		assert.False(t, in[0].IsPrimary, "input is not mutated")
	})

	t.Run("keeps declared primary", func(t *testing.T) {
		t.Parallel()
		out, err := normalizePrimary([]contentdef.AudioAssetDef{{URL: ptr("a")}, {URL: ptr("b"), IsPrimary: true}})
		require.NoError(t, err)
		assert.False(t, out[0].IsPrimary)
		assert.True(t, out[1].IsPrimary)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		out, err := normalizePrimary(nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("rejects two primaries", func(t *testing.T) {
		t.Parallel()
		_, err := normalizePrimary([]contentdef.AudioAssetDef{{IsPrimary: true}, {IsPrimary: true}})
		assert.ErrorIs(t, err, domain.ErrMultiplePrimary)
	})
}

func TestAudioFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		declared *string
		name     string
		want     string
	}{
		{declared: ptr("OGG"), name: "a.mp3", want: "ogg"},
		{name: "/audio/a.M4A", want: "m4a"},
		{name: "/cdn/path/a.opus", want: "opus"},
		{name: "no-extension", want: "mp3"},
		{name: "weird.mp-3", want: "mp3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, audioFormat(tt.declared, tt.name), tt.name)
	}
}

func TestExternalSource(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "archive", externalSource(ptr("archive"), "https://x.test/a.mp3"))
	assert.Equal(t, domain.AudioSourceExternal, externalSource(nil, "https://x.test/a.mp3"))
	assert.Equal(t, domain.AudioSourceR2, externalSource(nil, "ingestion/prod/t/s/l/a.mp3"))
}

func TestContentType_DefaultsToMPEG(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "audio/mpeg", contentType("file.unknownext"))
	assert.Equal(t, "audio/mpeg", contentType("file"))
}
