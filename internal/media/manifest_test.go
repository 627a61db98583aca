package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name      string
		publicIDs *string
		types     *string
		want      []Ref
	}{
		{
			name: "nil manifest",
		},
		{
			name:      "empty manifest",
			publicIDs: strPtr(""),
		},
		{
			name:      "aligned pairs",
			publicIDs: strPtr("warble/a,warble/b"),
			types:     strPtr("image,video"),
			want: []Ref{
				{PublicID: "warble/a", Type: "image"},
				{PublicID: "warble/b", Type: "video"},
			},
		},
		{
			name:      "missing types default to image",
			publicIDs: strPtr("warble/a,warble/b"),
			types:     strPtr("video"),
			want: []Ref{
				{PublicID: "warble/a", Type: "video"},
				{PublicID: "warble/b", Type: "image"},
			},
		},
		{
			name:      "blank entries skipped",
			publicIDs: strPtr("warble/a,,warble/c"),
			types:     strPtr("image,image,image"),
			want: []Ref{
				{PublicID: "warble/a", Type: "image"},
				{PublicID: "warble/c", Type: "image"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseManifest(tt.publicIDs, tt.types))
		})
	}
}

func TestJoinRefsRoundTrip(t *testing.T) {
	refs := []Ref{
		{URL: "https://cdn.example/a.jpg", PublicID: "warble/a", Type: "image"},
		{URL: "https://cdn.example/b.mp4", PublicID: "warble/b", Type: "video"},
	}

	urls, ids, types := JoinRefs(refs)
	require.NotNil(t, urls)
	require.NotNil(t, ids)
	require.NotNil(t, types)
	assert.Equal(t, "https://cdn.example/a.jpg,https://cdn.example/b.mp4", *urls)
	assert.Equal(t, "warble/a,warble/b", *ids)
	assert.Equal(t, "image,video", *types)

	parsed := ParseManifest(ids, types)
	require.Len(t, parsed, 2)
	assert.Equal(t, "warble/a", parsed[0].PublicID)
	assert.Equal(t, "video", parsed[1].Type)
}

func TestJoinRefsEmpty(t *testing.T) {
	urls, ids, types := JoinRefs(nil)
	assert.Nil(t, urls)
	assert.Nil(t, ids)
	assert.Nil(t, types)
}
