package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveImage(t *testing.T) {
	base := "https://www.example.com/post"

	tests := []struct {
		name      string
		candidate string
		expected  string // "" means rejected
	}{
		{
			name:      "empty candidate rejected",
			candidate: "",
		},
		{
			name:      "plain photo accepted",
			candidate: "https://example.com/photo.jpg",
			expected:  "https://example.com/photo.jpg",
		},
		{
			name:      "relative candidate resolved against base",
			candidate: "/media/photo.png",
			expected:  "https://www.example.com/media/photo.png",
		},
		{
			name:      "svg rejected",
			candidate: "https://example.com/diagram.svg",
		},
		{
			name:      "tracking pixel name rejected",
			candidate: "https://example.com/img/tracking-pixel.svg",
		},
		{
			name:      "spacer rejected",
			candidate: "https://example.com/spacer.gif",
		},
		{
			name:      "1x1 rejected",
			candidate: "https://example.com/t/1x1.gif",
		},
		{
			name:      "blank rejected case-insensitively",
			candidate: "https://example.com/Blank.gif",
		},
		{
			name:      "facebook conversion tracker rejected",
			candidate: "https://www.facebook.com/tr?id=123&ev=PageView",
		},
		{
			name:      "google analytics rejected",
			candidate: "https://www.google-analytics.com/collect?v=1",
		},
		{
			name:      "tag manager rejected",
			candidate: "https://www.googletagmanager.com/gtm.js",
		},
		{
			name:      "query string keeps non-svg accepted",
			candidate: "https://cdn.example.com/hero.jpeg?w=1200",
			expected:  "https://cdn.example.com/hero.jpeg?w=1200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveImage(tt.candidate, base)
			if tt.expected == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, *got)
		})
	}
}

func TestResolveImage_UnparseableBaseKeepsCandidate(t *testing.T) {
	got := ResolveImage("photo.jpg", "://not a url")
	require.NotNil(t, got)
	assert.Equal(t, "photo.jpg", *got)
}
