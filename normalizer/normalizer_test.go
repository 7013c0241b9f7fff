package normalizer

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    "   \t ",
			expected: "",
		},
		{
			name:     "https URL unchanged",
			input:    "https://example.com",
			expected: "https://example.com",
		},
		{
			name:     "http URL unchanged",
			input:    "http://x.com",
			expected: "http://x.com",
		},
		{
			name:     "scheme matching is case-insensitive",
			input:    "HTTPS://Example.com/Path",
			expected: "HTTPS://Example.com/Path",
		},
		{
			name:     "www prefix gets scheme",
			input:    "www.foo.org",
			expected: "https://www.foo.org",
		},
		{
			name:     "bare domain gets scheme and www",
			input:    "example.com",
			expected: "https://www.example.com",
		},
		{
			name:     "two-letter TLD",
			input:    "golang.io",
			expected: "https://www.golang.io",
		},
		{
			name:     "bare word wrapped as .com",
			input:    "google",
			expected: "https://www.google.com",
		},
		{
			name:     "bare word with hyphen",
			input:    "my-site",
			expected: "https://www.my-site.com",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  example.com  ",
			expected: "https://www.example.com",
		},
		{
			name:     "fallback for anything else",
			input:    "foo/bar",
			expected: "https://www.foo/bar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

// Normalizing an already-normalized URL must return it unchanged.
func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"https://example.com", "example.com", "www.foo.org", "google"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

// Every non-empty normalization result must parse as an absolute URL.
func TestNormalize_AlwaysAbsolute(t *testing.T) {
	inputs := []string{"example.com", "www.foo.org", "google", "foo/bar", "sub.domain.co.uk/path?q=1"}
	for _, in := range inputs {
		out := Normalize(in)
		u, err := url.Parse(out)
		require.NoError(t, err, "input %q", in)
		assert.True(t, u.IsAbs(), "input %q -> %q", in, out)
		assert.NotEmpty(t, u.Host, "input %q -> %q", in, out)
	}
}

func TestSplitInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "newline separated",
			input:    "example.com\nfoo.org",
			expected: []string{"example.com", "foo.org"},
		},
		{
			name:     "comma separated",
			input:    "example.com, foo.org",
			expected: []string{"example.com", "foo.org"},
		},
		{
			name:     "mixed separators with blanks",
			input:    "example.com,\n\n  foo.org ,,bar.io\n",
			expected: []string{"example.com", "foo.org", "bar.io"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitInput(tt.input))
		})
	}
}
