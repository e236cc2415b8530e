package slug_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"mathblog/pkg/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		opts     []slug.Option
		expected string
	}{
		{
			name:     "simple text",
			input:    "Hello World",
			expected: "hello-world",
		},
		{
			name:     "with punctuation",
			input:    "Hello, World!",
			expected: "hello-world",
		},
		{
			name:     "leading and trailing spaces",
			input:    "  Trim Me  ",
			expected: "trim-me",
		},
		{
			name:     "special characters",
			input:    "Price: $99.99",
			expected: "price-99-99",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only special characters",
			input:    "!@#$%^&*()",
			expected: "",
		},
		{
			name:     "unicode diacritics",
			input:    "Café résumé naïve",
			expected: "cafe-resume-naive",
		},
		{
			name:     "math notation in title",
			input:    "Solving $x^2 = 4$ by hand",
			expected: "solving-x-2-4-by-hand",
		},
		{
			name:     "lowercase disabled",
			input:    "Hello World",
			opts:     []slug.Option{slug.Lowercase(false)},
			expected: "Hello-World",
		},
		{
			name:     "custom separator",
			input:    "Hello World",
			opts:     []slug.Option{slug.Separator("_")},
			expected: "hello_world",
		},
		{
			name:     "max length cuts at separator",
			input:    "Cut off cleanly",
			opts:     []slug.Option{slug.MaxLength(7)},
			expected: "cut-off",
		},
		{
			name:  "custom replacements",
			input: "Fish & Chips",
			opts: []slug.Option{
				slug.CustomReplace(map[string]string{"&": "and"}),
			},
			expected: "fish-and-chips",
		},
		{
			name:     "consecutive separators collapse",
			input:    "Too---Many---Dashes",
			expected: "too-many-dashes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, slug.Make(tt.input, tt.opts...))
		})
	}
}

func TestMake_WithSuffix(t *testing.T) {
	t.Parallel()

	got := slug.Make("Article Title", slug.WithSuffix(6))
	assert.True(t, strings.HasPrefix(got, "article-title-"))
	assert.Len(t, got, len("article-title-")+6)

	// Suffix alone when input slugs to nothing.
	got = slug.Make("!!!", slug.WithSuffix(6))
	assert.Len(t, got, 6)
}
