package slug

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Option configures slug generation.
type Option func(*options)

type options struct {
	separator string
	lowercase bool
	maxLength int
	suffixLen int
	replace   map[string]string
}

func defaultOptions() *options {
	return &options{
		separator: "-",
		lowercase: true,
	}
}

// Separator sets the character placed between words. Default: "-".
func Separator(s string) Option {
	return func(o *options) {
		if s != "" {
			o.separator = s
		}
	}
}

// Lowercase controls case folding. Default: true.
func Lowercase(enabled bool) Option {
	return func(o *options) {
		o.lowercase = enabled
	}
}

// MaxLength truncates the slug to at most n runes, never ending on a
// separator.
func MaxLength(n int) Option {
	return func(o *options) {
		o.maxLength = n
	}
}

// WithSuffix appends a random alphanumeric suffix of n characters, separated
// from the slug body. Useful when slugs must be unique.
func WithSuffix(n int) Option {
	return func(o *options) {
		o.suffixLen = n
	}
}

// CustomReplace applies string replacements before slugification, e.g.
// {"&": "and"}.
func CustomReplace(replacements map[string]string) Option {
	return func(o *options) {
		o.replace = replacements
	}
}

// Make converts s into a slug.
func Make(s string, opts ...Option) string {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	for from, to := range o.replace {
		s = strings.ReplaceAll(s, from, " "+to+" ")
	}

	s = foldDiacritics(s)
	if o.lowercase {
		s = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128:
			if pendingSep && b.Len() > 0 {
				b.WriteString(o.separator)
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	out := b.String()

	if o.maxLength > 0 {
		out = truncate(out, o.maxLength, o.separator)
	}

	if o.suffixLen > 0 {
		suffix := randomSuffix(o.suffixLen)
		if out == "" {
			return suffix
		}
		return out + o.separator + suffix
	}

	return out
}

// foldDiacritics decomposes characters and drops combining marks, so that
// "café" becomes "cafe". Characters with no ASCII decomposition pass through
// and are treated as separators later.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func truncate(s string, n int, sep string) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimRight(string(r[:n]), sep)
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(suffixAlphabet))))
		if err != nil {
			// crypto/rand failing means the platform is broken; fall back to
			// a fixed character rather than panic in a slug helper.
			b[i] = 'x'
			continue
		}
		b[i] = suffixAlphabet[idx.Int64()]
	}
	return string(b)
}
