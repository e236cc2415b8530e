package mathtext

import "strings"

const (
	inlineOpen   = `\(`
	inlineClose  = `\)`
	displayOpen  = `\[`
	displayClose = `\]`
)

// Segment is a run of input text: either plain text to be passed through
// verbatim, or the contents of one math span.
type Segment struct {
	// Text is the plain text, or the raw math expression without its
	// delimiters. Math expressions keep their surrounding whitespace so a
	// failed render can reproduce the original span exactly.
	Text    string
	Math    bool
	Display bool
}

// looksLikeMath reports whether a $...$ span contains at least one character
// that suggests LaTeX rather than prose ("Price: $5 vs $10" stays literal).
func looksLikeMath(content string) bool {
	return strings.ContainsAny(content, `\^_{}=`)
}

// Tokenize splits s into plain-text and math segments. Dollar delimiters are
// normalized to backslash form first; nesting of same-type delimiters is
// tracked so \( f(\( x \)) \) yields a single math segment. Unterminated
// dollar spans stay literal, while an unterminated \( or \[ consumes the rest
// of the input as math, matching how typesetters treat a dangling opener.
func Tokenize(s string) []Segment {
	return split(normalize(s))
}

// normalize rewrites $$...$$ spans to \[...\] and $...$ spans to \(...\) so
// the splitter only has to deal with one delimiter family. A $ immediately
// followed by a digit never starts math, and a $ or $$ with no closing marker
// before end of input is emitted literally.
func normalize(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for i < len(s) {
		d := strings.Index(s[i:], "$")
		if d == -1 {
			b.WriteString(s[i:])
			break
		}
		d += i

		if strings.HasPrefix(s[d:], "$$") {
			end := strings.Index(s[d+2:], "$$")
			if end == -1 {
				b.WriteString(s[i : d+2])
				i = d + 2
				continue
			}
			end += d + 2
			b.WriteString(s[i:d])
			b.WriteString(displayOpen)
			b.WriteString(strings.TrimSpace(s[d+2 : end]))
			b.WriteString(displayClose)
			i = end + 2
			continue
		}

		if d+1 < len(s) && s[d+1] >= '0' && s[d+1] <= '9' {
			b.WriteString(s[i : d+1])
			i = d + 1
			continue
		}

		end := strings.Index(s[d+1:], "$")
		if end == -1 {
			b.WriteString(s[i:])
			break
		}
		end += d + 1
		content := s[d+1 : end]
		if looksLikeMath(content) {
			b.WriteString(s[i:d])
			b.WriteString(inlineOpen)
			b.WriteString(strings.TrimSpace(content))
			b.WriteString(inlineClose)
			i = end + 1
		} else {
			b.WriteString(s[i : d+1])
			i = d + 1
		}
	}
	return b.String()
}

// split scans normalized text for \( and \[ openers and extracts math
// segments, tracking nesting depth per delimiter type. Mixed types are
// matched independently: an inline opener is never closed by a display
// closer.
func split(s string) []Segment {
	var segs []Segment
	i := 0
	for i < len(s) {
		inline := strings.Index(s[i:], inlineOpen)
		display := strings.Index(s[i:], displayOpen)

		var start int
		var isDisplay bool
		switch {
		case inline == -1 && display == -1:
			segs = append(segs, Segment{Text: s[i:]})
			return segs
		case inline != -1 && (display == -1 || inline < display):
			start, isDisplay = i+inline, false
		default:
			start, isDisplay = i+display, true
		}

		if start > i {
			segs = append(segs, Segment{Text: s[i:start]})
		}

		open, close := inlineOpen, inlineClose
		if isDisplay {
			open, close = displayOpen, displayClose
		}

		depth := 0
		j := start + len(open)
		for j < len(s) {
			if strings.HasPrefix(s[j:], close) {
				if depth == 0 {
					break
				}
				depth--
				j += len(close)
				continue
			}
			if strings.HasPrefix(s[j:], open) {
				depth++
				j += len(open)
				continue
			}
			j++
		}

		segs = append(segs, Segment{Text: s[start+len(open) : j], Math: true, Display: isDisplay})
		i = j + len(close)
	}
	return segs
}
