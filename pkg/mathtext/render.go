package mathtext

import "strings"

// Typesetter renders a single math expression to static markup.
// Implementations may fail on malformed input; the Renderer recovers locally.
type Typesetter interface {
	Typeset(expr string, display bool) (string, error)
}

// TypesetterFunc adapts a function to the Typesetter interface.
type TypesetterFunc func(expr string, display bool) (string, error)

func (f TypesetterFunc) Typeset(expr string, display bool) (string, error) {
	return f(expr, display)
}

// Renderer replaces every math span in a text with typeset markup.
type Renderer struct {
	engine Typesetter
}

// NewRenderer creates a Renderer backed by the given typesetting engine.
func NewRenderer(engine Typesetter) *Renderer {
	return &Renderer{engine: engine}
}

// Render replaces all delimited math spans in s with typeset markup, leaving
// everything else untouched. Text without any math delimiters is returned
// as-is. When the engine rejects an expression the original delimited span is
// emitted unchanged rather than propagating the error.
func (r *Renderer) Render(s string) string {
	if !strings.Contains(s, "$") &&
		!strings.Contains(s, inlineOpen) &&
		!strings.Contains(s, displayOpen) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, seg := range Tokenize(s) {
		if !seg.Math {
			b.WriteString(seg.Text)
			continue
		}

		markup, err := r.engine.Typeset(strings.TrimSpace(seg.Text), seg.Display)
		if err != nil {
			if seg.Display {
				b.WriteString(displayOpen + seg.Text + displayClose)
			} else {
				b.WriteString(inlineOpen + seg.Text + inlineClose)
			}
			continue
		}
		b.WriteString(markup)
	}
	return b.String()
}
