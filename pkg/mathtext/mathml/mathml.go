// Package mathml is a conservative Typesetter implementation that emits
// static MathML with the original TeX source preserved in an annotation.
// It performs no real layout: clients with MathML support render the mtext
// fallback, and downstream tooling can re-typeset from the annotation. Richer
// engines can be plugged into mathtext.Renderer without touching callers.
package mathml

import (
	"errors"
	"fmt"
	"html"
	"strings"
)

// ErrMalformedExpression indicates the expression cannot be typeset, e.g.
// unbalanced braces.
var ErrMalformedExpression = errors.New("mathml: malformed expression")

// Engine implements mathtext.Typesetter.
type Engine struct{}

// New creates a MathML typesetting engine.
func New() *Engine {
	return &Engine{}
}

// Typeset renders expr as a MathML element. The display flag selects
// display="block" or display="inline". Expressions with unbalanced braces
// are rejected so callers exercise their fallback path.
func (*Engine) Typeset(expr string, display bool) (string, error) {
	if err := checkBraces(expr); err != nil {
		return "", err
	}

	mode := "inline"
	if display {
		mode = "block"
	}
	escaped := html.EscapeString(expr)
	return fmt.Sprintf(
		`<math xmlns="http://www.w3.org/1998/Math/MathML" display=%q><semantics><mrow><mtext>%s</mtext></mrow><annotation encoding="application/x-tex">%s</annotation></semantics></math>`,
		mode, escaped, escaped,
	), nil
}

// checkBraces verifies that { and } pair up, ignoring escaped \{ and \}.
func checkBraces(expr string) error {
	depth := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '\\':
			i++ // skip escaped character
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unexpected } at offset %d", ErrMalformedExpression, i)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("%w: %d unclosed braces", ErrMalformedExpression, depth)
	}
	if strings.TrimSpace(expr) == "" {
		return fmt.Errorf("%w: empty expression", ErrMalformedExpression)
	}
	return nil
}
