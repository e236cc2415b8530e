// Package mathtext converts LaTeX-style math delimiters embedded in plain
// text into statically rendered markup that survives email clients without
// client-side typesetting scripts.
//
// Supported delimiters: \(...\) and $...$ for inline math, \[...\] and
// $$...$$ for display math. Dollar spans are normalized to backslash form
// first, with heuristics that keep plain-text dollar amounts ("$5 off")
// untouched. Parsing and rendering are separate steps: Tokenize produces a
// sequence of plain and math segments, and Renderer maps math segments
// through a pluggable Typesetter.
//
// Basic usage:
//
//	r := mathtext.NewRenderer(mathml.New())
//	out := r.Render(`The identity $e^{i\pi} + 1 = 0$ still holds.`)
//
// A Typeset failure on a malformed expression is recovered locally: the
// original delimited text is emitted unchanged and no error is surfaced.
package mathtext
