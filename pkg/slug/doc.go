// Package slug generates URL-safe slugs from arbitrary strings. Diacritics
// are folded to ASCII via Unicode decomposition, everything that is not a
// letter or digit becomes a separator, and options cover length limits and
// random suffixes for collision avoidance.
package slug
