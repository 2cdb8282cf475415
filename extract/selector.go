/*
Package extract implements the coordinate extractor: walking a zone
list against two atom.Model structures to emit paired (ref, mob,
weight) coordinate arrays, honouring an atom-name wildcard selector, a
B-value gate, the symmetric-atom pairing table, and centre-of-rotation
zone overrides.

Grounded on original_source/src/ParseRes.c for the wildcard grammar
(used identically for atom-name selectors in ProFit) and
fitting.c:SetSymmetricalAtomPAirs for the default-enabled symmetric
pairs.
*/
package extract

import "strings"

// Selector matches atom names against a wildcard pattern, comparing the
// name with surrounding whitespace removed so a Raw name such as " CA "
// and its trimmed Name "CA" match alike: '*' matches any run, '?' or '%' matches
// exactly one character, '\*' matches a literal '*', and a leading '~'
// or '^' inverts the whole match.
type Selector struct {
	pattern string
	invert  bool
}

// NewSelector compiles a selector from its textual spec.
func NewSelector(spec string) Selector {
	invert := false
	if strings.HasPrefix(spec, "~") || strings.HasPrefix(spec, "^") {
		invert = true
		spec = spec[1:]
	}
	return Selector{pattern: spec, invert: invert}
}

// Match reports whether name satisfies the selector.
func (s Selector) Match(name string) bool {
	m := wildcardMatch(s.pattern, strings.TrimSpace(name))
	if s.invert {
		return !m
	}
	return m
}

// wildcardMatch implements the selector grammar directly (no regexp
// translation, since '\*' must mean a literal asterisk rather than a
// regex-escaped one and '%' is a second single-char wildcard
// alongside '?').
func wildcardMatch(pattern, name string) bool {
	return matchFrom(pattern, name, 0, 0)
}

func matchFrom(pattern, name string, pi, ni int) bool {
	for pi < len(pattern) {
		switch {
		case pattern[pi] == '\\' && pi+1 < len(pattern) && pattern[pi+1] == '*':
			if ni >= len(name) || name[ni] != '*' {
				return false
			}
			pi += 2
			ni++
		case pattern[pi] == '*':
			// Try consuming zero or more characters of name.
			for k := ni; k <= len(name); k++ {
				if matchFrom(pattern, name, pi+1, k) {
					return true
				}
			}
			return false
		case pattern[pi] == '?' || pattern[pi] == '%':
			if ni >= len(name) {
				return false
			}
			pi++
			ni++
		default:
			if ni >= len(name) || pattern[pi] != name[ni] {
				return false
			}
			pi++
			ni++
		}
	}
	return ni == len(name)
}
