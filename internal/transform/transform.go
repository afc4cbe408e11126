// Package transform rewrites single CSV lines with a fixed chain of pure text
// rules. Every rule is total: input it does not recognise is returned as is.
// Rules hold no state, so a Chain is safe for concurrent use by any number of
// workers.
package transform

// Rule rewrites one line body (without its terminator).
type Rule func(line string) string

// Chain is an ordered list of rules.
type Chain []Rule

// Apply runs every rule in order and returns the final line.
func (c Chain) Apply(line string) string {
	out := line
	for _, r := range c {
		out = r(out)
	}
	return out
}

// Default returns the standard rule order. Dates are normalised before the
// sentinel year is corrected; field-level rules run last because they only
// look at whole fields.
func Default() Chain {
	return Chain{
		NormalizeDates,
		FixSentinelYear,
		NullEmptyFields,
		NormalizeBooleans,
	}
}

// WithBareTimestamps returns the default chain followed by BareTimestamps.
func WithBareTimestamps() Chain {
	return append(Default(), BareTimestamps)
}

var defaultChain = Default()

// Line applies the default chain to a single line body.
func Line(line string) string {
	return defaultChain.Apply(line)
}
