package transform

import (
	"regexp"
	"strings"
)

var (
	// "20/12/2016 20:08:51" with an optional " +00:00" offset.
	reDMY = regexp.MustCompile(`"(\d{2})/(\d{2})/(\d{4}) (\d{2}:\d{2}:\d{2})(?: [+-]\d{2}:?\d{2})?"`)

	// Only matches the shape produced by NormalizeDates.
	reSentinel = regexp.MustCompile(`"1899-(\d{2}-\d{2} \d{2}:\d{2}:\d{2})"`)

	reISOQuoted = regexp.MustCompile(`^"\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}"$`)
)

// NormalizeDates rewrites a quoted "DD/MM/YYYY HH:MM:SS[ ±HH:MM]" value into
// "YYYY-MM-DD HH:MM:SS". The offset is dropped. Digits are regrouped only;
// day and month ranges are not checked.
func NormalizeDates(line string) string {
	if !strings.Contains(line, "/") {
		return line
	}
	return reDMY.ReplaceAllString(line, `"$3-$2-$1 $4"`)
}

// FixSentinelYear maps the 1899 epoch placeholder emitted by the source
// system to 1970, keeping month, day and time.
func FixSentinelYear(line string) string {
	if !strings.Contains(line, `"1899-`) {
		return line
	}
	return reSentinel.ReplaceAllString(line, `"1970-$1"`)
}

// NullEmptyFields replaces every field that is exactly "" with bare NULL.
func NullEmptyFields(line string) string {
	if !strings.Contains(line, `""`) {
		return line
	}
	return rewriteFields(line, func(field string) (string, bool) {
		if field == `""` {
			return "NULL", true
		}
		return field, false
	})
}

// NormalizeBooleans replaces a field that is exactly a quoted true or false
// (any case) with bare 1 or 0.
func NormalizeBooleans(line string) string {
	if !strings.Contains(line, `"`) {
		return line
	}
	return rewriteFields(line, func(field string) (string, bool) {
		if len(field) < 6 || field[0] != '"' || field[len(field)-1] != '"' {
			return field, false
		}
		switch inner := field[1 : len(field)-1]; {
		case strings.EqualFold(inner, "true"):
			return "1", true
		case strings.EqualFold(inner, "false"):
			return "0", true
		}
		return field, false
	})
}

// BareTimestamps drops the quotes around a field holding a normalised
// "YYYY-MM-DD HH:MM:SS" value so the output carries bare literals next to
// NULL and 1/0.
func BareTimestamps(line string) string {
	if !strings.Contains(line, `"`) {
		return line
	}
	return rewriteFields(line, func(field string) (string, bool) {
		if len(field) != 21 || !reISOQuoted.MatchString(field) {
			return field, false
		}
		return field[1 : len(field)-1], true
	})
}
