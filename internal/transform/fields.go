package transform

import "strings"

// splitFields returns the [start,end) byte offsets of every comma-separated
// field in line. Quoted fields may contain commas and doubled quotes.
// Characters after a closing quote stay in the same field, and an unterminated
// quoted field runs to the end of the line.
func splitFields(line string) [][2]int {
	spans := make([][2]int, 0, strings.Count(line, ",")+1)
	start := 0
	i := 0
	n := len(line)
	for {
		if i < n && line[i] == '"' {
			i++
			for i < n {
				if line[i] == '"' {
					if i+1 < n && line[i+1] == '"' {
						i += 2
						continue
					}
					i++
					break
				}
				i++
			}
		}
		for i < n && line[i] != ',' {
			i++
		}
		spans = append(spans, [2]int{start, i})
		if i >= n {
			return spans
		}
		i++
		start = i
	}
}

// rewriteFields calls fn for every field and rebuilds the line only when fn
// reports a change. An untouched line is returned as the same string.
func rewriteFields(line string, fn func(field string) (string, bool)) string {
	spans := splitFields(line)

	var b strings.Builder
	changed := false
	last := 0
	for _, sp := range spans {
		repl, ok := fn(line[sp[0]:sp[1]])
		if !ok {
			continue
		}
		if !changed {
			b.Grow(len(line))
			changed = true
		}
		b.WriteString(line[last:sp[0]])
		b.WriteString(repl)
		last = sp[1]
	}
	if !changed {
		return line
	}
	b.WriteString(line[last:])
	return b.String()
}
