// Package markup parses the inline **bold** and *italic* syntax used in
// message content.
package markup

import "strings"

// Style is the emphasis applied to a span.
type Style int

const (
	Plain Style = iota
	Bold
	Italic
)

func (s Style) String() string {
	switch s {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	default:
		return "plain"
	}
}

// Span is a run of text with one style. Delimiters are not part of Text.
type Span struct {
	Text  string
	Style Style
}

const delim = '*'

// Parse splits text into styled spans. A run between delimiters must be
// non-empty and free of '*'; there is no nesting. Anything that does not form
// a complete pair is kept as literal text, asterisks included.
func Parse(text string) []Span {
	if text == "" {
		return nil
	}

	var (
		spans []Span
		plain strings.Builder
	)
	flush := func() {
		if plain.Len() > 0 {
			spans = append(spans, Span{Text: plain.String()})
			plain.Reset()
		}
	}

	for i := 0; i < len(text); {
		if text[i] != delim {
			next := strings.IndexByte(text[i:], delim)
			if next < 0 {
				plain.WriteString(text[i:])
				break
			}
			plain.WriteString(text[i : i+next])
			i += next
			continue
		}

		if run, ok := boldRun(text[i:]); ok {
			flush()
			spans = append(spans, Span{Text: run, Style: Bold})
			i += len(run) + 4
			continue
		}
		if run, ok := italicRun(text[i:]); ok {
			flush()
			spans = append(spans, Span{Text: run, Style: Italic})
			i += len(run) + 2
			continue
		}

		plain.WriteByte(delim)
		i++
	}
	flush()
	return spans
}

// boldRun matches "**run**" at the start of s.
func boldRun(s string) (string, bool) {
	if len(s) < 5 || s[0] != delim || s[1] != delim {
		return "", false
	}
	end := strings.IndexByte(s[2:], delim)
	if end <= 0 {
		return "", false
	}
	closing := 2 + end
	if closing+1 >= len(s) || s[closing+1] != delim {
		return "", false
	}
	return s[2:closing], true
}

// italicRun matches "*run*" at the start of s.
func italicRun(s string) (string, bool) {
	if len(s) < 3 || s[0] != delim {
		return "", false
	}
	end := strings.IndexByte(s[1:], delim)
	if end <= 0 {
		return "", false
	}
	return s[1 : 1+end], true
}

// Text returns the displayed text of spans without delimiters.
func Text(spans []Span) string {
	var b strings.Builder
	for _, span := range spans {
		b.WriteString(span.Text)
	}
	return b.String()
}
