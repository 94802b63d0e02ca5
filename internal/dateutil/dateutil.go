// Package dateutil formats document dates from user-friendly patterns.
package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// DefaultDateFormat matches the short US date printed in document headers.
const DefaultDateFormat = "M/D/YYYY"

// DatePresets provides named shortcuts for common date formats.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
	"short":    "M/D/YYYY",
}

// tokens are tried longest first, so "MMMM" wins over "MM".
var tokens = []struct {
	name   string
	render func(time.Time) string
}{
	{"YYYY", func(t time.Time) string { return fmt.Sprintf("%04d", t.Year()) }},
	{"MMMM", func(t time.Time) string { return t.Month().String() }},
	{"MMM", func(t time.Time) string { return t.Month().String()[:3] }},
	{"YY", func(t time.Time) string { return fmt.Sprintf("%02d", t.Year()%100) }},
	{"MM", func(t time.Time) string { return fmt.Sprintf("%02d", int(t.Month())) }},
	{"DD", func(t time.Time) string { return fmt.Sprintf("%02d", t.Day()) }},
	{"M", func(t time.Time) string { return strconv.Itoa(int(t.Month())) }},
	{"D", func(t time.Time) string { return strconv.Itoa(t.Day()) }},
}

// segment is either literal text or a token renderer.
type segment struct {
	literal string
	render  func(time.Time) string
}

// Layout is a compiled date pattern.
type Layout struct {
	segments []segment
}

// Compile parses a pattern such as "MMMM D, YYYY".
//
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D. Text inside brackets is kept
// verbatim ("[Week of] MMM D"), as is any other character outside them.
func Compile(pattern string) (*Layout, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(pattern) > MaxDateFormatLength {
		return nil, fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	l := &Layout{}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			l.segments = append(l.segments, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	rest := pattern
	for rest != "" {
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				pos := len(pattern) - len(rest)
				return nil, fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, pos)
			}
			lit.WriteString(rest[1:end])
			rest = rest[end+1:]
			continue
		}
		if tok, ok := matchToken(rest); ok {
			flush()
			l.segments = append(l.segments, segment{render: tokens[tok].render})
			rest = rest[len(tokens[tok].name):]
			continue
		}
		lit.WriteByte(rest[0])
		rest = rest[1:]
	}
	flush()
	return l, nil
}

func matchToken(s string) (int, bool) {
	for i, tok := range tokens {
		if strings.HasPrefix(s, tok.name) {
			return i, true
		}
	}
	return 0, false
}

// Format renders t.
func (l *Layout) Format(t time.Time) string {
	var b strings.Builder
	for _, s := range l.segments {
		if s.render != nil {
			b.WriteString(s.render(t))
		} else {
			b.WriteString(s.literal)
		}
	}
	return b.String()
}

// Format renders t using format, which may be a preset name (iso, european,
// us, long, short) or a token pattern. An empty format uses DefaultDateFormat.
func Format(t time.Time, format string) (string, error) {
	if format == "" {
		format = DefaultDateFormat
	}
	if preset, ok := DatePresets[strings.ToLower(format)]; ok {
		format = preset
	}
	l, err := Compile(format)
	if err != nil {
		return "", err
	}
	return l.Format(t), nil
}

// Validate reports whether format is usable by Format.
func Validate(format string) error {
	_, err := Format(time.Time{}, format)
	return err
}
