package launchargs

import (
	"fmt"
	"strings"
	"unicode"
)

// Tokenize splits a command line with shell-like quoting and never fails.
//
// Backslash escapes only whitespace, quotes, and another backslash; any other
// backslash is kept literally so Windows paths survive. An unterminated quote
// extends to the end of input.
func Tokenize(input string) []string {
	argv, _ := split(input)
	return argv
}

// Split is the strict form of Tokenize used for configured commands.
func Split(input string) ([]string, error) {
	argv, err := split(input)
	if err != nil {
		return nil, err
	}
	return argv, nil
}

func split(input string) ([]string, error) {
	var (
		argv    []string
		current strings.Builder
		started bool
		quote   rune
		escape  bool
	)

	flush := func() {
		if !started {
			return
		}
		argv = append(argv, current.String())
		current.Reset()
		started = false
	}

	for _, r := range input {
		switch {
		case escape:
			if !escapable(r, quote) {
				current.WriteRune('\\')
			}
			current.WriteRune(r)
			escape = false
		case r == '\\' && quote != '\'':
			escape = true
			started = true
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			started = true
		case unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}

	var err error
	switch {
	case escape:
		current.WriteRune('\\')
		err = fmt.Errorf("unterminated escape sequence in command: %q", input)
	case quote != 0:
		err = fmt.Errorf("unterminated quote in command: %q", input)
	}

	flush()
	return argv, err
}

// escapable reports whether a backslash before r is consumed as an escape.
func escapable(r rune, quote rune) bool {
	if r == '\\' || r == '"' {
		return true
	}
	if quote != 0 {
		return false
	}
	return r == '\'' || unicode.IsSpace(r)
}

// Join renders argv so that Tokenize(Join(argv)) returns argv unchanged.
func Join(argv []string) string {
	parts := make([]string, 0, len(argv))
	for _, arg := range argv {
		parts = append(parts, quote(arg))
	}
	return strings.Join(parts, " ")
}

func quote(arg string) string {
	if arg == "" {
		return `""`
	}
	if !strings.ContainsFunc(arg, needsQuote) {
		return arg
	}

	var b strings.Builder
	b.Grow(len(arg) + 2)
	b.WriteByte('"')
	for _, r := range arg {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

func needsQuote(r rune) bool {
	return unicode.IsSpace(r) || r == '"' || r == '\'' || r == '\\'
}
