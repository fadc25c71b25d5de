package launchargs

import (
	"errors"
	"fmt"
)

// ErrInvalidScheme reports a URI scheme name that a launcher would not route.
var ErrInvalidScheme = errors.New("invalid uri scheme")

// ValidateScheme checks name against RFC 3986: a letter followed by letters,
// digits, '+', '-' or '.'.
func ValidateScheme(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidScheme)
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return fmt.Errorf("%w: %q has %q at offset %d", ErrInvalidScheme, name, r, i)
		}
	}
	return nil
}
