// Package launchargs derives a routable payload from a raw launch command line.
package launchargs

import (
	"fmt"
	"strings"
)

// DeepLinkMarker separates a deep-link scheme from its in-app destination.
const DeepLinkMarker = "://"

// Kind tags the variant held by Parsed.
type Kind int

const (
	KindEmpty Kind = iota
	KindPlain
	KindDeepLink
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindDeepLink:
		return "deeplink"
	default:
		return "empty"
	}
}

// MarshalText renders the kind name so Parsed encodes readably.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "plain":
		*k = KindPlain
	case "deeplink":
		*k = KindDeepLink
	case "empty", "":
		*k = KindEmpty
	default:
		return fmt.Errorf("unknown kind %q", text)
	}
	return nil
}

// Parsed is either a deep-link suffix, normalized plain arguments, or empty.
type Parsed struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// DeepLink builds a deep-link result.
func DeepLink(suffix string) Parsed {
	return Parsed{Kind: KindDeepLink, Value: suffix}
}

// Plain builds a plain-arguments result.
func Plain(normalized string) Parsed {
	return Parsed{Kind: KindPlain, Value: normalized}
}

// IsEmpty reports whether there is nothing to redirect.
func (p Parsed) IsEmpty() bool {
	return p.Kind == KindEmpty
}

func (p Parsed) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return p.Kind.String() + ":" + p.Value
}

// ParseCommandLine parses a full command line whose first token is the executable.
func ParseCommandLine(raw string) Parsed {
	tokens := Tokenize(raw)
	if len(tokens) > 0 {
		tokens = tokens[1:]
	}
	return parseTokens(tokens)
}

// ParseArguments parses arguments that were already stripped of the executable,
// which is what a duplicate instance sends over the wire.
func ParseArguments(raw string) Parsed {
	return parseTokens(Tokenize(raw))
}

func parseTokens(tokens []string) Parsed {
	if len(tokens) == 0 {
		return Parsed{}
	}

	for _, token := range tokens {
		_, suffix, found := strings.Cut(token, DeepLinkMarker)
		if !found {
			continue
		}
		return DeepLink(strings.TrimSuffix(suffix, "/"))
	}

	return Plain(strings.Join(tokens, " "))
}
