// Package normalize canonicalizes competitor names so visually identical
// spellings map to one competitor. Case is kept.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

func Name(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
