package transformer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Tokenize splits NFC-normalized text on whitespace.
func Tokenize(text string) []string {
	return strings.Fields(norm.NFC.String(text))
}
