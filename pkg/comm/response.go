package comm

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Response is the raw reply of a command.
type Response []byte

// String decodes the reply.
func (r Response) String() string {
	return Decode(r)
}

// Text returns the decoded reply without surrounding whitespace.
func (r Response) Text() string {
	return strings.TrimSpace(Decode(r))
}

// Decode interprets bytes as UTF-8 and falls back to Latin-1,
// which maps every byte, so decoding never fails.
func Decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return string(s)
}
