package sng

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fixed name field widths.
const (
	NameSize      = 32
	EventNameSize = 256
	DateSize      = 32
)

// asciiFold strips combining marks so accented letters keep their base form.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldASCII strips diacritics from s ("Café" becomes "Cafe"). Characters
// without a base form are left alone.
func FoldASCII(s string) string {
	folded, _, err := transform.String(asciiFold, s)
	if err != nil {
		return s
	}
	return folded
}

// asciiBytes converts s to ASCII. Every non-ASCII character becomes '?'.
func asciiBytes(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > unicode.MaxASCII {
			r = '?'
		}
		out = append(out, byte(r))
	}
	return out
}

// Name32 is a zero-padded 32-byte name field.
type Name32 [NameSize]byte

// Name256 is a zero-padded 256-byte name field.
type Name256 [EventNameSize]byte

// NewName32 left-justifies s, truncating to the field width.
func NewName32(s string) Name32 {
	var n Name32
	copy(n[:], asciiBytes(s))
	return n
}

// NewName256 left-justifies s, truncating to the field width.
func NewName256(s string) Name256 {
	var n Name256
	copy(n[:], asciiBytes(s))
	return n
}

// name32 builds a name field, folding diacritics first when enabled.
func (c *compilation) name32(s string) Name32 {
	if c.opts.foldNames {
		s = FoldASCII(s)
	}
	return NewName32(s)
}

func (c *compilation) name256(s string) Name256 {
	if c.opts.foldNames {
		s = FoldASCII(s)
	}
	return NewName256(s)
}

func (n Name32) String() string  { return trimNul(n[:]) }
func (n Name256) String() string { return trimNul(n[:]) }

// MarshalText renders the name without padding.
func (n Name32) MarshalText() ([]byte, error) { return []byte(n.String()), nil }

// MarshalText renders the name without padding.
func (n Name256) MarshalText() ([]byte, error) { return []byte(n.String()), nil }

func trimNul(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
