// Package pretty formats values for log output.
package pretty

import (
	"fmt"
	"unicode/utf8"
)

// Abbrev returns s as a Stringer that shortens it when it is longer than
// maxLen bytes. An optional second range sets how many bytes are kept,
// which defaults to maxLen.
func Abbrev(s string, ranges ...int) Abbreviated {
	maxLen, cutTo := 12, 12
	if len(ranges) >= 2 {
		maxLen, cutTo = ranges[0], ranges[1]
	} else if len(ranges) == 1 {
		maxLen, cutTo = ranges[0], ranges[0]
	}
	return Abbreviated{
		Original: s,
		MaxLen:   maxLen,
		CutTo:    cutTo,
	}
}

// Abbreviated is a string that is cut short when printed.
type Abbreviated struct {
	Original string
	MaxLen   int
	CutTo    int
}

func (s Abbreviated) String() string {
	if len(s.Original) <= s.MaxLen {
		return s.Original
	}
	cut := s.CutTo
	// Don't split a multibyte rune.
	for cut > 0 && !utf8.RuneStart(s.Original[cut]) {
		cut--
	}
	return fmt.Sprintf("%s… (%d bytes)", s.Original[:cut], len(s.Original))
}
