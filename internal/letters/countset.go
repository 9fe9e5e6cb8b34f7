// Package letters encodes how many times each of the 26 ASCII letters occurs
// in a word. Counts are limited to 4 bits and packed two to a byte, so a
// CountSet is a fixed 13-byte value that can be compared with == and used as
// a map key.
package letters

import (
	"strings"
)

const (
	// Alphabet is the number of letters tracked by a CountSet.
	Alphabet = 26
	// Size is the packed size of a CountSet in bytes.
	Size = Alphabet / 2
	// MaxCount is the largest count a single letter may reach.
	MaxCount = 15
)

// CountSet is the packed per-letter count of a word. Byte i holds letter 2i
// in its low nibble and letter 2i+1 in its high nibble.
type CountSet [Size]byte

// Encode counts the letters of word. Letters are case-folded, so "Hello" and
// "hELLO" encode to the same CountSet. The empty word encodes to the zero
// CountSet.
func Encode(word string) (CountSet, error) {
	for i := 0; i < len(word); i++ {
		if word[i] >= 0x80 {
			return CountSet{}, &EncodeError{Word: word, Pos: i, Err: ErrNotASCII}
		}
	}
	for i := 0; i < len(word); i++ {
		if !isLetter(word[i]) {
			return CountSet{}, &EncodeError{Word: word, Pos: i, Err: ErrNotAlphabetic}
		}
	}

	var counts [Alphabet]uint8
	for i := 0; i < len(word); i++ {
		idx := letterIndex(word[i])
		if counts[idx] == MaxCount {
			return CountSet{}, &EncodeError{Word: word, Pos: i, Err: ErrCountOverflow}
		}
		counts[idx]++
	}
	return pack(counts), nil
}

// FromCounts packs an unpacked count array. It fails with ErrCountOverflow if
// any count does not fit in 4 bits.
func FromCounts(counts [Alphabet]uint8) (CountSet, error) {
	for i, c := range counts {
		if c > MaxCount {
			return CountSet{}, &EncodeError{Pos: i, Err: ErrCountOverflow}
		}
	}
	return pack(counts), nil
}

// FromBytes restores a CountSet from its packed form. Every 13-byte value is
// a valid CountSet since a nibble cannot exceed MaxCount.
func FromBytes(b [Size]byte) CountSet {
	return CountSet(b)
}

func pack(counts [Alphabet]uint8) CountSet {
	var cs CountSet
	for i := 0; i < Alphabet; i++ {
		idx, shift := position(i)
		cs[idx] |= counts[i] << shift
	}
	return cs
}

// position maps a letter index to its byte index and nibble shift.
func position(letter int) (int, uint) {
	return letter / 2, uint(letter%2) * 4
}

func (cs CountSet) at(letter int) uint8 {
	idx, shift := position(letter)
	return (cs[idx] >> shift) & 0x0f
}

// Counts unpacks the CountSet into one count per letter, A first.
func (cs CountSet) Counts() [Alphabet]uint8 {
	var counts [Alphabet]uint8
	for i := 0; i < Alphabet; i++ {
		counts[i] = cs.at(i)
	}
	return counts
}

// Count returns the count of a single letter. Lower and upper case are the
// same letter; any other byte has a count of zero.
func (cs CountSet) Count(letter byte) uint8 {
	if !isLetter(letter) {
		return 0
	}
	return cs.at(letterIndex(letter))
}

// Contains reports whether cs has at least as many of every letter as other,
// i.e. whether other's word can be spelled from cs's letters.
func (cs CountSet) Contains(other CountSet) bool {
	for i := 0; i < Size; i++ {
		a, b := cs[i], other[i]
		if a&0x0f < b&0x0f || a>>4 < b>>4 {
			return false
		}
	}
	return true
}

// Bytes returns the packed form.
func (cs CountSet) Bytes() [Size]byte {
	return cs
}

// Total returns the number of letters counted.
func (cs CountSet) Total() int {
	total := 0
	for i := 0; i < Alphabet; i++ {
		total += int(cs.at(i))
	}
	return total
}

// String renders the non-zero counts, e.g. {E:1 H:1 L:2 O:1}.
func (cs CountSet) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for i := 0; i < Alphabet; i++ {
		c := cs.at(i)
		if c == 0 {
			continue
		}
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		sb.WriteByte(byte('A' + i))
		sb.WriteByte(':')
		if c >= 10 {
			sb.WriteByte('1')
			c -= 10
		}
		sb.WriteByte('0' + c)
	}
	sb.WriteByte('}')
	return sb.String()
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// letterIndex expects an ASCII letter.
func letterIndex(b byte) int {
	if b >= 'a' {
		b -= 'a' - 'A'
	}
	return int(b - 'A')
}
