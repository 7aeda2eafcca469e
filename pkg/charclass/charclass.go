// Package charclass implements sets of byte values used as NFA edge labels.
package charclass

import (
	"fmt"
	"math/bits"
	"strings"
)

// Class is a set over the 256 byte values. It is a value type; every
// operation returns a new Class and never mutates its receiver.
type Class [4]uint64

// Byte returns the class holding only b.
func Byte(b byte) Class {
	var c Class
	c[b>>6] |= 1 << (b & 63)
	return c
}

// Range returns the class holding every byte in [lo, hi]. An inverted range
// yields the empty class.
func Range(lo, hi byte) Class {
	var c Class
	for i := int(lo); i <= int(hi); i++ {
		c[i>>6] |= 1 << (uint(i) & 63)
	}
	return c
}

// Of returns the class holding each byte of s.
func Of(s string) Class {
	var c Class
	for i := 0; i < len(s); i++ {
		c = c.Union(Byte(s[i]))
	}
	return c
}

// All returns the class of every byte.
func All() Class { return Class{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)} }

// Dot returns the class matched by '.', every byte except newline.
func Dot() Class { return Byte('\n').Negate() }

var (
	digits  = Range('0', '9')
	letters = Range('a', 'z').Union(Range('A', 'Z'))
	word    = letters.Union(digits).Union(Byte('_'))
	space   = Of(" \f\n\r\t\v")
)

// Shortcut returns the class named by a backslash shortcut letter:
// d (digit), s (whitespace), w (word), l (letter) and their upper-case
// negations. ok is false for any other letter.
func Shortcut(letter byte) (c Class, ok bool) {
	switch letter {
	case 'd':
		return digits, true
	case 'D':
		return digits.Negate(), true
	case 's':
		return space, true
	case 'S':
		return space.Negate(), true
	case 'w':
		return word, true
	case 'W':
		return word.Negate(), true
	case 'l':
		return letters, true
	case 'L':
		return letters.Negate(), true
	}
	return Class{}, false
}

func (c Class) Union(o Class) Class {
	return Class{c[0] | o[0], c[1] | o[1], c[2] | o[2], c[3] | o[3]}
}

func (c Class) Intersect(o Class) Class {
	return Class{c[0] & o[0], c[1] & o[1], c[2] & o[2], c[3] & o[3]}
}

func (c Class) Negate() Class {
	return Class{^c[0], ^c[1], ^c[2], ^c[3]}
}

func (c Class) Contains(b byte) bool {
	return c[b>>6]&(1<<(b&63)) != 0
}

func (c Class) Empty() bool {
	return c[0]|c[1]|c[2]|c[3] == 0
}

// Len reports the number of bytes in the class.
func (c Class) Len() int {
	return bits.OnesCount64(c[0]) + bits.OnesCount64(c[1]) + bits.OnesCount64(c[2]) + bits.OnesCount64(c[3])
}

// Bytes lists the members of the class in ascending order.
func (c Class) Bytes() []byte {
	out := make([]byte, 0, c.Len())
	for i := 0; i < 256; i++ {
		if c.Contains(byte(i)) {
			out = append(out, byte(i))
		}
	}
	return out
}

// String renders the class as a bracket expression. Classes holding more
// than half of the alphabet are rendered negated.
func (c Class) String() string {
	switch n := c.Len(); {
	case n == 0:
		return "[]"
	case n == 256:
		return "[^]"
	case n == 1:
		return Quote(c.Bytes()[0])
	case n > 128:
		return "[^" + c.Negate().ranges() + "]"
	}
	return "[" + c.ranges() + "]"
}

func (c Class) ranges() string {
	var sb strings.Builder
	for i := 0; i < 256; {
		if !c.Contains(byte(i)) {
			i++
			continue
		}
		j := i
		for j+1 < 256 && c.Contains(byte(j+1)) {
			j++
		}
		sb.WriteString(Quote(byte(i)))
		if j > i+1 {
			sb.WriteByte('-')
		}
		if j > i {
			sb.WriteString(Quote(byte(j)))
		}
		i = j + 1
	}
	return sb.String()
}

// Quote renders b the way it would be written inside a pattern.
func Quote(b byte) string {
	switch b {
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	case '\f':
		return `\f`
	case '\v':
		return `\v`
	case '\\', ']', '[', '^', '-':
		return `\` + string(b)
	}
	if b < 0x20 || b >= 0x7f {
		return fmt.Sprintf(`\x%02x`, b)
	}
	return string(b)
}
