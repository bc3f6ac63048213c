// Package specgrammar parses the bit-field spec strings used to describe
// instruction encodings, e.g. "imm3(3) Rn(3) Rd(3)" or "1 0 1 1 0 0 0 0".
// A spec is a whitespace-separated list of fields, written most
// significant bit first.
package specgrammar

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// FieldKind distinguishes the three field forms the grammar accepts.
type FieldKind int

const (
	// FieldBit is a literal '0' or '1' constant bit.
	FieldBit FieldKind = iota
	// FieldName is a named, variable-value field of a declared width.
	FieldName
	// FieldFixed is a named field whose value is pinned to a literal bit
	// pattern (the "name=BIT+" form) — part of the match pattern, never
	// captured into the field map a decode handler receives.
	FieldFixed
)

// Field is one element of a parsed spec.
type Field struct {
	Kind FieldKind
	Name string // set for FieldName and FieldFixed
	Bit  int    // set for FieldBit: 0 or 1
	Bits string // set for FieldFixed: the literal pattern, MSB first
	// Width is the field's bit width: 1 for FieldBit, the declared width
	// for FieldName (default 1 when NUM is omitted), len(Bits) for
	// FieldFixed.
	Width uint
}

// Parse parses a spec string into its ordered list of fields. Whitespace
// between fields is insignificant; a trailing bare identifier has an
// implicit width of 1.
func Parse(spec string) ([]Field, error) {
	p := &parser{input: spec}
	var fields []Field
	for {
		p.skipSpace()
		if p.atEnd() {
			break
		}
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) atEnd() bool { return p.pos >= len(p.input) }

func (p *parser) peek() byte {
	if p.atEnd() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) skipSpace() {
	for !p.atEnd() && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func isIdentStart(c byte) bool {
	return unicode.IsLetter(rune(c)) || c == '_'
}

func isIdentChar(c byte) bool {
	return unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c)) || c == '_'
}

func (p *parser) parseField() (Field, error) {
	c := p.peek()
	switch {
	case c == '0' || c == '1':
		// A bare bit is only a BIT token when it is not itself the start
		// of an identifier run (identifiers never start with a digit, so
		// this is unambiguous).
		p.pos++
		return Field{Kind: FieldBit, Bit: int(c - '0'), Width: 1}, nil

	case isIdentStart(c):
		start := p.pos
		for !p.atEnd() && isIdentChar(p.input[p.pos]) {
			p.pos++
		}
		name := p.input[start:p.pos]

		switch p.peek() {
		case '(':
			p.pos++
			numStart := p.pos
			for !p.atEnd() && unicode.IsDigit(rune(p.input[p.pos])) {
				p.pos++
			}
			numStr := p.input[numStart:p.pos]
			if p.peek() != ')' {
				return Field{}, fmt.Errorf("specgrammar: unterminated width in %q", p.input)
			}
			p.pos++ // consume ')'
			width := uint(1)
			if numStr != "" {
				n, err := strconv.Atoi(numStr)
				if err != nil || n <= 0 {
					return Field{}, fmt.Errorf("specgrammar: invalid width %q in %q", numStr, p.input)
				}
				width = uint(n)
			}
			return Field{Kind: FieldName, Name: name, Width: width}, nil

		case '=':
			p.pos++
			bitsStart := p.pos
			for !p.atEnd() && (p.input[p.pos] == '0' || p.input[p.pos] == '1') {
				p.pos++
			}
			bits := p.input[bitsStart:p.pos]
			if bits == "" {
				return Field{}, fmt.Errorf("specgrammar: %q=  requires at least one bit", name)
			}
			return Field{Kind: FieldFixed, Name: name, Bits: bits, Width: uint(len(bits))}, nil

		default:
			// Trailing bare identifier: implicit width 1.
			return Field{Kind: FieldName, Name: name, Width: 1}, nil
		}

	default:
		return Field{}, fmt.Errorf("specgrammar: unexpected character %q in %q", c, p.input)
	}
}

// FieldPos locates a named field within a laid-out spec: Pos is the bit
// index of the field's least significant bit, counting from bit 0 of the
// spec's own width.
type FieldPos struct {
	Name  string
	Pos   uint
	Width uint
}

// Layout computes the mask and match words for a parsed spec, plus the
// bit position of each named (non-fixed) field for later extraction.
// Per the field layout rule, the field list is written MSB-first; Layout
// walks it in reverse so that the last field occupies bit 0.
func Layout(fields []Field) (mask, match uint64, positions []FieldPos, width uint, err error) {
	var pos uint
	for i := len(fields) - 1; i >= 0; i-- {
		f := fields[i]
		fieldMask := (uint64(1) << f.Width) - 1
		switch f.Kind {
		case FieldBit:
			mask |= fieldMask << pos
			match |= uint64(f.Bit) << pos
		case FieldFixed:
			mask |= fieldMask << pos
			v, perr := strconv.ParseUint(f.Bits, 2, 64)
			if perr != nil {
				return 0, 0, nil, 0, fmt.Errorf("specgrammar: invalid fixed pattern %q for %q: %w", f.Bits, f.Name, perr)
			}
			match |= v << pos
		case FieldName:
			positions = append(positions, FieldPos{Name: f.Name, Pos: pos, Width: f.Width})
		}
		pos += f.Width
	}
	return mask, match, positions, pos, nil
}

// String renders the parsed fields back into their spec syntax,
// MSB-first, for diagnostic messages.
func String(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		switch f.Kind {
		case FieldBit:
			parts[i] = strconv.Itoa(f.Bit)
		case FieldFixed:
			parts[i] = fmt.Sprintf("%s=%s", f.Name, f.Bits)
		default:
			if f.Width == 1 {
				parts[i] = f.Name
			} else {
				parts[i] = fmt.Sprintf("%s(%d)", f.Name, f.Width)
			}
		}
	}
	return strings.Join(parts, " ")
}
