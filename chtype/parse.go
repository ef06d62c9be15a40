// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package chtype

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sneller-chcore/chgo/cherr"
)

// DefaultMaxDepth bounds container nesting during Parse:
// every container constructor strictly decreases the remaining input, so
// recursion always terminates, but a depth cap defends against
// pathological inputs regardless.
const DefaultMaxDepth = 128

// Parse parses s as a server column type using the default recursion
// depth limit.
func Parse(s string) (DataType, error) {
	return ParseDepth(s, DefaultMaxDepth)
}

// ParseDepth parses s with an explicit maximum container nesting depth.
func ParseDepth(s string, maxDepth int) (DataType, error) {
	p := &parser{src: s, maxDepth: maxDepth}
	t, err := p.parseType(0)
	if err != nil {
		return DataType{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return DataType{}, p.errorf("unexpected trailing input %q", p.src[p.pos:])
	}
	return t, nil
}

type parser struct {
	src      string
	pos      int
	maxDepth int
}

func (p *parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return cherr.Wrap(cherr.KindTypeParsing, fmt.Sprintf("at offset %d in %q", p.pos, p.src), fmt.Errorf("%s", msg))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) consume(b byte) error {
	p.skipSpace()
	if p.eof() || p.src[p.pos] != b {
		return p.errorf("expected %q", b)
	}
	p.pos++
	return nil
}

// name reads a constructor name: everything up to the next '(', ',' or
// ')', with surrounding spaces trimmed.
func (p *parser) name() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '(' || c == ',' || c == ')' {
			break
		}
		p.pos++
	}
	return strings.TrimSpace(p.src[start:p.pos])
}

func (p *parser) parseType(depth int) (DataType, error) {
	if depth > p.maxDepth {
		return DataType{}, p.errorf("exceeded maximum type nesting depth %d", p.maxDepth)
	}
	p.skipSpace()
	n := p.name()
	if n == "" {
		return DataType{}, p.errorf("expected a type name")
	}

	switch n {
	case "UInt8":
		return UInt8, nil
	case "UInt16":
		return UInt16, nil
	case "UInt32":
		return UInt32, nil
	case "UInt64":
		return UInt64, nil
	case "UInt128":
		return UInt128, nil
	case "UInt256":
		return UInt256, nil
	case "Int8":
		return Int8, nil
	case "Int16":
		return Int16, nil
	case "Int32":
		return Int32, nil
	case "Int64":
		return Int64, nil
	case "Int128":
		return Int128, nil
	case "Int256":
		return Int256, nil
	case "Float32":
		return Float32, nil
	case "Float64":
		return Float64, nil
	case "BFloat16":
		return BFloat16, nil
	case "Bool":
		return Bool, nil
	case "String":
		return String, nil
	case "UUID":
		return UUID, nil
	case "IPv4":
		return IPv4, nil
	case "IPv6":
		return IPv6, nil
	case "Date":
		return Date, nil
	case "Date32":
		return Date32, nil
	case "Dynamic":
		return Dynamic, nil
	case "JSON":
		return JSON, nil
	case "Point":
		return Point(), nil
	case "Ring":
		return Ring(), nil
	case "Polygon":
		return Polygon(), nil
	case "MultiPolygon":
		return MultiPolygon(), nil
	case "LineString":
		return LineString(), nil
	case "MultiLineString":
		return MultiLineString(), nil
	case "FixedString":
		return p.parseFixedString()
	case "DateTime":
		return p.parseDateTime()
	case "DateTime64":
		return p.parseDateTime64()
	case "Decimal":
		return p.parseDecimal()
	case "Nullable":
		return p.parseUnary(depth, KindNullable, "Nullable")
	case "LowCardinality":
		return p.parseUnary(depth, KindLowCardinality, "LowCardinality")
	case "Array":
		return p.parseUnary(depth, KindArray, "Array")
	case "Tuple":
		return p.parseTuple(depth)
	case "Map":
		return p.parseMap(depth)
	case "Variant":
		return p.parseVariant(depth)
	case "Enum8":
		return p.parseEnum(KindEnum8)
	case "Enum16":
		return p.parseEnum(KindEnum16)
	default:
		return DataType{}, p.errorf("unknown type %q", n)
	}
}

func (p *parser) parseUnary(depth int, kind Kind, name string) (DataType, error) {
	if err := p.consume('('); err != nil {
		return DataType{}, err
	}
	inner, err := p.parseType(depth + 1)
	if err != nil {
		return DataType{}, err
	}
	if err := p.consume(')'); err != nil {
		return DataType{}, err
	}
	if kind == KindNullable {
		switch inner.Kind {
		case KindArray, KindMap, KindTuple:
			return DataType{}, p.errorf("Nullable(%s) is not allowed", Render(inner))
		}
	}
	e := inner
	return DataType{Kind: kind, Elem: &e}, nil
}

func (p *parser) parseFixedString() (DataType, error) {
	if err := p.consume('('); err != nil {
		return DataType{}, err
	}
	n, err := p.uintParam()
	if err != nil {
		return DataType{}, err
	}
	if err := p.consume(')'); err != nil {
		return DataType{}, err
	}
	if n < 1 {
		return DataType{}, p.errorf("FixedString length must be >= 1, got %d", n)
	}
	return FixedStringOf(n), nil
}

func (p *parser) uintParam() (int, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, p.errorf("expected an unsigned integer")
	}
	v, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, p.errorf("malformed integer parameter: %v", err)
	}
	return v, nil
}

// quotedString reads a 'quoted string', understanding backslash-escaped
// quotes.
func (p *parser) quotedString() (string, error) {
	p.skipSpace()
	if p.eof() || p.src[p.pos] != '\'' {
		return "", p.errorf("expected a quoted string")
	}
	p.pos++
	var b strings.Builder
	for {
		if p.eof() {
			return "", p.errorf("unterminated quoted string")
		}
		c := p.src[p.pos]
		if c == '\\' && p.pos+1 < len(p.src) {
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
			continue
		}
		if c == '\'' {
			p.pos++
			break
		}
		b.WriteByte(c)
		p.pos++
	}
	return b.String(), nil
}

func (p *parser) parseDateTime() (DataType, error) {
	p.skipSpace()
	if p.eof() || p.peek() != '(' {
		return DateTimeOf(""), nil
	}
	p.pos++
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return DateTimeOf(""), nil
	}
	tz, err := p.quotedString()
	if err != nil {
		return DataType{}, err
	}
	if err := p.consume(')'); err != nil {
		return DataType{}, err
	}
	return DateTimeOf(tz), nil
}

func (p *parser) parseDateTime64() (DataType, error) {
	if err := p.consume('('); err != nil {
		return DataType{}, err
	}
	prec, err := p.uintParam()
	if err != nil {
		return DataType{}, err
	}
	if prec < 0 || prec > 9 {
		return DataType{}, p.errorf("DateTime64 precision must be 0..9, got %d", prec)
	}
	tz := ""
	p.skipSpace()
	if p.peek() == ',' {
		p.pos++
		tz, err = p.quotedString()
		if err != nil {
			return DataType{}, err
		}
	}
	if err := p.consume(')'); err != nil {
		return DataType{}, err
	}
	return DateTime64Of(prec, tz), nil
}

func (p *parser) parseDecimal() (DataType, error) {
	if err := p.consume('('); err != nil {
		return DataType{}, err
	}
	precision, err := p.uintParam()
	if err != nil {
		return DataType{}, err
	}
	if err := p.consume(','); err != nil {
		return DataType{}, err
	}
	scale, err := p.uintParam()
	if err != nil {
		return DataType{}, err
	}
	if err := p.consume(')'); err != nil {
		return DataType{}, err
	}
	if precision < 1 || precision > 76 {
		return DataType{}, p.errorf("Decimal precision must be 1..76, got %d", precision)
	}
	if scale < 0 || scale > precision {
		return DataType{}, p.errorf("Decimal scale must be 0..precision (%d), got %d", precision, scale)
	}
	return DecimalOf(precision, scale), nil
}

// splitTopLevel splits body on commas that are not nested inside
// parens or quotes: a hand-written splitter tracking depth and quote
// state.
func splitTopLevel(body string) []string {
	var parts []string
	depth := 0
	inQuote := false
	start := 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && inQuote:
			i++ // skip escaped char
		case c == '\'':
			inQuote = !inQuote
		case inQuote:
			// inside a quote, ignore parens/commas
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, body[start:i])
			start = i + 1
		}
	}
	parts = append(parts, body[start:])
	return parts
}

func (p *parser) parseTuple(depth int) (DataType, error) {
	elems, err := p.parseCommaList(depth, 0)
	if err != nil {
		return DataType{}, err
	}
	if len(elems) == 0 {
		return DataType{}, p.errorf("Tuple must have at least one element")
	}
	return TupleOf(elems...), nil
}

func (p *parser) parseVariant(depth int) (DataType, error) {
	elems, err := p.parseCommaList(depth, 0)
	if err != nil {
		return DataType{}, err
	}
	if len(elems) > 256 {
		return DataType{}, p.errorf("Variant may have at most 256 alternatives, got %d", len(elems))
	}
	return VariantOf(elems...), nil
}

func (p *parser) parseMap(depth int) (DataType, error) {
	elems, err := p.parseCommaList(depth, 2)
	if err != nil {
		return DataType{}, err
	}
	if len(elems) != 2 {
		return DataType{}, p.errorf("Map must have exactly 2 type parameters, got %d", len(elems))
	}
	return MapOf(elems[0], elems[1]), nil
}

// parseCommaList parses "(" type ("," type)* ")" by first locating the
// matching close paren (tracking nested parens/quotes), splitting the
// body on top-level commas, then recursively parsing each piece. want, if
// non-zero, is purely documentation of the expected arity (validated by
// the caller).
func (p *parser) parseCommaList(depth int, want int) ([]DataType, error) {
	if err := p.consume('('); err != nil {
		return nil, err
	}
	bodyStart := p.pos
	pdepth := 1
	inQuote := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\\' && inQuote:
			p.pos++
		case c == '\'':
			inQuote = !inQuote
		case inQuote:
		case c == '(':
			pdepth++
		case c == ')':
			pdepth--
			if pdepth == 0 {
				goto done
			}
		}
		p.pos++
	}
done:
	if p.pos >= len(p.src) {
		return nil, p.errorf("unterminated parameter list")
	}
	body := p.src[bodyStart:p.pos]
	p.pos++ // consume ')'

	parts := splitTopLevel(body)
	out := make([]DataType, 0, len(parts))
	for _, part := range parts {
		sub := &parser{src: strings.TrimSpace(part), maxDepth: p.maxDepth}
		t, err := sub.parseType(depth + 1)
		if err != nil {
			return nil, err
		}
		sub.skipSpace()
		if sub.pos != len(sub.src) {
			return nil, p.errorf("unexpected trailing input in parameter %q", part)
		}
		out = append(out, t)
	}
	_ = want
	return out, nil
}

func (p *parser) parseEnum(kind Kind) (DataType, error) {
	if err := p.consume('('); err != nil {
		return DataType{}, err
	}
	bodyStart := p.pos
	pdepth := 1
	inQuote := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\\' && inQuote:
			p.pos++
		case c == '\'':
			inQuote = !inQuote
		case inQuote:
		case c == '(':
			pdepth++
		case c == ')':
			pdepth--
			if pdepth == 0 {
				goto done
			}
		}
		p.pos++
	}
done:
	if p.pos >= len(p.src) {
		return DataType{}, p.errorf("unterminated enum parameter list")
	}
	body := p.src[bodyStart:p.pos]
	p.pos++

	entries, err := parseEnumEntries(body)
	if err != nil {
		return DataType{}, p.errorf("%v", err)
	}
	if kind == KindEnum8 {
		return Enum8Of(entries...), nil
	}
	return Enum16Of(entries...), nil
}

// parseEnumEntries parses "'name'=value, 'name2'=value2, ..." respecting
// escaped quotes and parens inside names (the ename grammar,
// e.g. 'f\'()'=1 is the single name f'()).
func parseEnumEntries(body string) ([]EnumEntry, error) {
	var entries []EnumEntry
	i := 0
	n := len(body)
	for i < n {
		for i < n && (body[i] == ' ' || body[i] == ',') {
			i++
		}
		if i >= n {
			break
		}
		if body[i] != '\'' {
			return nil, fmt.Errorf("expected a quoted enum name at offset %d", i)
		}
		i++
		var name strings.Builder
		for {
			if i >= n {
				return nil, fmt.Errorf("unterminated enum name")
			}
			c := body[i]
			if c == '\\' && i+1 < n {
				name.WriteByte(body[i+1])
				i += 2
				continue
			}
			if c == '\'' {
				i++
				break
			}
			name.WriteByte(c)
			i++
		}
		for i < n && body[i] == ' ' {
			i++
		}
		if i >= n || body[i] != '=' {
			return nil, fmt.Errorf("expected '=' after enum name %q", name.String())
		}
		i++
		for i < n && body[i] == ' ' {
			i++
		}
		start := i
		if i < n && (body[i] == '-' || body[i] == '+') {
			i++
		}
		for i < n && body[i] >= '0' && body[i] <= '9' {
			i++
		}
		if start == i {
			return nil, fmt.Errorf("expected an integer value for enum name %q", name.String())
		}
		v, err := strconv.Atoi(body[start:i])
		if err != nil {
			return nil, fmt.Errorf("malformed enum value for %q: %w", name.String(), err)
		}
		entries = append(entries, EnumEntry{Name: name.String(), Value: int32(v)})
	}
	return entries, nil
}
