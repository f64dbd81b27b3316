// Package kfmt implements the kernel's text formatting language.
//
// A format string is printed byte by byte. Directives are enclosed in
// braces:
//
//	{c}        one character
//	{s}        a string, up to its first NUL
//	{s[N]}     at most N bytes of a string
//	{uN}       unsigned integer of N bytes (1, 2, 4 or 8), decimal
//	{iN}       signed integer of N bytes, decimal
//	{uNh}      hexadecimal with a 0x prefix
//	{uNb}      binary with a 0b prefix
//
// {{ and }} print literal braces. A lone } prints itself. Unknown
// directives print nothing.
package kfmt

import "math"

// Sink receives formatted output one byte at a time.
type Sink interface {
	PutChar(c byte)
}

type argKind uint8

const (
	argNone argKind = iota
	argInt
	argStr
)

// Arg is one formatting argument. Integers are carried at 64 bits; the
// directive's size selects how many low bytes are printed.
type Arg struct {
	kind argKind
	n    uint64
	s    string
}

func Char(c byte) Arg   { return Arg{kind: argInt, n: uint64(c)} }
func Str(s string) Arg  { return Arg{kind: argStr, s: s} }
func Int(v int64) Arg   { return Arg{kind: argInt, n: uint64(v)} }
func Uint(v uint64) Arg { return Arg{kind: argInt, n: v} }

// Sized constructors sign- or zero-extend to 64 bits.
func I8(v int8) Arg    { return Int(int64(v)) }
func I16(v int16) Arg  { return Int(int64(v)) }
func I32(v int32) Arg  { return Int(int64(v)) }
func I64(v int64) Arg  { return Int(v) }
func U8(v uint8) Arg   { return Uint(uint64(v)) }
func U16(v uint16) Arg { return Uint(uint64(v)) }
func U32(v uint32) Arg { return Uint(uint64(v)) }
func U64(v uint64) Arg { return Uint(v) }

// Print writes format to w and returns the number of bytes written.
// Formatting stops at the end of format or at a NUL byte.
func Print(w Sink, format string, args ...Arg) int {
	p := printer{w: w, args: args}
	p.print(format)
	return p.n
}

// Println is Print followed by a newline.
func Println(w Sink, format string, args ...Arg) int {
	n := Print(w, format, args...)
	w.PutChar('\n')
	return n + 1
}

type printer struct {
	w    Sink
	args []Arg
	n    int
	tmp  [64]byte
}

func (p *printer) put(c byte) {
	p.w.PutChar(c)
	p.n++
}

func (p *printer) next() (Arg, bool) {
	if len(p.args) == 0 {
		return Arg{}, false
	}
	a := p.args[0]
	p.args = p.args[1:]
	return a, true
}

func (p *printer) print(f string) {
	for i := 0; i < len(f) && f[i] != 0; i++ {
		switch c := f[i]; {
		case c == '{' && i+1 < len(f) && f[i+1] == '{':
			p.put('{')
			i++
		case c == '{':
			i = p.directive(f, i+1)
		case c == '}' && i+1 < len(f) && f[i+1] == '}':
			p.put('}')
			i++
		default:
			p.put(c)
		}
	}
}

// directive handles the directive whose head is at f[i] and returns the
// index of its closing brace.
func (p *printer) directive(f string, i int) int {
	if i >= len(f) {
		return i
	}

	switch f[i] {
	case 'c':
		if a, ok := p.next(); ok && a.kind == argInt {
			p.put(byte(a.n))
		}

	case 's':
		limit := -1
		if i+1 < len(f) && f[i+1] == '[' {
			i += 2
			limit = 0
			for ; i < len(f) && f[i] >= '0' && f[i] <= '9'; i++ {
				// Saturate; no string is longer than MaxInt.
				if limit > (math.MaxInt-9)/10 {
					limit = math.MaxInt
					continue
				}
				limit = limit*10 + int(f[i]-'0')
			}
		}
		if a, ok := p.next(); ok && a.kind == argStr {
			for k := 0; k < len(a.s) && a.s[k] != 0 && (limit < 0 || k < limit); k++ {
				p.put(a.s[k])
			}
		}

	case 'u', 'i':
		signed := f[i] == 'i'
		size := 0
		if i+1 < len(f) && f[i+1] >= '0' && f[i+1] <= '9' {
			i++
			size = int(f[i] - '0')
		}
		base := 10
		if i+1 < len(f) {
			switch f[i+1] {
			case 'h':
				base = 16
				i++
			case 'b':
				base = 2
				i++
			}
		}
		a, ok := p.next()
		if ok && a.kind == argInt && validSize(size) {
			for _, c := range Itoa(p.tmp[:0], a.n, base, signed, size) {
				p.put(c)
			}
		}
	}

	for i < len(f) && f[i] != '}' {
		i++
	}
	return i
}

func validSize(n int) bool {
	return n == 1 || n == 2 || n == 4 || n == 8
}

const digits = "0123456789ABCDEF"

// Itoa appends value to dst as the text a {uN}/{iN} directive prints.
// value is masked to its low size bytes. A set sign bit prints as a
// negative number only in base 10. Hex and binary get 0x and 0b
// prefixes. Sizes outside 1, 2, 4 and 8 are treated as 8.
func Itoa(dst []byte, value uint64, base int, signed bool, size int) []byte {
	if !validSize(size) {
		size = 8
	}
	if base != 2 && base != 16 {
		base = 10
	}

	mask := ^uint64(0)
	if size < 8 {
		mask = 1<<(uint(size)*8) - 1
	}
	v := value & mask

	if base == 10 && signed {
		if msb := uint64(1) << (uint(size)*8 - 1); v&msb != 0 {
			dst = append(dst, '-')
			v = (^v + 1) & mask
		}
	}

	switch base {
	case 16:
		dst = append(dst, '0', 'x')
	case 2:
		dst = append(dst, '0', 'b')
	}

	var buf [64]byte
	pos := len(buf)
	b := uint64(base)
	for {
		pos--
		buf[pos] = digits[v%b]
		v /= b
		if v == 0 {
			break
		}
	}
	return append(dst, buf[pos:]...)
}
