package kfmt

// Buffer is a Sink that collects output in memory.
type Buffer struct {
	b []byte
}

func (b *Buffer) PutChar(c byte) { b.b = append(b.b, c) }
func (b *Buffer) Bytes() []byte  { return b.b }
func (b *Buffer) String() string { return string(b.b) }
func (b *Buffer) Reset()         { b.b = b.b[:0] }

// Sprint formats to a string.
func Sprint(format string, args ...Arg) string {
	var b Buffer
	Print(&b, format, args...)
	return b.String()
}
