package hal

// Scan code set 1 bytes the host keyboards emit.
const (
	ScanEscape    = 0x01
	ScanBackspace = 0x0E
	ScanTab       = 0x0F
	ScanEnter     = 0x1C
	ScanCtrl      = 0x1D
	ScanLShift    = 0x2A
	ScanRShift    = 0x36
	ScanAlt       = 0x38
	ScanSpace     = 0x39
	ScanCapsLock  = 0x3A
	ScanNumLock   = 0x45
	ScanSuper     = 0x5B // after ScanExtended

	ScanExtended = 0xE0
	ScanBreak    = 0x80
)

type asciiKey struct {
	code    uint8
	shifted bool
}

// asciiKeys maps printable ASCII and a few controls to US layout make codes.
var asciiKeys = func() [128]asciiKey {
	var t [128]asciiKey
	rows := []struct {
		start       uint8
		plain, with string
	}{
		{0x02, "1234567890-=", "!@#$%^&*()_+"},
		{0x10, "qwertyuiop[]", "QWERTYUIOP{}"},
		{0x1E, "asdfghjkl;'`", "ASDFGHJKL:\"~"},
		{0x2B, "\\zxcvbnm,./", "|ZXCVBNM<>?"},
	}
	for _, r := range rows {
		for i := 0; i < len(r.plain); i++ {
			t[r.plain[i]] = asciiKey{code: r.start + uint8(i)}
			t[r.with[i]] = asciiKey{code: r.start + uint8(i), shifted: true}
		}
	}
	t[' '] = asciiKey{code: ScanSpace}
	t['\r'] = asciiKey{code: ScanEnter}
	t['\n'] = asciiKey{code: ScanEnter}
	t['\t'] = asciiKey{code: ScanTab}
	t['\b'] = asciiKey{code: ScanBackspace}
	t[0x7F] = asciiKey{code: ScanBackspace}
	t[0x1B] = asciiKey{code: ScanEscape}
	return t
}()

// ASCIIScanCodes appends the make/break sequence that types b on a US
// keyboard. Shifted characters are wrapped in left shift, control
// characters in ctrl. Bytes with no key produce nothing.
func ASCIIScanCodes(dst []uint8, b byte) []uint8 {
	if b >= 0x80 {
		return dst
	}
	if k := asciiKeys[b]; k.code != 0 {
		if k.shifted {
			return append(dst, ScanLShift, k.code, k.code|ScanBreak, ScanLShift|ScanBreak)
		}
		return append(dst, k.code, k.code|ScanBreak)
	}
	if b >= 0x01 && b <= 0x1A {
		k := asciiKeys['a'+b-1]
		return append(dst, ScanCtrl, k.code, k.code|ScanBreak, ScanCtrl|ScanBreak)
	}
	return dst
}
