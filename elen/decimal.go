package elen

import (
	"strings"

	"github.com/ledgerwatch/hxhim/hxerr"
)

// Legacy decimal-string form, kept for out-of-band tooling that predates
// the fixed-width binary encoders in elen.go (see design note 9c: never used by
// message.Pack on the wire). Layout:
//
//	discriminator:u8 (0 = negative, 1 = non-negative)
//	intLen:u8        (digit count of the integer part, inverted for negatives)
//	intDigits        (remapped 9-d for negatives, so larger magnitude sorts first)
//	fracDigits        (fixed width, remapped the same way)
//
// The fixed fraction width bounds how many fractional digits the form can
// hold: input with more fractional digits is rejected with BadArg, and
// trailing zeros of the fraction are not preserved by a round trip.
const decimalFracWidth = 17

func remapDigits(s string, invert bool) string {
	if !invert {
		return s
	}
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = byte('9' - (s[i] - '0'))
	}
	return string(out)
}

// EncodeDecimalString encodes a base-10 string of the form
// "[-]digits[.digits]" into the order-preserving legacy form.
func EncodeDecimalString(s string) ([]byte, error) {
	if s == "" {
		return nil, hxerr.New(hxerr.EncodeEmpty, "empty decimal string")
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	} else if s[0] == '+' {
		s = s[1:]
	}

	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) {
		return nil, hxerr.New(hxerr.BadArg, "invalid decimal string")
	}
	if !isDigits(fracPart) {
		return nil, hxerr.New(hxerr.BadArg, "invalid decimal string")
	}
	if len(intPart) > 255 {
		return nil, hxerr.New(hxerr.BadArg, "integer part too long")
	}
	if len(fracPart) > decimalFracWidth {
		return nil, hxerr.New(hxerr.BadArg, "fractional part too long")
	}
	fracPart = fracPart + strings.Repeat("0", decimalFracWidth-len(fracPart))

	out := make([]byte, 0, 2+len(intPart)+decimalFracWidth)
	if neg {
		out = append(out, 0)
		out = append(out, byte(255-len(intPart)))
	} else {
		out = append(out, 1)
		out = append(out, byte(len(intPart)))
	}
	out = append(out, remapDigits(intPart, neg)...)
	out = append(out, remapDigits(fracPart, neg)...)
	return out, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// DecodeDecimalString inverts EncodeDecimalString. The leading
// discriminator byte is what lets this accept either sign's encoding
// without the caller pre-declaring it.
func DecodeDecimalString(encoded []byte) (string, error) {
	if len(encoded) == 0 {
		return "", hxerr.New(hxerr.EncodeEmpty, "empty input")
	}
	if len(encoded) < 2 {
		return "", hxerr.New(hxerr.EncodeTrailing, "decimal header truncated")
	}
	neg := encoded[0] == 0
	lenByte := int(encoded[1])
	intLen := lenByte
	if neg {
		intLen = 255 - lenByte
	}
	rest := encoded[2:]
	if len(rest) != intLen+decimalFracWidth {
		return "", hxerr.New(hxerr.EncodeTrailing, "decimal body length mismatch")
	}
	intDigits := remapDigits(string(rest[:intLen]), neg)
	fracDigits := remapDigits(string(rest[intLen:]), neg)
	fracDigits = strings.TrimRight(fracDigits, "0")

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteString(intDigits)
	if fracDigits != "" {
		sb.WriteByte('.')
		sb.WriteString(fracDigits)
	}
	return sb.String(), nil
}
