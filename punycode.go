package demangle

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Non-ASCII identifiers are mangled as 'X' <length> <punycode text>. The
// payload is plain RFC 3492 punycode over the identifier's code points.
const (
	punycodeBase        = 36
	punycodeTmin        = 1
	punycodeTmax        = 26
	punycodeSkew        = 38
	punycodeDamp        = 700
	punycodeInitialBias = 72
	punycodeInitialN    = 128
	punycodeDelimiter   = '-'
)

func decodePunycode(input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("empty punycode string")
	}
	n := punycodeInitialN
	i := 0
	bias := punycodeInitialBias
	var output []rune
	pos := 0
	if idx := strings.LastIndexByte(input, punycodeDelimiter); idx >= 0 {
		for _, r := range input[:idx] {
			if r >= 0x80 {
				return "", fmt.Errorf("non-basic code point %q in punycode prefix", r)
			}
			output = append(output, r)
		}
		pos = idx + 1
	}
	for pos < len(input) {
		oldi := i
		w := 1
		for k := punycodeBase; ; k += punycodeBase {
			if pos >= len(input) {
				return "", fmt.Errorf("truncated punycode input")
			}
			digit, ok := decodePunycodeDigit(input[pos])
			if !ok {
				return "", fmt.Errorf("invalid punycode digit %q", input[pos])
			}
			pos++
			if digit > (math.MaxInt32-i)/w {
				return "", fmt.Errorf("punycode delta overflow")
			}
			i += digit * w
			var t int
			switch {
			case k <= bias+punycodeTmin:
				t = punycodeTmin
			case k >= bias+punycodeTmax:
				t = punycodeTmax
			default:
				t = k - bias
			}
			if digit < t {
				break
			}
			if w > math.MaxInt32/(punycodeBase-t) {
				return "", fmt.Errorf("punycode weight overflow")
			}
			w *= punycodeBase - t
		}
		bias = adaptPunycodeBias(i-oldi, len(output)+1, oldi == 0)
		n += i / (len(output) + 1)
		i %= len(output) + 1
		if n > unicode.MaxRune {
			return "", fmt.Errorf("punycode code point out of range")
		}
		output = append(output, 0)
		copy(output[i+1:], output[i:])
		output[i] = rune(n)
		i++
	}
	return string(output), nil
}

func decodePunycodeDigit(b byte) (int, bool) {
	switch {
	case b >= 'a' && b <= 'z':
		return int(b - 'a'), true
	case b >= 'A' && b <= 'Z':
		return int(b - 'A'), true
	case b >= '0' && b <= '9':
		return int(b-'0') + 26, true
	default:
		return 0, false
	}
}

func adaptPunycodeBias(delta, numPoints int, firstTime bool) int {
	if firstTime {
		delta /= punycodeDamp
	} else {
		delta /= 2
	}
	delta += delta / numPoints
	k := 0
	for delta > ((punycodeBase-punycodeTmin)*punycodeTmax)/2 {
		delta /= punycodeBase - punycodeTmin
		k += punycodeBase
	}
	return k + (punycodeBase-punycodeTmin+1)*delta/(delta+punycodeSkew)
}
