package calc

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrUnknownKey is returned when a token does not name a keypad key.
var ErrUnknownKey = errors.New("calc: unknown key")

// Key is one button on the keypad.
type Key int

const (
	KeyZero Key = iota
	KeyOne
	KeyTwo
	KeyThree
	KeyFour
	KeyFive
	KeySix
	KeySeven
	KeyEight
	KeyNine
	KeyDecimal
	KeyAdd
	KeySubtract
	KeyMultiply
	KeyDivide
	KeyEquals
	KeyClear
	KeyPercent
	KeySignToggle
)

var keyLabels = [...]string{
	KeyZero:       "0",
	KeyOne:        "1",
	KeyTwo:        "2",
	KeyThree:      "3",
	KeyFour:       "4",
	KeyFive:       "5",
	KeySix:        "6",
	KeySeven:      "7",
	KeyEight:      "8",
	KeyNine:       "9",
	KeyDecimal:    ".",
	KeyAdd:        "+",
	KeySubtract:   "−",
	KeyMultiply:   "×",
	KeyDivide:     "÷",
	KeyEquals:     "=",
	KeyClear:      "AC",
	KeyPercent:    "%",
	KeySignToggle: "+/-",
}

// keyAliases maps every accepted spelling (lower-cased) to its key.
var keyAliases = map[string]Key{
	"−":     KeySubtract,
	"–":     KeySubtract,
	"-":     KeySubtract,
	"*":     KeyMultiply,
	"x":     KeyMultiply,
	"×":     KeyMultiply,
	"/":     KeyDivide,
	"÷":     KeyDivide,
	"+":     KeyAdd,
	"=":     KeyEquals,
	"ac":    KeyClear,
	"c":     KeyClear,
	"clear": KeyClear,
	"%":     KeyPercent,
	"+/-":   KeySignToggle,
	"-/+":   KeySignToggle,
	"±":     KeySignToggle,
	"neg":   KeySignToggle,
	".":     KeyDecimal,
	",":     KeyDecimal,
}

// Keypad is the button grid of the calculator, top row first. The zero
// key is drawn double width in the last row.
var Keypad = [][]Key{
	{KeyClear, KeySignToggle, KeyPercent, KeyDivide},
	{KeySeven, KeyEight, KeyNine, KeyMultiply},
	{KeyFour, KeyFive, KeySix, KeySubtract},
	{KeyOne, KeyTwo, KeyThree, KeyAdd},
	{KeyZero, KeyDecimal, KeyEquals},
}

// Label returns the caption printed on the key.
func (k Key) Label() string {
	if k < 0 || int(k) >= len(keyLabels) {
		return "?"
	}
	return keyLabels[k]
}

func (k Key) String() string { return k.Label() }

// IsDigit reports whether k is one of 0-9.
func (k Key) IsDigit() bool { return k >= KeyZero && k <= KeyNine }

// IsOperator reports whether k is one of the four arithmetic operators.
func (k Key) IsOperator() bool { return k.Operation() != OpNone }

// Operation returns the arithmetic operation bound to an operator key,
// or OpNone for every other key.
func (k Key) Operation() Operation {
	switch k {
	case KeyAdd:
		return OpAdd
	case KeySubtract:
		return OpSubtract
	case KeyMultiply:
		return OpMultiply
	case KeyDivide:
		return OpDivide
	default:
		return OpNone
	}
}

// ParseKey resolves a single token, either a key label or one of its
// ASCII aliases.
func ParseKey(token string) (Key, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	if len(t) == 1 && t[0] >= '0' && t[0] <= '9' {
		return KeyZero + Key(t[0]-'0'), nil
	}
	if k, ok := keyAliases[t]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownKey, token)
}

// ParseKeys tokenizes a line of input such as "7 + 3 =", "7+3=" or "AC".
// Whitespace separates tokens. A token that is not itself a key is read
// left to right, taking the longest key alias at each position, so
// "5+/-" is five then sign-toggle and "12+3" is one, two, add, three.
func ParseKeys(line string) ([]Key, error) {
	var keys []Key
	for _, field := range strings.Fields(line) {
		if k, err := ParseKey(field); err == nil {
			keys = append(keys, k)
			continue
		}
		rest := strings.ToLower(field)
		for rest != "" {
			k, n := longestKeyPrefix(rest)
			if n == 0 {
				r, _ := utf8.DecodeRuneInString(rest)
				return nil, fmt.Errorf("%w %q in %q", ErrUnknownKey, string(r), field)
			}
			keys = append(keys, k)
			rest = rest[n:]
		}
	}
	return keys, nil
}

// longestKeyPrefix returns the key whose alias is the longest prefix of s
// and the alias length in bytes. n is 0 when no key matches.
func longestKeyPrefix(s string) (k Key, n int) {
	if s[0] >= '0' && s[0] <= '9' {
		return KeyZero + Key(s[0]-'0'), 1
	}
	for alias, key := range keyAliases {
		if len(alias) > n && strings.HasPrefix(s, alias) {
			k, n = key, len(alias)
		}
	}
	return k, n
}
