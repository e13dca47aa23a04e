// Package fracindex generates fractional index keys: strings that sort by
// plain byte comparison and allow a new key to be created between any two
// existing keys without renumbering the rest.
//
// Keys are base-62 with a variable-length integer head followed by an
// optional fraction that never ends in '0'.
package fracindex

import (
	"errors"
	"fmt"
	"strings"
)

const digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	integerZero     = "a0"
	smallestInteger = "A00000000000000000000000000"
)

// ErrInvalidKey is returned for malformed keys or out-of-order bounds.
var ErrInvalidKey = errors.New("invalid fractional index key")

// KeyBetween returns a key strictly between a and b. An empty a means
// "before everything"; an empty b means "after everything".
func KeyBetween(a, b string) (string, error) {
	if a != "" {
		if err := validateKey(a); err != nil {
			return "", err
		}
	}
	if b != "" {
		if err := validateKey(b); err != nil {
			return "", err
		}
	}
	if a != "" && b != "" && a >= b {
		return "", fmt.Errorf("%w: %q >= %q", ErrInvalidKey, a, b)
	}

	if a == "" {
		if b == "" {
			return integerZero, nil
		}
		ib, err := integerPart(b)
		if err != nil {
			return "", err
		}
		fb := b[len(ib):]
		if ib == smallestInteger {
			m, err := midpoint("", fb, true)
			if err != nil {
				return "", err
			}
			return ib + m, nil
		}
		if ib < b {
			return ib, nil
		}
		res, ok := decrementInteger(ib)
		if !ok {
			return "", fmt.Errorf("%w: cannot decrement %q", ErrInvalidKey, ib)
		}
		return res, nil
	}

	ia, err := integerPart(a)
	if err != nil {
		return "", err
	}
	fa := a[len(ia):]

	if b == "" {
		i, ok := incrementInteger(ia)
		if ok {
			return i, nil
		}
		m, err := midpoint(fa, "", false)
		if err != nil {
			return "", err
		}
		return ia + m, nil
	}

	ib, err := integerPart(b)
	if err != nil {
		return "", err
	}
	fb := b[len(ib):]
	if ia == ib {
		m, err := midpoint(fa, fb, true)
		if err != nil {
			return "", err
		}
		return ia + m, nil
	}
	i, ok := incrementInteger(ia)
	if !ok {
		return "", fmt.Errorf("%w: cannot increment %q", ErrInvalidKey, ia)
	}
	if i < b {
		return i, nil
	}
	m, err := midpoint(fa, "", false)
	if err != nil {
		return "", err
	}
	return ia + m, nil
}

// NKeysBetween returns n ascending keys strictly between a and b.
func NKeysBetween(a, b string, n int) ([]string, error) {
	switch {
	case n <= 0:
		return nil, nil
	case n == 1:
		k, err := KeyBetween(a, b)
		if err != nil {
			return nil, err
		}
		return []string{k}, nil
	case b == "":
		out := make([]string, 0, n)
		c := a
		for i := 0; i < n; i++ {
			k, err := KeyBetween(c, b)
			if err != nil {
				return nil, err
			}
			out = append(out, k)
			c = k
		}
		return out, nil
	case a == "":
		out := make([]string, n)
		c := b
		for i := n - 1; i >= 0; i-- {
			k, err := KeyBetween(a, c)
			if err != nil {
				return nil, err
			}
			out[i] = k
			c = k
		}
		return out, nil
	}

	mid := n / 2
	c, err := KeyBetween(a, b)
	if err != nil {
		return nil, err
	}
	left, err := NKeysBetween(a, c, mid)
	if err != nil {
		return nil, err
	}
	right, err := NKeysBetween(c, b, n-mid-1)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	out = append(out, left...)
	out = append(out, c)
	return append(out, right...), nil
}

// Sequence returns n ascending keys for a fresh list.
func Sequence(n int) []string {
	keys, err := NKeysBetween("", "", n)
	if err != nil {
		// Unbounded generation from the empty range cannot fail.
		panic(err)
	}
	return keys
}

// midpoint returns a fraction strictly between a and b. hasB false means b
// is unbounded.
func midpoint(a, b string, hasB bool) (string, error) {
	if hasB && a >= b {
		return "", fmt.Errorf("%w: fraction %q >= %q", ErrInvalidKey, a, b)
	}
	if strings.HasSuffix(a, "0") || (hasB && strings.HasSuffix(b, "0")) {
		return "", fmt.Errorf("%w: trailing zero", ErrInvalidKey)
	}
	if hasB {
		n := 0
		for n < len(b) && digitAt(a, n) == b[n] {
			n++
		}
		if n > 0 {
			rest := ""
			if n < len(a) {
				rest = a[n:]
			}
			m, err := midpoint(rest, b[n:], true)
			if err != nil {
				return "", err
			}
			return b[:n] + m, nil
		}
	}

	digitA := 0
	if a != "" {
		digitA = strings.IndexByte(digits, a[0])
	}
	digitB := len(digits)
	if hasB {
		digitB = strings.IndexByte(digits, b[0])
	}
	if digitB-digitA > 1 {
		return string(digits[(digitA+digitB+1)/2]), nil
	}
	if hasB && len(b) > 1 {
		return b[:1], nil
	}
	rest := ""
	if len(a) > 1 {
		rest = a[1:]
	}
	m, err := midpoint(rest, "", false)
	if err != nil {
		return "", err
	}
	return string(digits[digitA]) + m, nil
}

func digitAt(s string, i int) byte {
	if i < len(s) {
		return s[i]
	}
	return '0'
}

func integerLength(head byte) (int, error) {
	switch {
	case head >= 'a' && head <= 'z':
		return int(head-'a') + 2, nil
	case head >= 'A' && head <= 'Z':
		return int('Z'-head) + 2, nil
	default:
		return 0, fmt.Errorf("%w: head %q", ErrInvalidKey, head)
	}
}

func integerPart(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	n, err := integerLength(key[0])
	if err != nil {
		return "", err
	}
	if n > len(key) {
		return "", fmt.Errorf("%w: %q too short", ErrInvalidKey, key)
	}
	return key[:n], nil
}

func validateKey(key string) error {
	if key == smallestInteger {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	i, err := integerPart(key)
	if err != nil {
		return err
	}
	for j := 1; j < len(key); j++ {
		if strings.IndexByte(digits, key[j]) < 0 {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	if f := key[len(i):]; strings.HasSuffix(f, "0") {
		return fmt.Errorf("%w: %q has trailing zero", ErrInvalidKey, key)
	}
	return nil
}

func incrementInteger(x string) (string, bool) {
	head := x[0]
	digs := []byte(x[1:])
	carry := true
	for i := len(digs) - 1; carry && i >= 0; i-- {
		d := strings.IndexByte(digits, digs[i]) + 1
		if d == len(digits) {
			digs[i] = '0'
		} else {
			digs[i] = digits[d]
			carry = false
		}
	}
	if !carry {
		return string(head) + string(digs), true
	}
	if head == 'Z' {
		return integerZero, true
	}
	if head == 'z' {
		return "", false
	}
	h := head + 1
	if h > 'a' {
		digs = append(digs, '0')
	} else {
		digs = digs[:len(digs)-1]
	}
	return string(h) + string(digs), true
}

func decrementInteger(x string) (string, bool) {
	head := x[0]
	digs := []byte(x[1:])
	borrow := true
	for i := len(digs) - 1; borrow && i >= 0; i-- {
		d := strings.IndexByte(digits, digs[i]) - 1
		if d == -1 {
			digs[i] = digits[len(digits)-1]
		} else {
			digs[i] = digits[d]
			borrow = false
		}
	}
	if !borrow {
		return string(head) + string(digs), true
	}
	if head == 'a' {
		return "Z" + string(digits[len(digits)-1]), true
	}
	if head == 'A' {
		return "", false
	}
	h := head - 1
	if h < 'Z' {
		digs = append(digs, digits[len(digits)-1])
	} else {
		digs = digs[:len(digs)-1]
	}
	return string(h) + string(digs), true
}
