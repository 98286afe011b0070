package tx

import (
	"errors"
	"io"
)

// MaxCompactU16 is the largest length the wire format can express.
const MaxCompactU16 = 0xffff

var (
	ErrCompactU16Overflow  = errors.New("compact-u16 value overflows u16")
	ErrCompactU16Truncated = errors.New("compact-u16 value is truncated")
	ErrCompactU16Alias     = errors.New("compact-u16 value is not minimally encoded")
)

// EncodeCompactU16 appends n in the 1-3 byte little-endian base-128
// encoding used for every length prefix in a transaction.
func EncodeCompactU16(dst []byte, n int) ([]byte, error) {
	if n < 0 || n > MaxCompactU16 {
		return dst, ErrCompactU16Overflow
	}

	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n == 0 {
			return append(dst, b), nil
		}

		dst = append(dst, b|0x80)
	}
}

// DecodeCompactU16 reads a compact-u16 from the front of data and returns
// the value together with the number of bytes consumed. Only the shortest
// encoding of a value is accepted.
func DecodeCompactU16(data []byte) (int, int, error) {
	value := 0

	for i := 0; i < 3; i++ {
		if i >= len(data) {
			return 0, 0, ErrCompactU16Truncated
		}

		b := data[i]
		// a zero continuation byte adds nothing, so the same value has a shorter form
		if i > 0 && b == 0 {
			return 0, 0, ErrCompactU16Alias
		}

		value |= int(b&0x7f) << (7 * i)

		if b&0x80 == 0 {
			if value > MaxCompactU16 {
				return 0, 0, ErrCompactU16Overflow
			}

			return value, i + 1, nil
		}
	}

	return 0, 0, ErrCompactU16Overflow
}

// reader walks a serialized message; the first error sticks.
type reader struct {
	data []byte
	err  error
}

func (r *reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}

	if n > len(r.data) {
		r.err = io.ErrUnexpectedEOF
		return nil
	}

	out := r.data[:n]
	r.data = r.data[n:]

	return out
}

func (r *reader) readByte() byte {
	b := r.next(1)
	if b == nil {
		return 0
	}

	return b[0]
}

func (r *reader) compactU16() int {
	if r.err != nil {
		return 0
	}

	n, size, err := DecodeCompactU16(r.data)
	if err != nil {
		r.err = err
		return 0
	}

	r.data = r.data[size:]

	return n
}
