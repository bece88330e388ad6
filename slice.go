package snipeek

import "errors"

// Errors reported by the length-prefixed slicer. Both are terminal for the
// enclosing parse.
var (
	ErrTruncatedLength = errors.New("not enough bytes to decode length field")
	ErrTruncatedBody   = errors.New("length field exceeds remaining buffer")
)

// takeSized decodes data[from:to] as an unsigned big-endian integer n and
// returns the n bytes immediately following the length field. The field
// width is to-from; the TLS wire format uses 1-, 2- and 3-byte fields.
// The returned slice has its capacity clamped so slicing it further can
// never reach past the sized region.
func takeSized(data []byte, from, to int) ([]byte, error) {
	if from < 0 || to < from || to > len(data) {
		return nil, ErrTruncatedLength
	}
	var n int
	for _, b := range data[from:to] {
		n = n<<8 | int(b)
	}
	if n > len(data)-to {
		return nil, ErrTruncatedBody
	}
	return data[to : to+n : to+n], nil
}

// dropPrefix decodes the same length field as takeSized but returns the
// remainder of data after the sized region, advancing a cursor past a
// length-prefixed field whose contents are not needed.
func dropPrefix(data []byte, from, to int) ([]byte, error) {
	body, err := takeSized(data, from, to)
	if err != nil {
		return nil, err
	}
	return data[to+len(body):], nil
}
