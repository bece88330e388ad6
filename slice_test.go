package snipeek

import (
	"bytes"
	"errors"
	"testing"
)

func TestTakeSized(t *testing.T) {
	data := []byte{0x00, 0x03, 'a', 'b', 'c', 'd'}

	// 2-byte length field
	body, err := takeSized(data, 0, 2)
	if err != nil {
		t.Fatalf("takeSized error: %v", err)
	}
	if !bytes.Equal(body, []byte("abc")) {
		t.Errorf("takeSized = %q, want %q", body, "abc")
	}
	if cap(body) != len(body) {
		t.Error("takeSized must clamp capacity to the sized region")
	}

	// 1-byte length field
	body, err = takeSized(data, 1, 2)
	if err != nil {
		t.Fatalf("takeSized error: %v", err)
	}
	if !bytes.Equal(body, []byte("abc")) {
		t.Errorf("takeSized = %q, want %q", body, "abc")
	}

	// 3-byte length field
	body, err = takeSized([]byte{0x00, 0x00, 0x02, 'x', 'y', 'z'}, 0, 3)
	if err != nil {
		t.Fatalf("takeSized error: %v", err)
	}
	if !bytes.Equal(body, []byte("xy")) {
		t.Errorf("takeSized = %q, want %q", body, "xy")
	}
}

func TestTakeSizedTruncated(t *testing.T) {
	// length field out of bounds
	if _, err := takeSized([]byte{0x00}, 0, 2); !errors.Is(err, ErrTruncatedLength) {
		t.Errorf("takeSized error = %v, want ErrTruncatedLength", err)
	}
	if _, err := takeSized(nil, 0, 1); !errors.Is(err, ErrTruncatedLength) {
		t.Errorf("takeSized error = %v, want ErrTruncatedLength", err)
	}

	// declared length exceeds the buffer
	if _, err := takeSized([]byte{0x00, 0x09, 'a'}, 0, 2); !errors.Is(err, ErrTruncatedBody) {
		t.Errorf("takeSized error = %v, want ErrTruncatedBody", err)
	}
}

func TestDropPrefix(t *testing.T) {
	data := []byte{0x02, 'a', 'b', 'c', 'd'}

	rest, err := dropPrefix(data, 0, 1)
	if err != nil {
		t.Fatalf("dropPrefix error: %v", err)
	}
	if !bytes.Equal(rest, []byte("cd")) {
		t.Errorf("dropPrefix = %q, want %q", rest, "cd")
	}

	// dropping the whole buffer leaves an empty remainder
	rest, err = dropPrefix([]byte{0x01, 'z'}, 0, 1)
	if err != nil {
		t.Fatalf("dropPrefix error: %v", err)
	}
	if len(rest) != 0 {
		t.Errorf("dropPrefix = %q, want empty", rest)
	}

	if _, err := dropPrefix([]byte{0x05, 'a'}, 0, 1); !errors.Is(err, ErrTruncatedBody) {
		t.Errorf("dropPrefix error = %v, want ErrTruncatedBody", err)
	}
}
