package snipeek

import (
	"bytes"
	"errors"
	"testing"
)

func TestValidateHostname(t *testing.T) {
	cases := []struct {
		name    string
		in      []byte
		wantErr error
	}{
		{"plain", []byte("www.google.com"), nil},
		{"mixed case and digits", []byte("Sub-1.Example_2.ORG"), nil},
		{"empty", []byte{}, nil},
		{"space", []byte("bad name.example.com"), ErrIllegalChar},
		{"control char", []byte("bad\x00name"), ErrIllegalChar},
		{"slash", []byte("bad/name"), ErrIllegalChar},
		{"too long", bytes.Repeat([]byte{'a'}, 256), ErrNameTooLong},
		{"max length ok", bytes.Repeat([]byte{'a'}, 255), nil},
		{"not utf-8", []byte{0xff, 0xfe, 0xfd}, ErrNotUTF8},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := validateHostname(c.in); !errors.Is(err, c.wantErr) {
				t.Errorf("validateHostname(%q) = %v, want %v", c.in, err, c.wantErr)
			}
		})
	}
}
