package snipeek

import (
	"errors"
	"unicode/utf8"
)

// maxHostnameLen bounds the encoded hostname, matching the 255-octet name
// limit of RFC 1035.
const maxHostnameLen = 255

// Errors reported by the hostname validator.
var (
	ErrNotUTF8     = errors.New("server name is not valid UTF-8")
	ErrNameTooLong = errors.New("server name exceeds 255 bytes")
	ErrIllegalChar = errors.New("illegal character in server name")
)

// validateHostname enforces the constraints on a host_name entry of the SNI
// extension: valid UTF-8, at most maxHostnameLen bytes, and every character
// one of the ASCII alphanumerics, '.', '-' or '_'.
func validateHostname(name []byte) error {
	if !utf8.Valid(name) {
		return ErrNotUTF8
	}
	if len(name) > maxHostnameLen {
		return ErrNameTooLong
	}
	for _, c := range name {
		if !legalHostnameChar(c) {
			return ErrIllegalChar
		}
	}
	return nil
}

func legalHostnameChar(c byte) bool {
	switch {
	case '0' <= c && c <= '9', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		return true
	case c == '.' || c == '-' || c == '_':
		return true
	}
	return false
}
