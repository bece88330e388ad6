package snipeek

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gaukas/godicttls"
)

const (
	contentTypeHandshake     = 0x16
	handshakeTypeClientHello = 0x01
	versionMajorTLS          = 0x03
)

// Errors reported by the ClientHello parser, in addition to the slicer and
// hostname validator errors. All are terminal: no retry, no partial result.
var (
	ErrUnsupportedVersion       = errors.New("unsupported TLS record version")
	ErrNotHandshake             = errors.New("record content type is not handshake")
	ErrNotClientHello           = errors.New("handshake message is not a ClientHello")
	ErrUnsupportedClientVersion = errors.New("unsupported client version")
)

// ClientHello is the decoded view of one ClientHello message. The only
// field extracted is the server name carried by the SNI extension, kept as
// a borrowed sub-slice of the parsed buffer.
type ClientHello struct {
	raw        []byte
	serverName []byte
}

// ParseClientHello decodes the TLS record at the start of data and extracts
// the SNI hostname from the ClientHello it carries, if any. The returned
// ClientHello borrows from data and is only valid while data is; the parse
// itself allocates nothing and never modifies data.
//
// A well-formed ClientHello without a server name is not an error:
// ServerName reports absence instead.
func ParseClientHello(data []byte) (ClientHello, error) {
	record, err := ParseRecord(data)
	if err != nil {
		return ClientHello{}, err
	}
	if record.VersionMajor != versionMajorTLS {
		return ClientHello{}, ErrUnsupportedVersion
	}
	if record.ContentType != contentTypeHandshake {
		return ClientHello{}, ErrNotHandshake
	}

	fragment := record.Fragment
	if len(fragment) < 1 || fragment[0] != handshakeTypeClientHello {
		return ClientHello{}, ErrNotClientHello
	}
	hello, err := takeSized(fragment, 1, 4) // 3-byte handshake body length
	if err != nil {
		return ClientHello{}, err
	}
	if len(hello) < 1 || hello[0] != versionMajorTLS {
		return ClientHello{}, ErrUnsupportedClientVersion
	}

	// hello[2:34] is the 32-byte random; byte 34 holds the session id length.
	cursor, err := dropPrefix(hello, 34, 35)
	if err != nil {
		return ClientHello{}, err
	}
	cursor, err = dropPrefix(cursor, 0, 2) // cipher suites
	if err != nil {
		return ClientHello{}, err
	}
	cursor, err = dropPrefix(cursor, 0, 1) // compression methods
	if err != nil {
		return ClientHello{}, err
	}

	// The extensions block is optional. A body ending right after the
	// compression methods is a legal ClientHello with no extensions; a
	// single stray byte is malformed trailing data, not an empty block.
	if len(cursor) == 0 {
		return ClientHello{raw: data}, nil
	}
	exts, err := takeSized(cursor, 0, 2)
	if err != nil {
		return ClientHello{}, err
	}

	serverName, err := walkExtensions(exts)
	if err != nil {
		return ClientHello{}, err
	}
	return ClientHello{raw: data, serverName: serverName}, nil
}

// walkExtensions iterates the extensions block as (type, length, value)
// triples until fewer than 4 bytes remain; trailing bytes shorter than a
// header are ignored. The first accepted hostname wins: later server_name
// extensions are still consumed for cursor correctness but never examined.
// A malformed length anywhere invalidates the whole message.
func walkExtensions(exts []byte) ([]byte, error) {
	var serverName []byte
	for len(exts) >= 4 {
		extType := binary.BigEndian.Uint16(exts[0:2])
		extData, err := takeSized(exts, 2, 4)
		if err != nil {
			return nil, err
		}
		exts = exts[4+len(extData):]

		if extType == godicttls.ExtType_server_name {
			serverName, err = walkServerNameList(extData, serverName)
			if err != nil {
				return nil, err
			}
		}
	}
	return serverName, nil
}

// walkServerNameList walks the server_name_list of one SNI extension.
// Only name_type 0 (host_name) is interpreted; entries of other types are
// consumed and skipped. found carries a previously accepted hostname and is
// never overwritten.
func walkServerNameList(extData []byte, found []byte) ([]byte, error) {
	data, err := takeSized(extData, 0, 2)
	if err != nil {
		return nil, err
	}
	for len(data) > 3 {
		nameType := data[0]
		value, err := takeSized(data, 1, 3)
		if err != nil {
			return nil, err
		}
		data = data[3+len(value):]

		if nameType == 0 && found == nil {
			if err := validateHostname(value); err != nil {
				return nil, err
			}
			found = value
		}
	}
	return found, nil
}

// ServerNameBytes returns the server name as a sub-slice of the parsed
// buffer, or nil when the ClientHello carried none. No copy is made, so the
// result must not outlive the buffer.
func (ch *ClientHello) ServerNameBytes() []byte {
	return ch.serverName
}

// ServerName returns the server name as an owned string. ok is false when
// the ClientHello carried no host_name entry.
func (ch *ClientHello) ServerName() (name string, ok bool) {
	if ch.serverName == nil {
		return "", false
	}
	return string(ch.serverName), true
}

// Raw returns every byte consumed so far. Callers use it to rewind a
// connection after peeking.
func (ch *ClientHello) Raw() []byte {
	return ch.raw
}

// ReadClientHello reads exactly one TLS record from r and returns it as an
// unparsed ClientHello, retaining all bytes consumed so the caller can
// rewind the stream. Call Parse on the result to extract the server name.
//
// On error the returned ClientHello still holds whatever bytes were read.
func ReadClientHello(r io.Reader) (*ClientHello, error) {
	ch := new(ClientHello)
	ch.raw = make([]byte, recordHeaderLen)
	if _, err := io.ReadFull(r, ch.raw); err != nil {
		return ch, fmt.Errorf("failed to read TLS record header: %w", err)
	}

	if ch.raw[0] != contentTypeHandshake {
		return ch, ErrNotHandshake
	}

	ch.raw = append(ch.raw, make([]byte, binary.BigEndian.Uint16(ch.raw[3:recordHeaderLen]))...)
	if _, err := io.ReadFull(r, ch.raw[recordHeaderLen:]); err != nil {
		return ch, fmt.Errorf("failed to read TLS record fragment: %w", err)
	}
	return ch, nil
}

// Parse runs the ClientHello decoder over the bytes collected by
// ReadClientHello.
func (ch *ClientHello) Parse() error {
	parsed, err := ParseClientHello(ch.raw)
	if err != nil {
		return err
	}
	ch.serverName = parsed.serverName
	return nil
}
