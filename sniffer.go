package snipeek

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/snipeek/snipeek/internal/utils"
)

const DEFAULT_SNIFFER_EXPIRY = 5 * time.Second

// Sniffer extracts server names from TLS connections and keeps them, keyed
// by remote address, until they expire.
type Sniffer struct {
	mapServerNames *sync.Map

	timeout time.Duration
	closed  atomic.Bool
}

// NewSniffer creates a new Sniffer with the default entry expiry.
func NewSniffer() *Sniffer {
	return &Sniffer{
		mapServerNames: new(sync.Map),
		closed:         atomic.Bool{},
	}
}

// NewSnifferWithTimeout creates a new Sniffer whose entries expire after
// the given timeout.
func NewSnifferWithTimeout(timeout time.Duration) *Sniffer {
	return &Sniffer{
		mapServerNames: new(sync.Map),
		timeout:        timeout,
		closed:         atomic.Bool{},
	}
}

// SetTimeout sets the entry expiry for the Sniffer.
func (sn *Sniffer) SetTimeout(timeout time.Duration) {
	sn.timeout = timeout
}

// Deposit stores the server name sniffed from a given source. The entry is
// removed once the expiry elapses, unless replaced or popped first. The
// empty string is a valid deposit: it records a TLS client that sent no
// SNI extension.
func (sn *Sniffer) Deposit(from, name string) {
	sn.mapServerNames.Store(from, name)
	go func(timeoutOverride time.Duration, key, oldName string) {
		if timeoutOverride == time.Duration(0) {
			<-time.After(DEFAULT_SNIFFER_EXPIRY)
		} else {
			<-time.After(timeoutOverride)
		}
		sn.mapServerNames.CompareAndDelete(key, oldName)
	}(sn.timeout, from, name)
}

// HandleMessage parses a complete in-memory TLS record and deposits the
// extracted server name under the given key.
func (sn *Sniffer) HandleMessage(from string, p []byte) error {
	if sn.closed.Load() {
		return errors.New("sniffer closed")
	}

	ch, err := ParseClientHello(p)
	if err != nil {
		return err
	}

	name, _ := ch.ServerName()
	sn.Deposit(from, name)
	return nil
}

// HandleTCPConn reads one TLS record from a freshly accepted connection,
// deposits the sniffed server name under the connection's remote address,
// and returns the connection rewound to its very first byte.
func (sn *Sniffer) HandleTCPConn(conn net.Conn) (rewound net.Conn, err error) {
	if sn.closed.Load() {
		return nil, errors.New("sniffer closed")
	}

	ch, err := ReadClientHello(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read ClientHello from connection: %w", err)
	}

	if err = ch.Parse(); err != nil {
		return nil, fmt.Errorf("failed to parse ClientHello: %w", err)
	}

	name, _ := ch.ServerName()
	sn.Deposit(conn.RemoteAddr().String(), name)

	return utils.RewindConn(conn, ch.Raw())
}

// Peek looks up the server name sniffed from a given source.
func (sn *Sniffer) Peek(from string) (name string, ok bool) {
	v, ok := sn.mapServerNames.Load(from)
	if !ok {
		return "", false
	}

	name, ok = v.(string)
	return name, ok
}

// Pop looks up the server name sniffed from a given source and deletes the
// entry if found.
func (sn *Sniffer) Pop(from string) (name string, ok bool) {
	v, ok := sn.mapServerNames.LoadAndDelete(from)
	if !ok {
		return "", false
	}

	name, ok = v.(string)
	return name, ok
}

// Close closes the Sniffer. Entries already deposited remain readable until
// they expire.
func (sn *Sniffer) Close() {
	sn.closed.Store(true)
}
