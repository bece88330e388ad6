package listener

import (
	"errors"
	"net"

	"github.com/caddyserver/caddy/v2"
	"github.com/caddyserver/caddy/v2/caddyconfig/caddyfile"
	"github.com/snipeek/snipeek"
	"github.com/snipeek/snipeek/internal/utils"
	"github.com/snipeek/snipeek/modcaddy/app"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

func init() {
	caddy.RegisterModule(ListenerWrapper{})
}

// ListenerWrapper implements caddy.ListenerWrapper.
// It is used to sniff the SNI hostname from the incoming TLS connection
// before it reaches the "tls" in caddy.listeners
//
// For snipeek to work, it must be placed before the "tls" in the
// Caddyfile's listener_wrappers directive. For example:
//
//	listener_wrappers {
//		snipeek
//		tls
//	}
type ListenerWrapper struct {
	TCP bool `json:"tcp,omitempty"`

	// AllowedNames, when non-empty, limits which sniffed server names get
	// deposited into the reservoir. Connections with other names still pass
	// through untouched.
	AllowedNames []string `json:"allowed_names,omitempty"`

	logger    *zap.Logger
	reservoir *app.Reservoir
}

// CaddyModule returns the Caddy module information.
func (ListenerWrapper) CaddyModule() caddy.ModuleInfo { // skipcq: GO-W1029
	return caddy.ModuleInfo{
		ID:  "caddy.listeners.snipeek",
		New: func() caddy.Module { return new(ListenerWrapper) },
	}
}

func (lw *ListenerWrapper) Provision(ctx caddy.Context) error { // skipcq: GO-W1029
	// logger
	lw.logger = ctx.Logger(lw)
	lw.logger.Info("snipeek listener logger loaded.")

	// reservoir
	if !ctx.AppIsConfigured(app.CaddyAppID) {
		return errors.New("snipeek listener: global reservoir is not configured")
	}
	a, err := ctx.App(app.CaddyAppID)
	if err != nil {
		return err
	}
	lw.reservoir = a.(*app.Reservoir)
	lw.logger.Info("snipeek listener reservoir loaded.")

	lw.logger.Info("snipeek listener provisioned.")
	return nil
}

func (lw *ListenerWrapper) WrapListener(l net.Listener) net.Listener { // skipcq: GO-W1029
	lw.logger.Info("Wrapping listener " + l.Addr().String() + " on network " + l.Addr().Network() + "...")

	if l.Addr().Network() == "tcp" || l.Addr().Network() == "tcp4" || l.Addr().Network() == "tcp6" {
		if lw.TCP {
			return wrapTlsListener(l, lw.reservoir, lw.logger, lw.AllowedNames)
		} else {
			lw.logger.Debug("TCP not enabled. Skipping...")
		}
	} else {
		lw.logger.Debug("Not TCP. Skipping...")
	}

	return l
}

type tlsListener struct {
	net.Listener
	reservoir    *app.Reservoir
	logger       *zap.Logger
	allowedNames []string
}

func wrapTlsListener(in net.Listener, r *app.Reservoir, logger *zap.Logger, allowedNames []string) net.Listener {
	return &tlsListener{
		Listener:     in,
		reservoir:    r,
		logger:       logger,
		allowedNames: allowedNames,
	}
}

func (l *tlsListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return conn, err
	}

	ch, err := snipeek.ReadClientHello(conn)
	if err == nil {
		if err := ch.Parse(); err == nil {
			if name, ok := ch.ServerName(); ok && l.allowed(name) {
				l.reservoir.DepositServerName(conn.RemoteAddr().String(), name)
				l.logger.Debug("Deposited server name from " + conn.RemoteAddr().String())
			}
		} else {
			l.logger.Debug("Failed to parse ClientHello from "+conn.RemoteAddr().String(), zap.Error(err))
		}
	} else {
		l.logger.Error("Failed to read ClientHello from "+conn.RemoteAddr().String(), zap.Error(err))
	}

	// No matter what happens, rewind the connection
	return utils.RewindConn(conn, ch.Raw())
}

func (l *tlsListener) allowed(name string) bool {
	return len(l.allowedNames) == 0 || slices.Contains(l.allowedNames, name)
}

func (lw *ListenerWrapper) UnmarshalCaddyfile(d *caddyfile.Dispenser) error { // skipcq: GO-W1029
	for d.Next() {
		for d.NextBlock(0) {
			switch d.Val() {
			case "tcp":
				if lw.TCP {
					return d.Err("snipeek: tcp already specified")
				}
				lw.TCP = true
			case "allow":
				args := d.RemainingArgs()
				if len(args) == 0 {
					return d.ArgErr()
				}
				lw.AllowedNames = append(lw.AllowedNames, args...)
			}
		}
	}
	return nil
}

// Interface guards
var (
	_ caddy.Provisioner     = (*ListenerWrapper)(nil)
	_ caddy.ListenerWrapper = (*ListenerWrapper)(nil)
	_ caddyfile.Unmarshaler = (*ListenerWrapper)(nil)
)
