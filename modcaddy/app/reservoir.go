package app

import (
	"errors"
	"time"

	"github.com/caddyserver/caddy/v2"
	"github.com/snipeek/snipeek"
	"go.uber.org/zap"
)

const (
	CaddyAppID = "snipeek"

	DEFAULT_RESERVOIR_ENTRY_VALID_FOR = 10 * time.Second
)

func init() {
	caddy.RegisterModule(Reservoir{})
}

// Reservoir implements caddy.App.
// It stores the server names sniffed from incoming TLS connections by
// ListenerWrapper for later use by the Handler when ServeHTTP is called.
type Reservoir struct {
	ValidFor caddy.Duration `json:"valid_for,omitempty"`

	sniffer *snipeek.Sniffer

	logger *zap.Logger
}

// CaddyModule implements CaddyModule() of caddy.Module.
// It returns the Caddy module information.
func (Reservoir) CaddyModule() caddy.ModuleInfo { // skipcq: GO-W1029
	return caddy.ModuleInfo{
		ID: CaddyAppID,
		New: func() caddy.Module {
			return &Reservoir{
				ValidFor: caddy.Duration(DEFAULT_RESERVOIR_ENTRY_VALID_FOR),
			}
		},
	}
}

// Sniffer returns the Sniffer instance.
func (r *Reservoir) Sniffer() *snipeek.Sniffer { // skipcq: GO-W1029
	return r.sniffer
}

// DepositServerName records the server name sniffed from the connection of
// the given remote address.
func (r *Reservoir) DepositServerName(from, name string) { // skipcq: GO-W1029
	r.sniffer.Deposit(from, name)
}

// WithdrawServerName returns the server name sniffed from the connection of
// the given remote address and deletes the entry.
func (r *Reservoir) WithdrawServerName(from string) (name string, ok bool) { // skipcq: GO-W1029
	return r.sniffer.Pop(from)
}

// Start implements Start() of caddy.App.
func (r *Reservoir) Start() error { // skipcq: GO-W1029
	if r.ValidFor <= 0 {
		return errors.New("validfor must be a positive duration")
	}

	r.logger.Info("snipeek reservoir is started")

	return nil
}

// Stop implements Stop() of caddy.App.
func (r *Reservoir) Stop() error { // skipcq: GO-W1029
	r.sniffer.Close()
	return nil
}

// Provision implements Provision() of caddy.Provisioner.
func (r *Reservoir) Provision(ctx caddy.Context) error { // skipcq: GO-W1029
	r.logger = ctx.Logger(r)
	r.sniffer = snipeek.NewSnifferWithTimeout(time.Duration(r.ValidFor))

	r.logger.Info("snipeek reservoir is provisioned")
	return nil
}

var (
	_ caddy.App         = (*Reservoir)(nil)
	_ caddy.Provisioner = (*Reservoir)(nil)
)
