package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/caddyserver/caddy/v2"
	"github.com/caddyserver/caddy/v2/caddyconfig/httpcaddyfile"
	"github.com/caddyserver/caddy/v2/modules/caddyhttp"
	"github.com/snipeek/snipeek/modcaddy/app"
	"go.uber.org/zap"
)

func init() {
	caddy.RegisterModule(Handler{})
	httpcaddyfile.RegisterHandlerDirective("snipeek", func(h httpcaddyfile.Helper) (caddyhttp.MiddlewareHandler, error) {
		m := &Handler{}
		return m, nil
	})
}

// Handler reports the server name sniffed from the requesting connection
// as a JSON response.
type Handler struct {
	logger    *zap.Logger
	reservoir *app.Reservoir
}

// CaddyModule returns the Caddy module information.
func (Handler) CaddyModule() caddy.ModuleInfo {
	return caddy.ModuleInfo{
		ID:  "http.handlers.snipeek",
		New: func() caddy.Module { return new(Handler) },
	}
}

// Provision implements caddy.Provisioner.
func (h *Handler) Provision(ctx caddy.Context) error {
	h.logger = ctx.Logger(h)
	if ctx.AppIfConfigured(app.CaddyAppID) == nil {
		return errors.New("handler: snipeek is not configured")
	}
	a, err := ctx.App(app.CaddyAppID)
	if err != nil {
		return err
	}
	h.reservoir = a.(*app.Reservoir)
	h.logger.Info("snipeek handler provisioned!")
	return nil
}

type sniffReport struct {
	ServerName string `json:"server_name"`
}

func (h *Handler) ServeHTTP(wr http.ResponseWriter, req *http.Request, next caddyhttp.Handler) error {
	// get the sniffed server name from the reservoir
	name, ok := h.reservoir.WithdrawServerName(req.RemoteAddr)
	if !ok {
		h.logger.Debug(fmt.Sprintf("Can't withdraw server name for %s, is it not a TLS connection?", req.RemoteAddr))
		return next.ServeHTTP(wr, req)
	}
	h.logger.Debug(fmt.Sprintf("Withdrew server name %q for %s", name, req.RemoteAddr))

	// dump JSON
	var b []byte
	var err error
	if req.URL.Query().Get("beautify") == "true" {
		b, err = json.MarshalIndent(sniffReport{ServerName: name}, "", "  ")
	} else {
		b, err = json.Marshal(sniffReport{ServerName: name})
	}
	if err != nil {
		h.logger.Error("failed to marshal sniffed server name", zap.Error(err))
		return next.ServeHTTP(wr, req)
	}

	// write JSON to response
	wr.Header().Set("Content-Type", "application/json")
	wr.Header().Set("Connection", "close")
	_, err = wr.Write(b)
	if err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
		return next.ServeHTTP(wr, req)
	}
	return nil
}

// Interface guards
var (
	_ caddy.Provisioner           = (*Handler)(nil)
	_ caddyhttp.MiddlewareHandler = (*Handler)(nil)
)
