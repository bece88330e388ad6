package app

import (
	"github.com/caddyserver/caddy/v2"
	"github.com/caddyserver/caddy/v2/caddyconfig"
	"github.com/caddyserver/caddy/v2/caddyconfig/caddyfile"
	"github.com/caddyserver/caddy/v2/caddyconfig/httpcaddyfile"
)

func init() {
	httpcaddyfile.RegisterGlobalOption(CaddyAppID, parseCaddyfile)
}

/*
Caddyfile syntax:

	snipeek {
		validfor 5s
	}

validfor bounds how long a sniffed server name stays withdrawable.
*/
func parseCaddyfile(d *caddyfile.Dispenser, _ interface{}) (interface{}, error) {
	app := &Reservoir{
		ValidFor: caddy.Duration(DEFAULT_RESERVOIR_ENTRY_VALID_FOR),
	}

	for d.Next() {
		for d.NextBlock(0) {
			switch d.Val() { // skipcq: CRT-A0014
			case "validfor":
				if app.ValidFor != caddy.Duration(DEFAULT_RESERVOIR_ENTRY_VALID_FOR) {
					return nil, d.Err("only one validfor is allowed")
				}
				args := d.RemainingArgs()
				if len(args) != 1 {
					return nil, d.ArgErr()
				}
				duration, err := caddy.ParseDuration(args[0])
				if err != nil {
					return nil, d.Errf("invalid duration: %v", err)
				}
				app.ValidFor = caddy.Duration(duration)
			}
		}
	}

	return httpcaddyfile.App{
		Name:  CaddyAppID,
		Value: caddyconfig.JSON(app, nil),
	}, nil
}
