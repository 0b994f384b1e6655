// Command offerctl calls the offer API from the command line.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/shopstr/greenlight-backend/api/clients"
	"github.com/urfave/cli/v2"
)

var flagServerAddr = &cli.StringFlag{
	Name:    "server-addr",
	Value:   "http://127.0.0.1:8081",
	Usage:   "offer API address",
	EnvVars: []string{"OFFER_API_ADDR"},
}

var flagTimeout = &cli.DurationFlag{
	Name:  "timeout",
	Value: 2 * time.Minute,
	Usage: "request timeout",
}

var flagExpiry = &cli.Uint64Flag{
	Name:  "expiry",
	Usage: "seconds until the offer expires, omit for no expiry (0 expires immediately)",
}

var flagUsername = &cli.StringFlag{
	Name:     "username",
	Required: true,
	Usage:    "username to publish or resolve",
}

var flagOffer = &cli.StringFlag{
	Name:  "offer",
	Usage: "BOLT12 offer to publish, a new one is created if empty",
}

func newClient(cCtx *cli.Context) *clients.OfferClient {
	return clients.NewOfferClient(cCtx.String(flagServerAddr.Name), cCtx.Duration(flagTimeout.Name))
}

// parseExpiry returns nil when the flag was not given.
func parseExpiry(set bool, seconds uint64) (*uint32, error) {
	if !set {
		return nil, nil
	}
	if seconds > math.MaxUint32 {
		return nil, fmt.Errorf("expiry %d out of range, at most %d seconds", seconds, uint64(math.MaxUint32))
	}
	e := uint32(seconds)
	return &e, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	app := &cli.App{
		Name:  "offerctl",
		Usage: "Create BOLT12 offers and usernames through the offer API",
		Flags: []cli.Flag{
			flagServerAddr,
			flagTimeout,
		},
		Commands: []*cli.Command{
			{
				Name:  "create-offer",
				Usage: "create a new BOLT12 offer",
				Flags: []cli.Flag{flagExpiry},
				Action: func(cCtx *cli.Context) error {
					expiry, err := parseExpiry(cCtx.IsSet(flagExpiry.Name), cCtx.Uint64(flagExpiry.Name))
					if err != nil {
						return err
					}
					offer, err := newClient(cCtx).CreateOffer(cCtx.Context, expiry)
					if err != nil {
						return err
					}
					return printJSON(map[string]string{"offer": offer})
				},
			},
			{
				Name:  "health",
				Usage: "show server health",
				Action: func(cCtx *cli.Context) error {
					health, err := newClient(cCtx).Health(cCtx.Context)
					if err != nil {
						return err
					}
					return printJSON(health)
				},
			},
			{
				Name:  "create-username",
				Usage: "publish a username for an offer",
				Flags: []cli.Flag{flagUsername, flagOffer},
				Action: func(cCtx *cli.Context) error {
					client := newClient(cCtx)
					offer := cCtx.String(flagOffer.Name)
					if offer == "" {
						var err error
						if offer, err = client.CreateOffer(cCtx.Context, nil); err != nil {
							return err
						}
					}
					reg, err := client.CreateUsername(cCtx.Context, cCtx.String(flagUsername.Name), offer)
					if err != nil {
						return err
					}
					return printJSON(reg)
				},
			},
			{
				Name:  "resolve",
				Usage: "resolve a username to its offer",
				Flags: []cli.Flag{flagUsername},
				Action: func(cCtx *cli.Context) error {
					resolved, err := newClient(cCtx).ResolveUsername(cCtx.Context, cCtx.String(flagUsername.Name))
					if err != nil {
						return err
					}
					return printJSON(resolved)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
