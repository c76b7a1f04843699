package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"whatsapp-cloud-go/internal/config"
	"whatsapp-cloud-go/pkg/webhook"
	"whatsapp-cloud-go/pkg/whatsapp"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "wacloud",
		Usage: "Decode WhatsApp webhooks and call the Cloud API from the shell",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "token",
				EnvVars: []string{"WHATSAPP_ACCESS_TOKEN"},
				Usage:   "Graph API access token",
			},
			&cli.StringFlag{
				Name:    "phone-number-id",
				EnvVars: []string{"WHATSAPP_PHONE_NUMBER_ID"},
				Usage:   "business phone number id",
			},
			&cli.StringFlag{
				Name:    "api-version",
				EnvVars: []string{"WHATSAPP_API_VERSION"},
				Value:   whatsapp.DefaultVersion,
			},
			&cli.StringFlag{
				Name:    "base-url",
				EnvVars: []string{"WHATSAPP_BASE_URL"},
				Value:   whatsapp.DefaultBaseURL,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log every call to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "decode",
				Usage:     "Decode a webhook payload from FILE or stdin",
				ArgsUsage: "[FILE]",
				Action:    decodeAction,
			},
			{
				Name:  "send-text",
				Usage: "Send a text message",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Required: true},
					&cli.StringFlag{Name: "body", Required: true},
					&cli.StringFlag{Name: "reply-to", Usage: "id of the message being answered"},
					&cli.BoolFlag{Name: "no-preview", Usage: "disable link previews"},
				},
				Action: sendTextAction,
			},
			{
				Name:      "mark-read",
				Usage:     "Mark an inbound message as read",
				ArgsUsage: "MESSAGE_ID",
				Action:    markReadAction,
			},
			{
				Name:  "commerce",
				Usage: "Show or change cart and catalog settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "cart", Usage: "enable or disable the cart"},
					&cli.BoolFlag{Name: "catalog", Usage: "show or hide the catalog"},
				},
				Action: commerceAction,
			},
		},
	}
}

type decodeOutput struct {
	Kind  string      `json:"kind"`
	Event interface{} `json:"event"`
}

func decodeAction(c *cli.Context) error {
	var in io.Reader = c.App.Reader
	if in == nil {
		in = os.Stdin
	}
	if path := c.Args().First(); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "open payload")
		}
		defer f.Close()
		in = f
	}

	ev, err := webhook.DecodeReader(in)
	if err != nil {
		return err
	}
	return printJSON(c, decodeOutput{Kind: string(ev.EventKind()), Event: ev})
}

func sendTextAction(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	opts := &whatsapp.TextOptions{
		PreviewURL:       !c.Bool("no-preview"),
		ContextMessageID: c.String("reply-to"),
	}
	res, err := client.SendText(c.Context, c.String("to"), c.String("body"), opts)
	if err != nil {
		return err
	}
	return printResponse(c, res)
}

func markReadAction(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("mark-read: exactly one MESSAGE_ID is required")
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}
	res, err := client.MarkAsRead(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	return printResponse(c, res)
}

func commerceAction(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}

	if !c.IsSet("cart") && !c.IsSet("catalog") {
		res, err := client.GetCommerceSettings(c.Context)
		if err != nil {
			return err
		}
		return printResponse(c, res)
	}

	var res *whatsapp.Response
	if c.IsSet("cart") {
		if res, err = client.UpdateCartStatus(c.Context, c.Bool("cart")); err != nil {
			return err
		}
		if !res.OK {
			return printResponse(c, res)
		}
	}
	if c.IsSet("catalog") {
		if res, err = client.UpdateCatalogStatus(c.Context, c.Bool("catalog")); err != nil {
			return err
		}
	}
	return printResponse(c, res)
}

func newClient(c *cli.Context) (*whatsapp.Client, error) {
	cfg := config.LoadConfig()
	cfg.AccessToken = c.String("token")
	cfg.PhoneNumberID = c.String("phone-number-id")
	cfg.APIVersion = c.String("api-version")
	cfg.BaseURL = c.String("base-url")
	cfg.Verbose = c.Bool("verbose")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: c.App.ErrWriter}).With().Timestamp().Logger()
	return whatsapp.NewClient(cfg.ClientOptions(&log)), nil
}

func printResponse(c *cli.Context, res *whatsapp.Response) error {
	var body interface{} = string(res.Body)
	if json.Valid(res.Body) {
		body = res.Body
	}
	if err := printJSON(c, map[string]interface{}{"success": res.OK, "response": body}); err != nil {
		return err
	}
	return res.Err()
}

func printJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
