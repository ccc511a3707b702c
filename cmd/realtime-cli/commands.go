package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"content-realtime-api/internal/auth"
	"content-realtime-api/internal/config"
	"content-realtime-api/internal/logging"
	"content-realtime-api/pkg/client"
	"content-realtime-api/pkg/events"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

var errMissingToken = errors.New("a token is required: pass --token or set REALTIME_TOKEN")

func urlFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "url",
		Usage: "Websocket endpoint of the server",
		Value: "ws://localhost:8008/ws",
	}
}

func tokenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "token",
		Usage:   "Bearer token used for the handshake",
		Sources: cli.EnvVars("REALTIME_TOKEN"),
	}
}

// TokenCommand mints a development token signed with the configured secret.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:      "token",
		Usage:     "Print a signed token for a user id",
		ArgsUsage: "<user-id> [username]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "role",
				Usage: "Role claim, e.g. producer for services publishing events",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			userID := c.Args().First()
			if userID == "" {
				return errors.New("user id is required")
			}
			username := c.Args().Get(1)
			if username == "" {
				username = userID
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenTTL)
			token, err := tokens.GenerateWithRole(userID, username, c.String("role"))
			if err != nil {
				return fmt.Errorf("generating token: %w", err)
			}
			fmt.Println(token)
			return nil
		},
	}
}

// WatchCommand prints every event received until interrupted.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Stream events as JSON lines",
		Flags: []cli.Flag{
			urlFlag(),
			tokenFlag(),
			&cli.StringSliceFlag{
				Name:  "room",
				Usage: "Room to join, e.g. content_42 (repeatable)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			cl, err := connect(ctx, c)
			if err != nil {
				return err
			}
			defer cl.Disconnect()

			printer := framePrinter(os.Stdout)
			for _, name := range append(slices.Clone(events.ServerEvents), events.ConnectionStatus) {
				cl.On(name, printer)
			}
			// Exhausted reconnects leave nothing to watch.
			gone := make(chan struct{}, 1)
			cl.On(events.ConnectionStatus, func(f events.Frame) {
				var s events.Status
				if f.Decode(&s) == nil && s.Status == client.StatusDisconnected {
					select {
					case gone <- struct{}{}:
					default:
					}
				}
			})

			for _, room := range c.StringSlice("room") {
				kind, id, err := parseRoom(room)
				if err != nil {
					return err
				}
				if err := cl.JoinRoom(kind, id); err != nil {
					return fmt.Errorf("joining %s: %w", room, err)
				}
			}

			select {
			case <-ctx.Done():
				return nil
			case <-gone:
				return errors.New("connection lost")
			}
		},
	}
}

// SendCommand delivers one chat message and exits.
func SendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Send a private message",
		ArgsUsage: "<recipient-id> <text>",
		Flags:     []cli.Flag{urlFlag(), tokenFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() < 2 {
				return errors.New("recipient id and text are required")
			}
			recipient := c.Args().First()
			text := strings.Join(c.Args().Slice()[1:], " ")

			cl, err := connect(ctx, c)
			if err != nil {
				return err
			}
			defer cl.Disconnect()

			sent := make(chan events.Frame, 1)
			for _, name := range []events.Name{events.MessageSent, events.Error} {
				cl.On(name, func(f events.Frame) {
					select {
					case sent <- f:
					default:
					}
				})
			}
			if err := cl.SendMessage(recipient, text); err != nil {
				return err
			}

			select {
			case f := <-sent:
				if f.Event == events.Error {
					return fmt.Errorf("server rejected message: %s", f.Data)
				}
				framePrinter(os.Stdout)(f)
				return nil
			case <-time.After(10 * time.Second):
				return errors.New("no acknowledgement from server")
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
}

func connect(ctx context.Context, c *cli.Command) (*client.Client, error) {
	token := c.String("token")
	if token == "" {
		return nil, errMissingToken
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logging.Logger()
	cl := client.New(client.Options{
		MaxAttempts: cfg.Client.MaxReconnectAttempts,
		BaseDelay:   cfg.Client.ReconnectBaseDelay,
		Logger:      &log,
	})
	if err := cl.Connect(ctx, c.String("url"), token); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.String("url"), err)
	}
	return cl, nil
}

// parseRoom splits a room name such as album_9 into its kind and id.
func parseRoom(room string) (events.RoomKind, string, error) {
	i := strings.IndexByte(room, '_')
	if i <= 0 || i == len(room)-1 {
		return "", "", fmt.Errorf("invalid room %q", room)
	}
	kind := events.RoomKind(room[:i+1])
	if _, ok := events.JoinRequestFor(kind); !ok {
		return "", "", fmt.Errorf("%w: %s", client.ErrUnknownRoomKind, room)
	}
	return kind, room[i+1:], nil
}

func framePrinter(w io.Writer) client.Handler {
	enc := json.NewEncoder(w)
	return func(f events.Frame) {
		_ = enc.Encode(f)
	}
}
