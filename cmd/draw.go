package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	bnet "SharedBoard/internal/net"
	"SharedBoard/internal/session"
	"SharedBoard/internal/state"
	"SharedBoard/internal/ui"
)

var (
	drawDiscover bool
	drawOffline  bool
	drawURL      string
	drawClient   string
)

var drawCmd = &cobra.Command{
	Use:   "draw [board://host:port/room | room]",
	Short: "Open a board window",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		room, wsURL, err := resolveRoom(arg)
		if err != nil {
			return err
		}
		client := drawClient
		if client == "" {
			client = cfg.Coordinator.Client
		}
		if client == "" {
			client = state.NewClientID()
		}
		return runBoard(cmd.Context(), room, client, wsURL)
	},
}

// resolveRoom turns the command argument into a room id and a websocket
// URL. An empty URL means the board runs offline.
func resolveRoom(arg string) (room, wsURL string, err error) {
	if strings.HasPrefix(arg, bnet.Scheme+"://") {
		link, err := bnet.ParseShareLink(arg)
		if err != nil {
			return "", "", err
		}
		return link.Room, link.WebSocketURL(), nil
	}

	room = arg
	if room == "" {
		room = cfg.Coordinator.Room
	}
	if drawOffline {
		return room, "", nil
	}

	base := drawURL
	if base == "" {
		base = cfg.Coordinator.URL
	}
	if drawDiscover {
		found, err := bnet.Browse(2 * time.Second)
		if err != nil {
			logger.Warn("mdns browse failed", "err", err)
		}
		if len(found) == 0 {
			return "", "", errors.New("no coordinator found on the local network")
		}
		logger.Info("found coordinator", "addr", found[0], "total", len(found))
		base = "http://" + found[0]
	}
	if base == "" {
		return room, "", nil
	}
	wsURL, err = bnet.RoomURL(base, room)
	return room, wsURL, err
}

func runBoard(ctx context.Context, room, client, wsURL string) error {
	app := ui.NewApp(ui.AppOptions{
		Title: fmt.Sprintf("Shared Whiteboard - %s", room),
		Export: ui.ExportSize{
			Width:  cfg.Canvas.Width,
			Height: cfg.Canvas.Height,
			DPR:    cfg.Canvas.DPR,
		},
		ShareLink: shareLinkFor(wsURL, room),
	})
	board := app.Board()

	opt := session.Options{
		Room:       room,
		Client:     client,
		Logger:     logger,
		Redraw:     board.SetFrame,
		OnPresence: app.SetPresence,
		OnStatus: func(s bnet.Status) {
			board.SetStatus(s.String())
		},
	}
	var link *bnet.Link
	if wsURL != "" {
		link = bnet.NewLink(bnet.LinkOptions{URL: wsURL, Room: room, Client: client}, logger)
		opt.Link = link
	} else {
		board.StatusBar().SetText("offline")
	}
	sess := session.New(opt)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	app.Run(sess, func() {
		g.Go(func() error { return sess.Run(gctx) })
		if link != nil {
			g.Go(func() error { return link.Run(gctx) })
		}
	})
	cancel()
	return g.Wait()
}

// shareLinkFor rebuilds a board:// link from the websocket URL so others can
// join the same room.
func shareLinkFor(wsURL, room string) string {
	u, err := url.Parse(wsURL)
	if wsURL == "" || err != nil {
		return ""
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		host, portStr = u.Host, "80"
	}
	port, _ := strconv.Atoi(portStr)
	return bnet.ShareLink{Host: host, Port: port, Room: room}.String()
}

func init() {
	rootCmd.AddCommand(drawCmd)
	drawCmd.Flags().BoolVar(&drawDiscover, "discover", false, "find a coordinator with mDNS")
	drawCmd.Flags().BoolVar(&drawOffline, "offline", false, "draw without a coordinator")
	drawCmd.Flags().StringVar(&drawURL, "url", "", "coordinator base url, e.g. http://10.0.0.5:8888")
	drawCmd.Flags().StringVar(&drawClient, "client", "", "client id (random by default)")
}
