package net

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const Scheme = "board"

// ShareLink addresses a room on a coordinator: board://host:port/room
type ShareLink struct {
	Host string
	Port int
	Room string
}

func ParseShareLink(s string) (ShareLink, error) {
	u, err := url.Parse(s)
	if err != nil {
		return ShareLink{}, fmt.Errorf("parse share link: %w", err)
	}
	if u.Scheme != Scheme {
		return ShareLink{}, fmt.Errorf("share link %q: scheme must be %s://", s, Scheme)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return ShareLink{}, fmt.Errorf("share link %q: %w", s, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return ShareLink{}, fmt.Errorf("share link %q: bad port %q", s, portStr)
	}
	// the room is one escaped segment and may itself contain slashes
	room, err := url.PathUnescape(strings.TrimPrefix(u.EscapedPath(), "/"))
	if err != nil || room == "" {
		return ShareLink{}, fmt.Errorf("share link %q: missing room", s)
	}
	return ShareLink{Host: host, Port: port, Room: room}, nil
}

func (l ShareLink) Addr() string {
	return net.JoinHostPort(l.Host, strconv.Itoa(l.Port))
}

func (l ShareLink) String() string {
	return fmt.Sprintf("%s://%s/%s", Scheme, l.Addr(), url.PathEscape(l.Room))
}

// WebSocketURL is the coordinator endpoint clients dial for the room.
func (l ShareLink) WebSocketURL() string {
	return roomURL(&url.URL{Scheme: "ws", Host: l.Addr()}, l.Room, "ws").String()
}

// RoomURL builds the websocket endpoint from a coordinator base URL such as
// http://host:port and a room id.
func RoomURL(base, room string) (string, error) {
	return coordinatorURL(base, room, "ws", "ws", "wss")
}

// SnapshotURL is the HTTP endpoint serving the room's actions.
func SnapshotURL(base, room string) (string, error) {
	return coordinatorURL(base, room, "snapshot", "http", "https")
}

func coordinatorURL(base, room, leaf, plain, secure string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse coordinator url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = plain
	case "https", "wss":
		u.Scheme = secure
	default:
		return "", fmt.Errorf("coordinator url %q: unsupported scheme", base)
	}
	return roomURL(u, room, leaf).String(), nil
}

// roomURL appends /rooms/<room>/<leaf> to base with the room escaped as a
// single path segment.
func roomURL(base *url.URL, room, leaf string) *url.URL {
	u := *base
	u.RawPath = strings.TrimSuffix(base.EscapedPath(), "/") + "/rooms/" + url.PathEscape(room) + "/" + leaf
	u.Path, _ = url.PathUnescape(u.RawPath)
	return &u
}
