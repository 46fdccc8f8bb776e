package net

import (
	"log/slog"
	"net"
)

// probeAddr is never contacted: dialing UDP only selects a route.
const probeAddr = "8.8.8.8:80"

// OutboundIP is the LAN address other participants can reach this
// coordinator on. It is what share links carry.
func OutboundIP() net.IP {
	if conn, err := net.Dial("udp", probeAddr); err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && !addr.IP.IsUnspecified() {
			return addr.IP
		}
	}
	if ip := firstLANAddr(); ip != nil {
		return ip
	}
	slog.Warn("no LAN address found, share link will use loopback", "component", "net")
	return net.IPv4(127, 0, 0, 1)
}

// firstLANAddr scans the interfaces for a non-loopback IPv4 address.
func firstLANAddr() net.IP {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if v4 := ipnet.IP.To4(); v4 != nil {
			return v4
		}
	}
	return nil
}

// LocalShareLink is the link for room on this machine's coordinator.
func LocalShareLink(port int, room string) ShareLink {
	return ShareLink{Host: OutboundIP().String(), Port: port, Room: room}
}
