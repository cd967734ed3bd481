package net

import (
	"fmt"
	"net"
	"strconv"

	"CircuiPlanner/internal/log"
)

// OutgoingIP is the local address other machines on the LAN should use.
// Without a route out it falls back to the first interface address.
func OutgoingIP() net.IP {
	if conn, err := net.Dial("udp", "8.8.8.8:80"); err == nil {
		defer conn.Close()
		return conn.LocalAddr().(*net.UDPAddr).IP
	}
	return firstIPv4()
}

// firstIPv4 returns the first non-loopback IPv4 of an interface that is up.
func firstIPv4() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	log.With("net").Warn("[NET] no suitable local IP found, using loopback")
	return net.IPv4(127, 0, 0, 1)
}

// ShareURL is the address viewers on the LAN use for a listener on addr.
func ShareURL(addr string) (string, error) {
	port, err := portOf(addr)
	if err != nil {
		return "", err
	}
	return "http://" + net.JoinHostPort(OutgoingIP().String(), strconv.Itoa(port)) + "/", nil
}

// portOf extracts the numeric port of a host:port listen address.
func portOf(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return 0, fmt.Errorf("invalid port in %q: %w", addr, err)
	}
	return port, nil
}
