package util

import (
	"fmt"
	"net"
	"net/netip"
)

// LookupIPFn is a var so tests can resolve without DNS.
var LookupIPFn = net.LookupIP

// ResolveServerIP accepts an IP address or a hostname and returns the address
// to write into the hosts file. Hostnames resolve to their first IPv4 address.
func ResolveServerIP(addr string) (string, error) {
	if ip, err := netip.ParseAddr(addr); err == nil {
		return ip.String(), nil
	}
	if addr == "" {
		return "", fmt.Errorf("server address is empty")
	}

	ips, err := LookupIPFn(addr)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", addr, err)
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	if len(ips) > 0 {
		return ips[0].String(), nil
	}
	return "", fmt.Errorf("no address found for %s", addr)
}
