package net

import (
	"fmt"
	"net"
)

// GetOutgoingIP finds the preferred local IP address for the host to share.
func GetOutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// no route out; fall back to the interfaces
		return firstIPv4().String()
	}
	defer conn.Close()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return firstIPv4().String()
}

// ServiceURL is the address other machines can use to reach a store
// listening on port.
func ServiceURL(port int) string {
	return fmt.Sprintf("http://%s", net.JoinHostPort(GetOutgoingIP(), fmt.Sprint(port)))
}

// PortOf extracts the port from a listen address such as ":8080".
func PortOf(listen string) (int, error) {
	_, port, err := net.SplitHostPort(listen)
	if err != nil {
		return 0, fmt.Errorf("parse listen address %q: %w", listen, err)
	}
	p, err := net.LookupPort("tcp", port)
	if err != nil {
		return 0, fmt.Errorf("parse listen address %q: %w", listen, err)
	}
	return p, nil
}
