// Package net advertises and discovers the whiteboard store on the local
// network.
package net

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_sketchive._tcp"

// ErrNoService is returned by Browse when nothing answered in time.
var ErrNoService = errors.New("no whiteboard store found on the local network")

// Advertise announces a store listening on port. Shut the returned server
// down to withdraw it.
func Advertise(port int, logger *slog.Logger) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	info := []string{"sketchive whiteboard store", "path=/"}
	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	if logger != nil {
		logger.Info("advertising store", "service", ServiceType, "host", host, "port", port)
	}
	return server, nil
}

// Browse looks for an advertised store and returns the base URL of the first
// one that answers.
func Browse(ctx context.Context, timeout time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	done := make(chan error, 1)
	go func() {
		done <- mdns.Query(params)
	}()

	for {
		select {
		case e := <-entries:
			if url, ok := entryURL(e); ok {
				return url, nil
			}
		case err := <-done:
			// the query may have delivered entries just before returning
			for {
				select {
				case e := <-entries:
					if url, ok := entryURL(e); ok {
						return url, nil
					}
				default:
					if err != nil {
						return "", fmt.Errorf("mdns query: %w", err)
					}
					return "", ErrNoService
				}
			}
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func entryURL(e *mdns.ServiceEntry) (string, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return "", false
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port))), true
}

// firstIPv4 returns the first address of an interface that is up and not a
// loopback.
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
	return net.IPv4(127, 0, 0, 1)
}
