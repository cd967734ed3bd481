package net

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"

	"CircuiPlanner/internal/log"
	"CircuiPlanner/internal/state"
)

const serviceType = "_circuiplanner._tcp"

// Peer is an export server found on the LAN.
type Peer struct {
	Name    string
	Addr    string
	Session string
}

func (p Peer) URL() string {
	return "http://" + p.Addr + "/"
}

func newService(instance string, port int, ips []net.IP, info []string) (*mdns.MDNSService, error) {
	service, err := mdns.NewMDNSService(instance, serviceType, "", "", port, ips, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	return service, nil
}

// Advertise announces the export server listening on port. Shut the
// returned server down to withdraw the announcement.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	info := []string{"CircuiPlanner", "session=" + state.SessionID()}
	service, err := newService(host, port, []net.IP{firstIPv4()}, info)
	if err != nil {
		return nil, err
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	log.With("net").Infof("[NET] advertising %s on port %d", serviceType, port)
	return server, nil
}

// Browse queries the LAN for export servers for timeout and reports each
// answer to found.
func Browse(timeout time.Duration, found func(Peer)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if p, ok := peerOf(e); ok {
				found(p)
			}
		}
	}()

	err := mdns.Query(&mdns.QueryParam{
		Service: serviceType,
		Domain:  "local",
		Timeout: timeout,
		Entries: entries,
	})
	close(entries)
	<-done
	if err != nil {
		return fmt.Errorf("mDNS query failed: %w", err)
	}
	return nil
}

func peerOf(e *mdns.ServiceEntry) (Peer, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Peer{}, false
	}
	p := Peer{
		Name: strings.TrimSuffix(e.Name, "."+serviceType+".local."),
		Addr: fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port),
	}
	for _, field := range e.InfoFields {
		if v, ok := strings.CutPrefix(field, "session="); ok {
			p.Session = v
		}
	}
	return p, true
}
