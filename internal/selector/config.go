package selector

import (
	"fmt"
	"net/netip"

	"github.com/miekg/dns"
)

// Mapping is one hostname the managed block redirects.
// Sinkholed hosts are always pointed at HostsConfig.SinkholeAddr.
type Mapping struct {
	Host     string
	Sinkhole bool
}

// HostsConfig describes the managed block. It is built once and never mutated.
type HostsConfig struct {
	StartMarker string
	EndMarker   string

	// Primary is present whenever the private server is in use.
	Primary string
	// Secondary is only mapped in offline mode.
	Secondary string

	// Mappings follow the primary/secondary lines, in file order.
	Mappings     []Mapping
	SinkholeAddr string
}

// DefaultHostsConfig returns the block written for the NIKKE global client.
func DefaultHostsConfig() HostsConfig {
	return HostsConfig{
		StartMarker: "# begin ServerSelector entries",
		EndMarker:   "# end ServerSelector entries",
		Primary:     "global-lobby.nikke-kr.com",
		Secondary:   "cloud.nikke-kr.com",
		Mappings: []Mapping{
			{Host: "jp-lobby.nikke-kr.com"},
			{Host: "us-lobby.nikke-kr.com"},
			{Host: "kr-lobby.nikke-kr.com"},
			{Host: "sea-lobby.nikke-kr.com"},
			{Host: "hmt-lobby.nikke-kr.com"},
			{Host: "aws-na-dr.intlgame.com"},
			{Host: "sg-vas.intlgame.com"},
			{Host: "aws-na.intlgame.com"},
			{Host: "na-community.playerinfinite.com"},
			{Host: "common-web.intlgame.com"},
			{Host: "li-sg.intlgame.com"},
			{Host: "na.fleetlogd.com", Sinkhole: true},
			{Host: "www.jupiterlauncher.com"},
			{Host: "data-aws-na.intlgame.com"},
			{Host: "sentry.io", Sinkhole: true},
		},
		SinkholeAddr: "255.255.221.21",
	}
}

// ManagedHosts lists every hostname the block may contain, sentinels first.
// Lines mentioning any of them are purged on removal.
func (c HostsConfig) ManagedHosts() []string {
	hosts := make([]string, 0, len(c.Mappings)+2)
	hosts = append(hosts, c.Primary, c.Secondary)
	for _, m := range c.Mappings {
		hosts = append(hosts, m.Host)
	}
	return hosts
}

// Validate checks markers, hostnames and the sinkhole address.
func (c HostsConfig) Validate() error {
	if c.StartMarker == "" || c.EndMarker == "" {
		return fmt.Errorf("hosts block markers must not be empty")
	}
	if c.Primary == "" || c.Secondary == "" {
		return fmt.Errorf("sentinel hostnames must not be empty")
	}
	for _, h := range c.ManagedHosts() {
		if _, ok := dns.IsDomainName(h); !ok {
			return fmt.Errorf("invalid managed hostname %q", h)
		}
	}
	if _, err := netip.ParseAddr(c.SinkholeAddr); err != nil {
		return fmt.Errorf("invalid sinkhole address %q: %w", c.SinkholeAddr, err)
	}
	return nil
}
