package authzone

import (
	"strings"
	"sync"

	"github.com/miekg/dns"
)

// compiledInRootHints is the IANA root server hints, adapted from
// johanix-tdns/tdns/cache/roothints.go's CompiledInRootHints constant
// (itself a standard zone-file rendering of the published root hints).
// It backs Zone.GetHints so a server embedding this package never
// needs to ship its own copy.
const compiledInRootHints = `
.                       3600000  IN  NS    a.root-servers.net.
.                       3600000  IN  NS    b.root-servers.net.
.                       3600000  IN  NS    c.root-servers.net.
.                       3600000  IN  NS    d.root-servers.net.
.                       3600000  IN  NS    e.root-servers.net.
.                       3600000  IN  NS    f.root-servers.net.
.                       3600000  IN  NS    g.root-servers.net.
.                       3600000  IN  NS    h.root-servers.net.
.                       3600000  IN  NS    i.root-servers.net.
.                       3600000  IN  NS    j.root-servers.net.
.                       3600000  IN  NS    k.root-servers.net.
.                       3600000  IN  NS    l.root-servers.net.
.                       3600000  IN  NS    m.root-servers.net.
a.root-servers.net.     3600000  IN  A     198.41.0.4
a.root-servers.net.     3600000  IN  AAAA  2001:503:ba3e::2:30
b.root-servers.net.     3600000  IN  A     170.247.170.2
b.root-servers.net.     3600000  IN  AAAA  2801:1b8:10::b
c.root-servers.net.     3600000  IN  A     192.33.4.12
c.root-servers.net.     3600000  IN  AAAA  2001:500:2::c
d.root-servers.net.     3600000  IN  A     199.7.91.13
d.root-servers.net.     3600000  IN  AAAA  2001:500:2d::d
e.root-servers.net.     3600000  IN  A     192.203.230.10
e.root-servers.net.     3600000  IN  AAAA  2001:500:a8::e
f.root-servers.net.     3600000  IN  A     192.5.5.241
f.root-servers.net.     3600000  IN  AAAA  2001:500:2f::f
g.root-servers.net.     3600000  IN  A     192.112.36.4
g.root-servers.net.     3600000  IN  AAAA  2001:500:12::d0d
h.root-servers.net.     3600000  IN  A     198.97.190.53
h.root-servers.net.     3600000  IN  AAAA  2001:500:1::53
i.root-servers.net.     3600000  IN  A     192.36.148.17
i.root-servers.net.     3600000  IN  AAAA  2001:7fe::53
j.root-servers.net.     3600000  IN  A     192.58.128.30
j.root-servers.net.     3600000  IN  AAAA  2001:503:c27::2:30
k.root-servers.net.     3600000  IN  A     193.0.14.129
k.root-servers.net.     3600000  IN  AAAA  2001:7fd::1
l.root-servers.net.     3600000  IN  A     199.7.83.42
l.root-servers.net.     3600000  IN  AAAA  2001:500:9f::42
m.root-servers.net.     3600000  IN  A     202.12.27.33
m.root-servers.net.     3600000  IN  AAAA  2001:dc3::35
`

var (
	rootHintsOnce sync.Once
	rootHintsNS   []dns.RR
	rootHintsGlue []dns.RR
)

// rootHints is the zone-wide, process-wide lazily initialized cache
// described in SPEC_FULL.md §5 — the only shared mutable state outside
// a Zone instance. compiledInRootHints is parsed once, under
// sync.Once: concurrent first callers wait for that single parse and
// then all see the same slices.
func rootHints() ([]dns.RR, []dns.RR) {
	rootHintsOnce.Do(func() {
		zp := dns.NewZoneParser(strings.NewReader(compiledInRootHints), ".", "roothints")
		for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
			if rr.Header().Rrtype == dns.TypeNS {
				rootHintsNS = append(rootHintsNS, rr)
			} else {
				rootHintsGlue = append(rootHintsGlue, rr)
			}
		}
		if err := zp.Err(); err != nil {
			rootHintsNS = nil
			rootHintsGlue = nil
		}
	})
	return rootHintsNS, rootHintsGlue
}
