package authzone

import (
	"sync"
	"time"

	"github.com/miekg/dns"
	"github.com/milodns/authzone/dnssec"
	"github.com/milodns/authzone/names"
)

// RecordMap indexes every RRset at a single owner (the exact-owner
// case) or every wildcard RRset in a zone (the wildcard case, see
// Zone.wild): a map from RR type to its ordered RRset, plus a
// parallel map from *covered* type to the RRSIGs signing it. It holds
// a non-owning back-reference to the Zone that owns it so on-the-fly
// signing can reach the zone signing key.
//
// Grounded on the teacher's ZoneData (Meyermagic-dns/zone.go): the
// same two-map shape, the same RRSIG-dispatch-by-TypeCovered rule in
// Insert, and the same embedded RWMutex for concurrent-safe reads
// against a single writer.
type RecordMap struct {
	mu   sync.RWMutex
	rrs  map[uint16][]dns.RR
	sigs map[uint16][]*dns.RRSIG
	zone *Zone
}

// NewRecordMap returns an empty RecordMap bound to zone.
func NewRecordMap(zone *Zone) *RecordMap {
	return &RecordMap{
		rrs:  make(map[uint16][]dns.RR),
		sigs: make(map[uint16][]*dns.RRSIG),
		zone: zone,
	}
}

// Insert appends rr to the RRset for its type. An RRSIG is instead
// appended to the signature index under the type it covers. A record
// identical to one already stored is not added a second time.
func (m *RecordMap) Insert(rr dns.RR) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sig, ok := rr.(*dns.RRSIG); ok {
		for _, s := range m.sigs[sig.TypeCovered] {
			if dns.IsDuplicate(s, sig) {
				return
			}
		}
		m.sigs[sig.TypeCovered] = append(m.sigs[sig.TypeCovered], sig)
		return
	}
	t := rr.Header().Rrtype
	for _, x := range m.rrs[t] {
		if dns.IsDuplicate(x, rr) {
			return
		}
	}
	m.rrs[t] = append(m.rrs[t], rr)
}

// Push is the central retrieval routine. It appends to out the RRset
// (with any covering RRSIGs) that answers (qname, qtype), applying
// CNAME precedence: unless the caller is already asking for CNAME, any
// stored CNAME RRset at this owner takes priority and is returned
// instead of qtype's own RRset (RFC 1912 §2.4 CNAME exclusivity,
// enforced here at read time per the teacher's own retrieval
// short-circuit, not at insert time).
func (m *RecordMap) Push(qname string, qtype uint16, out *[]dns.RR) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if qtype != dns.TypeCNAME {
		if cnames := m.filterMatches(qname, m.rrs[dns.TypeCNAME]); len(cnames) > 0 {
			*out = append(*out, cnames...)
			m.attachOrSign(qname, dns.TypeCNAME, cnames, out)
			return
		}
	}

	matches := m.filterMatches(qname, m.rrs[qtype])
	if len(matches) == 0 {
		return
	}
	*out = append(*out, matches...)
	m.attachOrSign(qname, qtype, matches, out)
}

// attachOrSign appends stored RRSIGs covering t, rewritten to qname
// when they came from a wildcard owner, or — if none are stored but
// the zone carries a zone signing key — signs emitted in place and
// appends the freshly synthesized RRSIG. This is what makes wildcard
// answers verifiable: a precomputed RRSIG cannot exist at every
// possible queried owner under a wildcard.
func (m *RecordMap) attachOrSign(qname string, t uint16, emitted []dns.RR, out *[]dns.RR) {
	if stored := m.sigs[t]; len(stored) > 0 {
		for _, s := range stored {
			clone := dns.Copy(s).(*dns.RRSIG)
			clone.Hdr.Name = qname
			*out = append(*out, clone)
		}
		return
	}
	if m.zone == nil || m.zone.zskkey == nil || m.zone.zskpriv == nil {
		return
	}
	now := time.Now()
	rrsig, err := dnssec.Sign(m.zone.zskkey, m.zone.zskpriv, emitted, now.Add(-5*time.Minute), now.Add(m.zone.signatureValidity()))
	if err != nil {
		m.zone.logf("on-the-fly signing failed for %s/%d: %v", qname, t, err)
		return
	}
	rrsig.Hdr.Name = qname
	*out = append(*out, rrsig)
}

// filterMatches keeps, from candidates, those whose owner matches
// qname: non-wildcard owners are assumed to already equal qname (they
// only ever arrive here via the exact-owner table, which is looked up
// by the literal query name — see DESIGN.md's open-question note);
// wildcard owners *.T match when T's labels, matched from the right,
// equal qname's corresponding rightmost labels and qname has strictly
// more labels than T (so "foo.T" matches, "T" itself does not).
// Matched wildcard RRs are cloned with their
// owner rewritten to qname.
func (m *RecordMap) filterMatches(qname string, candidates []dns.RR) []dns.RR {
	if len(candidates) == 0 {
		return nil
	}
	var out []dns.RR
	for _, rr := range candidates {
		owner := rr.Header().Name
		if !names.IsWildcard(owner) {
			out = append(out, rr)
			continue
		}
		base := owner[2:] // strip "*."
		if names.CountLabels(qname) <= names.CountLabels(base) {
			continue
		}
		if !names.IsSubdomain(base, qname) {
			continue
		}
		clone := dns.Copy(rr)
		clone.Header().Name = qname
		out = append(out, clone)
	}
	return out
}

// has reports whether the map holds any RRset of type t, ignoring
// wildcard matching and CNAME precedence. Zone.Has does not use it;
// it goes through Get instead.
func (m *RecordMap) has(t uint16) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rrs[t]) > 0
}

// types returns the set of RR types stored at this owner (RRSIGs,
// which live in the signature index, are not included).
func (m *RecordMap) types() []uint16 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]uint16, 0, len(m.rrs))
	for t := range m.rrs {
		out = append(out, t)
	}
	return out
}
