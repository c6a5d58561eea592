// Package authzone implements an authoritative DNS zone: an in-memory
// index of resource records for one zone of authority that, given a
// query name and type, produces a fully assembled response —
// answer/authority/additional sections, the authoritative-answer
// flag, and NOERROR/NXDOMAIN — per RFC 1034/1035, with RFC 4034/4035
// NSEC denial-of-existence, RFC 4592 wildcard expansion, CNAME/DNAME
// chasing, delegation glue, and on-the-fly DNSSEC signing against a
// zone signing key.
//
// Wire encoding, master-file lexing, root-hints transport, and
// network I/O are not this package's concern: it builds on
// github.com/miekg/dns for record and message types and master-file
// parsing, and expects a caller (see cmd/authzonectl) to own the
// listener and any key files. FromFile is the one helper here that
// reads a zone file from disk.
package authzone

import (
	"crypto"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
	"github.com/miekg/radix"
	"github.com/milodns/authzone/dnssec"
	"github.com/milodns/authzone/names"
)

// Zone owns one zone of authority: its origin, the exact-owner record
// table, the single wildcard record map, the NSEC name list, and any
// zone signing key material.
//
// Storage shape is grounded directly on the teacher's Zone/ZoneData
// (Meyermagic-dns/zone.go): a *radix.Radix keyed by a reversed,
// lowercased form of the owner name so that an in-order walk visits
// owners in NSEC canonical order, confirmed independently by
// darkoperator-golang-dns's sibling fork. See DESIGN.md for why
// NameList (a conceptually different, smaller collection) is not
// radix-backed.
type Zone struct {
	mu sync.RWMutex

	origin string
	count  int // names.CountLabels(origin); 0 for the root zone

	table *radix.Radix // toRadixName(owner) -> *RecordMap
	wild  *RecordMap
	nsec  *NameList

	zskkey  *dns.DNSKEY
	zskpriv crypto.Signer

	validity time.Duration
	modTime  time.Time
	log      *slog.Logger
}

// NewZone creates an initialized, empty zone rooted at origin. An
// empty origin is treated as the root zone ".".
func NewZone(origin string) (*Zone, error) {
	if origin == "" {
		origin = "."
	}
	fq := dns.Fqdn(strings.ToLower(origin))
	if !dns.IsFqdn(fq) {
		return nil, newZoneError(ErrInvalidInput, origin)
	}
	z := &Zone{
		table:    radix.New(),
		nsec:     NewNameList(),
		validity: 4 * 7 * 24 * time.Hour, // 4 weeks, matching the teacher's DefaultSignatureConfig
		modTime:  time.Now().UTC(),
		log:      slog.Default(),
	}
	z.wild = NewRecordMap(z)
	z.setOriginLocked(fq)
	return z, nil
}

// SetOrigin reassigns the zone's origin. It does not migrate any
// records already inserted; it is meant for configuring an empty
// zone before the first Insert.
func (z *Zone) SetOrigin(origin string) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.setOriginLocked(dns.Fqdn(strings.ToLower(origin)))
}

func (z *Zone) setOriginLocked(origin string) {
	z.origin = origin
	z.count = names.CountLabels(origin)
}

// Origin returns the zone's canonical lowercase origin name.
func (z *Zone) Origin() string {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.origin
}

// SetLogger overrides the zone's diagnostic logger (default
// slog.Default()). See SPEC_FULL.md §10.3 for why log/slog rather than
// a third-party structured logger.
func (z *Zone) SetLogger(l *slog.Logger) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.log = l
}

func (z *Zone) logf(format string, args ...interface{}) {
	z.mu.RLock()
	l := z.log
	z.mu.RUnlock()
	if l != nil {
		l.Warn(fmt.Sprintf(format, args...))
	}
}

func (z *Zone) signatureValidity() time.Duration {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.validity
}

// SetZSKFromString decodes s (a BIND-style private key file body) via
// the dnssec package and installs the resulting key pair as the
// zone's signing key, synthesizing the matching DNSKEY record for the
// zone's origin.
func (z *Zone) SetZSKFromString(s string) error {
	alg, priv, err := dnssec.DecodePrivate(s)
	if err != nil {
		return err
	}
	z.mu.Lock()
	origin := z.origin
	z.mu.Unlock()

	dnskey, err := dnssec.MakeDNSKEY(origin, alg, priv, dns.ZONE)
	if err != nil {
		return err
	}
	z.mu.Lock()
	z.zskkey = dnskey
	z.zskpriv = priv
	z.mu.Unlock()
	return nil
}

// parseZoneText lexes a standard master-file zone body with
// dns.ZoneParser and returns every record it contains. filename is
// used only for parser error messages.
func parseZoneText(text, origin, filename string) ([]dns.RR, error) {
	zp := dns.NewZoneParser(strings.NewReader(text), dns.Fqdn(origin), filename)
	var rrs []dns.RR
	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		rrs = append(rrs, rr)
	}
	if err := zp.Err(); err != nil {
		return nil, newZoneError(ErrInvalidInput, err.Error())
	}
	return rrs, nil
}

// FromString builds a new Zone rooted at origin from the master-file
// text in zone. file is used only to annotate parser error messages.
// Insert registers each NSEC owner in the NSEC name list as usual;
// once every record is in, the list is rebuilt in one pass with
// NameList.Load from the full set of NSEC owners.
func FromString(origin, zone, file string) (*Zone, error) {
	z, err := NewZone(origin)
	if err != nil {
		return nil, err
	}
	rrs, err := parseZoneText(zone, origin, file)
	if err != nil {
		return nil, err
	}
	var nsecOwners []string
	for _, rr := range rrs {
		if err := z.Insert(rr); err != nil {
			return nil, err
		}
		if rr.Header().Rrtype == dns.TypeNSEC {
			nsecOwners = append(nsecOwners, names.Canonicalize(dns.Copy(rr)).Header().Name)
		}
	}
	if len(nsecOwners) > 0 {
		z.nsec.Load(nsecOwners)
	}
	return z, nil
}

// FromFile reads path and delegates to FromString.
func FromFile(origin, path string) (*Zone, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, newZoneError(ErrInvalidInput, path)
	}
	return FromString(origin, string(raw), path)
}

// toRadixName reverses and lowercases a domain name, label by label,
// so storing it in the radix tree preserves NSEC canonical ordering
// on an in-order walk. Ported verbatim in spirit from the teacher
// (Meyermagic-dns/zone.go's toRadixName), which credits the idea to
// NSD.
func toRadixName(d string) string {
	if d == "" || d == "." {
		return "."
	}
	if d[len(d)-1] != '.' {
		d = d + "."
	}
	var s string
	lastdot := 0
	var lastbyte, lastlastbyte byte
	for i := 0; i < len(d); i++ {
		if d[i] == '.' && (lastbyte != '\\' || lastlastbyte == '\\') {
			s = d[lastdot:i] + "." + s
			lastdot = i + 1
			continue
		}
		lastlastbyte = lastbyte
		lastbyte = d[i]
	}
	return "." + strings.ToLower(s[:len(s)-1])
}

// Insert deep-clones and canonicalizes rr, rejects it if its owner is
// out of zone (A/AAAA excepted, since those may be delegation glue),
// and indexes it: wildcard owners go to the zone's single wildcard
// RecordMap, all other owners to their own entry in the exact-owner
// table. NSEC records additionally register their owner in the NSEC
// name list.
func (z *Zone) Insert(rr dns.RR) error {
	if rr == nil || rr.Header() == nil {
		return newZoneError(ErrInvalidInput, "<nil>")
	}
	clone := names.Canonicalize(dns.Copy(rr))
	owner := clone.Header().Name
	t := clone.Header().Rrtype

	z.mu.RLock()
	origin := z.origin
	z.mu.RUnlock()

	if t != dns.TypeA && t != dns.TypeAAAA && !names.IsSubdomain(origin, owner) {
		return newZoneError(ErrOutOfZone, owner)
	}

	if names.IsWildcard(owner) {
		z.wild.Insert(clone)
	} else {
		z.recordMapFor(owner).Insert(clone)
	}

	if t == dns.TypeNSEC {
		z.nsec.Insert(owner)
	}
	return nil
}

// recordMapFor returns the exact-owner RecordMap for owner, creating
// it on first use.
func (z *Zone) recordMapFor(owner string) *RecordMap {
	key := toRadixName(owner)

	z.mu.Lock()
	defer z.mu.Unlock()
	if node, exact := z.table.Find(key); exact {
		return node.Value.(*RecordMap)
	}
	rm := NewRecordMap(z)
	z.table.Insert(key, rm)
	return rm
}

// Push looks up the exact-owner RecordMap for name; if present it
// delegates retrieval there, otherwise it falls back to the zone's
// wildcard RecordMap.
func (z *Zone) Push(name string, qtype uint16, out *[]dns.RR) {
	key := toRadixName(name)

	z.mu.RLock()
	node, exact := z.table.Find(key)
	z.mu.RUnlock()

	if exact {
		node.Value.(*RecordMap).Push(name, qtype, out)
		return
	}
	z.wild.Push(name, qtype, out)
}

// Get returns the RRset (with any signatures) answering (name, type).
func (z *Zone) Get(name string, qtype uint16) []dns.RR {
	var out []dns.RR
	z.Push(name, qtype, &out)
	return out
}

// Has reports whether Get(name, type) would return anything.
func (z *Zone) Has(name string, qtype uint16) bool {
	return len(z.Get(name, qtype)) > 0
}

// Glue appends address records for target into out: both A and AAAA
// when qtype is zero, otherwise just qtype. If nothing was appended
// and authorityOut is non-nil, the zone's own SOA is appended to
// authorityOut instead — RFC 1034 §4.3.2 case 3c, an authoritative
// no-data assertion standing in for an unresolved glue target.
func (z *Zone) Glue(target string, out *[]dns.RR, qtype uint16, authorityOut *[]dns.RR) {
	before := len(*out)
	if qtype == 0 {
		z.Push(target, dns.TypeA, out)
		z.Push(target, dns.TypeAAAA, out)
	} else {
		z.Push(target, qtype, out)
	}
	if len(*out) == before && authorityOut != nil {
		z.mu.RLock()
		origin := z.origin
		z.mu.RUnlock()
		z.Push(origin, dns.TypeSOA, authorityOut)
	}
}

// Find is the local answer pass: it retrieves (name, type) and, for
// each returned record, chases any material a complete answer needs —
// CNAME/DNAME targets under the original qtype (with an authority-
// section SOA fallback if the target can't be resolved locally), NS
// targets' glue, SOA MNAME glue, MX exchanger glue, SRV target glue.
// It returns the resulting (answer, additional, authority) triple.
func (z *Zone) Find(name string, qtype uint16) (answer, additional, authority []dns.RR) {
	answer = z.Get(name, qtype)

	// Indexed, not ranged: CNAME/DNAME chasing appends to answer while
	// walking it, and a multi-hop chain must revisit the newly
	// appended hop.
	for i := 0; i < len(answer); i++ {
		rr := answer[i]
		switch x := rr.(type) {
		case *dns.CNAME:
			z.Glue(x.Target, &answer, qtype, &authority)
		case *dns.DNAME:
			z.Glue(x.Target, &answer, qtype, &authority)
		case *dns.NS:
			z.Glue(x.Ns, &additional, 0, nil)
		case *dns.SOA:
			z.Glue(x.Ns, &additional, 0, nil)
		case *dns.MX:
			z.Glue(x.Mx, &additional, 0, nil)
		case *dns.SRV:
			z.Glue(x.Target, &additional, 0, nil)
		}
	}
	return answer, additional, authority
}

// authoritative reports whether the rightmost origin-label-count
// labels of name equal the origin. For a non-root zone that holds for
// every name at or below the origin, including names below a
// delegation; only for the root zone does it separate the origin
// itself from names below its delegations.
//
// DECIDED open question (see DESIGN.md): the distilled rule "zone :=
// suffix(name, origin-label-count); authoritative := zone == origin"
// degenerates for the root zone, whose label count is 0 — a 0-label
// suffix of any name is always ".", making every query spuriously
// authoritative. This implementation uses origin-label-count bumped
// to 1 only for this comparison (never for the delegation-child
// computation in Query, which needs the true, unbumped count). For
// the root zone this reduces to "name == origin", which is exactly
// the intended semantics: the root zone is authoritative only for "."
// itself, never for anything it merely holds a delegation record for.
func (z *Zone) authoritative(name string) bool {
	z.mu.RLock()
	n, origin := z.count, z.origin
	z.mu.RUnlock()
	if n == 0 {
		n = 1
	}
	return names.Suffix(name, n) == origin
}

// Query is the core resolution state machine: given (name, type) it
// returns the three response sections plus the authoritative-answer
// and "found something" flags, without assembling a *dns.Msg (see
// Resolve for that).
func (z *Zone) Query(name string, qtype uint16) (answer, authority, additional []dns.RR, aa bool, ok bool) {
	name = dns.Fqdn(strings.ToLower(name))
	answer, additional, authority = z.Find(name, qtype)
	auth := z.authoritative(name)

	if len(answer) > 0 {
		if !auth {
			if qtype == dns.TypeNS {
				var ds []dns.RR
				z.Push(name, dns.TypeDS, &ds)
				return ds, answer, additional, false, true
			}
			return nil, answer, additional, false, true
		}
		return answer, authority, additional, true, true
	}

	if auth {
		var nodata []dns.RR
		z.mu.RLock()
		origin := z.origin
		z.mu.RUnlock()
		z.Push(origin, dns.TypeSOA, &nodata)
		z.proveNoData(&nodata)
		return nil, nodata, nil, true, false
	}

	z.mu.RLock()
	rawCount, origin := z.count, z.origin
	z.mu.RUnlock()
	child := names.Suffix(name, rawCount+1)

	nsAnswer, nsAdditional, _ := z.Find(child, dns.TypeNS)
	if len(nsAnswer) > 0 {
		var ds []dns.RR
		z.Push(child, dns.TypeDS, &ds)
		return nil, append(append([]dns.RR{}, nsAnswer...), ds...), nsAdditional, false, true
	}

	if origin == "." {
		var nx []dns.RR
		z.Push(origin, dns.TypeSOA, &nx)
		z.proveNameError(name, &nx)
		return nil, nx, nil, false, false
	}
	return nil, nil, nil, false, false
}

// Resolve is the public entry point: it lowercases name, maps ANY to
// NS (discouraging ANY-amplification, a deliberate policy choice kept
// from the distilled spec), runs Query, and assembles a *dns.Msg with
// the AA flag and NOERROR/NXDOMAIN response code set accordingly.
func (z *Zone) Resolve(name string, qtype uint16) *dns.Msg {
	name = dns.Fqdn(strings.ToLower(name))
	if qtype == dns.TypeANY {
		qtype = dns.TypeNS
	}
	answer, authority, additional, aa, ok := z.Query(name, qtype)

	msg := new(dns.Msg)
	msg.Authoritative = aa
	if !aa && !ok {
		msg.Rcode = dns.RcodeNameError
	} else {
		msg.Rcode = dns.RcodeSuccess
	}
	msg.Answer = answer
	msg.Ns = authority
	msg.Extra = additional
	return msg
}

// GetHints returns the IANA root NS set and accompanying A/AAAA glue
// from the process-wide root-hints cache (see roothints.go), lazily
// parsed on first call. It is independent of this zone's own content;
// it exists so a server can answer priming queries or seed an
// iterative resolver's starting point without shipping its own copy
// of the root hints.
func (z *Zone) GetHints() (ns []dns.RR, glue []dns.RR) {
	return rootHints()
}

// proveNoData appends the origin's own NSEC record to authority,
// proving no RRset of the queried type exists at an otherwise-present
// name.
func (z *Zone) proveNoData(authority *[]dns.RR) {
	z.mu.RLock()
	origin := z.origin
	z.mu.RUnlock()
	z.Push(origin, dns.TypeNSEC, authority)
}

// proveNameError appends the NSEC owned by the canonical predecessor
// of qname (if the zone has one), then the origin's own NSEC, proving
// that no name between them — and so not qname itself — exists.
func (z *Zone) proveNameError(qname string, authority *[]dns.RR) {
	if lower, ok, err := z.nsec.Lower(qname); err == nil && ok {
		z.Push(lower, dns.TypeNSEC, authority)
	}
	z.mu.RLock()
	origin := z.origin
	z.mu.RUnlock()
	z.Push(origin, dns.TypeNSEC, authority)
}

// Clear resets the zone to empty: no records, no NSEC names, and no
// wildcard entries. The origin and signing key, if any, are
// unaffected; construct a new Zone to reset everything.
func (z *Zone) Clear() {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.table = radix.New()
	z.wild = NewRecordMap(z)
	z.nsec.Clear()
	z.modTime = time.Now().UTC()
}

// ClearRecords is an alias for Clear, named to match the exposed
// surface described in the external interface list.
func (z *Zone) ClearRecords() {
	z.Clear()
}

// DumpRow is one line of Zone.Dump's flattened view of a zone's
// contents.
type DumpRow struct {
	Owner string
	TTL   uint32
	Type  string
	Data  string
}

// Dump walks the exact-owner table in canonical NSEC order, followed
// by the zone's wildcard entries, and flattens every stored record
// into a DumpRow. It exists purely for operator inspection (see
// cmd/authzonectl's "dump" subcommand and SPEC_FULL.md §10.8); it does
// not participate in resolution.
func (z *Zone) Dump() []DumpRow {
	var rows []DumpRow
	add := func(rm *RecordMap) {
		rm.mu.RLock()
		defer rm.mu.RUnlock()
		for _, rrset := range rm.rrs {
			for _, rr := range rrset {
				rows = append(rows, DumpRow{
					Owner: rr.Header().Name,
					TTL:   rr.Header().Ttl,
					Type:  dns.TypeToString[rr.Header().Rrtype],
					Data:  rr.String(),
				})
			}
		}
		for _, sigset := range rm.sigs {
			for _, sig := range sigset {
				rows = append(rows, DumpRow{
					Owner: sig.Hdr.Name,
					TTL:   sig.Hdr.Ttl,
					Type:  "RRSIG",
					Data:  sig.String(),
				})
			}
		}
	}

	z.mu.RLock()
	table := z.table
	wild := z.wild
	z.mu.RUnlock()

	table.NextDo(func(v interface{}) {
		add(v.(*RecordMap))
	})
	add(wild)
	return rows
}
