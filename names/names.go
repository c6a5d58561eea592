// Package names collects the FQDN and canonical-ordering helpers the
// zone engine needs on top of github.com/miekg/dns: label counting,
// suffix selection by label count, canonical comparison, and the
// owner/embedded-name canonicalization applied to every record on
// insert.
package names

import (
	"strings"

	"github.com/miekg/dns"
)

// Equal reports whether a and b name the same owner once both are
// lowercased. It does not require either argument to be fully
// qualified.
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}

// CountLabels returns the number of labels in name, the root name "."
// counting as zero, mirroring dns.CountLabel.
func CountLabels(name string) int {
	return dns.CountLabel(name)
}

// Split breaks name into its labels, left to right, e.g.
// "www.example.com." -> ["www", "example", "com"].
func Split(name string) []string {
	idx := dns.Split(name)
	labels := make([]string, 0, len(idx))
	for i, start := range idx {
		end := len(name) - 1 // strip trailing dot
		if i+1 < len(idx) {
			end = idx[i+1] - 1
		}
		labels = append(labels, name[start:end])
	}
	return labels
}

// Suffix returns the rightmost n labels of name as an FQDN, the
// selector used throughout the query algorithm to cut a name down to
// "the zone it would live in" or "one label below the origin". If name
// has fewer than n labels, name itself (already an FQDN) is returned
// unchanged — matching the root-zone degenerate case relied on by
// the query state machine (see DESIGN.md).
func Suffix(name string, n int) string {
	name = dns.Fqdn(strings.ToLower(name))
	if n <= 0 {
		return "."
	}
	labels := dns.Split(name)
	if len(labels) <= n {
		return name
	}
	return name[labels[len(labels)-n]:]
}

// IsSubdomain reports whether child lies within parent's tree
// (child == parent counts as within).
func IsSubdomain(parent, child string) bool {
	return dns.IsSubDomain(dns.Fqdn(parent), dns.Fqdn(child))
}

// IsWildcard reports whether name's leftmost label is the single byte
// "*".
func IsWildcard(name string) bool {
	return len(name) > 1 && name[0] == '*' && name[1] == '.'
}

// Compare orders two names under DNS canonical order: label by label
// from the rightmost (TLD) label toward the leftmost, bytewise
// unsigned comparison of the lowercased label bytes, shorter-name-is-
// smaller on a strict prefix relationship. It returns a negative
// number, zero, or a positive number as a < b, a == b, or a > b.
func Compare(a, b string) int {
	la := Split(strings.ToLower(dns.Fqdn(a)))
	lb := Split(strings.ToLower(dns.Fqdn(b)))
	i, j := len(la)-1, len(lb)-1
	for i >= 0 && j >= 0 {
		if c := strings.Compare(la[i], lb[j]); c != 0 {
			return c
		}
		i--
		j--
	}
	switch {
	case i < 0 && j < 0:
		return 0
	case i < 0:
		return -1
	default:
		return 1
	}
}

// Canonicalize lowercases rr's owner name in place and, for record
// types that embed another domain name in their rdata, lowercases
// that embedded name too (CNAME/DNAME/NS targets, SOA's two names,
// MX's exchanger, SRV's target). It returns rr for chaining.
func Canonicalize(rr dns.RR) dns.RR {
	h := rr.Header()
	h.Name = strings.ToLower(h.Name)
	switch x := rr.(type) {
	case *dns.CNAME:
		x.Target = strings.ToLower(x.Target)
	case *dns.DNAME:
		x.Target = strings.ToLower(x.Target)
	case *dns.NS:
		x.Ns = strings.ToLower(x.Ns)
	case *dns.SOA:
		x.Ns = strings.ToLower(x.Ns)
		x.Mbox = strings.ToLower(x.Mbox)
	case *dns.MX:
		x.Mx = strings.ToLower(x.Mx)
	case *dns.SRV:
		x.Target = strings.ToLower(x.Target)
	}
	return rr
}
