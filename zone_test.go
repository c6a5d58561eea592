package authzone

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRootFixture builds the root zone used by scenarios S1-S3 in
// SPEC_FULL.md §8: SOA, NS at ".", NS at "com.", A glue for both
// delegation targets, and an NSEC chain covering "." and "com.".
func newRootFixture(t *testing.T) *Zone {
	t.Helper()
	z, err := NewZone(".")
	require.NoError(t, err)

	records := []string{
		". 3600 IN SOA a.root-servers.net. nstld.verisign-grs.com. 2024010100 1800 900 604800 86400",
		". 3600 IN NS a.root-servers.net.",
		"com. 3600 IN NS a.gtld-servers.net.",
		"a.root-servers.net. 3600 IN A 198.41.0.4",
		"a.gtld-servers.net. 3600 IN A 192.5.6.30",
		". 3600 IN NSEC com. NS SOA RRSIG NSEC DNSKEY",
		"com. 3600 IN NSEC . NS DS RRSIG NSEC",
	}
	for _, s := range records {
		require.NoError(t, z.Insert(mustRR(t, s)))
	}
	return z
}

func TestScenarioS1Referral(t *testing.T) {
	z := newRootFixture(t)

	answer, authority, additional, aa, ok := z.Query("com.", dns.TypeNS)
	assert.False(t, aa)
	assert.True(t, ok)
	assert.Empty(t, answer)
	require.Len(t, authority, 1)
	assert.Equal(t, dns.TypeNS, authority[0].Header().Rrtype)
	assert.Equal(t, "com.", authority[0].Header().Name)
	require.Len(t, additional, 1)
	assert.Equal(t, "a.gtld-servers.net.", additional[0].Header().Name)
}

func TestScenarioS2NXDomainAtRoot(t *testing.T) {
	z := newRootFixture(t)

	msg := z.Resolve("example.invalid.", dns.TypeA)
	assert.False(t, msg.Authoritative)
	assert.Equal(t, dns.RcodeNameError, msg.Rcode)
	assert.Empty(t, msg.Answer)

	var sawSOA, sawComNSEC, sawRootNSEC int
	for _, rr := range msg.Ns {
		switch x := rr.(type) {
		case *dns.SOA:
			sawSOA++
		case *dns.NSEC:
			if x.Header().Name == "com." {
				sawComNSEC++
			} else if x.Header().Name == "." {
				sawRootNSEC++
			}
		}
	}
	assert.Equal(t, 1, sawSOA)
	assert.Equal(t, 1, sawComNSEC)
	assert.Equal(t, 1, sawRootNSEC)
}

func TestScenarioS3RootSOAWithGlue(t *testing.T) {
	z := newRootFixture(t)

	msg := z.Resolve(".", dns.TypeSOA)
	assert.True(t, msg.Authoritative)
	assert.Equal(t, dns.RcodeSuccess, msg.Rcode)
	require.Len(t, msg.Answer, 1)
	_, isSOA := msg.Answer[0].(*dns.SOA)
	assert.True(t, isSOA)

	foundGlue := false
	for _, rr := range msg.Extra {
		if rr.Header().Name == "a.root-servers.net." && rr.Header().Rrtype == dns.TypeA {
			foundGlue = true
		}
	}
	assert.True(t, foundGlue)
}

// exampleZSK generates a fresh ECDSA P-256 key and installs it as z's
// zone signing key, for scenarios that need on-the-fly signing.
func exampleZSK(t *testing.T, z *Zone) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	d := priv.D.Bytes()
	if len(d) < 32 {
		padded := make([]byte, 32)
		copy(padded[32-len(d):], d)
		d = padded
	}
	keyText := fmt.Sprintf("Private-key-format: v1.3\nAlgorithm: 13 (ECDSAP256SHA256)\nPrivateKey: %s\n",
		base64.StdEncoding.EncodeToString(d))
	require.NoError(t, z.SetZSKFromString(keyText))
}

func TestScenarioS4WildcardOnTheFlySigning(t *testing.T) {
	z, err := NewZone("example.")
	require.NoError(t, err)
	exampleZSK(t, z)
	require.NoError(t, z.Insert(mustRR(t, "*.example. 300 IN A 1.2.3.4")))

	answer := z.Get("foo.example.", dns.TypeA)
	require.Len(t, answer, 2)

	a, ok := answer[0].(*dns.A)
	require.True(t, ok)
	assert.Equal(t, "foo.example.", a.Header().Name)
	assert.Equal(t, "1.2.3.4", a.A.String())

	sig, ok := answer[1].(*dns.RRSIG)
	require.True(t, ok)
	assert.Equal(t, dns.TypeA, sig.TypeCovered)
	assert.Equal(t, "foo.example.", sig.Hdr.Name)
}

func TestScenarioS5CNAMEChaseToLocalTarget(t *testing.T) {
	z, err := NewZone("example.")
	require.NoError(t, err)
	require.NoError(t, z.Insert(mustRR(t, "a.example. 300 IN CNAME b.example.")))
	require.NoError(t, z.Insert(mustRR(t, "b.example. 300 IN A 192.0.2.9")))

	msg := z.Resolve("a.example.", dns.TypeA)
	assert.True(t, msg.Authoritative)
	require.Len(t, msg.Answer, 2)
	_, isCNAME := msg.Answer[0].(*dns.CNAME)
	assert.True(t, isCNAME)
	_, isA := msg.Answer[1].(*dns.A)
	assert.True(t, isA)
}

func TestScenarioS6CNAMEChaseFallsBackToSOA(t *testing.T) {
	z, err := NewZone("example.")
	require.NoError(t, err)
	require.NoError(t, z.Insert(mustRR(t, "example. 3600 IN SOA ns1.example. hostmaster.example. 1 1800 900 604800 86400")))
	require.NoError(t, z.Insert(mustRR(t, "a.example. 300 IN CNAME nx.other.")))

	answer, authority, _, aa, ok := z.Query("a.example.", dns.TypeA)
	assert.True(t, aa)
	assert.True(t, ok)
	require.Len(t, answer, 1)
	_, isCNAME := answer[0].(*dns.CNAME)
	assert.True(t, isCNAME)
	require.Len(t, authority, 1)
	_, isSOA := authority[0].(*dns.SOA)
	assert.True(t, isSOA)
}

func TestPropertyAuthoritativeNoData(t *testing.T) {
	z, err := NewZone("example.")
	require.NoError(t, err)
	require.NoError(t, z.Insert(mustRR(t, "example. 3600 IN SOA ns1.example. hostmaster.example. 1 1800 900 604800 86400")))
	require.NoError(t, z.Insert(mustRR(t, "example. 3600 IN NSEC a.example. SOA NS NSEC RRSIG")))

	msg := z.Resolve("example.", dns.TypeMX)
	assert.True(t, msg.Authoritative)
	assert.Equal(t, dns.RcodeSuccess, msg.Rcode)
	assert.Empty(t, msg.Answer)

	var sawSOA, sawNSEC bool
	for _, rr := range msg.Ns {
		switch rr.(type) {
		case *dns.SOA:
			sawSOA = true
		case *dns.NSEC:
			sawNSEC = true
		}
	}
	assert.True(t, sawSOA)
	assert.True(t, sawNSEC)
}

func TestPropertyCNAMEExclusivity(t *testing.T) {
	z, err := NewZone("example.")
	require.NoError(t, err)
	require.NoError(t, z.Insert(mustRR(t, "a.example. 300 IN CNAME b.example.")))
	// Insert another type at the same owner; CNAME exclusivity is
	// enforced at read time, not write time (SPEC_FULL.md §9).
	require.NoError(t, z.Insert(mustRR(t, "a.example. 300 IN TXT \"hello\"")))

	out := z.Get("a.example.", dns.TypeTXT)
	require.Len(t, out, 1)
	_, isCNAME := out[0].(*dns.CNAME)
	assert.True(t, isCNAME)
}

func TestPropertyIdempotentInsert(t *testing.T) {
	z, err := NewZone("example.")
	require.NoError(t, err)
	rr := mustRR(t, "www.example. 300 IN A 192.0.2.1")
	require.NoError(t, z.Insert(rr))
	require.NoError(t, z.Insert(dns.Copy(rr)))

	out := z.Get("www.example.", dns.TypeA)
	assert.Len(t, out, 1) // the second, identical RR is not stored again.

	nsec := mustRR(t, "www.example. 300 IN NSEC z.example. A NSEC")
	require.NoError(t, z.Insert(nsec))
	require.NoError(t, z.Insert(dns.Copy(nsec)))
	assert.Equal(t, 1, z.nsec.Len())
}

func TestInsertRejectsNilRecord(t *testing.T) {
	z, err := NewZone("example.")
	require.NoError(t, err)
	err = z.Insert(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewZoneDefaultsOriginToRoot(t *testing.T) {
	z, err := NewZone("")
	require.NoError(t, err)
	assert.Equal(t, ".", z.Origin())
}

func TestClearResetsRecordsButKeepsOrigin(t *testing.T) {
	z, err := NewZone("example.")
	require.NoError(t, err)
	require.NoError(t, z.Insert(mustRR(t, "www.example. 300 IN A 192.0.2.1")))
	z.Clear()

	assert.Equal(t, "example.", z.Origin())
	assert.False(t, z.Has("www.example.", dns.TypeA))
}
