package authzone

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHintsReturnsRootNSAndGlue(t *testing.T) {
	z, err := NewZone(".")
	require.NoError(t, err)

	ns, glue := z.GetHints()
	require.NotEmpty(t, ns)
	require.NotEmpty(t, glue)
	for _, rr := range ns {
		assert.Equal(t, dns.TypeNS, rr.Header().Rrtype)
		assert.Equal(t, ".", rr.Header().Name)
	}

	foundA := false
	for _, rr := range glue {
		if rr.Header().Rrtype == dns.TypeA {
			foundA = true
		}
	}
	assert.True(t, foundA)
}

func TestGetHintsIsIdempotentAcrossZones(t *testing.T) {
	z1, _ := NewZone(".")
	z2, _ := NewZone("example.")

	ns1, _ := z1.GetHints()
	ns2, _ := z2.GetHints()
	assert.Equal(t, len(ns1), len(ns2))
}
