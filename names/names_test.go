package names

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
)

func TestCompareCanonicalOrder(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{".", ".", 0},
		{"com.", ".", 1},
		{"a.com.", "b.com.", -1},
		{"example.com.", "EXAMPLE.COM.", 0},
		{"a.example.com.", "example.com.", 1},
		{"com.", "net.", -1},
	}
	for _, c := range cases {
		got := Compare(c.a, c.b)
		switch {
		case c.want < 0:
			assert.Negative(t, got, "Compare(%q, %q)", c.a, c.b)
		case c.want > 0:
			assert.Positive(t, got, "Compare(%q, %q)", c.a, c.b)
		default:
			assert.Zero(t, got, "Compare(%q, %q)", c.a, c.b)
		}
	}
}

func TestSuffix(t *testing.T) {
	assert.Equal(t, "com.", Suffix("www.example.com.", 1))
	assert.Equal(t, "example.com.", Suffix("www.example.com.", 2))
	assert.Equal(t, "www.example.com.", Suffix("www.example.com.", 5))
	assert.Equal(t, ".", Suffix(".", 1))
}

func TestIsWildcard(t *testing.T) {
	assert.True(t, IsWildcard("*.example.com."))
	assert.False(t, IsWildcard("example.com."))
	assert.False(t, IsWildcard("*"))
}

func TestIsSubdomain(t *testing.T) {
	assert.True(t, IsSubdomain("example.com.", "www.example.com."))
	assert.True(t, IsSubdomain("example.com.", "example.com."))
	assert.False(t, IsSubdomain("example.com.", "example.net."))
}

func TestCanonicalizeLowercasesOwnerAndEmbeddedNames(t *testing.T) {
	rr, err := dns.NewRR("WWW.Example.COM. 300 IN CNAME Target.EXAMPLE.com.")
	if err != nil {
		t.Fatalf("NewRR: %v", err)
	}
	Canonicalize(rr)
	cname := rr.(*dns.CNAME)
	assert.Equal(t, "www.example.com.", cname.Hdr.Name)
	assert.Equal(t, "target.example.com.", cname.Target)
}
