// Package dnssec is the external DNSSEC collaborator the zone engine
// delegates to: decoding zone-signing private key material, building
// the matching DNSKEY record, and signing RRsets with RRSIG records.
// It is a thin layer over github.com/miekg/dns's own DNSSEC support;
// the private/public key algebra itself (RSA modulus/exponent
// reconstruction, ECDSA point derivation) is left to the standard
// library crypto packages, following the same division of labor the
// real github.com/miekg/dns package uses internally.
package dnssec

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"time"

	"github.com/miekg/dns"
)

// ErrKeyDecodeFailure is returned when DecodePrivate is handed
// malformed private key material.
var ErrKeyDecodeFailure = errors.New("dnssec: key decode failure")

var algorithmLine = regexp.MustCompile(`(?mi)^Algorithm:\s*(\d+)`)

// DecodePrivate parses the body of a BIND-style ".private" key file
// and returns the DNSSEC algorithm number together with the decoded
// private signing key. Only the algorithm number is read out of the
// text directly; the remaining key-specific fields (Modulus,
// PrivateKey, Prime1, ...) are parsed by github.com/miekg/dns's own
// (*dns.DNSKEY).NewPrivateKey, which this function drives by
// constructing a minimal DNSKEY stub carrying just the algorithm.
func DecodePrivate(s string) (uint8, crypto.Signer, error) {
	m := algorithmLine.FindStringSubmatch(s)
	if m == nil {
		return 0, nil, fmt.Errorf("%w: no Algorithm: line found", ErrKeyDecodeFailure)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 || n > 255 {
		return 0, nil, fmt.Errorf("%w: invalid algorithm number %q", ErrKeyDecodeFailure, m[1])
	}
	alg := uint8(n)

	stub := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Rrtype: dns.TypeDNSKEY},
		Algorithm: alg,
		Flags:     dns.ZONE,
		Protocol:  3,
	}
	priv, err := stub.NewPrivateKey(s)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrKeyDecodeFailure, err)
	}
	signer, ok := priv.(crypto.Signer)
	if !ok {
		return 0, nil, fmt.Errorf("%w: algorithm %d key does not implement crypto.Signer", ErrKeyDecodeFailure, alg)
	}
	return alg, signer, nil
}

// MakeDNSKEY builds the DNSKEY record for origin bound to priv, with
// the given algorithm and flags (conventionally dns.ZONE for a ZSK).
// The public key wire format is derived directly from priv's public
// key, per RFC 3110 (RSA) and RFC 6605 (ECDSA P-256/P-384).
func MakeDNSKEY(origin string, alg uint8, priv crypto.Signer, flags uint16) (*dns.DNSKEY, error) {
	pub, err := publicKeyWireFormat(alg, priv.Public())
	if err != nil {
		return nil, err
	}
	return &dns.DNSKEY{
		Hdr: dns.RR_Header{
			Name:   dns.Fqdn(origin),
			Rrtype: dns.TypeDNSKEY,
			Class:  dns.ClassINET,
			Ttl:    3600,
		},
		Flags:     flags,
		Protocol:  3,
		Algorithm: alg,
		PublicKey: pub,
	}, nil
}

func publicKeyWireFormat(alg uint8, pub crypto.PublicKey) (string, error) {
	switch alg {
	case dns.RSASHA1, dns.RSASHA256, dns.RSASHA512, dns.RSASHA1NSEC3SHA1:
		rk, ok := pub.(*rsa.PublicKey)
		if !ok {
			return "", fmt.Errorf("%w: algorithm %d expects an RSA public key", ErrKeyDecodeFailure, alg)
		}
		return base64.StdEncoding.EncodeToString(packRSAPublicKey(rk)), nil
	case dns.ECDSAP256SHA256:
		ek, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return "", fmt.Errorf("%w: algorithm %d expects an ECDSA public key", ErrKeyDecodeFailure, alg)
		}
		return base64.StdEncoding.EncodeToString(packECDSAPublicKey(ek, 32)), nil
	case dns.ECDSAP384SHA384:
		ek, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return "", fmt.Errorf("%w: algorithm %d expects an ECDSA public key", ErrKeyDecodeFailure, alg)
		}
		return base64.StdEncoding.EncodeToString(packECDSAPublicKey(ek, 48)), nil
	default:
		return "", fmt.Errorf("%w: unsupported algorithm %d", ErrKeyDecodeFailure, alg)
	}
}

// packRSAPublicKey encodes an RSA public key per RFC 3110: a length
// byte (or 0 followed by a two-byte length for exponents >= 256
// bytes), the exponent, then the modulus.
func packRSAPublicKey(pub *rsa.PublicKey) []byte {
	e := big.NewInt(int64(pub.E)).Bytes()
	n := pub.N.Bytes()
	var out []byte
	if len(e) < 256 {
		out = append(out, byte(len(e)))
	} else {
		out = append(out, 0, byte(len(e)>>8), byte(len(e)))
	}
	out = append(out, e...)
	out = append(out, n...)
	return out
}

// packECDSAPublicKey encodes an ECDSA public key per RFC 6605: the X
// and Y coordinates concatenated, each left-padded to size bytes.
func packECDSAPublicKey(pub *ecdsa.PublicKey, size int) []byte {
	out := make([]byte, 2*size)
	pub.X.FillBytes(out[:size])
	pub.Y.FillBytes(out[size:])
	return out
}

// Sign signs rrset with priv under dnskey, returning the RRSIG
// covering it. inception/expiration follow the validity window the
// caller computed (typically "now - a small clock-skew offset" and
// "now + a validity period"); Sign itself performs no time-based
// policy, matching the spec's model of a stateless signing
// collaborator.
func Sign(dnskey *dns.DNSKEY, priv crypto.Signer, rrset []dns.RR, inception, expiration time.Time) (*dns.RRSIG, error) {
	if len(rrset) == 0 {
		return nil, fmt.Errorf("dnssec: cannot sign an empty rrset")
	}
	rrsig := &dns.RRSIG{
		Hdr:        dns.RR_Header{Rrtype: dns.TypeRRSIG, Class: dns.ClassINET, Ttl: rrset[0].Header().Ttl},
		TypeCovered: rrset[0].Header().Rrtype,
		Algorithm:   dnskey.Algorithm,
		Labels:      uint8(dns.CountLabel(rrset[0].Header().Name)),
		OrigTtl:     rrset[0].Header().Ttl,
		Expiration:  uint32(expiration.Unix()),
		Inception:   uint32(inception.Unix()),
		KeyTag:      dnskey.KeyTag(),
		SignerName:  dnskey.Hdr.Name,
	}
	if err := rrsig.Sign(priv, rrset); err != nil {
		return nil, fmt.Errorf("dnssec: sign: %w", err)
	}
	return rrsig, nil
}
