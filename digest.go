package asgen

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
)

// SHA256 is the only hashing algorithm this module constructs digests
// with; fingerprints are content-derived and only ever compared for
// equality, so a single algorithm keeps gcids stable across runs.
const SHA256 = "sha256"

// Digest is the hash of some source bytes (a metainfo file, a desktop
// file, an icon, a screenshot), formatted as "<algo>:<hex>".
type Digest struct {
	algo     string
	checksum []byte
	repr     string
}

// Checksum returns the raw checksum bytes.
func (d Digest) Checksum() []byte { return d.checksum }

// Algorithm returns the digest's hash algorithm name.
func (d Digest) Algorithm() string { return d.algo }

// Hash returns a fresh instance of the hash algorithm used by d.
func (d Digest) Hash() hash.Hash {
	switch d.algo {
	case SHA256:
		return sha256.New()
	default:
		panic("Hash() called on an invalid Digest")
	}
}

func (d Digest) String() string { return d.repr }

// Hex returns the uppercase hex fingerprint used in a gcid's final
// path segment.
func (d Digest) Hex() string {
	return fmt.Sprintf("%X", d.checksum)
}

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	b := make([]byte, len(d.repr))
	copy(b, d.repr)
	return b, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(t []byte) error {
	i := bytes.IndexByte(t, ':')
	if i == -1 {
		return &DigestError{msg: "invalid digest format"}
	}
	d.algo = string(t[:i])
	t = t[i+1:]
	b := make([]byte, hex.DecodedLen(len(t)))
	if _, err := hex.Decode(b, t); err != nil {
		return &DigestError{msg: "unable to decode digest as hex", inner: err}
	}
	return d.setChecksum(b)
}

// DigestError is the concrete type backing errors from Digest's methods.
type DigestError struct {
	msg   string
	inner error
}

func (e *DigestError) Error() string { return e.msg }
func (e *DigestError) Unwrap() error { return e.inner }

func (d *Digest) setChecksum(b []byte) error {
	var sz int
	switch d.algo {
	case SHA256:
		sz = sha256.Size
	default:
		return &DigestError{msg: fmt.Sprintf("unknown algorithm %q", d.algo)}
	}
	if l := len(b); l != sz {
		return &DigestError{msg: fmt.Sprintf("bad checksum length: %d", l)}
	}
	el := hex.EncodedLen(sz)
	hl := len(d.algo) + 1
	sb := make([]byte, hl+el)
	copy(sb, d.algo)
	sb[len(d.algo)] = ':'
	hex.Encode(sb[hl:], b)
	d.checksum = b
	d.repr = string(sb)
	return nil
}

// NewDigest constructs a Digest from a raw checksum.
func NewDigest(algo string, sum []byte) (Digest, error) {
	d := Digest{algo: algo}
	return d, d.setChecksum(sum)
}

// ParseDigest parses a "<algo>:<hex>" string into a Digest.
func ParseDigest(s string) (Digest, error) {
	d := Digest{}
	return d, d.UnmarshalText([]byte(s))
}

// SumBytes returns the sha256 Digest of the concatenation of srcs, in
// order. This is the content-hash half of gcid construction (spec
// §3's "fingerprint = hash of the concatenation of all source bytes").
func SumBytes(srcs ...[]byte) Digest {
	h := sha256.New()
	for _, s := range srcs {
		h.Write(s)
	}
	d, err := NewDigest(SHA256, h.Sum(nil))
	if err != nil {
		panic(err) // h.Sum always returns the right size
	}
	return d
}
