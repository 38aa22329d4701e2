package asgen

import "testing"

func TestDigestRoundTrip(t *testing.T) {
	d := SumBytes([]byte("hello"), []byte(" "), []byte("world"))
	s := d.String()
	got, err := ParseDigest(s)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != s {
		t.Fatalf("round trip mismatch: %q != %q", got.String(), s)
	}
}

func TestSumBytesDeterministic(t *testing.T) {
	a := SumBytes([]byte("abc"), []byte("def"))
	b := SumBytes([]byte("abc"), []byte("def"))
	if a.String() != b.String() {
		t.Fatal("same inputs produced different digests")
	}
	c := SumBytes([]byte("abcdef"))
	if a.String() != c.String() {
		t.Fatal("concatenation should match pre-joined bytes")
	}
	d := SumBytes([]byte("def"), []byte("abc"))
	if a.String() == d.String() {
		t.Fatal("order should matter for the fingerprint")
	}
}
