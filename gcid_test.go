package asgen

import "testing"

func TestBuildGlobalID(t *testing.T) {
	cases := []struct {
		cid, hex, want string
	}{
		{"foobar.desktop", "DEADBEEF", "f/fo/foobar.desktop/DEADBEEF"},
		{"org.gnome.yelp.desktop", "DEADBEEF", "org/gnome/yelp.desktop/DEADBEEF"},
		{"io.sample.awesomeapp.sdk", "ABAD1DEA", "io/sample/awesomeapp.sdk/ABAD1DEA"},
	}
	for _, c := range cases {
		if got := BuildGlobalID(c.cid, c.hex); got != c.want {
			t.Errorf("BuildGlobalID(%q, %q) = %q, want %q", c.cid, c.hex, got, c.want)
		}
	}
}

func TestGlobalIDRoundTrip(t *testing.T) {
	cids := []string{
		"foobar.desktop",
		"org.gnome.yelp.desktop",
		"io.sample.awesomeapp.sdk",
		"org.kde.ark",
		"ab",
	}
	for _, cid := range cids {
		gcid := BuildGlobalID(cid, "CAFEBABE")
		if got := CIDFromGlobalID(gcid); got != cid {
			t.Errorf("CIDFromGlobalID(BuildGlobalID(%q)) = %q, want %q (gcid=%q)", cid, got, cid, gcid)
		}
	}
}
