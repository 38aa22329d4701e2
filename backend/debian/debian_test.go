package debian

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"
	"testing"
)

const samplePackagesIndex = `Package: foobar
Version: 1.0-1
Architecture: amd64
Maintainer: Someone <someone@example.org>
Filename: pool/main/f/foobar/foobar_1.0-1_amd64.deb

Package: bazqux
Version: 2.0-1
Architecture: amd64
Maintainer: Someone Else <else@example.org>
Filename: pool/main/b/bazqux/bazqux_2.0-1_amd64.deb
`

func TestParsePackagesIndex(t *testing.T) {
	stanzas, err := ParsePackagesIndex(strings.NewReader(samplePackagesIndex))
	if err != nil {
		t.Fatal(err)
	}
	if len(stanzas) != 2 {
		t.Fatalf("stanzas = %d, want 2", len(stanzas))
	}
	if stanzas[0].Name != "foobar" || stanzas[0].Version != "1.0-1" {
		t.Errorf("stanza[0] = %+v", stanzas[0])
	}
	if stanzas[1].Name != "bazqux" {
		t.Errorf("stanza[1] = %+v", stanzas[1])
	}
}

// buildFakeDeb constructs a minimal ar(1) archive with one
// "data.tar" member containing one regular file per entry of files, mimicking the
// structure of a real .deb package closely enough for extractDataTar.
func buildFakeDeb(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var dataTar bytes.Buffer
	tw := tar.NewWriter(&dataTar)
	for name, content := range files {
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	var ar bytes.Buffer
	ar.WriteString("!<arch>\n")
	writeArMember(&ar, "data.tar", dataTar.Bytes())
	return ar.Bytes()
}

func writeArMember(w *bytes.Buffer, name string, content []byte) {
	hdr := make([]byte, 60)
	copy(hdr[0:16], padRight(name, 16))
	copy(hdr[48:58], padRight(strconv.Itoa(len(content)), 10))
	w.Write(hdr)
	w.Write(content)
	if len(content)%2 != 0 {
		w.WriteByte('\n')
	}
}

func padRight(s string, n int) string {
	for len(s) < n {
		s += " "
	}
	return s[:n]
}

func TestPackageLazyExtraction(t *testing.T) {
	debBytes := buildFakeDeb(t, map[string]string{
		"./usr/share/applications/foo.desktop": "[Desktop Entry]\nType=Application\n",
	})

	idx := NewIndex(func(ctx context.Context, filename string) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(debBytes)), nil
	})
	idx.AddPartition("stable", "main", "amd64", []Stanza{
		{Name: "foobar", Version: "1.0-1", Arch: "amd64", Filename: "pool/f/foobar.deb"},
	})

	pkgs, err := idx.PackagesFor(context.Background(), "stable", "main", "amd64")
	if err != nil {
		t.Fatal(err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("pkgs = %d, want 1", len(pkgs))
	}

	contents, err := pkgs[0].Contents(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 || contents[0] != "/usr/share/applications/foo.desktop" {
		t.Fatalf("contents = %v", contents)
	}

	data, err := pkgs[0].FileData(context.Background(), "/usr/share/applications/foo.desktop")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Desktop Entry") {
		t.Errorf("data = %q", data)
	}

	if err := pkgs[0].Close(); err != nil {
		t.Fatal(err)
	}
}
