package result

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ximion/appstream-generator-sub002"
)

func newComponent(cid string) *asgen.Component {
	return &asgen.Component{ID: cid, Kind: asgen.KindDesktopApp, Name: "Foo"}
}

func TestAddComponentRejectsEmptyCID(t *testing.T) {
	a := New(asgen.NewPackageID("foo", "1.0", "amd64"), "foo")
	err := a.AddComponent(&asgen.Component{}, []byte("x"))
	if err == nil {
		t.Fatal("expected error for empty cid")
	}
}

func TestAddComponentComputesGCID(t *testing.T) {
	a := New(asgen.NewPackageID("foo", "1.0", "amd64"), "foo")
	c := newComponent("org.example.foo")
	if err := a.AddComponent(c, []byte("metainfo-bytes")); err != nil {
		t.Fatal(err)
	}
	g, ok := a.GCIDOf("org.example.foo")
	if !ok || g == "" {
		t.Fatalf("GCIDOf = %q, %v", g, ok)
	}
	if got := asgen.CIDFromGlobalID(g); got != "org.example.foo" {
		t.Errorf("CIDFromGlobalID(%q) = %q, want org.example.foo", g, got)
	}
}

func TestUpdateComponentGCIDChangesWithMoreSources(t *testing.T) {
	a := New(asgen.NewPackageID("foo", "1.0", "amd64"), "foo")
	c := newComponent("org.example.foo")
	if err := a.AddComponent(c, []byte("metainfo-bytes")); err != nil {
		t.Fatal(err)
	}
	before, _ := a.GCIDOf("org.example.foo")
	if err := a.UpdateComponentGCID(c, []byte("desktop-bytes")); err != nil {
		t.Fatal(err)
	}
	after, _ := a.GCIDOf("org.example.foo")
	if before == after {
		t.Error("gcid did not change after adding a fingerprint source")
	}
}

func TestUpdateComponentGCIDRequiresRegistration(t *testing.T) {
	a := New(asgen.NewPackageID("foo", "1.0", "amd64"), "foo")
	c := newComponent("org.example.unregistered")
	if err := a.UpdateComponentGCID(c, []byte("x")); err == nil {
		t.Fatal("expected error for unregistered component")
	}
}

func TestAddHintDedupesByTripleWithinResult(t *testing.T) {
	a := New(asgen.NewPackageID("foo", "1.0", "amd64"), "foo")
	a.AddHint("org.example.foo", "no-icon", map[string]string{"path": "/a"})
	a.AddHint("org.example.foo", "no-icon", map[string]string{"path": "/a"})
	a.AddHint("org.example.foo", "no-icon", map[string]string{"path": "/b"})

	if got := len(a.hints["org.example.foo"]); got != 2 {
		t.Fatalf("hints = %d entries, want 2 after dedup", got)
	}
}

func TestFinalizeDropsErrorTaggedComponents(t *testing.T) {
	a := New(asgen.NewPackageID("foo", "1.0", "amd64"), "foo")
	good := newComponent("org.example.good")
	bad := newComponent("org.example.bad")
	if err := a.AddComponent(good, []byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := a.AddComponent(bad, []byte("b")); err != nil {
		t.Fatal(err)
	}
	a.AddHint("org.example.bad", "metainfo-parse-error", nil)
	a.AddHint("org.example.good", "no-screenshots", nil)

	a.Finalize(func(tag string) bool { return tag == "metainfo-parse-error" })

	if _, ok := a.Components()["org.example.bad"]; ok {
		t.Error("error-tagged component should have been dropped")
	}
	if _, ok := a.Components()["org.example.good"]; !ok {
		t.Error("unaffected component should survive finalize")
	}
	if len(a.GCIDs()) != 1 {
		t.Errorf("GCIDs() = %v, want exactly 1 surviving gcid", a.GCIDs())
	}
}

func TestIgnoredWhenAllComponentsDropped(t *testing.T) {
	a := New(asgen.NewPackageID("foo", "1.0", "amd64"), "foo")
	bad := newComponent("org.example.bad")
	if err := a.AddComponent(bad, []byte("b")); err != nil {
		t.Fatal(err)
	}
	a.AddHint("org.example.bad", "metainfo-parse-error", nil)
	a.Finalize(func(tag string) bool { return true })

	if !a.Ignored() {
		t.Error("expected result to be Ignored once all components drop")
	}
}

func TestHintsJSONShape(t *testing.T) {
	a := New(asgen.NewPackageID("foo", "1.0", "amd64"), "foo")
	a.AddHint(asgen.GeneralCID, "no-metainfo", nil)

	data, err := a.HintsJSON()
	if err != nil {
		t.Fatal(err)
	}
	var doc asgen.HintsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	want := asgen.HintsDocument{
		Package: "foo/1.0/amd64",
		Hints: map[string][]asgen.Hint{
			asgen.GeneralCID: {{Tag: "no-metainfo", CID: asgen.GeneralCID}},
		},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("hints document mismatch (-want +got):\n%s", diff)
	}
}

func TestHintsJSONNilWhenEmpty(t *testing.T) {
	a := New(asgen.NewPackageID("foo", "1.0", "amd64"), "foo")
	data, err := a.HintsJSON()
	if err != nil {
		t.Fatal(err)
	}
	if data != nil {
		t.Errorf("HintsJSON() = %q, want nil for no hints", data)
	}
}
