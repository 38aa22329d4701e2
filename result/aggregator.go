// Package result implements the per-package Result Aggregator (spec
// §4.3, component C3): a transient scratch object collecting one
// package's components, their gcids, and the hints raised while
// extracting it.
package result

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ximion/appstream-generator-sub002"
)

// Aggregator is one package's in-progress extraction result. It is not
// safe for concurrent use — the pipeline (C8) gives each worker its own
// Aggregator per pkid (spec §4.7 "Thread-safety discipline": "Workers
// do not share Result objects").
type Aggregator struct {
	pkid    asgen.PackageID
	pkgname string

	components map[string]*asgen.Component // keyed by cid
	gcids      map[string]string           // cid -> gcid
	hints      map[string][]asgen.Hint     // cid (or GeneralCID) -> hints
	hintKeys   map[string]struct{}         // dedup: cid\x00tag\x00varsKey
}

// New constructs an Aggregator for one package.
func New(pkid asgen.PackageID, pkgname string) *Aggregator {
	return &Aggregator{
		pkid:       pkid,
		pkgname:    pkgname,
		components: make(map[string]*asgen.Component),
		gcids:      make(map[string]string),
		hints:      make(map[string][]asgen.Hint),
		hintKeys:   make(map[string]struct{}),
	}
}

// Package returns the owning pkid.
func (a *Aggregator) Package() asgen.PackageID { return a.pkid }

// PackageName returns the owning package's name.
func (a *Aggregator) PackageName() string { return a.pkgname }

// AddComponent registers c under its cid, recording src as the first
// fingerprint source and computing a provisional gcid from it. It
// fails if c.ID is empty (spec §4.3 "fails if cid empty").
func (a *Aggregator) AddComponent(c *asgen.Component, src []byte) error {
	if c.ID == "" {
		return asgen.NewError("result.AddComponent", asgen.ErrInvalid, "component has empty cid", nil)
	}
	if src != nil {
		c.AddFingerprintSource(src)
	}
	c.PackageName = a.pkgname
	a.components[c.ID] = c
	a.recomputeGCID(c)
	return nil
}

// UpdateComponentGCID appends more bytes to c's fingerprint sources and
// recomputes its gcid from the full accumulated set (spec §4.3: "fails
// if cid empty" carries over — c must already be registered).
func (a *Aggregator) UpdateComponentGCID(c *asgen.Component, extra ...[]byte) error {
	if _, ok := a.components[c.ID]; !ok {
		return asgen.NewError("result.UpdateComponentGCID", asgen.ErrPrecondition, "component not registered with this result", nil)
	}
	for _, b := range extra {
		c.AddFingerprintSource(b)
	}
	a.recomputeGCID(c)
	return nil
}

func (a *Aggregator) recomputeGCID(c *asgen.Component) {
	digest := asgen.SumBytes(c.FingerprintSources()...)
	a.gcids[c.ID] = asgen.BuildGlobalID(c.ID, digest.Hex())
}

// GCIDOf returns the current gcid for cid, if that component is
// registered.
func (a *Aggregator) GCIDOf(cid string) (string, bool) {
	g, ok := a.gcids[cid]
	return g, ok
}

// AddHint records a hint against cidOrGeneral (pass asgen.GeneralCID
// for a package-level issue), deduplicating on the (cid, tag, vars)
// triple within this result (spec §4.3 "Serialization": "At-most-once
// per (cid, tag, vars) triple within a result").
func (a *Aggregator) AddHint(cidOrGeneral, tag string, vars map[string]string) {
	key := hintKey(cidOrGeneral, tag, vars)
	if _, ok := a.hintKeys[key]; ok {
		return
	}
	a.hintKeys[key] = struct{}{}
	a.hints[cidOrGeneral] = append(a.hints[cidOrGeneral], asgen.Hint{Tag: tag, CID: cidOrGeneral, Vars: vars})
}

func hintKey(cid, tag string, vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(cid)
	b.WriteByte(0)
	b.WriteString(tag)
	for _, k := range keys {
		b.WriteByte(0)
		fmt.Fprintf(&b, "%s=%s", k, vars[k])
	}
	return b.String()
}

// Finalize drops every component carrying a hint whose tag isError
// reports true (spec §4.3 "drop error-tagged components"; spec's data
// model: "Error-severity hints invalidate their component"). isError is
// supplied by the caller because hint severities live in the external
// hint tag registry (spec §9), not in the Result itself.
func (a *Aggregator) Finalize(isError func(tag string) bool) {
	for cid, hs := range a.hints {
		if cid == asgen.GeneralCID {
			continue
		}
		for _, h := range hs {
			if isError(h.Tag) {
				delete(a.components, cid)
				delete(a.gcids, cid)
				break
			}
		}
	}
}

// Ignored reports whether finalize left zero components (spec §3
// "Result" invariant: "package is 'ignored' iff finalize leaves zero
// components").
func (a *Aggregator) Ignored() bool { return len(a.components) == 0 }

// Components returns the surviving cid -> Component map.
func (a *Aggregator) Components() map[string]*asgen.Component { return a.components }

// GCIDs returns the sorted list of gcids for surviving components.
func (a *Aggregator) GCIDs() []string {
	out := make([]string, 0, len(a.gcids))
	for cid := range a.components {
		if g, ok := a.gcids[cid]; ok {
			out = append(out, g)
		}
	}
	sort.Strings(out)
	return out
}

// HintsJSON serializes the accumulated hints document (spec §4.3
// "Serialization"): {"package": pkid, "hints": {cid -> [hint...]}}.
func (a *Aggregator) HintsJSON() ([]byte, error) {
	if len(a.hints) == 0 {
		return nil, nil
	}
	doc := asgen.HintsDocument{Package: string(a.pkid), Hints: a.hints}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, asgen.NewError("result.HintsJSON", asgen.ErrInternal, "marshaling hints document failed", err)
	}
	return data, nil
}
