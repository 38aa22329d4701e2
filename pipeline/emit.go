package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/quay/zlog"

	"github.com/ximion/appstream-generator-sub002"
)

// xmlComponentsOpen/Close bracket a run's concatenated per-component
// XML fragments in the single required root element (spec §6 "Output
// formats": "a flat concatenation with one <components> root (XML)").
const (
	xmlComponentsOpen  = "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<components version=\"0.14\">\n"
	xmlComponentsClose = "</components>\n"
)

// EmitCatalog writes the compressed catalog for every (section, arch)
// of suite (spec §4.7 step 8). For each partition it re-derives the
// live pkid set from the backend (cheap relative to extraction, and
// always current even if RunSuite wasn't just called) and resolves
// each pkid's gcids from the CAS, concatenating the stored metadata
// bytes for the configured MetadataKind in fully deterministic order:
// pkids sorted lexicographically, each pkid's own gcids in the order
// the store returns them, gcids already emitted by an earlier pkid in
// this partition skipped to avoid duplicate component entries (spec
// §8 invariant 4 + §5 "Ordering").
func (p *Pipeline) EmitCatalog(ctx context.Context, suite string) error {
	sc, ok := p.Config.Suites[suite]
	if !ok {
		return asgen.NewError("pipeline.EmitCatalog", asgen.ErrInvalid, "unknown suite "+suite, nil)
	}

	for _, section := range sc.Sections {
		for _, arch := range sc.Architectures {
			if err := p.emitPartition(ctx, suite, section, arch); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Pipeline) emitPartition(ctx context.Context, suite, section, arch string) error {
	pkgs, err := p.Backend.PackagesFor(ctx, suite, section, arch)
	if err != nil {
		return err
	}
	pkids := make([]string, 0, len(pkgs))
	for _, pkg := range pkgs {
		pkids = append(pkids, string(pkg.ID()))
	}
	sort.Strings(pkids)

	seen := make(map[string]struct{})
	var payload bytes.Buffer
	if p.Config.MetadataType == asgen.MetadataXML {
		payload.WriteString(xmlComponentsOpen)
	}
	// Features.MetadataTimestamps (spec §6) stamps the catalog with its
	// generation time; this is the one thing that keeps a repeat run
	// from being byte-identical, which is why spec §8 invariant S6 only
	// promises reproducibility "when timestamps are disabled".
	if p.Config.Features.MetadataTimestamps {
		writeGenerationTimestamp(&payload, p.Config.MetadataType)
	}

	total := 0
	for _, pkid := range pkids {
		rec, err := p.CAS.GetPackage(ctx, asgen.PackageID(pkid))
		if err != nil {
			return err
		}
		if rec.Status != asgen.StatusGenerated {
			continue
		}
		for _, gcid := range rec.GCIDs {
			if _, ok := seen[gcid]; ok {
				continue
			}
			seen[gcid] = struct{}{}
			data, err := p.CAS.GetMetadata(ctx, p.Config.MetadataType, gcid)
			if err != nil {
				return err
			}
			if len(data) == 0 {
				zlog.Warn(ctx).Str("gcid", gcid).Msg("missing metadata row for live gcid")
				continue
			}
			payload.Write(data)
			if p.Config.MetadataType == asgen.MetadataYAML {
				payload.WriteString("---\n")
			}
			total++
		}
	}

	if p.Config.MetadataType == asgen.MetadataXML {
		payload.WriteString(xmlComponentsClose)
	}

	outDir := p.Config.DataDir(suite, section)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return asgen.NewError("pipeline.emitPartition", asgen.ErrInternal, "creating data output directory failed", err)
	}

	ext := "xml"
	if p.Config.MetadataType == asgen.MetadataYAML {
		ext = "yml"
	}
	outPath := filepath.Join(outDir, fmt.Sprintf("Components-%s.%s.gz", arch, ext))

	f, err := os.Create(outPath)
	if err != nil {
		return asgen.NewError("pipeline.emitPartition", asgen.ErrInternal, "creating catalog output file failed", err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	if _, err := gw.Write(payload.Bytes()); err != nil {
		gw.Close()
		return asgen.NewError("pipeline.emitPartition", asgen.ErrInternal, "writing compressed catalog failed", err)
	}
	if err := gw.Close(); err != nil {
		return asgen.NewError("pipeline.emitPartition", asgen.ErrInternal, "closing compressed catalog failed", err)
	}

	zlog.Info(ctx).Str("path", outPath).Int("components", total).Msg("catalog emitted")
	return nil
}

// writeGenerationTimestamp appends a generation-time marker in whatever
// comment syntax the catalog's metadata kind supports: an XML comment
// inside the not-yet-closed <components> root, or a leading YAML
// comment line before the first "---" document.
func writeGenerationTimestamp(payload *bytes.Buffer, kind asgen.MetadataKind) {
	stamp := time.Now().UTC().Format(time.RFC3339)
	switch kind {
	case asgen.MetadataXML:
		fmt.Fprintf(payload, "<!-- Generated: %s -->\n", stamp)
	case asgen.MetadataYAML:
		fmt.Fprintf(payload, "# Generated: %s\n", stamp)
	}
}
