package pipeline

import (
	"context"

	"github.com/quay/zlog"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/cas"
	"github.com/ximion/appstream-generator-sub002/metrics"
)

// mergeResultsStep persists every successfully extracted package's
// result into the CAS (spec §4.7 step 5: "CAS.add_result(kind, result,
// regenerate?): writes metadata rows for each new gcid, writes hints if
// any, writes the packages row"). Packages whose extraction itself
// errored are deliberately left without a packages-row write so they
// are retried next run (spec §7 "Recoverable, per-package").
func mergeResultsStep(ctx context.Context, s *Stage) (State, error) {
	for _, pkid := range s.newPkids {
		res, ok := s.results[pkid]
		if !ok {
			continue // errored during extraction; retry next run
		}

		status := asgen.StatusGenerated
		if res.Ignored() {
			status = asgen.StatusIgnored
		}

		hints, err := res.HintsJSON()
		if err != nil {
			return Terminal, err
		}

		write := cas.ResultWrite{
			Package: pkid,
			Status:  status,
			GCIDs:   res.GCIDs(),
			Hints:   hints,
		}
		for cid, c := range res.Components() {
			gcid, ok := res.GCIDOf(cid)
			if !ok {
				continue
			}
			xmlData, err := serializeComponent(c, gcid, asgen.MetadataXML)
			if err != nil {
				zlog.Warn(ctx).Str("cid", cid).Err(err).Msg("serializing component xml failed")
				continue
			}
			write.Metadata = append(write.Metadata, cas.MetadataWrite{Kind: asgen.MetadataXML, GCID: gcid, Data: xmlData})

			yamlData, err := serializeComponent(c, gcid, asgen.MetadataYAML)
			if err != nil {
				zlog.Warn(ctx).Str("cid", cid).Err(err).Msg("serializing component yaml failed")
				continue
			}
			write.Metadata = append(write.Metadata, cas.MetadataWrite{Kind: asgen.MetadataYAML, GCID: gcid, Data: yamlData})
		}

		if err := s.cas.AddResult(ctx, write); err != nil {
			return Terminal, err
		}

		outcome := "generated"
		if res.Ignored() {
			outcome = "ignored"
		}
		metrics.PackagesProcessed.WithLabelValues(s.Suite, s.Section, s.Arch, outcome).Inc()
		metrics.ComponentsGenerated.WithLabelValues(s.Suite, s.Section, s.Arch).Add(float64(len(res.Components())))
	}

	for pkid := range s.errored {
		metrics.PackagesProcessed.WithLabelValues(s.Suite, s.Section, s.Arch, "error").Inc()
		_ = pkid
	}
	metrics.PackagesProcessed.WithLabelValues(s.Suite, s.Section, s.Arch, "skipped").Add(float64(s.skipped))

	return WriteStats, nil
}
