package pipeline

import (
	"context"
	"time"

	"github.com/ximion/appstream-generator-sub002/cas"
)

// writeStatsStep records one stats row for this partition (spec §4.7
// step 6: "After the (suite, section, arch) completes, write a stats
// row"). Totals are computed from what MergeResults/Partition already
// observed rather than re-querying the CAS, since the whole point of
// the monotonic-counter redesign (spec §9 Open question, §4
// "Supplemented Features") is that a stats write never needs to read
// back existing state first.
func writeStatsStep(ctx context.Context, s *Stage) (State, error) {
	generated, ignored := 0, 0
	for _, res := range s.results {
		if res.Ignored() {
			ignored++
		} else {
			generated++
		}
	}

	rec := cas.StatRecord{
		UnixSecond: time.Now().Unix(),
		Suite:      s.Suite,
		Section:    s.Section,
		Totals: map[string]int{
			"packages_total":     len(s.pkgs),
			"packages_new":       len(s.newPkids),
			"packages_skipped":   s.skipped,
			"packages_generated": generated,
			"packages_ignored":   ignored,
			"packages_errored":   len(s.errored),
		},
	}
	if err := s.cas.AddStats(ctx, rec); err != nil {
		return Terminal, err
	}
	return Terminal, nil
}
