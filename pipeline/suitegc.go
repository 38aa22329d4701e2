package pipeline

import (
	"context"

	"github.com/ximion/appstream-generator-sub002"
)

// removePackagesNotIn drops every packages-bucket row not in keep
// (spec §4.7 step 7: "After all sections of a suite complete, call
// remove_packages_not_in(pkid_set_for_suite) scoped to that suite").
// RunSuite calls this once per suite, never per partition, since a
// pkid legitimately disappears from one section/arch partition's
// listing while remaining live in another within the same suite.
//
// The CLI's "process <suite>" subcommand runs a single suite per
// invocation (spec §6), so in practice keep already holds exactly one
// suite's pkids and this is suite-scoped by construction. The pkid
// schema itself ("name/version/arch", spec §3) carries no suite
// component, so two suites sharing an identical (name, version, arch)
// triple would collide here; real archives don't in practice because
// distinct suites carry distinct versions, and resolving this would
// require widening the CAS key, which is out of scope for this pass
// (recorded as an open question in DESIGN.md).
func (p *Pipeline) removePackagesNotIn(ctx context.Context, keep map[asgen.PackageID]struct{}) error {
	return p.CAS.RemovePackagesNotIn(ctx, keep)
}
