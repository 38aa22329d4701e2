package metadata

import "github.com/ximion/appstream-generator-sub002"

// ValidateMetainfo performs the lightweight, feature-flagged checks
// spec §4.6 step 3 calls for ("purely adds hints"): it never mutates
// or drops a component, it only surfaces issues the AppStream upstream
// validator would otherwise catch, since full schema validation is out
// of scope (spec §1 "validating metainfo semantics beyond collecting
// hints" is a Non-goal).
func ValidateMetainfo(c *asgen.Component) []HintRecord {
	var hints []HintRecord
	if c.Name == "" {
		hints = append(hints, HintRecord{CID: c.ID, Tag: "metainfo-validation-issue"})
	}
	if c.Summary == "" {
		hints = append(hints, HintRecord{CID: c.ID, Tag: "metainfo-validation-issue"})
	}
	return hints
}
