package asgen

import "strings"

// tlds is the set of top-level domains recognized when deciding whether
// a component id's first label is a reverse-DNS TLD (spec §4.3 "GCID
// construction"). It intentionally covers the common gTLDs and ccTLDs
// seen in real-world AppStream ids; an id whose first label isn't here
// falls back to the generic partitioning rule.
var tlds = buildTLDSet(
	"aero", "app", "asia", "biz", "cat", "com", "coop", "dev", "edu",
	"gov", "info", "int", "io", "jobs", "mil", "mobi", "museum", "name",
	"net", "online", "org", "pro", "tech", "travel", "xyz", "zone",
	"ac", "ca", "ch", "cn", "cz", "de", "dk", "es", "eu", "fi", "fr",
	"gr", "hu", "ie", "il", "in", "it", "jp", "kr", "nl", "no", "nz",
	"pl", "pt", "ru", "se", "sk", "uk", "us", "za",
)

func buildTLDSet(list ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, t := range list {
		m[t] = struct{}{}
	}
	return m
}

// IsRegisteredTLD reports whether label is a recognized top-level
// domain for the purpose of gcid partitioning.
func IsRegisteredTLD(label string) bool {
	_, ok := tlds[strings.ToLower(label)]
	return ok
}

// BuildGlobalID constructs a gcid from a component id and the uppercase
// hex fingerprint, following spec §4.3's two partitioning rules:
//
//   - reverse-DNS ids whose first label is a registered TLD:
//     "<tld>/<label2>/<rest.join『.』>/<hex>"
//   - everything else: "<cid[0]>/<cid[0:2]>/<cid>/<hex>", lowercased
//     in the partition prefixes only.
func BuildGlobalID(cid, hexFingerprint string) string {
	parts := strings.Split(cid, ".")
	// Partitioning by TLD needs a leftover "rest" segment to stay
	// losslessly reversible (spec §8's round-trip law), so a bare
	// two-label id ("org.example") isn't eligible even if its first
	// label is a registered TLD; it takes the generic rule instead.
	if len(parts) >= 3 && IsRegisteredTLD(parts[0]) {
		tld := strings.ToLower(parts[0])
		label2 := parts[1]
		rest := strings.Join(parts[2:], ".")
		return tld + "/" + label2 + "/" + rest + "/" + hexFingerprint
	}
	c0 := ""
	c01 := ""
	if len(cid) >= 1 {
		c0 = strings.ToLower(cid[:1])
	}
	if len(cid) >= 2 {
		c01 = strings.ToLower(cid[:2])
	} else {
		c01 = c0
	}
	return c0 + "/" + c01 + "/" + cid + "/" + hexFingerprint
}

// CIDFromGlobalID recovers the component id portion of a gcid built by
// BuildGlobalID, satisfying the round-trip law in spec §8:
// getCidFromGlobalID(buildCptGlobalID(cid, h)) == canonical(cid).
//
// A gcid always has the shape "<prefix1>/<prefix2>/<leaf>/<hex>". In
// the TLD-partitioned case <leaf> dropped the "<prefix1>.<prefix2>."
// that BuildGlobalID stripped off, so it must be reattached; in the
// fallback case <leaf> already equals the full original cid.
func CIDFromGlobalID(gcid string) string {
	segs := strings.Split(gcid, "/")
	if len(segs) != 4 {
		return ""
	}
	prefix1, prefix2, leaf := segs[0], segs[1], segs[2]
	if IsRegisteredTLD(prefix1) {
		return prefix1 + "." + prefix2 + "." + leaf
	}
	return leaf
}
