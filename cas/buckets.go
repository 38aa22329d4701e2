// Package cas implements the content-addressed store (spec §4.1,
// component C1): a durable, transactional key-value store plus the
// media directory it exclusively owns.
//
// It is backed by go.etcd.io/bbolt, an embedded single-file KV store
// with the exact concurrency model the spec calls for: a single writer
// transaction at a time, and readers that snapshot against a consistent
// view without ever blocking on a writer (MVCC, spec §4.1
// "Concurrency").
//
// Bucket layout (grounded, in comment style, on the bucket-schema
// convention documented in containerd's metadata store —
// _examples/other_examples's standalone containerd/metadata buckets.go
// reference file):
//
//	<cas.db>
//	├── packages     : pkid -> "ignore" | "seen" | "\n"-joined gcid list
//	├── hints        : pkid -> JSON HintsDocument
//	├── metadata_xml : gcid -> serialized single-component XML
//	├── metadata_yaml: gcid -> serialized single-component YAML
//	├── stats        : big-endian uint64 sequence -> JSON stat record
//	└── repo_info    : "suite/section/arch" -> JSON { mtime, ... }
package cas

// Bucket names for the six top-level bbolt buckets this store owns.
const (
	bucketPackages     = "packages"
	bucketHints        = "hints"
	bucketMetadataXML  = "metadata_xml"
	bucketMetadataYAML = "metadata_yaml"
	bucketStats        = "stats"
	bucketRepoInfo     = "repo_info"
)

var allBuckets = []string{
	bucketPackages,
	bucketHints,
	bucketMetadataXML,
	bucketMetadataYAML,
	bucketStats,
	bucketRepoInfo,
}

func metadataBucket(kind string) (string, bool) {
	switch kind {
	case "xml":
		return bucketMetadataXML, true
	case "yaml":
		return bucketMetadataYAML, true
	default:
		return "", false
	}
}
