// Package eid computes stable, content-addressed element identifiers.
//
// Grounded on the teacher's structural-fingerprint idiom
// (domwatch/internal/profiler/fingerprint.go: computeFingerprint hashes a
// normalized projection of content, never pixels or transient state) —
// generalized here from a whole-page skeleton hash to a per-node identity
// hash over the tuple named in spec §4.3.
package eid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

// prefixLen is the truncated hash length in hex characters (§4.3: "a short
// prefix (e.g., 8 hex chars)").
const prefixLen = 8

// Input is the normalized identity tuple an EID is computed over. It
// deliberately excludes backend_node_id, scroll offsets, pixel positions,
// and transient dynamic text (§4.3 rule).
type Input struct {
	Kind           snapshot.NodeKind
	Label          string
	FrameID        string
	Region         snapshot.SemanticRegion
	GroupID        string
	HeadingContext string
	ShadowPath     []int64
	// Ordinal is this node's position within the (region, group, kind,
	// label) bucket in document order; it disambiguates repeated identical
	// rows (§4.3).
	Ordinal int
	// Readable marks readable-content variants, which use the `rd-` prefix
	// instead of the kind prefix (§4.3).
	Readable bool
}

// Compute returns the stable EID for in.
func Compute(in Input) string {
	var b strings.Builder
	b.WriteString(string(in.Kind))
	b.WriteByte('\x1f')
	b.WriteString(normalizeLabel(in.Label))
	b.WriteByte('\x1f')
	b.WriteString(in.FrameID)
	b.WriteByte('\x1f')
	b.WriteString(string(in.Region))
	b.WriteByte('\x1f')
	b.WriteString(in.GroupID)
	b.WriteByte('\x1f')
	b.WriteString(in.HeadingContext)
	b.WriteByte('\x1f')
	for _, id := range in.ShadowPath {
		b.WriteString(strconv.FormatInt(id, 10))
		b.WriteByte(',')
	}
	b.WriteByte('\x1f')
	b.WriteString(strconv.Itoa(in.Ordinal))

	sum := sha256.Sum256([]byte(b.String()))
	hexSum := hex.EncodeToString(sum[:])[:prefixLen]

	prefix := string(in.Kind)
	if in.Readable {
		prefix = "rd"
	}
	return fmt.Sprintf("%s-%s", prefix, hexSum)
}

// normalizeLabel collapses whitespace and lower-cases a label so that
// benign re-renders (extra whitespace, case changes from a CSS
// text-transform) don't perturb identity.
func normalizeLabel(label string) string {
	fields := strings.Fields(label)
	return strings.ToLower(strings.Join(fields, " "))
}

// Bucket identifies the (region, group, kind, label) bucket used to assign
// ordinals to otherwise-identical nodes in document order.
type Bucket struct {
	Region  snapshot.SemanticRegion
	GroupID string
	Kind    snapshot.NodeKind
	Label   string
}

// OrdinalAssigner assigns increasing ordinals to nodes sharing a bucket, in
// the order Assign is called — callers must walk candidates in document
// order for the ordinal to mean anything.
type OrdinalAssigner struct {
	seen map[Bucket]int
}

// NewOrdinalAssigner creates an empty assigner.
func NewOrdinalAssigner() *OrdinalAssigner {
	return &OrdinalAssigner{seen: make(map[Bucket]int)}
}

// Next returns the next ordinal for b, starting at 0.
func (a *OrdinalAssigner) Next(b Bucket) int {
	n := a.seen[b]
	a.seen[b] = n + 1
	return n
}
