// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package targetfs

import "strings"

// Persisted layout (§6): under each target path, a sentinel file
// INITIALIZED, and below it a file-based mirror
// "{pool}/{dataset}/{snapshot}.zstream" per stored snapshot, accompanied
// by "{...}.zstream.sha256" (the final checksum) and optionally
// "{...}.zstream.expected_sha256" (an in-flight checksum, deleted once
// the final one lands).
const (
	InitializedFile   = "INITIALIZED"
	InitializedText   = "initialized"
	StreamSuffix      = ".zstream"
	FinalDigestSuffix = ".zstream.sha256"
	InFlightSuffix    = ".zstream.expected_sha256"
)

// StreamPath returns the relative path of a stored snapshot's stream file
// under a target root.
func StreamPath(pool, dataset, snapshotName string) string {
	return pool + "/" + dataset + "/" + snapshotName + StreamSuffix
}

// FinalDigestPath is StreamPath with FinalDigestSuffix.
func FinalDigestPath(pool, dataset, snapshotName string) string {
	return pool + "/" + dataset + "/" + snapshotName + FinalDigestSuffix
}

// InFlightDigestPath is StreamPath with InFlightSuffix.
func InFlightDigestPath(pool, dataset, snapshotName string) string {
	return pool + "/" + dataset + "/" + snapshotName + InFlightSuffix
}

// FormatDigestFile renders the tolerated "{hex} ./{filename}" checksum
// file form.
func FormatDigestFile(hexDigest, filename string) string {
	return hexDigest + "  ./" + filename + "\n"
}

// ParseDigestFile extracts the hex digest from the tolerated
// "{hex} ./{filename}" form, also accepting a bare hex digest.
func ParseDigestFile(content string) string {
	content = strings.TrimSpace(content)
	if i := strings.IndexAny(content, " \t"); i >= 0 {
		return content[:i]
	}
	return content
}
