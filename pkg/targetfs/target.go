// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package targetfs is the target-side filesystem layer (§6): local or
// remote-via-secure-shell directory/file primitives, the persisted layout
// those primitives implement, and a scanner that reconstructs a PoolList
// from what a target actually stores.
package targetfs

import (
	"context"
	"io"
)

// Target is the narrow interface the orchestrator needs from a backup
// destination, whether it is a local directory or one reached over SSH.
type Target interface {
	MkdirAll(ctx context.Context, path string) error
	RemoveFile(ctx context.Context, path string) error
	FileExists(ctx context.Context, path string) (bool, error)
	DirExists(ctx context.Context, path string) (bool, error)
	ListDir(ctx context.Context, path string) (files []string, subdirs []string, err error)
	WriteSmallText(ctx context.Context, path, content string) error
	ReadSmallText(ctx context.Context, path string) (string, error)
	// StreamDigest computes a hex SHA-256 digest over path's contents.
	StreamDigest(ctx context.Context, path string) (string, error)
	// WriteStream lands r's bytes at path, creating parent directories as
	// needed. Used for the large zfs-send payloads; WriteSmallText is for
	// the layout's tiny sentinel/checksum files only.
	WriteStream(ctx context.Context, path string, r io.Reader) error
	// OpenReadStream opens path for streaming read, for feeding a restore's
	// zfs receive.
	OpenReadStream(ctx context.Context, path string) (io.ReadCloser, error)
}
