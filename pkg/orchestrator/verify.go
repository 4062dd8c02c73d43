// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/northvault/zbackup/pkg/targetfs"
	"github.com/northvault/zbackup/pkg/zfs/inventory"
)

// VerifyResult is the outcome of checksumming one stored snapshot.
type VerifyResult struct {
	Host, Path, ZfsPath string
	OK                  bool
	Err                 error
}

// VerifyTargets recomputes every stored snapshot's digest against its
// landed ".zstream.sha256" across every (host, target) pair concurrently,
// since each target's verification is independent I/O-bound work (§5).
// progress, if non-nil, is called once per completed snapshot from
// whichever goroutine finished it — callers needing a shared counter or
// writer must guard it themselves or rely on the caller-provided function
// already being safe for concurrent use.
func VerifyTargets(ctx context.Context, targets map[inventory.HostPath]targetfs.Target, progress func(VerifyResult)) ([]VerifyResult, error) {
	var mu sync.Mutex
	var results []VerifyResult

	g, ctx := errgroup.WithContext(ctx)
	for hp, t := range targets {
		hp, t := hp, t
		g.Go(func() error {
			pools, err := targetfs.Scan(ctx, t)
			if err != nil {
				mu.Lock()
				results = append(results, VerifyResult{Host: hp.Host, Path: hp.Path, OK: false, Err: err})
				mu.Unlock()
				return nil
			}

			for _, p := range pools.Pools() {
				for _, ds := range p.Datasets() {
					for _, s := range ds.Snapshots() {
						res := verifyOne(ctx, t, s.PoolName, s.DatasetName, s.SnapshotName)
						res.Host, res.Path = hp.Host, hp.Path
						mu.Lock()
						results = append(results, res)
						mu.Unlock()
						if progress != nil {
							progress(res)
						}
					}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func verifyOne(ctx context.Context, t targetfs.Target, pool, ds, name string) VerifyResult {
	zfsPath := fmt.Sprintf("%s/%s@%s", pool, ds, name)

	streamPath := targetfs.StreamPath(pool, ds, name)
	got, err := t.StreamDigest(ctx, streamPath)
	if err != nil {
		return VerifyResult{ZfsPath: zfsPath, OK: false, Err: err}
	}

	want, err := t.ReadSmallText(ctx, targetfs.FinalDigestPath(pool, ds, name))
	if err != nil {
		return VerifyResult{ZfsPath: zfsPath, OK: false, Err: err}
	}

	ok := targetfs.ParseDigestFile(want) == got
	return VerifyResult{ZfsPath: zfsPath, OK: ok}
}
