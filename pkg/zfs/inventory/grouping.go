// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package inventory

import "sort"

// Group is a maximal set of destination paths (on one host) that share an
// identical sub-payload and can be fed by a single outgoing stream.
type Group struct {
	Paths []string
	Pools *PoolList
}

// HostPath identifies a target directory on a given host.
type HostPath struct {
	Host string
	Path string
}

// GroupTargetPaths implements the single-pass, path-sorted, greedy target
// grouper (§4.8). When a leftover remainder is emitted back into the
// working set for a later target path, it is not re-iterated against
// groups created earlier in the same pass — this is a deliberate,
// preserved property of the algorithm, not an oversight; a stricter
// "maximal sharing" grouping is a different, opt-in algorithm.
func GroupTargetPaths(byPath map[string]*PoolList) []*Group {
	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var groups []*Group

	for _, path := range paths {
		remainder := byPath[path].View()

		var next []*Group
		for _, g := range groups {
			shared := g.Pools.Intersection(remainder)
			if !shared.HasSnapshots() {
				next = append(next, g)
				continue
			}

			leftoverGroup := g.Pools.Difference(shared)
			if leftoverGroup.HasSnapshots() {
				next = append(next, &Group{Paths: g.Paths, Pools: leftoverGroup})
			}

			newPaths := append(append([]string{}, g.Paths...), path)
			sort.Strings(newPaths)
			next = append(next, &Group{Paths: newPaths, Pools: shared})

			remainder = remainder.Difference(shared)
		}
		groups = next

		if remainder.HasSnapshots() {
			groups = append(groups, &Group{Paths: []string{path}, Pools: remainder})
		}
	}

	return groups
}

// GroupTargetPathsByHost first merges PoolLists for any repeated
// (host, path) pair, then runs GroupTargetPaths independently per host.
func GroupTargetPathsByHost(byHostPath map[HostPath]*PoolList) map[string][]*Group {
	perHost := map[string]map[string]*PoolList{}
	for hp, pl := range byHostPath {
		if perHost[hp.Host] == nil {
			perHost[hp.Host] = map[string]*PoolList{}
		}
		if existing, ok := perHost[hp.Host][hp.Path]; ok {
			perHost[hp.Host][hp.Path] = existing.Merge(pl)
		} else {
			perHost[hp.Host][hp.Path] = pl
		}
	}

	out := map[string][]*Group{}
	for host, byPath := range perHost {
		out[host] = GroupTargetPaths(byPath)
	}
	return out
}
