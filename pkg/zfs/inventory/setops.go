// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package inventory

// Difference recurses Pool.Difference by pool name.
func (pl *PoolList) Difference(others ...*PoolList) *PoolList {
	out := pl.Copy()
	for _, p := range pl.Pools() {
		result := p.View()
		present := false
		for _, o := range others {
			if op := o.Get(p.Name); op != nil {
				present = true
				result = result.Difference(op)
			}
		}
		if present && !result.HasSnapshots() {
			continue
		}
		_ = out.AddPool(result)
	}
	return out
}

// Intersection recurses Pool.Intersection by pool name.
func (pl *PoolList) Intersection(others ...*PoolList) *PoolList {
	out := pl.Copy()
	for _, p := range pl.Pools() {
		result := p.View()
		keep := true
		for _, o := range others {
			op := o.Get(p.Name)
			if op == nil {
				keep = false
				break
			}
			result = result.Intersection(op)
		}
		if !keep || !result.HasSnapshots() {
			continue
		}
		_ = out.AddPool(result)
	}
	return out
}

// Merge produces a new PoolList whose pools are the union of pl and
// others, recursively merging pools that share a name.
func (pl *PoolList) Merge(others ...*PoolList) *PoolList {
	out := pl.Copy()
	all := []*PoolList{pl}
	all = append(all, others...)
	for _, src := range all {
		for _, p := range src.Pools() {
			if existing := out.Get(p.Name); existing != nil {
				merged := existing.Merge(p)
				out.RemovePool(p.Name)
				_ = out.AddPool(merged)
			} else {
				_ = out.AddPool(p.View())
			}
		}
	}
	return out
}
