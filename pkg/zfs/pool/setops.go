// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package pool

// View returns a deep clone of p: fresh Dataset and Snapshot objects,
// identical ZfsPath identities.
func (p *Pool) View() *Pool {
	out := p.Copy()
	for _, ds := range p.Datasets() {
		_ = out.AddDataset(ds.View())
	}
	return out
}

// PrefixedView applies dataset.PrefixedView to every dataset and re-homes
// the result under a pool named after the (possibly shifted) dataset pool
// component — all datasets in a Pool share one physical pool identity, so
// the shift is computed once from any dataset and applied uniformly.
func (p *Pool) PrefixedView(prefix string, deshift bool) *Pool {
	if !p.HasDatasets() {
		return New(p.Name)
	}
	var out *Pool
	for _, ds := range p.Datasets() {
		shifted := ds.PrefixedView(prefix, deshift)
		if out == nil {
			out = New(shifted.PoolName)
		}
		_ = out.AddDataset(shifted)
	}
	return out
}

// Difference returns a view of p containing, for every dataset present in
// p, the recursive difference against the same-ZfsPath dataset in each of
// others (or the dataset kept whole if absent from all others). Datasets
// whose recursive difference has no snapshots are dropped.
func (p *Pool) Difference(others ...*Pool) *Pool {
	out := p.Copy()
	for _, ds := range p.Datasets() {
		result := ds.View()
		present := false
		for _, o := range others {
			if od := o.Get(ds.ZfsPath()); od != nil {
				present = true
				result = result.Difference(od)
			}
		}
		if present && !result.HasSnapshots() {
			continue
		}
		_ = out.AddDataset(result)
	}
	return out
}

// Intersection returns a view of p containing, for every dataset present
// in p AND in every one of others, the recursive intersection of
// snapshots. A dataset absent from any other is dropped entirely.
func (p *Pool) Intersection(others ...*Pool) *Pool {
	out := p.Copy()
	for _, ds := range p.Datasets() {
		result := ds.View()
		keep := true
		for _, o := range others {
			od := o.Get(ds.ZfsPath())
			if od == nil {
				keep = false
				break
			}
			result = result.Intersection(od)
		}
		if !keep || !result.HasSnapshots() {
			continue
		}
		_ = out.AddDataset(result)
	}
	return out
}

// Merge produces a new Pool whose datasets are the union of p and others,
// recursively merging datasets that share a ZfsPath.
func (p *Pool) Merge(others ...*Pool) *Pool {
	out := p.Copy()
	all := []*Pool{p}
	all = append(all, others...)
	for _, src := range all {
		for _, ds := range src.Datasets() {
			if existing := out.Get(ds.ZfsPath()); existing != nil {
				merged := existing.Merge(ds)
				out.RemoveDataset(ds.ZfsPath())
				_ = out.AddDataset(merged)
			} else {
				_ = out.AddDataset(ds.View())
			}
		}
	}
	return out
}
