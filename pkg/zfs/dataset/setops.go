// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package dataset

// Difference returns a view of d containing only snapshots whose ZfsPath is
// absent from every one of others.
func (d *Dataset) Difference(others ...*Dataset) *Dataset {
	out := d.View()
	for _, path := range d.ZfsPaths() {
		for _, o := range others {
			if o.Get(path) != nil {
				out.RemoveSnapshot(path)
				break
			}
		}
	}
	return out
}

// Intersection returns a view of d containing only snapshots whose ZfsPath
// is present in every one of others.
func (d *Dataset) Intersection(others ...*Dataset) *Dataset {
	out := d.View()
	for _, path := range d.ZfsPaths() {
		keep := true
		for _, o := range others {
			if o.Get(path) == nil {
				keep = false
				break
			}
		}
		if !keep {
			out.RemoveSnapshot(path)
		}
	}
	return out
}

// Merge produces a new Dataset whose snapshots are the union of d and
// others, keyed by ZfsPath (later inputs never overwrite an existing
// entry). DatasetSize is propagated only when every input that sets it
// agrees on the value.
func (d *Dataset) Merge(others ...*Dataset) *Dataset {
	out := d.Copy()

	sizes := map[int64]bool{}
	if d.DatasetSize != nil {
		sizes[*d.DatasetSize] = true
	}
	for _, o := range others {
		if o.DatasetSize != nil {
			sizes[*o.DatasetSize] = true
		}
	}
	if len(sizes) == 1 {
		for sz := range sizes {
			v := sz
			out.DatasetSize = &v
		}
	}

	all := []*Dataset{d}
	all = append(all, others...)
	for _, src := range all {
		for _, s := range src.Snapshots() {
			if out.Get(s.ZfsPath()) == nil {
				_ = out.AddSnapshot(s.Copy())
			}
		}
	}
	return out
}
