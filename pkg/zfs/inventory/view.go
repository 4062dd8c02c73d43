// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package inventory

// PrefixedView applies pool.PrefixedView to every pool, re-homing the
// result under the (possibly shifted) pool name.
func (pl *PoolList) PrefixedView(prefix string, deshift bool) *PoolList {
	out := New()
	for _, p := range pl.Pools() {
		shifted := p.PrefixedView(prefix, deshift)
		if !shifted.HasDatasets() {
			continue
		}
		_ = out.AddPool(shifted)
	}
	return out
}
