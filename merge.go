package siteconf

// Merge deep-merges an ordered list of document trees into one new tree.
//
// Rules, applied at every level:
//   - mapping ∧ mapping: merged key by key, recursively
//   - any other pairing (including sequence ∧ sequence): the later tree's
//     value wins outright; sequences are atomic, never merged element-wise
//   - keys present on only one side pass through unchanged
//
// Merge never inspects semantics, only shape, so it cannot fail; semantic
// problems surface later in validation. Inputs are not mutated. Merging a
// single tree returns a copy; merging none returns an empty mapping.
func Merge(trees ...*Node) *Node {
	if len(trees) == 0 {
		return Mapping()
	}
	out := trees[0].Clone()
	for _, t := range trees[1:] {
		out = mergeTwo(out, t)
	}
	return out
}

// mergeTwo may reuse (and mutate) earlier, which Merge owns exclusively;
// later is only ever cloned.
func mergeTwo(earlier, later *Node) *Node {
	if later == nil {
		return earlier
	}
	if earlier == nil {
		return later.Clone()
	}
	if earlier.Kind() != KindMapping || later.Kind() != KindMapping {
		return later.Clone()
	}
	for _, k := range later.Keys() {
		lv, _ := later.Get(k)
		ev, ok := earlier.Get(k)
		if ok && ev != nil && ev.Kind() == KindMapping && lv != nil && lv.Kind() == KindMapping {
			earlier.Set(k, mergeTwo(ev, lv))
			continue
		}
		earlier.Set(k, lv.Clone())
	}
	return earlier
}
