package ecs

// Each2 iterates over entities that have both component A and B, in
// ascending entity id. It walks the smaller store's index and probes the other.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for _, id := range sa.ids {
			if b, ok := sb.data[id]; ok {
				fn(id, sa.data[id], b)
			}
		}
	} else {
		for _, id := range sb.ids {
			if a, ok := sa.data[id]; ok {
				fn(id, a, sb.data[id])
			}
		}
	}
}

// Each3 iterates over entities that have components A, B, and C, in
// ascending entity id.
func Each3[A, B, C any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], sc *PtrComponentStore[C], fn func(EntityID, *A, *B, *C)) {
	// Walk the smallest index
	ids := sa.ids
	if len(sb.ids) < len(ids) {
		ids = sb.ids
	}
	if len(sc.ids) < len(ids) {
		ids = sc.ids
	}
	for _, id := range ids {
		a, ok := sa.data[id]
		if !ok {
			continue
		}
		b, ok := sb.data[id]
		if !ok {
			continue
		}
		if c, ok := sc.data[id]; ok {
			fn(id, a, b, c)
		}
	}
}
