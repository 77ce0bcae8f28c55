// Package reconcile computes the minimal delete/insert sets that converge a
// persisted sub-entity collection onto an incoming one, keyed by content
// fingerprint.
package reconcile

// Diff compares current entities against incoming payloads. Entities whose
// fingerprint appears on both sides are left untouched: unchanged rows incur
// zero writes. Incoming payloads that collide on fingerprint are duplicates
// by content and collapse to a single representative. Neither returned slice
// carries an ordering guarantee.
func Diff[C any, N any](current []C, incoming []N, currentKey func(C) string, incomingKey func(N) string) (toDelete []C, toInsert []N) {
	currentByFP := make(map[string]C, len(current))
	for _, entity := range current {
		currentByFP[currentKey(entity)] = entity
	}

	incomingByFP := make(map[string]N, len(incoming))
	for _, payload := range incoming {
		incomingByFP[incomingKey(payload)] = payload
	}

	for fp, entity := range currentByFP {
		if _, ok := incomingByFP[fp]; !ok {
			toDelete = append(toDelete, entity)
		}
	}
	for fp, payload := range incomingByFP {
		if _, ok := currentByFP[fp]; !ok {
			toInsert = append(toInsert, payload)
		}
	}
	return toDelete, toInsert
}
