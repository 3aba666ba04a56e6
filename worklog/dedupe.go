/*
dedupe.go - Duplicate reconciliation

PURPOSE:
  Deterministic deduplication when appending new or edited items to an
  existing collection, used by bulk import paths.

ALGORITHM:
  Existing items are walked first, then incoming ones. An item is kept
  if no previously kept item has the same content (all fields except
  id). The first occurrence of a duplicate wins and is retained, so
  existing records always beat incoming copies of themselves.

EDIT SELF-DUPLICATES:
  Callers editing an item must filter its old version out of the
  existing set before calling Reconcile; reconciliation then only sees
  the new version and cannot flag the edit as a duplicate of itself.
*/
package worklog

// Reconcile concatenates existing then incoming, drops items whose
// content duplicates an earlier kept item, and returns the kept items
// plus the number removed. Relative order of first occurrences is
// preserved, and len(kept) + removed == len(existing) + len(incoming).
func Reconcile(existing, incoming []WorkItem) ([]WorkItem, int) {
	kept := make([]WorkItem, 0, len(existing)+len(incoming))
	removed := 0

	for _, candidate := range append(append([]WorkItem{}, existing...), incoming...) {
		duplicate := false
		for _, k := range kept {
			if k.SameContent(candidate) {
				duplicate = true
				break
			}
		}
		if duplicate {
			removed++
			continue
		}
		kept = append(kept, candidate)
	}
	return kept, removed
}
