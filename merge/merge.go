// Package merge implements the non-destructive catalog merge: freshly
// translated values are combined with previously persisted ones so that
// hand-reviewed translations are never clobbered by a retranslation run.
package merge

import (
	"github.com/openlocale/transcat/catalog"
)

// Merge combines a freshly translated mapping with a previously persisted
// one and returns a new mapping. Neither argument is modified.
//
// The result always follows fresh's shape and key order:
//   - a key present in both with a nested fresh value recurses, using the
//     old value as context; if the old value is not a mapping there is
//     nothing to preserve at that branch and the fresh subtree is kept
//   - a leaf key present in both keeps the old value (prior translations win)
//   - a key only in fresh keeps the fresh value
//   - keys only in old are dropped, since the output shape follows fresh
//
// A nil old mapping means there are no prior translations to preserve.
func Merge(fresh, old *catalog.Mapping) *catalog.Mapping {
	result := catalog.NewMapping()
	for _, key := range fresh.Keys() {
		freshVal, _ := fresh.Get(key)

		var oldVal any
		hasOld := false
		if old != nil {
			oldVal, hasOld = old.Get(key)
		}

		switch fv := freshVal.(type) {
		case *catalog.Mapping:
			oldSub, _ := oldVal.(*catalog.Mapping)
			result.Set(key, Merge(fv, oldSub))
		default:
			if hasOld {
				// Prior value wins, whatever its shape.
				if om, ok := oldVal.(*catalog.Mapping); ok {
					result.Set(key, om.Clone())
				} else {
					result.Set(key, oldVal)
				}
			} else {
				result.Set(key, freshVal)
			}
		}
	}
	return result
}
