package mappers

import (
	"slices"

	"github.com/composable-com/ct-connect-akeneo/internal/commerce"
	"github.com/composable-com/ct-connect-akeneo/internal/mapping"
)

// CategoryDiff holds the category ids to add to and remove from a product.
type CategoryDiff struct {
	ToAdd    []string
	ToRemove []string
}

// Empty reports whether the diff has nothing to do.
func (d CategoryDiff) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// MapCategories resolves PIM category codes to commerce category ids.
// Unmapped codes are dropped.
func MapCategories(codes []string, cfg *mapping.Config) []string {
	ids := make([]string, 0, len(codes))
	for _, code := range codes {
		target, ok := cfg.CategoryMapping[code]
		if !ok || target.CommercetoolsCategoryID == "" {
			continue
		}
		ids = append(ids, target.CommercetoolsCategoryID)
	}
	return ids
}

// CategoryReferences turns category ids into references.
func CategoryReferences(ids []string) []commerce.Reference {
	refs := make([]commerce.Reference, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, commerce.Reference{ID: id, TypeID: commerce.TypeCategory})
	}
	return refs
}

// DiffCategories computes the set difference in both directions. The result
// does not depend on the order of either input; within ToAdd and ToRemove
// ids keep the order of the slice they came from.
func DiffCategories(candidate, existing []string) CategoryDiff {
	var diff CategoryDiff
	for _, id := range candidate {
		if !slices.Contains(existing, id) && !slices.Contains(diff.ToAdd, id) {
			diff.ToAdd = append(diff.ToAdd, id)
		}
	}
	for _, id := range existing {
		if !slices.Contains(candidate, id) && !slices.Contains(diff.ToRemove, id) {
			diff.ToRemove = append(diff.ToRemove, id)
		}
	}
	return diff
}

// CategoryActions converts a diff into update actions, additions first.
func CategoryActions(diff CategoryDiff) []commerce.UpdateAction {
	actions := make([]commerce.UpdateAction, 0, len(diff.ToAdd)+len(diff.ToRemove))
	for _, id := range diff.ToAdd {
		actions = append(actions, commerce.AddToCategory(id))
	}
	for _, id := range diff.ToRemove {
		actions = append(actions, commerce.RemoveFromCategory(id))
	}
	return actions
}
