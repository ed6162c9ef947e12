package mappers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/composable-com/ct-connect-akeneo/internal/commerce"
)

func TestMapCategories(t *testing.T) {
	t.Parallel()

	got := MapCategories([]string{"cat-a", "unknown", "cat-b"}, testConfig())
	assert.Equal(t, []string{"ct-cat-a", "ct-cat-b"}, got)
}

func TestDiffCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate []string
		existing  []string
		toAdd     []string
		toRemove  []string
	}{
		{
			name:      "add and remove",
			candidate: []string{"cat-1", "cat-2"},
			existing:  []string{"cat-1", "cat-3"},
			toAdd:     []string{"cat-2"},
			toRemove:  []string{"cat-3"},
		},
		{
			name:      "same set different order",
			candidate: []string{"cat-2", "cat-1"},
			existing:  []string{"cat-1", "cat-2"},
		},
		{
			name:      "both empty",
			candidate: nil,
			existing:  nil,
		},
		{
			name:      "everything new",
			candidate: []string{"cat-1", "cat-1"},
			existing:  nil,
			toAdd:     []string{"cat-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := DiffCategories(tt.candidate, tt.existing)
			assert.ElementsMatch(t, tt.toAdd, got.ToAdd)
			assert.ElementsMatch(t, tt.toRemove, got.ToRemove)
			assert.Equal(t, len(tt.toAdd) == 0 && len(tt.toRemove) == 0, got.Empty())
		})
	}
}

func TestDiffCategories_Symmetry(t *testing.T) {
	t.Parallel()

	sets := [][]string{
		nil,
		{"a"},
		{"a", "b"},
		{"b", "c", "d"},
		{"d", "a"},
	}
	for _, a := range sets {
		for _, b := range sets {
			ab := DiffCategories(a, b)
			ba := DiffCategories(b, a)
			assert.ElementsMatch(t, ab.ToAdd, ba.ToRemove, "a=%v b=%v", a, b)
			assert.ElementsMatch(t, ab.ToRemove, ba.ToAdd, "a=%v b=%v", a, b)
		}
	}
}

func TestCategoryActions(t *testing.T) {
	t.Parallel()

	got := CategoryActions(CategoryDiff{ToAdd: []string{"cat-2"}, ToRemove: []string{"cat-3"}})
	assert.Equal(t, []commerce.UpdateAction{
		commerce.AddToCategory("cat-2"),
		commerce.RemoveFromCategory("cat-3"),
	}, got)
	assert.Empty(t, CategoryActions(CategoryDiff{}))
}
