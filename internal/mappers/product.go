package mappers

import (
	"maps"

	"github.com/composable-com/ct-connect-akeneo/internal/commerce"
	"github.com/composable-com/ct-connect-akeneo/internal/mapping"
	"github.com/composable-com/ct-connect-akeneo/internal/pim"
)

// Identity attributes written on every synced variant.
const (
	AttributeAkeneoID         = "akeneo_id"
	AttributeAkeneoParentCode = "akeneo_parent_code"
)

// ParentCode is the code commerce products are grouped by: the product model
// code for variant products, the product's own uuid otherwise.
func ParentCode(item *pim.Product) string {
	if item.Parent != nil && *item.Parent != "" {
		return *item.Parent
	}
	return item.UUID
}

// IdentityAttributes returns the tags that link a commerce variant back to
// its PIM product.
func IdentityAttributes(item *pim.Product) []commerce.Attribute {
	return []commerce.Attribute{
		{Name: AttributeAkeneoID, Value: item.UUID},
		{Name: AttributeAkeneoParentCode, Value: ParentCode(item)},
	}
}

// ResolveSKU returns the value of the family's SKU attribute when configured
// and set, falling back to the product identifier.
func ResolveSKU(item *pim.Product, rule mapping.FamilyRule) string {
	if rule.AkeneoSkuField == "" {
		return item.Identifier
	}
	entries := item.Values[rule.AkeneoSkuField]
	if len(entries) == 0 {
		return item.Identifier
	}
	if s, ok := entries[0].Data.(string); ok && s != "" {
		return s
	}
	return item.Identifier
}

// MergeValues overlays the product's own values on its parent's.
func MergeValues(parent *pim.ProductModel, own pim.Values) pim.Values {
	merged := pim.Values{}
	if parent != nil {
		maps.Copy(merged, parent.Values)
	}
	maps.Copy(merged, own)
	return merged
}

// MapProductDraft builds the creation draft for a product that does not exist
// in commerce yet.
func MapProductDraft(item *pim.Product, parent *pim.ProductModel, sku string, cfg *mapping.Config) (commerce.ProductDraft, error) {
	rule, err := cfg.Family(item.Family)
	if err != nil {
		return commerce.ProductDraft{}, err
	}

	mapped := MapAttributes(MergeValues(parent, item.Values), cfg, rule)
	if sku == "" {
		sku = item.Identifier
	}

	return commerce.ProductDraft{
		Name:        mapped.Core[mapping.CoreFieldName],
		Description: mapped.Core[mapping.CoreFieldDescription],
		Slug:        mapped.Core[mapping.CoreFieldSlug],
		ProductType: commerce.Reference{ID: rule.CommercetoolsProductTypeID, TypeID: commerce.TypeProductType},
		Categories:  CategoryReferences(MapCategories(item.Categories, cfg)),
		MasterVariant: commerce.VariantDraft{
			SKU:        sku,
			Attributes: append(mapped.Attributes, IdentityAttributes(item)...),
		},
	}, nil
}

// MapVariantDraft builds a variant to add to an existing product. Only the
// product's own values are used; shared values live on the product already.
func MapVariantDraft(item *pim.Product, sku string, cfg *mapping.Config) (commerce.VariantDraft, error) {
	rule, err := cfg.Family(item.Family)
	if err != nil {
		return commerce.VariantDraft{}, err
	}

	mapped := MapAttributes(item.Values, cfg, rule)
	if sku == "" {
		sku = item.Identifier
	}

	return commerce.VariantDraft{
		SKU:        sku,
		Attributes: append(mapped.Attributes, IdentityAttributes(item)...),
	}, nil
}

// DiffSku returns a setSku action when the variant exists and its SKU differs.
func DiffSku(existing *commerce.ProductProjection, sku string, variantID int) []commerce.UpdateAction {
	if variantID == 0 || existing == nil {
		return nil
	}
	variant, ok := existing.FindVariant(variantID)
	if !ok || variant.SKU == sku {
		return nil
	}
	return []commerce.UpdateAction{commerce.SetSku(variantID, sku)}
}
