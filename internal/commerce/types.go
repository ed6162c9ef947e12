// Package commerce is a client for the commercetools HTTP API covering the
// product and custom object endpoints the catalog sync writes to.
package commerce

import "encoding/json"

// Reference type ids
const (
	TypeProductType = "product-type"
	TypeCategory    = "category"
)

// LocalizedString maps a locale to a text.
type LocalizedString map[string]string

// Reference points at another resource.
type Reference struct {
	ID     string `json:"id"`
	TypeID string `json:"typeId"`
}

// Attribute is a product variant attribute.
type Attribute struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Image is a variant image.
type Image struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

// Variant is a product variant as stored.
type Variant struct {
	ID         int         `json:"id"`
	SKU        string      `json:"sku,omitempty"`
	Key        string      `json:"key,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty"`
	Images     []Image     `json:"images,omitempty"`
}

// AttributeValue returns the value of the named attribute.
func (v *Variant) AttributeValue(name string) (any, bool) {
	for _, a := range v.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// HasAttribute reports whether the variant carries name with a string value equal to value.
func (v *Variant) HasAttribute(name, value string) bool {
	got, ok := v.AttributeValue(name)
	if !ok {
		return false
	}
	s, ok := got.(string)
	return ok && s == value
}

// ProductProjection is the staged view of a product.
type ProductProjection struct {
	ID            string          `json:"id"`
	Key           string          `json:"key,omitempty"`
	Version       int64           `json:"version"`
	Published     bool            `json:"published"`
	ProductType   Reference       `json:"productType"`
	Name          LocalizedString `json:"name"`
	Description   LocalizedString `json:"description,omitempty"`
	Slug          LocalizedString `json:"slug"`
	Categories    []Reference     `json:"categories"`
	MasterVariant Variant         `json:"masterVariant"`
	Variants      []Variant       `json:"variants"`
}

// AllVariants returns the master variant followed by the other variants.
func (p *ProductProjection) AllVariants() []Variant {
	return append([]Variant{p.MasterVariant}, p.Variants...)
}

// FindVariant returns the variant with the given id.
func (p *ProductProjection) FindVariant(id int) (*Variant, bool) {
	if p.MasterVariant.ID == id {
		return &p.MasterVariant, true
	}
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// CategoryIDs returns the ids of the product categories in order.
func (p *ProductProjection) CategoryIDs() []string {
	ids := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// ProductData is one of the current or staged product versions.
type ProductData struct {
	Name          LocalizedString `json:"name"`
	Description   LocalizedString `json:"description,omitempty"`
	Slug          LocalizedString `json:"slug"`
	Categories    []Reference     `json:"categories"`
	MasterVariant Variant         `json:"masterVariant"`
	Variants      []Variant       `json:"variants"`
}

// MasterData holds the current and staged product data.
type MasterData struct {
	Published        bool        `json:"published"`
	HasStagedChanges bool        `json:"hasStagedChanges"`
	Current          ProductData `json:"current"`
	Staged           ProductData `json:"staged"`
}

// Product is the full product resource.
type Product struct {
	ID          string     `json:"id"`
	Key         string     `json:"key,omitempty"`
	Version     int64      `json:"version"`
	ProductType Reference  `json:"productType"`
	MasterData  MasterData `json:"masterData"`
}

// StagedVariantBySKU finds a staged variant by SKU.
func (p *Product) StagedVariantBySKU(sku string) (*Variant, bool) {
	staged := &p.MasterData.Staged
	if staged.MasterVariant.SKU == sku {
		return &staged.MasterVariant, true
	}
	for i := range staged.Variants {
		if staged.Variants[i].SKU == sku {
			return &staged.Variants[i], true
		}
	}
	return nil, false
}

// VariantDraft describes a variant to create.
type VariantDraft struct {
	SKU        string      `json:"sku"`
	Attributes []Attribute `json:"attributes"`
}

// ProductDraft describes a product to create. Name, Description and Slug hold
// either a LocalizedString shaped map or a plain value, as mapped.
type ProductDraft struct {
	Name          any          `json:"name,omitempty"`
	Description   any          `json:"description,omitempty"`
	Slug          any          `json:"slug,omitempty"`
	ProductType   Reference    `json:"productType"`
	Categories    []Reference  `json:"categories"`
	MasterVariant VariantDraft `json:"masterVariant"`
}

// Product update action names
const (
	ActionSetAttribute       = "setAttribute"
	ActionChangeName         = "changeName"
	ActionSetDescription     = "setDescription"
	ActionChangeSlug         = "changeSlug"
	ActionAddToCategory      = "addToCategory"
	ActionRemoveFromCategory = "removeFromCategory"
	ActionSetSku             = "setSku"
	ActionAddVariant         = "addVariant"
	ActionPublish            = "publish"
)

// UpdateAction is a product update action. Only the fields relevant to
// Action are set.
type UpdateAction struct {
	Action      string      `json:"action"`
	VariantID   int         `json:"variantId,omitempty"`
	SKU         string      `json:"sku,omitempty"`
	Name        any         `json:"name,omitempty"`
	Value       any         `json:"value,omitempty"`
	Description any         `json:"description,omitempty"`
	Slug        any         `json:"slug,omitempty"`
	Category    *Reference  `json:"category,omitempty"`
	Attributes  []Attribute `json:"attributes,omitempty"`
}

// SetAttribute sets an attribute on one variant.
func SetAttribute(variantID int, name string, value any) UpdateAction {
	return UpdateAction{Action: ActionSetAttribute, VariantID: variantID, Name: name, Value: value}
}

// ChangeName replaces the product name.
func ChangeName(name any) UpdateAction {
	return UpdateAction{Action: ActionChangeName, Name: name}
}

// SetDescription replaces the product description.
func SetDescription(description any) UpdateAction {
	return UpdateAction{Action: ActionSetDescription, Description: description}
}

// ChangeSlug replaces the product slug.
func ChangeSlug(slug any) UpdateAction {
	return UpdateAction{Action: ActionChangeSlug, Slug: slug}
}

// AddToCategory adds the product to a category.
func AddToCategory(id string) UpdateAction {
	return UpdateAction{Action: ActionAddToCategory, Category: &Reference{ID: id, TypeID: TypeCategory}}
}

// RemoveFromCategory removes the product from a category.
func RemoveFromCategory(id string) UpdateAction {
	return UpdateAction{Action: ActionRemoveFromCategory, Category: &Reference{ID: id, TypeID: TypeCategory}}
}

// SetSku changes the SKU of a variant.
func SetSku(variantID int, sku string) UpdateAction {
	return UpdateAction{Action: ActionSetSku, VariantID: variantID, SKU: sku}
}

// AddVariant adds a variant to an existing product.
func AddVariant(draft VariantDraft) UpdateAction {
	return UpdateAction{Action: ActionAddVariant, SKU: draft.SKU, Attributes: draft.Attributes}
}

// Publish publishes the staged product data.
func Publish() UpdateAction {
	return UpdateAction{Action: ActionPublish}
}

// ImageUpload is a binary image attached to a product variant.
type ImageUpload struct {
	Data        []byte
	Filename    string
	ContentType string
	SKU         string
}

// CustomObject is a JSON document addressed by container and key.
type CustomObject struct {
	ID        string          `json:"id"`
	Container string          `json:"container"`
	Key       string          `json:"key"`
	Version   int64           `json:"version"`
	Value     json.RawMessage `json:"value"`
}

// CustomObjectDraft creates or updates a custom object. A non-nil Version
// makes the write conditional on the stored version.
type CustomObjectDraft struct {
	Container string          `json:"container"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	Version   *int64          `json:"version,omitempty"`
}
