// Package mapping contains the data mapping configuration that drives how PIM
// products are translated into commerce catalog records.
package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// CoreField is a commerce product field that is not an attribute.
type CoreField string

const (
	// CoreFieldName maps to the product name
	CoreFieldName CoreField = "name"
	// CoreFieldDescription maps to the product description
	CoreFieldDescription CoreField = "description"
	// CoreFieldSlug maps to the product slug
	CoreFieldSlug CoreField = "slug"
)

// ErrFamilyNotMapped is returned when a product belongs to a family that has
// no entry in the family mapping.
var ErrFamilyNotMapped = errors.New("family is not defined in the config")

// Config is the data mapping configuration saved through the sync manager.
// Only families listed in FamilyMapping are synchronized.
type Config struct {
	FamilyMapping   map[string]FamilyRule     `json:"familyMapping"`
	LocaleMapping   map[string]string         `json:"localeMapping"`
	CategoryMapping map[string]CategoryTarget `json:"categoryMapping"`
	AkeneoScope     string                    `json:"akeneoScope"`
}

// FamilyRule describes how products of one PIM family are mapped.
type FamilyRule struct {
	CommercetoolsProductTypeID    string                     `json:"commercetoolsProductTypeId"`
	CommercetoolsProductTypeLabel string                     `json:"commercetoolsProductTypeLabel,omitempty"`
	AkeneoImagesAttribute         string                     `json:"akeneoImagesAttribute"`
	AkeneoSkuField                string                     `json:"akeneoSkuField,omitempty"`
	CoreAttributeMapping          map[string]CoreField       `json:"coreAttributeMapping"`
	AttributeMapping              map[string]AttributeTarget `json:"attributeMapping"`
}

// CategoryTarget points a PIM category code at a commerce category.
type CategoryTarget struct {
	CommercetoolsCategoryID string `json:"commercetoolsCategoryid"`
	Label                   string `json:"label,omitempty"`
}

// AttributeTarget is either a plain destination attribute name or an enum
// mapping for simple select attributes. Exactly one of Name and Enum is set.
type AttributeTarget struct {
	Name string
	Enum *EnumMapping
}

// EnumMapping maps PIM option codes to commerce enum keys.
type EnumMapping struct {
	CommercetoolsAttribute string
	Options                map[string]string
}

// DestinationName returns the commerce attribute name this target writes to.
func (t AttributeTarget) DestinationName() string {
	if t.Enum != nil {
		return t.Enum.CommercetoolsAttribute
	}
	return t.Name
}

// Lookup resolves a PIM option code to an enum key. The second return value is
// false for plain targets or unknown options.
func (t AttributeTarget) Lookup(option string) (string, bool) {
	if t.Enum == nil {
		return "", false
	}
	key, ok := t.Enum.Options[option]
	return key, ok
}

// UnmarshalJSON accepts either a string or an object holding
// commercetoolsAttribute plus one key per option code.
func (t *AttributeTarget) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*t = AttributeTarget{Name: name}
		return nil
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("attribute mapping must be a string or an object of strings: %w", err)
	}

	attr, ok := raw["commercetoolsAttribute"]
	if !ok || attr == "" {
		return errors.New("enum attribute mapping requires commercetoolsAttribute")
	}
	delete(raw, "commercetoolsAttribute")

	*t = AttributeTarget{Enum: &EnumMapping{CommercetoolsAttribute: attr, Options: raw}}
	return nil
}

// MarshalJSON writes the target back in the same shape it was read.
func (t AttributeTarget) MarshalJSON() ([]byte, error) {
	if t.Enum == nil {
		return json.Marshal(t.Name)
	}
	out := make(map[string]string, len(t.Enum.Options)+1)
	maps.Copy(out, t.Enum.Options)
	out["commercetoolsAttribute"] = t.Enum.CommercetoolsAttribute
	return json.Marshal(out)
}

// Families returns the mapped family codes in a stable order.
func (c *Config) Families() []string {
	return slices.Sorted(maps.Keys(c.FamilyMapping))
}

// Family returns the rule for a family code.
func (c *Config) Family(code string) (FamilyRule, error) {
	rule, ok := c.FamilyMapping[code]
	if !ok {
		return FamilyRule{}, fmt.Errorf("%w: %q", ErrFamilyNotMapped, code)
	}
	return rule, nil
}

// Parse decodes and validates a mapping config document.
func Parse(data []byte) (*Config, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode mapping config: %w", err)
	}
	return &cfg, nil
}
