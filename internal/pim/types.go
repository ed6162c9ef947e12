// Package pim is a client for the Akeneo PIM REST API, limited to the
// endpoints the catalog sync reads from.
package pim

import "time"

// Attribute types the sync knows how to decode.
const (
	AttributeTypeBoolean      = "pim_catalog_boolean"
	AttributeTypeNumber       = "pim_catalog_number"
	AttributeTypeText         = "pim_catalog_text"
	AttributeTypeTextarea     = "pim_catalog_textarea"
	AttributeTypeSimpleSelect = "pim_catalog_simpleselect"
	AttributeTypeMultiSelect  = "pim_catalog_multiselect"
	AttributeTypeAssetFamily  = "pim_catalog_asset_collection"
)

// Values holds product values keyed by attribute code.
type Values map[string][]Value

// Value is a single, possibly localized and scoped, attribute value.
type Value struct {
	Locale            *string `json:"locale"`
	Scope             *string `json:"scope"`
	Data              any     `json:"data"`
	ReferenceDataName *string `json:"reference_data_name,omitempty"`
	AttributeType     string  `json:"attribute_type"`
}

// Product is a PIM product as returned by the products endpoint.
type Product struct {
	UUID       string   `json:"uuid"`
	Identifier string   `json:"identifier"`
	Enabled    bool     `json:"enabled"`
	Family     string   `json:"family"`
	Categories []string `json:"categories"`
	Parent     *string  `json:"parent"`
	Values     Values   `json:"values"`
	Created    string   `json:"created,omitempty"`
	Updated    string   `json:"updated,omitempty"`
}

// ProductModel is the parent of variant products.
type ProductModel struct {
	Code          string   `json:"code"`
	Family        string   `json:"family"`
	FamilyVariant string   `json:"family_variant"`
	Categories    []string `json:"categories"`
	Values        Values   `json:"values"`
}

// ListParams filters a products listing.
type ListParams struct {
	Families     []string
	Completeness string
	Scope        string
	Limit        int
	// SearchAfter is the opaque cursor returned by the previous page.
	SearchAfter string
	// UpdatedAfter restricts the listing to products updated after this time.
	UpdatedAfter *time.Time
}

// Page is one page of products.
type Page struct {
	Items []Product
	// NextCursor is empty on the last page.
	NextCursor string
}
