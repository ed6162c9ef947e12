// Package mappers translates PIM product data into commerce catalog drafts and
// computes the minimal update actions needed to bring an existing commerce
// product in line with its PIM source. Everything here is free of I/O.
package mappers

import (
	"encoding/json"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/composable-com/ct-connect-akeneo/internal/commerce"
	"github.com/composable-com/ct-connect-akeneo/internal/mapping"
	"github.com/composable-com/ct-connect-akeneo/internal/pim"
)

// coreFieldOrder fixes the order in which core field actions are emitted.
var coreFieldOrder = []mapping.CoreField{
	mapping.CoreFieldName,
	mapping.CoreFieldDescription,
	mapping.CoreFieldSlug,
}

// Mapped is the commerce view of a set of PIM values.
type Mapped struct {
	Core       map[mapping.CoreField]any
	Attributes []commerce.Attribute
}

// MapAttributes maps PIM values to core fields and attributes following the
// family rule. Values outside the configured scope or with an unmapped locale
// are dropped.
func MapAttributes(values pim.Values, cfg *mapping.Config, rule mapping.FamilyRule) Mapped {
	out := Mapped{Core: map[mapping.CoreField]any{}}

	for _, code := range slices.Sorted(maps.Keys(rule.CoreAttributeMapping)) {
		field := rule.CoreAttributeMapping[code]
		v, ok := foldValues(values[code], cfg, mapping.AttributeTarget{Name: string(field)})
		if ok {
			out.Core[field] = v
		}
	}

	for _, code := range slices.Sorted(maps.Keys(rule.AttributeMapping)) {
		target := rule.AttributeMapping[code]
		v, ok := foldValues(values[code], cfg, target)
		if ok {
			out.Attributes = append(out.Attributes, commerce.Attribute{Name: target.DestinationName(), Value: v})
		}
	}

	return out
}

// foldValues filters entries by scope and locale, decodes them, and folds
// localized entries into a destination locale map. A non-localized entry
// replaces whatever has been folded so far.
func foldValues(entries []pim.Value, cfg *mapping.Config, target mapping.AttributeTarget) (any, bool) {
	var (
		result    any
		localized map[string]any
		matched   bool
	)

	for _, e := range entries {
		if e.Scope != nil && *e.Scope != cfg.AkeneoScope {
			continue
		}
		var destLocale string
		if e.Locale != nil {
			l, ok := cfg.LocaleMapping[*e.Locale]
			if !ok {
				continue
			}
			destLocale = l
		}

		decoded, ok := decodeValue(e, target)
		if !ok {
			continue
		}
		matched = true

		if destLocale == "" {
			result = decoded
			localized = nil
			continue
		}
		if localized == nil {
			if result != nil {
				// a scalar was already chosen, localized entries cannot be merged into it
				continue
			}
			localized = map[string]any{}
			result = localized
		}
		localized[destLocale] = decoded
	}

	if !matched || result == nil {
		return nil, false
	}
	return result, true
}

// decodeValue converts raw PIM data to its commerce representation based on
// the attribute type. Unknown types pass through unchanged.
func decodeValue(v pim.Value, target mapping.AttributeTarget) (any, bool) {
	switch v.AttributeType {
	case pim.AttributeTypeBoolean:
		return decodeBool(v.Data), true
	case pim.AttributeTypeNumber:
		return decodeNumber(v.Data), true
	case pim.AttributeTypeText, pim.AttributeTypeTextarea:
		return v.Data, v.Data != nil
	case pim.AttributeTypeSimpleSelect:
		option, ok := v.Data.(string)
		if !ok {
			return v.Data, v.Data != nil
		}
		if target.Enum == nil {
			return option, true
		}
		return target.Lookup(option)
	case pim.AttributeTypeMultiSelect:
		return decodeList(v.Data), true
	default:
		return v.Data, v.Data != nil
	}
}

func decodeBool(data any) bool {
	switch d := data.(type) {
	case bool:
		return d
	case string:
		b, err := strconv.ParseBool(d)
		return err == nil && b
	case float64:
		return d != 0
	default:
		return data != nil
	}
}

func decodeNumber(data any) any {
	switch d := data.(type) {
	case float64:
		return d
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(d), 64)
		if err != nil {
			return d
		}
		return f
	default:
		return data
	}
}

func decodeList(data any) []string {
	switch d := data.(type) {
	case string:
		if d == "" {
			return []string{}
		}
		return strings.Split(d, ",")
	case []string:
		return d
	case []any:
		out := make([]string, 0, len(d))
		for _, item := range d {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

// DiffAttributes returns the actions needed to move the existing product and
// variant to the mapped values. Values are compared by their JSON form, so an
// unchanged candidate produces no actions.
func DiffAttributes(mapped Mapped, existing *commerce.ProductProjection, variant *commerce.Variant) []commerce.UpdateAction {
	var actions []commerce.UpdateAction

	for _, field := range coreFieldOrder {
		candidate, ok := mapped.Core[field]
		if !ok {
			continue
		}
		switch field {
		case mapping.CoreFieldName:
			if !JSONEqual(candidate, existing.Name) {
				actions = append(actions, commerce.ChangeName(candidate))
			}
		case mapping.CoreFieldDescription:
			if !JSONEqual(candidate, existing.Description) {
				actions = append(actions, commerce.SetDescription(candidate))
			}
		case mapping.CoreFieldSlug:
			if !JSONEqual(candidate, existing.Slug) {
				actions = append(actions, commerce.ChangeSlug(candidate))
			}
		}
	}

	for _, attr := range mapped.Attributes {
		current, ok := variant.AttributeValue(attr.Name)
		if ok && JSONEqual(attr.Value, current) {
			continue
		}
		actions = append(actions, commerce.SetAttribute(variant.ID, attr.Name, attr.Value))
	}

	return actions
}

// JSONEqual reports whether a and b encode to the same JSON document,
// ignoring object key order.
func JSONEqual(a, b any) bool {
	na, errA := normalize(a)
	nb, errB := normalize(b)
	if errA != nil || errB != nil {
		return false
	}
	return reflect.DeepEqual(na, nb)
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
