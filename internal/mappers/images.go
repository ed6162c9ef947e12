package mappers

import (
	"path"
	"strings"

	"github.com/composable-com/ct-connect-akeneo/internal/commerce"
	"github.com/composable-com/ct-connect-akeneo/internal/mapping"
	"github.com/composable-com/ct-connect-akeneo/internal/pim"
)

// MaxImageFilename is the number of characters commerce keeps of an uploaded
// image filename.
const MaxImageFilename = 20

// Asset references one file of a PIM asset family.
type Asset struct {
	Family   string
	FileName string
}

// MapImages lists the assets referenced by the images attribute within the
// configured scope.
func MapImages(item *pim.Product, cfg *mapping.Config, attribute string) []Asset {
	if attribute == "" {
		return nil
	}

	var assets []Asset
	for _, v := range item.Values[attribute] {
		if v.Scope != nil && *v.Scope != cfg.AkeneoScope {
			continue
		}
		list, ok := v.Data.([]any)
		if !ok {
			continue
		}
		family := ""
		if v.ReferenceDataName != nil {
			family = *v.ReferenceDataName
		}
		for _, entry := range list {
			name, ok := entry.(string)
			if !ok || name == "" {
				continue
			}
			assets = append(assets, Asset{Family: family, FileName: name})
		}
	}
	return assets
}

// TruncateFilename shortens name to the length commerce keeps.
func TruncateFilename(name string) string {
	r := []rune(name)
	if len(r) <= MaxImageFilename {
		return name
	}
	return string(r[:MaxImageFilename])
}

// ExistingImageNames extracts the original filename prefix of each image on a
// variant. Uploaded images are stored as <filename>-<suffix>.<ext> where the
// filename may contain hyphens itself.
func ExistingImageNames(variant *commerce.Variant) []string {
	if variant == nil {
		return nil
	}
	names := make([]string, 0, len(variant.Images))
	for _, img := range variant.Images {
		base := path.Base(img.URL)
		if i := strings.LastIndex(base, "-"); i >= 0 {
			base = base[:i]
		}
		names = append(names, base)
	}
	return names
}
