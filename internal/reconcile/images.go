package reconcile

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/composable-com/ct-connect-akeneo/internal/commerce"
	"github.com/composable-com/ct-connect-akeneo/internal/mappers"
	"github.com/composable-com/ct-connect-akeneo/internal/mapping"
	"github.com/composable-com/ct-connect-akeneo/internal/pim"
)

const jpegQuality = 80

// syncImages uploads the item's assets that are not attached to the variant
// yet. Existing images are never removed.
func (p *Pipeline) syncImages(
	ctx context.Context,
	item *pim.Product,
	cfg *mapping.Config,
	product *commerce.Product,
	sku string,
) ImageResult {
	rule, err := cfg.Family(item.Family)
	if err != nil {
		return ImageResult{Err: err}
	}

	assets := mappers.MapImages(item, cfg, rule.AkeneoImagesAttribute)
	if len(assets) == 0 {
		return ImageResult{Success: true}
	}

	variant, _ := product.StagedVariantBySKU(sku)
	current := mappers.ExistingImageNames(variant)

	result := ImageResult{Success: true}
	for _, asset := range assets {
		filename := mappers.TruncateFilename(asset.FileName)
		if slices.Contains(current, filename) {
			result.Skipped++
			continue
		}

		upload, err := p.fetchImage(ctx, asset)
		if err != nil {
			return ImageResult{Uploaded: result.Uploaded, Skipped: result.Skipped, Err: err}
		}
		upload.Filename = filename
		upload.SKU = sku

		if _, err := p.dest.AddProductImage(ctx, product.ID, upload); err != nil {
			return ImageResult{Uploaded: result.Uploaded, Skipped: result.Skipped, Err: err}
		}
		result.Uploaded++
	}
	return result
}

func (p *Pipeline) fetchImage(ctx context.Context, asset mappers.Asset) (commerce.ImageUpload, error) {
	fileURL, err := p.source.GetAssetDownloadURL(ctx, asset.Family, asset.FileName)
	if err != nil {
		return commerce.ImageUpload{}, err
	}
	data, err := p.source.GetFile(ctx, fileURL)
	if err != nil {
		return commerce.ImageUpload{}, err
	}

	ext := fileExtension(fileURL)
	if ext == "jpg" {
		if data, err = reencodeJPEG(data); err != nil {
			return commerce.ImageUpload{}, fmt.Errorf("failed to convert %s to jpeg: %w", asset.FileName, err)
		}
		ext = "jpeg"
	}

	upload := commerce.ImageUpload{Data: data}
	if ext != "" {
		upload.ContentType = "image/" + ext
	}
	return upload, nil
}

func fileExtension(fileURL string) string {
	p := fileURL
	if u, err := url.Parse(fileURL); err == nil {
		p = u.Path
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

// reencodeJPEG rewrites a .jpg download as a baseline JPEG stream.
func reencodeJPEG(data []byte) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
