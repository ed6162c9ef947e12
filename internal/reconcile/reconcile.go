// Package reconcile brings one PIM product in line with the commerce catalog:
// it resolves the product's parent, matches it against the existing commerce
// product, computes the minimal set of changes, writes them and attaches any
// missing images.
package reconcile

import (
	"context"
	"fmt"

	"github.com/composable-com/ct-connect-akeneo/internal/commerce"
	"github.com/composable-com/ct-connect-akeneo/internal/pim"
)

//go:generate mockgen -destination=mocks/mock_reconcile.go -package=mocks -source=reconcile.go Source,Destination

// Source is the PIM side of the pipeline.
type Source interface {
	GetProductModel(ctx context.Context, code string) (*pim.ProductModel, error)
	GetAssetDownloadURL(ctx context.Context, assetFamily, code string) (string, error)
	GetFile(ctx context.Context, fileURL string) ([]byte, error)
}

// Destination is the commerce side of the pipeline.
type Destination interface {
	FindByParentCode(ctx context.Context, parentCode string) (*commerce.ProductProjection, error)
	CreateProduct(ctx context.Context, draft commerce.ProductDraft) (*commerce.Product, error)
	UpdateProduct(ctx context.Context, id string, version int64, actions []commerce.UpdateAction) (*commerce.Product, error)
	GetProduct(ctx context.Context, id string) (*commerce.Product, error)
	AddProductImage(ctx context.Context, id string, img commerce.ImageUpload) (*commerce.Product, error)
}

// OutcomeKind is the branch the pipeline took for an item.
type OutcomeKind string

const (
	// OutcomeNew means no commerce product exists for the item yet
	OutcomeNew OutcomeKind = "new"

	// OutcomeNewVariant means the product exists but not the item's variant
	OutcomeNewVariant OutcomeKind = "existing-product-new-variant"

	// OutcomeExistingVariant means the item's variant exists and is diffed
	OutcomeExistingVariant OutcomeKind = "existing-variant"

	// OutcomeSkip means the item is disabled and its product left alone
	OutcomeSkip OutcomeKind = "skip"
)

// Outcome is the result of matching an item against the commerce catalog.
type Outcome struct {
	Kind OutcomeKind
	// VariantID is the matched variant, or the master variant when the
	// item has no variant on the product yet.
	VariantID int
	Existing  *commerce.ProductProjection
	SKU       string
}

// Step names a pipeline stage, used to tell where an item failed.
type Step string

// Pipeline steps
const (
	StepFetchParent    Step = "fetch-parent"
	StepCheckExistence Step = "check-existence"
	StepMap            Step = "map"
	StepUpsert         Step = "upsert"
)

// StepError is returned when a pipeline step fails.
type StepError struct {
	Step Step
	Err  error
}

// Error returns the error message
func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error
func (e *StepError) Unwrap() error {
	return e.Err
}

// ImageResult reports how the image sync went. Image failures never fail the item.
type ImageResult struct {
	Success  bool
	Uploaded int
	Skipped  int
	Err      error
}

// Result is what Sync returns for an item that went through the pipeline.
type Result struct {
	Outcome Outcome
	// Product is the commerce product after the upsert, nil when skipped.
	Product *commerce.Product
	Images  ImageResult
}
