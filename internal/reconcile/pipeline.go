package reconcile

import (
	"context"
	"log/slog"

	"github.com/composable-com/ct-connect-akeneo/internal/commerce"
	"github.com/composable-com/ct-connect-akeneo/internal/mappers"
	"github.com/composable-com/ct-connect-akeneo/internal/mapping"
	"github.com/composable-com/ct-connect-akeneo/internal/pim"
)

// Options tune the pipeline.
type Options struct {
	// SetPublishedToModified leaves updated products with staged changes.
	// Only an explicit false publishes products that were published again
	// after every update.
	SetPublishedToModified *bool
}

// Pipeline reconciles single items. It is safe for concurrent use as long as
// the Source and Destination are.
type Pipeline struct {
	source Source
	dest   Destination
	opts   Options
}

// NewPipeline creates a pipeline.
func NewPipeline(source Source, dest Destination, opts Options) *Pipeline {
	return &Pipeline{source: source, dest: dest, opts: opts}
}

// Sync runs the pipeline for item. Any returned error is a *StepError and
// means the item failed; the caller decides what to do with the rest of the batch.
func (p *Pipeline) Sync(ctx context.Context, item *pim.Product, cfg *mapping.Config) (*Result, error) {
	parent, err := p.fetchParent(ctx, item)
	if err != nil {
		return nil, &StepError{Step: StepFetchParent, Err: err}
	}

	outcome, err := p.CheckExistence(ctx, item, cfg)
	if err != nil {
		return nil, &StepError{Step: StepCheckExistence, Err: err}
	}

	result := &Result{Outcome: outcome, Images: ImageResult{Success: true}}
	if outcome.Kind == OutcomeSkip {
		slog.Debug("Skipping disabled product", "identifier", item.Identifier, "uuid", item.UUID)
		return result, nil
	}

	var (
		draft   *commerce.ProductDraft
		actions []commerce.UpdateAction
	)
	switch outcome.Kind {
	case OutcomeNew:
		d, err := mappers.MapProductDraft(item, parent, outcome.SKU, cfg)
		if err != nil {
			return nil, &StepError{Step: StepMap, Err: err}
		}
		draft = &d

	case OutcomeNewVariant:
		v, err := mappers.MapVariantDraft(item, outcome.SKU, cfg)
		if err != nil {
			return nil, &StepError{Step: StepMap, Err: err}
		}
		actions = []commerce.UpdateAction{commerce.AddVariant(v)}

	case OutcomeExistingVariant:
		actions, err = updateActions(item, parent, outcome, cfg)
		if err != nil {
			return nil, &StepError{Step: StepMap, Err: err}
		}
	}

	product, err := p.upsert(ctx, draft, actions, outcome.Existing)
	if err != nil {
		return nil, &StepError{Step: StepUpsert, Err: err}
	}
	result.Product = product

	if product != nil {
		result.Images = p.syncImages(ctx, item, cfg, product, outcome.SKU)
		if !result.Images.Success {
			slog.Warn("Failed to sync product images",
				"identifier", item.Identifier, "sku", outcome.SKU, "error", result.Images.Err)
		}
	}
	return result, nil
}

func (p *Pipeline) fetchParent(ctx context.Context, item *pim.Product) (*pim.ProductModel, error) {
	if item.Parent == nil || *item.Parent == "" {
		return nil, nil
	}
	return p.source.GetProductModel(ctx, *item.Parent)
}

// CheckExistence matches item against the commerce catalog.
func (p *Pipeline) CheckExistence(ctx context.Context, item *pim.Product, cfg *mapping.Config) (Outcome, error) {
	rule, err := cfg.Family(item.Family)
	if err != nil {
		return Outcome{}, err
	}

	existing, err := p.dest.FindByParentCode(ctx, mappers.ParentCode(item))
	if err != nil {
		return Outcome{}, err
	}

	sku := mappers.ResolveSKU(item, rule)
	if existing == nil {
		return Outcome{Kind: OutcomeNew, SKU: sku}, nil
	}
	if !item.Enabled {
		return Outcome{Kind: OutcomeSkip, Existing: existing, SKU: sku}, nil
	}

	for _, v := range existing.AllVariants() {
		if v.HasAttribute(mappers.AttributeAkeneoID, item.UUID) {
			return Outcome{Kind: OutcomeExistingVariant, VariantID: v.ID, Existing: existing, SKU: sku}, nil
		}
	}
	return Outcome{Kind: OutcomeNewVariant, VariantID: existing.MasterVariant.ID, Existing: existing, SKU: sku}, nil
}

// updateActions diffs the matched variant: attributes, then categories, then SKU.
func updateActions(item *pim.Product, parent *pim.ProductModel, outcome Outcome, cfg *mapping.Config) ([]commerce.UpdateAction, error) {
	rule, err := cfg.Family(item.Family)
	if err != nil {
		return nil, err
	}

	var actions []commerce.UpdateAction
	if variant, ok := outcome.Existing.FindVariant(outcome.VariantID); ok {
		mapped := mappers.MapAttributes(mappers.MergeValues(parent, item.Values), cfg, rule)
		actions = append(actions, mappers.DiffAttributes(mapped, outcome.Existing, variant)...)
	}

	categories := mappers.DiffCategories(mappers.MapCategories(item.Categories, cfg), outcome.Existing.CategoryIDs())
	actions = append(actions, mappers.CategoryActions(categories)...)
	actions = append(actions, mappers.DiffSku(outcome.Existing, outcome.SKU, outcome.VariantID)...)
	return actions, nil
}

func (p *Pipeline) upsert(
	ctx context.Context,
	draft *commerce.ProductDraft,
	actions []commerce.UpdateAction,
	existing *commerce.ProductProjection,
) (*commerce.Product, error) {
	publish := p.shouldPublish(existing)

	if len(actions) > 0 && existing != nil {
		if publish {
			actions = append(actions, commerce.Publish())
		}
		return p.dest.UpdateProduct(ctx, existing.ID, existing.Version, actions)
	}

	if draft != nil {
		created, err := p.dest.CreateProduct(ctx, *draft)
		if err != nil {
			return nil, err
		}
		if publish {
			if _, err := p.dest.UpdateProduct(ctx, created.ID, created.Version, []commerce.UpdateAction{commerce.Publish()}); err != nil {
				return nil, err
			}
		}
		return created, nil
	}

	if existing != nil {
		return p.dest.GetProduct(ctx, existing.ID)
	}
	return nil, nil
}

// shouldPublish reports whether an update must be followed by a publish.
func (p *Pipeline) shouldPublish(existing *commerce.ProductProjection) bool {
	republish := p.opts.SetPublishedToModified != nil && !*p.opts.SetPublishedToModified
	return republish && existing != nil && existing.Published
}
