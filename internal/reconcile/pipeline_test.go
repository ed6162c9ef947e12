package reconcile

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/composable-com/ct-connect-akeneo/internal/commerce"
	"github.com/composable-com/ct-connect-akeneo/internal/mappers"
	"github.com/composable-com/ct-connect-akeneo/internal/mapping"
	"github.com/composable-com/ct-connect-akeneo/internal/pim"
	"github.com/composable-com/ct-connect-akeneo/internal/reconcile/mocks"
)

func ptr[T any](v T) *T { return &v }

func testConfig() *mapping.Config {
	return &mapping.Config{
		AkeneoScope:   "ecommerce",
		LocaleMapping: map[string]string{"en_US": "en-US"},
		CategoryMapping: map[string]mapping.CategoryTarget{
			"cat-a": {CommercetoolsCategoryID: "cat-1"},
			"cat-b": {CommercetoolsCategoryID: "cat-2"},
		},
		FamilyMapping: map[string]mapping.FamilyRule{
			"shirt": {
				CommercetoolsProductTypeID: "pt-1",
				AkeneoImagesAttribute:      "shirt_images",
				CoreAttributeMapping:       map[string]mapping.CoreField{"title": mapping.CoreFieldName},
				AttributeMapping:           map[string]mapping.AttributeTarget{"color": {Name: "ct_color"}},
			},
		},
	}
}

func newPipeline(t *testing.T, opts Options) (*Pipeline, *mocks.MockSource, *mocks.MockDestination) {
	t.Helper()
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	dst := mocks.NewMockDestination(ctrl)
	return NewPipeline(src, dst, opts), src, dst
}

func shirt() *pim.Product {
	return &pim.Product{
		UUID:       "uuid-p1",
		Identifier: "p1",
		Enabled:    true,
		Family:     "shirt",
		Categories: []string{"cat-a"},
		Values: pim.Values{
			"title": {{Locale: ptr("en_US"), Data: "Shirt", AttributeType: pim.AttributeTypeText}},
			"color": {{Data: "blue", AttributeType: pim.AttributeTypeText}},
		},
	}
}

// existingShirt is what commerce holds after shirt() was created.
func existingShirt(published bool) *commerce.ProductProjection {
	return &commerce.ProductProjection{
		ID:         "prod-1",
		Version:    7,
		Published:  published,
		Name:       commerce.LocalizedString{"en-US": "Shirt"},
		Categories: []commerce.Reference{{ID: "cat-1", TypeID: commerce.TypeCategory}},
		MasterVariant: commerce.Variant{
			ID:  1,
			SKU: "p1",
			Attributes: []commerce.Attribute{
				{Name: "ct_color", Value: "blue"},
				{Name: mappers.AttributeAkeneoID, Value: "uuid-p1"},
				{Name: mappers.AttributeAkeneoParentCode, Value: "uuid-p1"},
			},
		},
	}
}

func TestSync_NewProduct(t *testing.T) {
	t.Parallel()

	p, _, dst := newPipeline(t, Options{SetPublishedToModified: ptr(true)})
	ctx := context.Background()

	dst.EXPECT().FindByParentCode(gomock.Any(), "uuid-p1").Return(nil, nil)
	dst.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, draft commerce.ProductDraft) (*commerce.Product, error) {
			assert.Equal(t, "pt-1", draft.ProductType.ID)
			assert.Equal(t, "p1", draft.MasterVariant.SKU)
			assert.Contains(t, draft.MasterVariant.Attributes, commerce.Attribute{Name: mappers.AttributeAkeneoID, Value: "uuid-p1"})
			assert.Equal(t, []commerce.Reference{{ID: "cat-1", TypeID: commerce.TypeCategory}}, draft.Categories)
			return &commerce.Product{ID: "prod-1", Version: 1}, nil
		})

	result, err := p.Sync(ctx, shirt(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNew, result.Outcome.Kind)
	assert.Equal(t, "p1", result.Outcome.SKU)
	assert.Equal(t, "prod-1", result.Product.ID)
	assert.True(t, result.Images.Success)
}

func TestSync_UnchangedVariantRefetches(t *testing.T) {
	t.Parallel()

	p, _, dst := newPipeline(t, Options{SetPublishedToModified: ptr(true)})
	existing := existingShirt(false)

	dst.EXPECT().FindByParentCode(gomock.Any(), "uuid-p1").Return(existing, nil)
	dst.EXPECT().GetProduct(gomock.Any(), "prod-1").Return(&commerce.Product{ID: "prod-1", Version: 7}, nil)

	result, err := p.Sync(context.Background(), shirt(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, OutcomeExistingVariant, result.Outcome.Kind)
	assert.Equal(t, 1, result.Outcome.VariantID)
}

func TestSync_ExistingVariantDiff(t *testing.T) {
	t.Parallel()

	p, _, dst := newPipeline(t, Options{SetPublishedToModified: ptr(true)})
	existing := existingShirt(false)
	existing.Categories = []commerce.Reference{{ID: "cat-3", TypeID: commerce.TypeCategory}}

	item := shirt()
	item.Values["color"] = []pim.Value{{Data: "red", AttributeType: pim.AttributeTypeText}}
	item.Values["sku_field"] = []pim.Value{{Data: "p1-new"}}
	cfg := testConfig()
	rule := cfg.FamilyMapping["shirt"]
	rule.AkeneoSkuField = "sku_field"
	cfg.FamilyMapping["shirt"] = rule

	dst.EXPECT().FindByParentCode(gomock.Any(), "uuid-p1").Return(existing, nil)
	dst.EXPECT().UpdateProduct(gomock.Any(), "prod-1", int64(7), []commerce.UpdateAction{
		commerce.SetAttribute(1, "ct_color", "red"),
		commerce.AddToCategory("cat-1"),
		commerce.RemoveFromCategory("cat-3"),
		commerce.SetSku(1, "p1-new"),
	}).Return(&commerce.Product{ID: "prod-1", Version: 8}, nil)

	result, err := p.Sync(context.Background(), item, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(8), result.Product.Version)
}

func TestSync_NewVariantOnExistingProduct(t *testing.T) {
	t.Parallel()

	p, src, dst := newPipeline(t, Options{SetPublishedToModified: ptr(true)})
	existing := existingShirt(false)

	item := shirt()
	item.UUID = "uuid-p2"
	item.Identifier = "p2"
	item.Parent = ptr("model-shirt")
	existing.MasterVariant.Attributes[2].Value = "model-shirt"

	src.EXPECT().GetProductModel(gomock.Any(), "model-shirt").Return(&pim.ProductModel{Code: "model-shirt"}, nil)
	dst.EXPECT().FindByParentCode(gomock.Any(), "model-shirt").Return(existing, nil)
	dst.EXPECT().UpdateProduct(gomock.Any(), "prod-1", int64(7), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ int64, actions []commerce.UpdateAction) (*commerce.Product, error) {
			require.Len(t, actions, 1, "a new variant carries no category or sku diff")
			assert.Equal(t, commerce.ActionAddVariant, actions[0].Action)
			assert.Equal(t, "p2", actions[0].SKU)
			assert.Contains(t, actions[0].Attributes, commerce.Attribute{Name: mappers.AttributeAkeneoParentCode, Value: "model-shirt"})
			return &commerce.Product{ID: "prod-1", Version: 8}, nil
		})

	result, err := p.Sync(context.Background(), item, testConfig())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNewVariant, result.Outcome.Kind)
}

func TestSync_DisabledExistingProductIsSkipped(t *testing.T) {
	t.Parallel()

	p, _, dst := newPipeline(t, Options{})
	item := shirt()
	item.Enabled = false

	dst.EXPECT().FindByParentCode(gomock.Any(), "uuid-p1").Return(existingShirt(true), nil)

	result, err := p.Sync(context.Background(), item, testConfig())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkip, result.Outcome.Kind)
	assert.Nil(t, result.Product)
}

func TestSync_PublishTruthTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                   string
		published              bool
		setPublishedToModified *bool
		wantPublish            bool
	}{
		{name: "published, keep modified", published: true, setPublishedToModified: ptr(true), wantPublish: false},
		{name: "published, republish", published: true, setPublishedToModified: ptr(false), wantPublish: true},
		{name: "published, unset", published: true, wantPublish: false},
		{name: "unpublished, keep modified", published: false, setPublishedToModified: ptr(true), wantPublish: false},
		{name: "unpublished, republish", published: false, setPublishedToModified: ptr(false), wantPublish: false},
		{name: "unpublished, unset", published: false, wantPublish: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, _, dst := newPipeline(t, Options{SetPublishedToModified: tt.setPublishedToModified})
			item := shirt()
			item.Values["color"] = []pim.Value{{Data: "green", AttributeType: pim.AttributeTypeText}}

			dst.EXPECT().FindByParentCode(gomock.Any(), gomock.Any()).Return(existingShirt(tt.published), nil)
			dst.EXPECT().UpdateProduct(gomock.Any(), "prod-1", int64(7), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, _ int64, actions []commerce.UpdateAction) (*commerce.Product, error) {
					last := actions[len(actions)-1]
					assert.Equal(t, tt.wantPublish, last.Action == commerce.ActionPublish)
					return &commerce.Product{ID: "prod-1", Version: 8}, nil
				})

			_, err := p.Sync(context.Background(), item, testConfig())
			require.NoError(t, err)
		})
	}
}

func TestSync_StepErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	t.Run("parent", func(t *testing.T) {
		t.Parallel()
		p, src, _ := newPipeline(t, Options{})
		item := shirt()
		item.Parent = ptr("model")
		src.EXPECT().GetProductModel(gomock.Any(), "model").Return(nil, boom)

		_, err := p.Sync(context.Background(), item, testConfig())
		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, StepFetchParent, stepErr.Step)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unmapped family", func(t *testing.T) {
		t.Parallel()
		p, _, _ := newPipeline(t, Options{})
		item := shirt()
		item.Family = "hat"

		_, err := p.Sync(context.Background(), item, testConfig())
		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, StepCheckExistence, stepErr.Step)
		assert.ErrorIs(t, err, mapping.ErrFamilyNotMapped)
	})

	t.Run("upsert", func(t *testing.T) {
		t.Parallel()
		p, _, dst := newPipeline(t, Options{})
		dst.EXPECT().FindByParentCode(gomock.Any(), gomock.Any()).Return(nil, nil)
		dst.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).Return(nil, boom)

		_, err := p.Sync(context.Background(), shirt(), testConfig())
		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, StepUpsert, stepErr.Step)
	})
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil))
	return buf.Bytes()
}

func TestSync_Images(t *testing.T) {
	t.Parallel()

	p, src, dst := newPipeline(t, Options{SetPublishedToModified: ptr(true)})
	item := shirt()
	item.Values["shirt_images"] = []pim.Value{{
		Scope:             ptr("ecommerce"),
		Data:              []any{"front_view_of_the_blue_shirt", "blue-tee-side", "back"},
		ReferenceDataName: ptr("packshots"),
	}}

	created := &commerce.Product{ID: "prod-1", Version: 1}
	created.MasterData.Staged.MasterVariant = commerce.Variant{
		ID:  1,
		SKU: "p1",
		Images: []commerce.Image{
			{URL: "https://cdn.example.com/x/front_view_of_the_bl-Xy12.jpeg"},
			{URL: "https://cdn.example.com/x/blue-tee-side-Pq7Rs.jpeg"},
		},
	}

	dst.EXPECT().FindByParentCode(gomock.Any(), gomock.Any()).Return(nil, nil)
	dst.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).Return(created, nil)
	src.EXPECT().GetAssetDownloadURL(gomock.Any(), "packshots", "back").Return("https://pim.example.com/files/back.jpg", nil)
	src.EXPECT().GetFile(gomock.Any(), "https://pim.example.com/files/back.jpg").Return(jpegBytes(t), nil)
	dst.EXPECT().AddProductImage(gomock.Any(), "prod-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, img commerce.ImageUpload) (*commerce.Product, error) {
			assert.Equal(t, "back", img.Filename)
			assert.Equal(t, "image/jpeg", img.ContentType)
			assert.Equal(t, "p1", img.SKU)
			assert.NotEmpty(t, img.Data)
			return created, nil
		})

	result, err := p.Sync(context.Background(), item, testConfig())
	require.NoError(t, err)
	assert.Equal(t, ImageResult{Success: true, Uploaded: 1, Skipped: 2}, result.Images)
}

func TestSync_ImageFailureDoesNotFailItem(t *testing.T) {
	t.Parallel()

	p, src, dst := newPipeline(t, Options{SetPublishedToModified: ptr(true)})
	item := shirt()
	item.Values["shirt_images"] = []pim.Value{{Data: []any{"front"}, ReferenceDataName: ptr("packshots")}}

	dst.EXPECT().FindByParentCode(gomock.Any(), gomock.Any()).Return(nil, nil)
	dst.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).Return(&commerce.Product{ID: "prod-1"}, nil)
	src.EXPECT().GetAssetDownloadURL(gomock.Any(), "packshots", "front").Return("", pim.ErrNoDownloadLink)

	result, err := p.Sync(context.Background(), item, testConfig())
	require.NoError(t, err)
	assert.False(t, result.Images.Success)
	assert.ErrorIs(t, result.Images.Err, pim.ErrNoDownloadLink)
}

func TestFileExtension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "jpg", fileExtension("https://pim.example.com/a/b/front.JPG?token=1"))
	assert.Equal(t, "png", fileExtension("https://pim.example.com/a/b/front.png"))
	assert.Equal(t, "", fileExtension("https://pim.example.com/a/b/front"))
}
