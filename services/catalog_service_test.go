package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yunshui/materials-api/models"
)

func TestCatalogCreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	created := env.material(t, "Plywood 18mm", models.MaterialTypeAuxiliary, "12.50")

	got, err := env.svc.Catalog.Get(env.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plywood 18mm", got.Name)
	assert.True(t, decimal.RequireFromString("12.5").Equal(got.Price))
	assert.Equal(t, models.MaterialTypeAuxiliary, got.Type)
	assert.Nil(t, got.ImageURL)
}

func TestCatalogCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		input MaterialInput
	}{
		{"missing name", MaterialInput{Type: models.MaterialTypeAuxiliary}},
		{"missing type", MaterialInput{Name: "Glue"}},
		{"unknown type", MaterialInput{Name: "Glue", Type: "RAW"}},
		{"negative quantity", MaterialInput{Name: "Glue", Type: models.MaterialTypeAuxiliary, Quantity: -1}},
		{"negative price", MaterialInput{Name: "Glue", Type: models.MaterialTypeAuxiliary, Price: decimal.NewFromInt(-3)}},
		{"sub-cent price", MaterialInput{Name: "Glue", Type: models.MaterialTypeAuxiliary, Price: decimal.RequireFromString("1.005")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Catalog.Create(env.ctx, tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestCatalogGetNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Catalog.Get(env.ctx, 42)
	assert.ErrorIs(t, err, ErrMaterialNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCatalogListFiltersAndPages(t *testing.T) {
	env := newTestEnv(t)
	env.material(t, "Plywood", models.MaterialTypeAuxiliary, "10")
	env.material(t, "Wood glue", models.MaterialTypeAuxiliary, "3")
	env.material(t, "Oak door", models.MaterialTypeFinished, "800")

	page, err := env.svc.Catalog.List(env.ctx, MaterialQuery{Type: models.MaterialTypeAuxiliary})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, DefaultPageSize, page.Limit)

	page, err = env.svc.Catalog.List(env.ctx, MaterialQuery{Name: "GLUE"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Wood glue", page.Items[0].Name)

	page, err = env.svc.Catalog.List(env.ctx, MaterialQuery{Name: "WOOD"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = env.svc.Catalog.List(env.ctx, MaterialQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Page)

	page, err = env.svc.Catalog.List(env.ctx, MaterialQuery{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.Limit)

	_, err = env.svc.Catalog.List(env.ctx, MaterialQuery{Type: "RAW"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCatalogUpdateIsPartial(t *testing.T) {
	env := newTestEnv(t)
	m := env.material(t, "Plywood", models.MaterialTypeAuxiliary, "10")

	price := decimal.RequireFromString("11.25")
	supplier := "Beta Timber"
	updated, err := env.svc.Catalog.Update(env.ctx, m.ID, MaterialUpdate{Price: &price, Supplier: &supplier})
	require.NoError(t, err)
	assert.Equal(t, "Plywood", updated.Name)
	assert.Equal(t, "Beta Timber", updated.Supplier)

	got, err := env.svc.Catalog.Get(env.ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, price.Equal(got.Price))

	negative := decimal.NewFromInt(-1)
	_, err = env.svc.Catalog.Update(env.ctx, m.ID, MaterialUpdate{Price: &negative})
	assert.ErrorIs(t, err, ErrInvalidInput)

	subCent := decimal.RequireFromString("12.345")
	_, err = env.svc.Catalog.Update(env.ctx, m.ID, MaterialUpdate{Price: &subCent})
	assert.ErrorIs(t, err, ErrInvalidInput)

	trailingZero := decimal.RequireFromString("12.500")
	updated, err = env.svc.Catalog.Update(env.ctx, m.ID, MaterialUpdate{Price: &trailingZero})
	require.NoError(t, err)
	assert.True(t, trailingZero.Equal(updated.Price))

	_, err = env.svc.Catalog.Update(env.ctx, 999, MaterialUpdate{Supplier: &supplier})
	assert.ErrorIs(t, err, ErrMaterialNotFound)
}

func TestCatalogUpdateQuantity(t *testing.T) {
	env := newTestEnv(t)
	m := env.material(t, "Plywood", models.MaterialTypeAuxiliary, "10")

	updated, err := env.svc.Catalog.UpdateQuantity(env.ctx, m.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Quantity)

	_, err = env.svc.Catalog.UpdateQuantity(env.ctx, m.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.svc.Catalog.UpdateQuantity(env.ctx, 999, 1)
	assert.ErrorIs(t, err, ErrMaterialNotFound)
}

func TestCatalogAttachImageReplacesPrevious(t *testing.T) {
	env := newTestEnv(t)
	m := env.material(t, "Oak door", models.MaterialTypeFinished, "800")

	first, err := env.svc.Catalog.AttachImage(env.ctx, m.ID, imageHeader(t, "front.png", []byte("one")))
	require.NoError(t, err)
	require.NotNil(t, first.ImageKey)
	require.NotNil(t, first.ImageURL)
	assert.Contains(t, *first.ImageURL, "materials/mock_front.png")

	second, err := env.svc.Catalog.AttachImage(env.ctx, m.ID, imageHeader(t, "side.jpg", []byte("two")))
	require.NoError(t, err)
	assert.False(t, env.images.ImageExists(*first.ImageKey))
	assert.True(t, env.images.ImageExists(*second.ImageKey))

	got, err := env.svc.Catalog.Get(env.ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ImageURL)
	assert.Contains(t, *got.ImageURL, "mock_side.jpg")
}

func TestCatalogAttachImageRejectsBadFile(t *testing.T) {
	env := newTestEnv(t)
	m := env.material(t, "Oak door", models.MaterialTypeFinished, "800")

	_, err := env.svc.Catalog.AttachImage(env.ctx, m.ID, imageHeader(t, "door.gif", []byte("gif")))
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, 0, env.images.Count())
}

func TestCatalogDeleteRemovesImage(t *testing.T) {
	env := newTestEnv(t)
	m := env.material(t, "Oak door", models.MaterialTypeFinished, "800")
	withImage, err := env.svc.Catalog.AttachImage(env.ctx, m.ID, imageHeader(t, "front.png", []byte("one")))
	require.NoError(t, err)

	require.NoError(t, env.svc.Catalog.Delete(env.ctx, m.ID))
	assert.False(t, env.images.ImageExists(*withImage.ImageKey))

	_, err = env.svc.Catalog.Get(env.ctx, m.ID)
	assert.ErrorIs(t, err, ErrMaterialNotFound)
	assert.ErrorIs(t, env.svc.Catalog.Delete(env.ctx, m.ID), ErrMaterialNotFound)
}

func TestCatalogWithoutImageStorage(t *testing.T) {
	env := newTestEnv(t)
	catalog := NewCatalogService(env.store.Materials, nil)
	m := env.material(t, "Oak door", models.MaterialTypeFinished, "800")

	_, err := catalog.AttachImage(env.ctx, m.ID, imageHeader(t, "front.png", []byte("one")))
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
}
