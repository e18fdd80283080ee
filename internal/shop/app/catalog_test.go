package app_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
)

func TestCatalogCreate_RequiresFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.Create(context.Background(), domain.NewProduct{Name: "Only name"})
	require.Error(t, err)
	assert.Equal(t, "Following fields are required: description, price, quantity", err.Error())
}

func TestCatalogCreate_RejectsNegatives(t *testing.T) {
	f := newFixture(t)
	desc := "d"
	neg := decimal.NewFromInt(-1)
	qty := 1

	_, err := f.catalog.Create(context.Background(), domain.NewProduct{Name: "X", Description: &desc, Price: &neg, Quantity: &qty})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestCatalogCreate_UniqueLiveName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Spoon", "1.00", 1)

	desc := "dup"
	price := decimal.NewFromInt(2)
	qty := 2
	_, err := f.catalog.Create(ctx, domain.NewProduct{Name: "Spoon", Description: &desc, Price: &price, Quantity: &qty})
	require.Error(t, err)
	assert.Equal(t, domain.ErrMsgProductNameTaken, err.Error())

	require.NoError(t, f.catalog.Delete(ctx, p.ID))
	again := f.product(t, "Spoon", "1.50", 3)
	assert.NotEqual(t, p.ID, again.ID)
}

func TestCatalogUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Fork", "1.00", 1)
	f.product(t, "Knife", "1.00", 1)

	same := "Fork"
	_, err := f.catalog.Update(ctx, p.ID, domain.ProductPatch{Name: &same})
	require.NoError(t, err, "keeping its own name is allowed")

	taken := "Knife"
	_, err = f.catalog.Update(ctx, p.ID, domain.ProductPatch{Name: &taken})
	require.Error(t, err)
	assert.Equal(t, domain.ErrMsgProductNameTaken, err.Error())

	qty := 7
	price := decimal.RequireFromString("2.345")
	updated, err := f.catalog.Update(ctx, p.ID, domain.ProductPatch{Quantity: &qty, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Fork", updated.Name)
	assert.Equal(t, 7, updated.Quantity)
	assert.Equal(t, "2.35", updated.Price.StringFixed(2))

	got, err := f.catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Quantity)

	_, err = f.catalog.Update(ctx, 999, domain.ProductPatch{Quantity: &qty})
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestCatalogDelete_Missing(t *testing.T) {
	f := newFixture(t)

	err := f.catalog.Delete(context.Background(), 12)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestCatalogList_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		f.product(t, fmt.Sprintf("Item %d", i), "1.00", 1)
	}

	page, err := f.catalog.List(ctx, domain.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Count)
	assert.Len(t, page.Items, 5)

	page, err = f.catalog.List(ctx, domain.ListQuery{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Count)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Item 1", page.Items[0].Name)

	_, err = f.catalog.List(ctx, domain.ListQuery{Page: 4, Limit: 2})
	require.Error(t, err)
	assert.Equal(t, domain.ErrMsgInvalidPage, err.Error())

	page, err = f.catalog.List(ctx, domain.ListQuery{Keyword: "item 4"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
}

func TestCatalogList_EmptyCatalogHasFirstPage(t *testing.T) {
	f := newFixture(t)

	page, err := f.catalog.List(context.Background(), domain.ListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, page.Count)
	assert.Empty(t, page.Items)
}
