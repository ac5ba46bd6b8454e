package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_admin/internal/domain"
	"github.com/MorseWayne/catalog_admin/internal/payload"
	"github.com/MorseWayne/catalog_admin/internal/refs"
	"github.com/MorseWayne/catalog_admin/internal/sizeinv"
)

func testLogger() *zap.Logger { return zap.NewNop() }

var productIDPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

func shirtDraft(sizes ...string) *domain.ProductDraft {
	return &domain.ProductDraft{
		Name:       "School Shirt",
		SKU:        "SHIRT",
		Type:       "uniform",
		Price:      domain.NewNumber(500),
		Categories: refs.IDs("cat-uniform"),
		Images:     []domain.ImageRef{domain.ImageURL("https://cdn.example.com/shirt.jpg")},
		UniformFields: domain.UniformFields{
			SchoolName:     "Green Valley",
			AvailableSizes: sizes,
		},
	}
}

func sizeEdit(action domain.SizeEditAction, size string) domain.SizeEditRequest {
	return domain.SizeEditRequest{Action: action, Size: size}
}

func TestEditor_OpenNewProduct(t *testing.T) {
	f := newEditorFixture()
	ctx := context.Background()

	view, err := f.service.Open(ctx, OpenSessionRequest{CostPrice: domain.NewNumber(120)})
	require.NoError(t, err)

	assert.NotEmpty(t, view.ID)
	assert.Empty(t, view.ProductID)
	assert.Empty(t, view.Sizes)
	assert.Equal(t, sizeinv.Defaults{CostPrice: 120}, view.Defaults)

	got, err := f.service.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.ID, got.ID)
}

func TestEditor_CreateFlow(t *testing.T) {
	f := newEditorFixture()
	ctx := context.Background()

	view, err := f.service.Open(ctx, OpenSessionRequest{CostPrice: domain.NewNumber(300)})
	require.NoError(t, err)

	view, err = f.service.UpdateDraft(ctx, view.ID, shirtDraft("S", "M"))
	require.NoError(t, err)
	require.Len(t, view.Sizes, 2)
	assert.Equal(t, 500.0, view.Sizes[0].SellingPrice, "new rows take the form price")
	assert.Equal(t, 300.0, view.Sizes[0].CostPrice)

	edit := sizeEdit(domain.SizeEditUpdate, "S")
	edit.Field = "currentStock"
	edit.Value = domain.NewNumber(10)
	_, err = f.service.ApplySizeEdit(ctx, view.ID, edit)
	require.NoError(t, err)

	preview, err := f.service.Preview(ctx, view.ID)
	require.NoError(t, err)
	assert.Empty(t, preview.Errors)
	assert.Equal(t, "school-shirt", preview.Payload.Slug)
	assert.Equal(t, []domain.SizeStock{{Size: "S", Quantity: 10}, {Size: "M", Quantity: 0}}, preview.Payload.SizeInventory)
	require.Len(t, preview.Requests, 2)
	assert.Equal(t, domain.PersistCreate, preview.Requests[0].Op)
	assert.Equal(t, 0, f.products.creates, "preview does not write")

	result, err := f.service.Submit(ctx, view.ID)
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.True(t, result.Completed)
	assert.Regexp(t, productIDPattern, result.ProductID)
	assert.Equal(t, 2, result.Inventory.Created)

	rows, err := f.inventory.ListByProductID(ctx, result.ProductID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	bySize := make(map[string]domain.SizeInventory, len(rows))
	for _, r := range rows {
		bySize[r.Size] = r
	}
	assert.Equal(t, "SHIRT-S", bySize["S"].SKU)
	assert.Equal(t, 10, bySize["S"].CurrentStock)

	_, err = f.service.Get(ctx, view.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound, "completed sessions are removed")
}

func TestEditor_EditExistingProduct(t *testing.T) {
	f := newEditorFixture()
	ctx := context.Background()

	built, err := payload.NewBuilder(payload.DefaultOptions()).Build(shirtDraft("S", "M"), nil)
	require.NoError(t, err)
	require.NoError(t, f.products.Create(ctx, "64b7f0c2a1d3e4f5a6b7c8d9", built))
	f.inventory.seed(
		domain.SizeInventory{ProductID: "64b7f0c2a1d3e4f5a6b7c8d9", Size: "M", CurrentStock: 4, SKU: "SHIRT-M", Version: 1},
		domain.SizeInventory{ProductID: "64b7f0c2a1d3e4f5a6b7c8d9", Size: "XL", CurrentStock: 2, Version: 1},
	)

	view, err := f.service.Open(ctx, OpenSessionRequest{ProductID: "64b7f0c2a1d3e4f5a6b7c8d9"})
	require.NoError(t, err)
	assert.Equal(t, "School Shirt", view.Draft.Name)
	assert.Equal(t, []string{"cat-uniform"}, refs.ResolveAll(view.Draft.Categories))

	var sizes []string
	for _, e := range view.Sizes {
		sizes = append(sizes, e.Size)
	}
	assert.Equal(t, []string{"S", "M", "XL"}, sizes)

	result, err := f.service.Submit(ctx, view.ID)
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, "64b7f0c2a1d3e4f5a6b7c8d9", result.ProductID)
	assert.Equal(t, 1, result.Inventory.Created)
	assert.Equal(t, 2, result.Inventory.Updated)
	assert.Equal(t, 1, f.products.updates)
}

func TestEditor_PartialInventoryFailureKeepsSession(t *testing.T) {
	f := newEditorFixture()
	ctx := context.Background()

	view, err := f.service.Open(ctx, OpenSessionRequest{})
	require.NoError(t, err)
	_, err = f.service.UpdateDraft(ctx, view.ID, shirtDraft("S", "M"))
	require.NoError(t, err)

	f.inventory.failSize["M"] = errStorageDown
	first, err := f.service.Submit(ctx, view.ID)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.False(t, first.Completed)
	assert.Equal(t, 1, first.Inventory.Created)
	assert.Equal(t, 1, first.Inventory.Failed)
	assert.ErrorIs(t, first.Inventory.Err, errStorageDown)

	kept, err := f.service.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ProductID, kept.ProductID)

	delete(f.inventory.failSize, "M")
	second, err := f.service.Submit(ctx, view.ID)
	require.NoError(t, err)
	assert.False(t, second.Created, "retry updates the product created by the first attempt")
	assert.Equal(t, first.ProductID, second.ProductID)
	assert.True(t, second.Completed)
	assert.Equal(t, 1, second.Inventory.Updated)
	assert.Equal(t, 1, second.Inventory.Created)
	assert.Equal(t, 1, f.products.creates)
}

func TestEditor_SubmitValidation(t *testing.T) {
	f := newEditorFixture()
	ctx := context.Background()

	view, err := f.service.Open(ctx, OpenSessionRequest{})
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, view.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Fields[0].Field)
	assert.Equal(t, 0, f.products.creates)
}

func TestEditor_SubmitDuplicateSlug(t *testing.T) {
	f := newEditorFixture()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		view, err := f.service.Open(ctx, OpenSessionRequest{})
		require.NoError(t, err)
		_, err = f.service.UpdateDraft(ctx, view.ID, shirtDraft())
		require.NoError(t, err)

		_, err = f.service.Submit(ctx, view.ID)
		if i == 0 {
			require.NoError(t, err)
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateField)
	}
}

func TestEditor_ApplySizeEdit(t *testing.T) {
	tests := []struct {
		name    string
		edit    domain.SizeEditRequest
		wantErr bool
	}{
		{name: "add new size", edit: sizeEdit(domain.SizeEditAdd, "XL")},
		{name: "add blank row", edit: sizeEdit(domain.SizeEditAdd, "")},
		{name: "add existing size", edit: sizeEdit(domain.SizeEditAdd, "S"), wantErr: true},
		{name: "remove", edit: sizeEdit(domain.SizeEditRemove, "M")},
		{name: "remove missing", edit: sizeEdit(domain.SizeEditRemove, "XXL"), wantErr: true},
		{name: "rename", edit: domain.SizeEditRequest{Action: domain.SizeEditRename, Size: "S", NewSize: "Small"}},
		{name: "rename onto existing", edit: domain.SizeEditRequest{Action: domain.SizeEditRename, Size: "S", NewSize: "M"}, wantErr: true},
		{name: "unknown field", edit: domain.SizeEditRequest{Action: domain.SizeEditUpdate, Size: "S", Field: "colour", Value: domain.NewNumber(1)}, wantErr: true},
		{name: "missing value", edit: domain.SizeEditRequest{Action: domain.SizeEditUpdate, Size: "S", Field: "currentStock"}, wantErr: true},
		{name: "unknown action", edit: sizeEdit("resize", "S"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEditorFixture()
			ctx := context.Background()
			view, err := f.service.Open(ctx, OpenSessionRequest{})
			require.NoError(t, err)
			_, err = f.service.UpdateDraft(ctx, view.ID, shirtDraft("S", "M"))
			require.NoError(t, err)

			_, err = f.service.ApplySizeEdit(ctx, view.ID, tt.edit)
			if (err != nil) != tt.wantErr {
				t.Errorf("ApplySizeEdit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidSizeEdit) {
				t.Errorf("ApplySizeEdit() error = %v, want ErrInvalidSizeEdit", err)
			}
		})
	}
}

func TestEditor_MissingSessionAndProduct(t *testing.T) {
	f := newEditorFixture()
	ctx := context.Background()

	_, err := f.service.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, f.service.Discard(ctx, "nope"), ErrSessionNotFound)

	_, err = f.service.Open(ctx, OpenSessionRequest{ProductID: "64b7f0c2a1d3e4f5a6b7c8d9"})
	assert.ErrorIs(t, err, ErrProductNotFound)

	view, err := f.service.Open(ctx, OpenSessionRequest{})
	require.NoError(t, err)
	require.NoError(t, f.service.Discard(ctx, view.ID))
	_, err = f.service.Preview(ctx, view.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestNewProductID(t *testing.T) {
	a, b := newProductID(), newProductID()
	assert.Regexp(t, productIDPattern, a)
	assert.NotEqual(t, a, b)
}

func TestEditor_SubmitRetryAfterSessionSaveFailure(t *testing.T) {
	f := newEditorFixture()
	sessions := &flakySessions{EditSessionRepository: f.sessions}
	svc := NewProductEditorService(
		f.products,
		sessions,
		NewInventorySyncService(f.inventory, 2, testLogger()),
		payload.NewBuilder(payload.DefaultOptions()),
		testLogger(),
	)
	ctx := context.Background()

	view, err := svc.Open(ctx, OpenSessionRequest{})
	require.NoError(t, err)
	_, err = svc.UpdateDraft(ctx, view.ID, shirtDraft())
	require.NoError(t, err)

	// 第1次保存预留ID，第2次是创建商品后的保存
	sessions.saves, sessions.failOn = 0, 2
	_, err = svc.Submit(ctx, view.ID)
	require.ErrorIs(t, err, errStorageDown)
	assert.Equal(t, 1, f.products.creates)
	require.Len(t, f.products.records, 1)

	sessions.failOn = 0
	result, err := svc.Submit(ctx, view.ID)
	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Equal(t, 1, f.products.creates, "retry must not create a second product")
	assert.Equal(t, 1, f.products.updates)
	assert.Len(t, f.products.records, 1)
	_, exists := f.products.records[result.ProductID]
	assert.True(t, exists)
}
