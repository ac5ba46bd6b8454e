package sizeinv

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MorseWayne/catalog_admin/internal/domain"
)

func sizes(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Size)
	}
	return out
}

func existingML() []domain.SizeInventory {
	return []domain.SizeInventory{
		{ID: 11, ProductID: "p1", Size: "M", CurrentStock: 5, AvailableStock: 4, ReorderPoint: 2, CostPrice: 100, SellingPrice: 150, Version: 3},
		{ID: 12, ProductID: "p1", Size: "L", CurrentStock: 7, SKU: "SHIRT-L-OLD", Version: 1},
	}
}

func TestInitialize_UnionOfDeclaredAndExisting(t *testing.T) {
	table := Initialize([]string{"S", "M"}, existingML(), Defaults{CostPrice: 90, SellingPrice: 140})

	entries := table.Entries()
	assert.Equal(t, []string{"S", "M", "L"}, sizes(entries))
	assert.Equal(t, Entry{Size: "S", CostPrice: 90, SellingPrice: 140}, entries[0])
	assert.Equal(t, Entry{Size: "M", CurrentStock: 5, AvailableStock: 4, ReorderPoint: 2, CostPrice: 100, SellingPrice: 150}, entries[1])
	assert.Equal(t, 7, entries[2].CurrentStock)
}

func TestInitialize_SkipsBlankAndDuplicateSizes(t *testing.T) {
	existing := []domain.SizeInventory{
		{ID: 1, Size: "M", CurrentStock: 1},
		{ID: 2, Size: "M", CurrentStock: 9},
		{ID: 3, Size: " ", CurrentStock: 4},
	}
	table := Initialize([]string{" M ", "", "M", "XL"}, existing, Defaults{})

	entries := table.Entries()
	assert.Equal(t, []string{"M", "XL"}, sizes(entries))
	assert.Equal(t, 1, entries[0].CurrentStock)
}

func TestUpdateField(t *testing.T) {
	table := Initialize([]string{"S"}, nil, Defaults{})

	assert.True(t, table.UpdateField("S", FieldCurrentStock, -4))
	assert.True(t, table.UpdateField("S", FieldReorderQuantity, 2.6))
	assert.True(t, table.UpdateField("S", FieldCostPrice, 12.5))
	assert.False(t, table.UpdateField("XXL", FieldCurrentStock, 1))
	assert.False(t, table.UpdateField("S", Field("colour"), 1))

	e := table.Entries()[0]
	assert.Equal(t, 0, e.CurrentStock)
	assert.Equal(t, 3, e.ReorderQuantity)
	assert.Equal(t, 12.5, e.CostPrice)
}

func TestParseField(t *testing.T) {
	f, ok := ParseField(" sellingPrice ")
	assert.True(t, ok)
	assert.Equal(t, FieldSellingPrice, f)

	_, ok = ParseField("quantity")
	assert.False(t, ok)
}

func TestRowEdits(t *testing.T) {
	table := Initialize([]string{"S", "M"}, nil, Defaults{SellingPrice: 300})

	table.AddBlankRow()
	assert.Equal(t, []string{"S", "M", ""}, sizes(table.Entries()))
	assert.Equal(t, 300.0, table.Entries()[2].SellingPrice)

	assert.False(t, table.RenameSize("", "M"), "duplicate names are refused")
	assert.True(t, table.RenameSize("", "Custom 42"))
	assert.True(t, table.RemoveRow("S"))
	assert.False(t, table.RemoveRow("S"))

	assert.Equal(t, []string{"M", "Custom 42"}, sizes(table.Entries()))
}

func TestSizes_SkipsBlankRows(t *testing.T) {
	table := Initialize([]string{"S"}, nil, Defaults{})
	table.UpdateField("S", FieldCurrentStock, 6)
	table.AddBlankRow()

	assert.Equal(t, []domain.SizeStock{{Size: "S", Quantity: 6}}, table.Sizes())
}

func TestToPersistenceRequests(t *testing.T) {
	table := Initialize([]string{"S", "M"}, existingML(), Defaults{})
	table.AddBlankRow()
	meta := ProductMeta{ProductID: "p1", ProductName: "Shirt", SKU: "SHIRT"}

	reqs := table.ToPersistenceRequests(meta)
	require.Len(t, reqs, 3)

	assert.Equal(t, domain.PersistCreate, reqs[0].Op)
	assert.Equal(t, "SHIRT-S", reqs[0].Body.SKU)
	assert.Zero(t, reqs[0].InventoryID)

	assert.Equal(t, domain.PersistUpdate, reqs[1].Op)
	assert.Equal(t, int64(11), reqs[1].InventoryID)
	assert.Equal(t, 3, reqs[1].Version)
	assert.Equal(t, 5, reqs[1].Body.CurrentStock)

	assert.Equal(t, domain.PersistUpdate, reqs[2].Op)
	assert.Equal(t, "SHIRT-L-OLD", reqs[2].Body.SKU)

	assert.Equal(t, reqs, table.ToPersistenceRequests(meta), "same snapshot, same requests")
}

func TestRefresh_TurnsCreatesIntoUpdates(t *testing.T) {
	table := Initialize([]string{"S"}, nil, Defaults{})
	meta := ProductMeta{ProductID: "p1"}

	before := table.Entries()
	reqs := table.ToPersistenceRequests(meta)
	require.Len(t, reqs, 1)
	assert.Equal(t, domain.PersistCreate, reqs[0].Op)

	table.Refresh([]domain.SizeInventory{{ID: 99, Size: "S", Version: 1}})
	reqs = table.ToPersistenceRequests(meta)
	require.Len(t, reqs, 1)
	assert.Equal(t, domain.PersistUpdate, reqs[0].Op)
	assert.Equal(t, int64(99), reqs[0].InventoryID)
	assert.Equal(t, before, table.Entries())
}

func TestState_RoundTrip(t *testing.T) {
	table := Initialize([]string{"S", "M"}, existingML(), Defaults{CostPrice: 1, SellingPrice: 2})
	table.UpdateField("S", FieldCurrentStock, 8)

	raw, err := json.Marshal(table.State())
	require.NoError(t, err)
	var state State
	require.NoError(t, json.Unmarshal(raw, &state))

	restored := FromState(state)
	assert.Equal(t, table.Entries(), restored.Entries())
	assert.Equal(t, table.Defaults(), restored.Defaults())
	assert.Equal(t, table.ToPersistenceRequests(ProductMeta{ProductID: "p1"}), restored.ToPersistenceRequests(ProductMeta{ProductID: "p1"}))
}

func TestAddRowAndSizes(t *testing.T) {
	table := Initialize([]string{"S"}, []domain.SizeInventory{{ID: 5, Size: "XL", CurrentStock: 3}}, Defaults{})
	assert.True(t, table.RemoveRow("XL"))

	assert.False(t, table.AddRow("S"))
	assert.True(t, table.AddRow(" 32 "))

	table.SetDefaults(Defaults{SellingPrice: 99})
	assert.Equal(t, 2, table.AddSizes([]string{"S", "M", "XL", ""}))

	entries := table.Entries()
	assert.Equal(t, []string{"S", "32", "M", "XL"}, sizes(entries))
	assert.Equal(t, 99.0, entries[2].SellingPrice)
	assert.Equal(t, 3, entries[3].CurrentStock, "sizes known to the snapshot reuse its data")
}

func TestSizeSKU(t *testing.T) {
	tests := []struct {
		base, size, want string
	}{
		{"SHIRT", "S", "SHIRT-S"},
		{"SHIRT", "xl", "SHIRT-XL"},
		{"SHIRT", "Age 6/7", "SHIRT-AGE-6-7"},
		{"SHIRT", "2 XL", "SHIRT-2-XL"},
		{"SHIRT", "Café", "SHIRT-CAFE"},
		{"SHIRT", "  ", "SHIRT"},
		{"", "M", ""},
	}
	for _, tt := range tests {
		if got := sizeSKU(tt.base, tt.size); got != tt.want {
			t.Errorf("sizeSKU(%q, %q) = %q, want %q", tt.base, tt.size, got, tt.want)
		}
	}
}
