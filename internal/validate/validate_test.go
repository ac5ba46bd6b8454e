package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MorseWayne/catalog_admin/internal/domain"
)

func validPayload() *domain.ProductPayload {
	price := 100.0
	return &domain.ProductPayload{
		Name:             "Notebook",
		Slug:             "notebook",
		ShortDescription: "Ruled notebook",
		Type:             domain.ProductTypeSimple,
		Price:            &price,
		Currency:         "INR",
		Categories:       []string{},
		Images:           []domain.Image{{URL: "a.png", Position: 0}},
	}
}

func fields(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestPayload_Valid(t *testing.T) {
	assert.Empty(t, Payload(validPayload()))
}

func TestPayload_FieldErrors(t *testing.T) {
	p := validPayload()
	p.Name = ""
	p.Slug = "Not A Slug"
	p.Currency = "RUPEE"
	p.Type = "gadget"
	p.Images = append(p.Images, domain.Image{URL: "", Position: 1})
	p.Variations = []domain.Variation{{SKU: "", Stock: -1}}

	errs := Payload(p)
	assert.ElementsMatch(t, []string{
		"name",
		"slug",
		"currency",
		"type",
		"images[1].url",
		"variations[0].sku",
		"variations[0].stock",
	}, fields(errs))

	for _, e := range errs {
		assert.NotEmpty(t, e.Message)
	}
}

func TestPayload_PriceRules(t *testing.T) {
	p := validPayload()
	sale := 150.0
	p.SalePrice = &sale
	p.Type = domain.ProductTypeVariable

	errs := Payload(p)
	assert.ElementsMatch(t, []string{"salePrice", "variations"}, fields(errs))
}

func TestPayload_Nil(t *testing.T) {
	errs := Payload(nil)
	assert.Len(t, errs, 1)
	assert.Equal(t, "required", errs[0].Tag)
}

func TestErrors_NonValidationError(t *testing.T) {
	assert.Nil(t, Errors(nil))
	errs := Errors(assert.AnError)
	assert.Len(t, errs, 1)
	assert.Equal(t, "invalid", errs[0].Tag)
}
