package payload

import (
	"regexp"
	"sort"
	"strings"

	"github.com/MorseWayne/catalog_admin/internal/domain"
	"github.com/MorseWayne/catalog_admin/internal/refs"
)

// 旧数据里图片数组中混入过 24 位十六进制的文档ID，加载时过滤掉。
// 只匹配整个字符串，URL 中的路径片段不受影响
var legacyObjectID = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// ToDraft 把后端记录转换为可编辑的草稿：关联字段转为ID，图片按位置排序后展开为URL
func ToDraft(rec *domain.ProductRecord) (*domain.ProductDraft, error) {
	if rec == nil {
		return nil, ErrNilRecord
	}

	categories := refs.ResolveAll(rec.Categories)
	images, altText := draftImages(rec.Images)

	d := &domain.ProductDraft{
		ID:               rec.ID,
		Name:             rec.Name,
		Slug:             rec.Slug,
		SKU:              rec.SKU,
		Description:      rec.Description,
		ShortDescription: rec.ShortDescription,
		Type:             rec.Type,
		Status:           rec.Status,
		IsActive:         copyBool(rec.IsActive),

		Price:         rec.Price,
		SalePrice:     rec.SalePrice,
		OriginalPrice: rec.OriginalPrice,
		Currency:      rec.Currency,

		Weight:     rec.Weight,
		Dimensions: copyDimensionsInput(rec.Dimensions),
		SEO:        copySEO(rec.SEO),

		Categories:  refs.IDs(categories...),
		Category:    firstRef(categories),
		Brand:       idRef(refs.Resolve(rec.Brand)),
		Material:    idRef(refs.Resolve(rec.Material)),
		ColorFamily: idRef(refs.Resolve(rec.ColorFamily)),
		Pattern:     idRef(refs.Resolve(rec.Pattern)),
		UseCase:     idRef(refs.Resolve(rec.UseCase)),
		Tags:        listRef(refs.ResolveAll(rec.Tags)),

		Variants:     draftVariants(recordVariations(rec)),
		Images:       images,
		ImageAltText: altText,
		Colors:       draftColors(rec.Colors),

		BookFields:    rec.BookFields,
		UniformFields: copyUniformFields(rec.UniformFields),
		BookSetFields: copyBookSetFields(rec.BookSetFields),
	}
	return d, nil
}

// RecordFromPayload 把已保存的载荷还原为后端记录的形态
func RecordFromPayload(p *domain.ProductPayload) *domain.ProductRecord {
	if p == nil {
		return nil
	}

	rec := &domain.ProductRecord{
		Name:             p.Name,
		Slug:             p.Slug,
		SKU:              p.SKU,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Type:             string(p.Type),
		Status:           p.Status,
		IsActive:         copyBool(p.IsActive),

		Price:         domain.NumberPtr(p.Price),
		SalePrice:     domain.NumberPtr(p.SalePrice),
		OriginalPrice: domain.NumberPtr(p.OriginalPrice),
		Currency:      p.Currency,
		Weight:        domain.NumberPtr(p.Weight),
		SEO:           copySEO(p.SEO),

		Categories:  refs.IDs(p.Categories...),
		Brand:       idRef(p.Brand),
		Material:    idRef(p.Material),
		ColorFamily: idRef(p.ColorFamily),
		Pattern:     idRef(p.Pattern),
		UseCase:     idRef(p.UseCase),
		Tags:        listRef(p.Tags),

		BookFields: domain.BookFields{
			Author:          p.Author,
			Publisher:       p.Publisher,
			ISBN:            p.ISBN,
			Language:        p.Language,
			Edition:         p.Edition,
			Binding:         p.Binding,
			Pages:           intNumber(p.Pages),
			PublicationYear: intNumber(p.PublicationYear),
		},
		UniformFields: domain.UniformFields{
			SchoolName:     p.SchoolName,
			Gender:         p.Gender,
			AgeGroup:       p.AgeGroup,
			Fabric:         p.Fabric,
			AvailableSizes: append([]string(nil), p.AvailableSizes...),
		},
		BookSetFields: domain.BookSetFields{
			Grade:        p.Grade,
			Board:        p.Board,
			AcademicYear: p.AcademicYear,
		},
		SizeInventory: append([]domain.SizeStock(nil), p.SizeInventory...),
	}

	if p.Dimensions != nil {
		rec.Dimensions = &domain.DimensionsInput{
			Length: domain.NumberPtr(p.Dimensions.Length),
			Width:  domain.NumberPtr(p.Dimensions.Width),
			Height: domain.NumberPtr(p.Dimensions.Height),
		}
	}
	for _, img := range p.Images {
		pos := img.Position
		rec.Images = append(rec.Images, domain.ImageRef{URL: img.URL, AltText: img.AltText, Position: &pos, IsObject: true})
	}
	for _, c := range p.Colors {
		rec.Colors = append(rec.Colors, domain.ColorRef{Color: refs.ID(c.ColorID), ImageURL: c.ImageURL})
	}
	for _, v := range p.Variations {
		active := v.IsActive
		images := make([]domain.ImageRef, 0, len(v.Images))
		for _, url := range v.Images {
			images = append(images, domain.ImageURL(url))
		}
		rec.Variations = append(rec.Variations, domain.VariantInput{
			SKU:        v.SKU,
			Name:       v.Name,
			Attributes: domain.AttributeList(v.Attributes...),
			Price:      domain.NewNumber(v.Price),
			SalePrice:  domain.NewNumber(v.SalePrice),
			Stock:      domain.NewNumber(float64(v.Stock)),
			Images:     images,
			IsActive:   &active,
		})
	}
	for _, item := range p.SetItems {
		rec.SetItems = append(rec.SetItems, domain.SetItemInput{
			Title:     item.Title,
			Subject:   item.Subject,
			Publisher: item.Publisher,
			Quantity:  domain.NewNumber(float64(item.Quantity)),
			Price:     domain.NewNumber(item.Price),
		})
	}
	return rec
}

// recordVariations 优先使用 variations，旧数据回退到 variants
func recordVariations(rec *domain.ProductRecord) []domain.VariantInput {
	if len(rec.Variations) > 0 {
		return rec.Variations
	}
	return rec.Variants
}

// draftImages 按位置稳定排序，没有位置的图片使用原下标
func draftImages(in []domain.ImageRef) ([]domain.ImageRef, map[string]string) {
	type ranked struct {
		img domain.ImageRef
		pos int
	}
	items := make([]ranked, 0, len(in))
	for i, img := range in {
		pos := i
		if img.Position != nil {
			pos = *img.Position
		}
		items = append(items, ranked{img: img, pos: pos})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].pos < items[j].pos })

	var (
		out     []domain.ImageRef
		altText map[string]string
	)
	for _, it := range items {
		url := strings.TrimSpace(it.img.URL)
		if url == "" || legacyObjectID.MatchString(url) {
			continue
		}
		out = append(out, domain.ImageURL(url))
		if it.img.AltText != "" {
			if altText == nil {
				altText = make(map[string]string)
			}
			altText[url] = it.img.AltText
		}
	}
	return out, altText
}

func draftVariants(in []domain.VariantInput) []domain.VariantInput {
	var out []domain.VariantInput
	for _, v := range in {
		var images []domain.ImageRef
		for _, img := range v.Images {
			url := strings.TrimSpace(img.URL)
			if url == "" || legacyObjectID.MatchString(url) {
				continue
			}
			images = append(images, domain.ImageURL(url))
		}
		out = append(out, domain.VariantInput{
			ID:         v.ID,
			SKU:        v.SKU,
			Name:       v.Name,
			Attributes: domain.AttributeList(refs.ResolveAll(v.Attributes.Flatten())...),
			Price:      v.Price,
			SalePrice:  v.SalePrice,
			Stock:      v.Stock,
			Images:     images,
			IsActive:   copyBool(v.IsActive),
		})
	}
	return out
}

func draftColors(in []domain.ColorRef) []domain.ColorRef {
	var out []domain.ColorRef
	for _, c := range in {
		id := refs.Resolve(c.Color)
		if id == "" {
			continue
		}
		out = append(out, domain.ColorRef{Color: refs.ID(id), ImageURL: c.ImageURL})
	}
	return out
}

func copyDimensionsInput(in *domain.DimensionsInput) *domain.DimensionsInput {
	if in == nil {
		return nil
	}
	out := *in
	return &out
}

func copyUniformFields(f domain.UniformFields) domain.UniformFields {
	f.AvailableSizes = append([]string(nil), f.AvailableSizes...)
	return f
}

func copyBookSetFields(f domain.BookSetFields) domain.BookSetFields {
	f.SetItems = append([]domain.SetItemInput(nil), f.SetItems...)
	return f
}

func idRef(id string) refs.Ref {
	if id == "" {
		return refs.Absent()
	}
	return refs.ID(id)
}

func listRef(ids []string) refs.Ref {
	if len(ids) == 0 {
		return refs.Absent()
	}
	return refs.IDs(ids...)
}

func firstRef(ids []string) refs.Ref {
	if len(ids) == 0 {
		return refs.Absent()
	}
	return refs.ID(ids[0])
}

func intNumber(v *int) domain.Number {
	if v == nil {
		return domain.Number{}
	}
	return domain.NewNumber(float64(*v))
}
