// Package payload 在前端商品草稿与后端规范化载荷之间做双向转换。
// 本包不做任何 I/O，相同输入总是得到相同输出
package payload

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/MorseWayne/catalog_admin/internal/domain"
	"github.com/MorseWayne/catalog_admin/internal/refs"
)

var (
	ErrNilDraft  = errors.New("payload: draft is nil")
	ErrNilRecord = errors.New("payload: record is nil")
)

const (
	DefaultCurrency                 = "INR"
	DefaultFallbackShortDescription = "No description available"
	DefaultShortDescriptionLimit    = 200
)

// Options 载荷构造的可配置项
type Options struct {
	DefaultCurrency          string
	FallbackShortDescription string
	ShortDescriptionLimit    int // 按字符（rune）计
}

// DefaultOptions 返回默认配置
func DefaultOptions() Options {
	return Options{
		DefaultCurrency:          DefaultCurrency,
		FallbackShortDescription: DefaultFallbackShortDescription,
		ShortDescriptionLimit:    DefaultShortDescriptionLimit,
	}
}

// Builder 规范化载荷构造器
type Builder struct {
	opts Options
}

// NewBuilder 创建构造器，未设置的选项使用默认值
func NewBuilder(opts Options) *Builder {
	def := DefaultOptions()
	if strings.TrimSpace(opts.DefaultCurrency) == "" {
		opts.DefaultCurrency = def.DefaultCurrency
	}
	opts.DefaultCurrency = strings.ToUpper(strings.TrimSpace(opts.DefaultCurrency))
	if opts.FallbackShortDescription == "" {
		opts.FallbackShortDescription = def.FallbackShortDescription
	}
	if opts.ShortDescriptionLimit <= 0 {
		opts.ShortDescriptionLimit = def.ShortDescriptionLimit
	}
	return &Builder{opts: opts}
}

// Options 返回生效的配置
func (b *Builder) Options() Options { return b.opts }

// Build 解析草稿的关联字段后构造载荷
func (b *Builder) Build(d *domain.ProductDraft, sizes []domain.SizeStock) (*domain.ProductPayload, error) {
	if d == nil {
		return nil, ErrNilDraft
	}
	return b.ToCanonical(d, ResolveReferences(d), sizes)
}

// ToCanonical 把草稿和已解析的关联字段转换为后端载荷。
// sizes 为提交时需要合并的尺码库存，可为空
func (b *Builder) ToCanonical(d *domain.ProductDraft, r domain.References, sizes []domain.SizeStock) (*domain.ProductPayload, error) {
	if d == nil {
		return nil, ErrNilDraft
	}

	p := &domain.ProductPayload{
		Name:             presentOr(d.Name),
		Slug:             deriveSlug(d.Slug, seoSlug(d.SEO), d.Name),
		SKU:              presentOr(d.SKU),
		Description:      presentOr(d.Description),
		ShortDescription: b.shortDescription(d),
		Type:             NormalizeType(d.Type),
		Status:           presentOr(d.Status),
		IsActive:         copyBool(d.IsActive),

		Price:         d.Price.Ptr(),
		SalePrice:     salePrice(d.Price, d.SalePrice),
		OriginalPrice: d.OriginalPrice.Ptr(),
		Currency:      b.currency(d.Currency),

		Weight:     d.Weight.Ptr(),
		Dimensions: dimensions(d.Dimensions),
		SEO:        copySEO(d.SEO),

		Categories:  nonNil(r.Categories),
		Brand:       r.Brand,
		Material:    r.Material,
		ColorFamily: r.ColorFamily,
		Pattern:     r.Pattern,
		UseCase:     r.UseCase,

		Images:     normalizeImages(d.Images, d.ImageAltText),
		Colors:     normalizeColors(d.Colors),
		Variations: normalizeVariations(d.Variants),

		BookDetails:    bookDetails(d.BookFields),
		UniformDetails: uniformDetails(d.UniformFields),
		BookSetDetails: bookSetDetails(d.BookSetFields),

		SizeInventory: normalizeSizeStock(sizes),
	}
	if len(r.Tags) > 0 {
		p.Tags = append([]string(nil), r.Tags...)
	}
	return p, nil
}

// ResolveReferences 把草稿中所有关联字段解析为ID。
// categories 为空时回退到单选的 category；单选值不在列表中时放在首位
func ResolveReferences(d *domain.ProductDraft) domain.References {
	if d == nil {
		return domain.References{Categories: []string{}}
	}

	cats := refs.ResolveAll(d.Categories)
	if primary := refs.Resolve(d.Category); primary != "" && !contains(cats, primary) {
		cats = append([]string{primary}, cats...)
	}

	return domain.References{
		Categories:  cats,
		Brand:       refs.Resolve(d.Brand),
		Material:    refs.Resolve(d.Material),
		ColorFamily: refs.Resolve(d.ColorFamily),
		Pattern:     refs.Resolve(d.Pattern),
		UseCase:     refs.Resolve(d.UseCase),
		Tags:        refs.ResolveAll(d.Tags),
	}
}

// NormalizeType 非法或缺失的类型回退为 simple
func NormalizeType(t string) domain.ProductType {
	t = strings.ToLower(strings.TrimSpace(t))
	for _, pt := range domain.ProductTypes {
		if string(pt) == t {
			return pt
		}
	}
	return domain.DefaultProductType
}

func (b *Builder) shortDescription(d *domain.ProductDraft) string {
	if s := strings.TrimSpace(d.ShortDescription); s != "" {
		return d.ShortDescription
	}
	if s := strings.TrimSpace(d.Description); s != "" {
		return truncateRunes(s, b.opts.ShortDescriptionLimit)
	}
	if s := strings.TrimSpace(d.Name); s != "" {
		return s
	}
	return b.opts.FallbackShortDescription
}

func (b *Builder) currency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return b.opts.DefaultCurrency
	}
	return c
}

// salePrice 售价必须为正，且在原价已知时严格小于原价
func salePrice(price, sale domain.Number) *float64 {
	s, ok := sale.Float()
	if !ok || s <= 0 {
		return nil
	}
	if p, ok := price.Float(); ok && s >= p {
		return nil
	}
	return sale.Ptr()
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

func presentOr(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

func seoSlug(seo *domain.SEO) string {
	if seo == nil {
		return ""
	}
	return seo.Slug
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func copySEO(seo *domain.SEO) *domain.SEO {
	if seo.IsEmpty() {
		return nil
	}
	out := &domain.SEO{
		Slug:            seo.Slug,
		MetaTitle:       seo.MetaTitle,
		MetaDescription: seo.MetaDescription,
	}
	for _, k := range seo.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			out.Keywords = append(out.Keywords, k)
		}
	}
	return out
}

func dimensions(in *domain.DimensionsInput) *domain.Dimensions {
	if in == nil || (!in.Length.Valid && !in.Width.Valid && !in.Height.Valid) {
		return nil
	}
	return &domain.Dimensions{
		Length: in.Length.Ptr(),
		Width:  in.Width.Ptr(),
		Height: in.Height.Ptr(),
	}
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return append([]string(nil), ss...)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
