// Package domain 定义商品编辑相关的数据结构：前端草稿、后端记录、规范化载荷与尺码库存。
package domain

import (
	"time"

	"github.com/MorseWayne/catalog_admin/internal/refs"
)

// ProductType 商品类型
type ProductType string

const (
	ProductTypeSimple   ProductType = "simple" // 默认类型
	ProductTypeVariable ProductType = "variable"
	ProductTypeBook     ProductType = "book"
	ProductTypeBookSet  ProductType = "book_set"
	ProductTypeUniform  ProductType = "uniform"
)

// DefaultProductType 类型缺失或非法时使用的默认值
const DefaultProductType = ProductTypeSimple

// ProductTypes 合法的商品类型集合
var ProductTypes = []ProductType{
	ProductTypeSimple,
	ProductTypeVariable,
	ProductTypeBook,
	ProductTypeBookSet,
	ProductTypeUniform,
}

// SEO 商品SEO信息
type SEO struct {
	Slug            string   `json:"slug,omitempty"`
	MetaTitle       string   `json:"metaTitle,omitempty"`
	MetaDescription string   `json:"metaDescription,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}

// IsEmpty 判断是否所有字段均未设置
func (s *SEO) IsEmpty() bool {
	return s == nil || (s.Slug == "" && s.MetaTitle == "" && s.MetaDescription == "" && len(s.Keywords) == 0)
}

// DimensionsInput 表单中的尺寸
type DimensionsInput struct {
	Length Number `json:"length"`
	Width  Number `json:"width"`
	Height Number `json:"height"`
}

// Dimensions 规范化后的尺寸
type Dimensions struct {
	Length *float64 `json:"length,omitempty" validate:"omitempty,gte=0"`
	Width  *float64 `json:"width,omitempty" validate:"omitempty,gte=0"`
	Height *float64 `json:"height,omitempty" validate:"omitempty,gte=0"`
}

// BookFields 图书类商品的表单字段
type BookFields struct {
	Author          string `json:"author,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	ISBN            string `json:"isbn,omitempty"`
	Language        string `json:"language,omitempty"`
	Edition         string `json:"edition,omitempty"`
	Binding         string `json:"binding,omitempty"`
	Pages           Number `json:"pages"`
	PublicationYear Number `json:"publicationYear"`
}

// UniformFields 校服类商品的表单字段
type UniformFields struct {
	SchoolName     string   `json:"schoolName,omitempty"`
	Gender         string   `json:"gender,omitempty"`
	AgeGroup       string   `json:"ageGroup,omitempty"`
	Fabric         string   `json:"fabric,omitempty"`
	AvailableSizes []string `json:"availableSizes,omitempty"` // 声明的可售尺码
}

// SetItemInput 套装中的单本书
type SetItemInput struct {
	Title     string `json:"title"`
	Subject   string `json:"subject,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	Quantity  Number `json:"quantity"`
	Price     Number `json:"price"`
}

// BookSetFields 图书套装的表单字段
type BookSetFields struct {
	Grade        string         `json:"grade,omitempty"`
	Board        string         `json:"board,omitempty"`
	AcademicYear string         `json:"academicYear,omitempty"`
	SetItems     []SetItemInput `json:"setItems,omitempty"`
}

// ProductDraft 前端正在编辑的商品草稿，字段可能是原始字符串、内嵌对象或旧别名
type ProductDraft struct {
	ID               string `json:"_id,omitempty"`
	Name             string `json:"name"`
	Slug             string `json:"slug,omitempty"`
	SKU              string `json:"sku,omitempty"`
	Description      string `json:"description,omitempty"`
	ShortDescription string `json:"shortDescription,omitempty"`
	Type             string `json:"type,omitempty"`
	Status           string `json:"status,omitempty"`
	IsActive         *bool  `json:"isActive,omitempty"`

	Price         Number `json:"price"`
	SalePrice     Number `json:"salePrice"`
	OriginalPrice Number `json:"originalPrice"`
	Currency      string `json:"currency,omitempty"`

	Weight     Number           `json:"weight"`
	Dimensions *DimensionsInput `json:"dimensions,omitempty"`
	SEO        *SEO             `json:"seo,omitempty"`

	Categories  refs.Ref `json:"categories"`
	Category    refs.Ref `json:"category"` // 单选下拉框的值
	Brand       refs.Ref `json:"brand"`
	Material    refs.Ref `json:"material"`
	ColorFamily refs.Ref `json:"colorFamily"`
	Pattern     refs.Ref `json:"pattern"`
	UseCase     refs.Ref `json:"useCase"`
	Tags        refs.Ref `json:"tags"`

	Variants     []VariantInput    `json:"variants,omitempty"`
	Images       []ImageRef        `json:"images,omitempty"`
	ImageAltText map[string]string `json:"imageAltText,omitempty"` // url -> altText
	Colors       []ColorRef        `json:"colors,omitempty"`

	BookFields
	UniformFields
	BookSetFields
}

// ProductRecord 后端返回的商品记录，关联字段为内嵌对象
type ProductRecord struct {
	ID               string `json:"_id,omitempty"`
	Name             string `json:"name"`
	Slug             string `json:"slug,omitempty"`
	SKU              string `json:"sku,omitempty"`
	Description      string `json:"description,omitempty"`
	ShortDescription string `json:"shortDescription,omitempty"`
	Type             string `json:"type,omitempty"`
	Status           string `json:"status,omitempty"`
	IsActive         *bool  `json:"isActive,omitempty"`

	Price         Number `json:"price"`
	SalePrice     Number `json:"salePrice"`
	OriginalPrice Number `json:"originalPrice"`
	Currency      string `json:"currency,omitempty"`

	Weight     Number           `json:"weight"`
	Dimensions *DimensionsInput `json:"dimensions,omitempty"`
	SEO        *SEO             `json:"seo,omitempty"`

	Categories  refs.Ref `json:"categories"`
	Brand       refs.Ref `json:"brand"`
	Material    refs.Ref `json:"material"`
	ColorFamily refs.Ref `json:"colorFamily"`
	Pattern     refs.Ref `json:"pattern"`
	UseCase     refs.Ref `json:"useCase"`
	Tags        refs.Ref `json:"tags"`

	Images     []ImageRef     `json:"images,omitempty"`
	Colors     []ColorRef     `json:"colors,omitempty"`
	Variations []VariantInput `json:"variations,omitempty"`
	Variants   []VariantInput `json:"variants,omitempty"` // 旧版字段名

	BookFields
	UniformFields
	BookSetFields

	SizeInventory []SizeStock `json:"sizeInventory,omitempty"`
	CreatedAt     *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time  `json:"updatedAt,omitempty"`
}

// References 解析后的关联字段
type References struct {
	Categories  []string
	Brand       string
	Material    string
	ColorFamily string
	Pattern     string
	UseCase     string
	Tags        []string
}

// Image 规范化的图片
type Image struct {
	URL      string `json:"url" validate:"required"`
	AltText  string `json:"altText,omitempty"`
	Position int    `json:"position" validate:"gte=0"`
}

// Color 规范化的颜色
type Color struct {
	ColorID  string `json:"colorId" validate:"required"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Variation 规范化的规格（前端称为 variant）
type Variation struct {
	SKU        string   `json:"sku" validate:"required"`
	Name       string   `json:"name,omitempty"`
	Attributes []string `json:"attributes"`
	Price      float64  `json:"price" validate:"gte=0"`
	SalePrice  float64  `json:"salePrice" validate:"gte=0"`
	Stock      int      `json:"stock" validate:"gte=0"`
	Images     []string `json:"images"`
	IsActive   bool     `json:"isActive"`
}

// BookDetails 规范化的图书字段
type BookDetails struct {
	Author          string `json:"author,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	ISBN            string `json:"isbn,omitempty"`
	Language        string `json:"language,omitempty"`
	Edition         string `json:"edition,omitempty"`
	Binding         string `json:"binding,omitempty"`
	Pages           *int   `json:"pages,omitempty" validate:"omitempty,gt=0"`
	PublicationYear *int   `json:"publicationYear,omitempty"`
}

// UniformDetails 规范化的校服字段
type UniformDetails struct {
	SchoolName     string   `json:"schoolName,omitempty"`
	Gender         string   `json:"gender,omitempty"`
	AgeGroup       string   `json:"ageGroup,omitempty"`
	Fabric         string   `json:"fabric,omitempty"`
	AvailableSizes []string `json:"availableSizes,omitempty"`
}

// SetItem 规范化的套装条目
type SetItem struct {
	Title     string  `json:"title" validate:"required"`
	Subject   string  `json:"subject,omitempty"`
	Publisher string  `json:"publisher,omitempty"`
	Quantity  int     `json:"quantity" validate:"gte=0"`
	Price     float64 `json:"price" validate:"gte=0"`
}

// BookSetDetails 规范化的图书套装字段
type BookSetDetails struct {
	Grade        string    `json:"grade,omitempty"`
	Board        string    `json:"board,omitempty"`
	AcademicYear string    `json:"academicYear,omitempty"`
	SetItems     []SetItem `json:"setItems,omitempty" validate:"dive"`
}

// SizeStock 提交时合并进载荷的尺码库存
type SizeStock struct {
	Size     string `json:"size" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// ProductPayload 后端接受的规范化商品载荷（POST /products、PUT /products/:id）
type ProductPayload struct {
	Name             string      `json:"name,omitempty" validate:"required,max=255"`
	Slug             string      `json:"slug" validate:"required,slug"`
	SKU              string      `json:"sku,omitempty" validate:"omitempty,max=100"`
	Description      string      `json:"description,omitempty"`
	ShortDescription string      `json:"shortDescription" validate:"required"`
	Type             ProductType `json:"type" validate:"required,oneof=simple variable book book_set uniform"`
	Status           string      `json:"status,omitempty"`
	IsActive         *bool       `json:"isActive,omitempty"`

	Price         *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	SalePrice     *float64 `json:"salePrice,omitempty" validate:"omitempty,gt=0"`
	OriginalPrice *float64 `json:"originalPrice,omitempty" validate:"omitempty,gte=0"`
	Currency      string   `json:"currency" validate:"required,len=3"`

	Weight     *float64    `json:"weight,omitempty" validate:"omitempty,gte=0"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	SEO        *SEO        `json:"seo,omitempty"`

	Categories  []string `json:"categories"`
	Brand       string   `json:"brand,omitempty"`
	Material    string   `json:"material,omitempty"`
	ColorFamily string   `json:"colorFamily,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	UseCase     string   `json:"useCase,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	Images     []Image     `json:"images" validate:"dive"`
	Colors     []Color     `json:"colors,omitempty" validate:"dive"`
	Variations []Variation `json:"variations,omitempty" validate:"dive"`

	BookDetails
	UniformDetails
	BookSetDetails

	SizeInventory []SizeStock `json:"sizeInventory,omitempty" validate:"dive"`
}
