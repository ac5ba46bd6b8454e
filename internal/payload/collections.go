package payload

import (
	"sort"
	"strings"

	"github.com/MorseWayne/catalog_admin/internal/domain"
	"github.com/MorseWayne/catalog_admin/internal/refs"
)

// normalizeImages 丢弃空URL，保留的图片按显式 position（没有时取原下标）稳定排序后从 0 连续编号
func normalizeImages(in []domain.ImageRef, altText map[string]string) []domain.Image {
	type ranked struct {
		img  domain.Image
		rank int
	}
	kept := make([]ranked, 0, len(in))
	for i, img := range in {
		url := strings.TrimSpace(img.URL)
		if url == "" {
			continue
		}
		rank := i
		if img.Position != nil {
			rank = *img.Position
		}
		alt := img.AltText
		if alt == "" {
			alt = altText[url]
		}
		kept = append(kept, ranked{img: domain.Image{URL: url, AltText: alt}, rank: rank})
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].rank < kept[j].rank })

	out := make([]domain.Image, 0, len(kept))
	for _, k := range kept {
		k.img.Position = len(out)
		out = append(out, k.img)
	}
	return out
}

func normalizeColors(in []domain.ColorRef) []domain.Color {
	var out []domain.Color
	for _, c := range in {
		id := refs.Resolve(c.Color)
		if id == "" {
			continue
		}
		out = append(out, domain.Color{ColorID: id, ImageURL: strings.TrimSpace(c.ImageURL)})
	}
	return out
}

// normalizeVariations 规格的 _id 由后端维护，不出现在载荷中
func normalizeVariations(in []domain.VariantInput) []domain.Variation {
	var out []domain.Variation
	for _, v := range in {
		out = append(out, domain.Variation{
			SKU:        v.SKU,
			Name:       v.Name,
			Attributes: refs.ResolveAll(v.Attributes.Flatten()),
			Price:      v.Price.OrZero(),
			SalePrice:  v.SalePrice.OrZero(),
			Stock:      v.Stock.IntOrZero(),
			Images:     imageURLs(v.Images),
			IsActive:   v.IsActive == nil || *v.IsActive,
		})
	}
	return out
}

func imageURLs(in []domain.ImageRef) []string {
	out := make([]string, 0, len(in))
	for _, img := range in {
		if url := strings.TrimSpace(img.URL); url != "" {
			out = append(out, url)
		}
	}
	return out
}

func bookDetails(f domain.BookFields) domain.BookDetails {
	return domain.BookDetails{
		Author:          f.Author,
		Publisher:       f.Publisher,
		ISBN:            f.ISBN,
		Language:        f.Language,
		Edition:         f.Edition,
		Binding:         f.Binding,
		Pages:           positiveInt(f.Pages),
		PublicationYear: positiveInt(f.PublicationYear),
	}
}

func uniformDetails(f domain.UniformFields) domain.UniformDetails {
	return domain.UniformDetails{
		SchoolName:     f.SchoolName,
		Gender:         f.Gender,
		AgeGroup:       f.AgeGroup,
		Fabric:         f.Fabric,
		AvailableSizes: dedupeTrimmed(f.AvailableSizes),
	}
}

func bookSetDetails(f domain.BookSetFields) domain.BookSetDetails {
	out := domain.BookSetDetails{
		Grade:        f.Grade,
		Board:        f.Board,
		AcademicYear: f.AcademicYear,
	}
	for _, item := range f.SetItems {
		if strings.TrimSpace(item.Title) == "" {
			continue
		}
		out.SetItems = append(out.SetItems, domain.SetItem{
			Title:     item.Title,
			Subject:   item.Subject,
			Publisher: item.Publisher,
			Quantity:  item.Quantity.IntOrZero(),
			Price:     item.Price.OrZero(),
		})
	}
	return out
}

// normalizeSizeStock 丢弃空尺码，重复尺码以第一条为准，数量不小于0
func normalizeSizeStock(in []domain.SizeStock) []domain.SizeStock {
	var out []domain.SizeStock
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		size := strings.TrimSpace(s.Size)
		if size == "" {
			continue
		}
		if _, ok := seen[size]; ok {
			continue
		}
		seen[size] = struct{}{}
		out = append(out, domain.SizeStock{Size: size, Quantity: max(s.Quantity, 0)})
	}
	return out
}

func positiveInt(n domain.Number) *int {
	if v, ok := n.Float(); !ok || v <= 0 {
		return nil
	}
	i := n.IntOrZero()
	if i <= 0 {
		return nil
	}
	return &i
}

func dedupeTrimmed(in []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
