package domain

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/MorseWayne/catalog_admin/internal/refs"
)

// ImageRef 图片引用：可能是URL字符串，也可能是 {url, altText, position} 对象
type ImageRef struct {
	URL      string
	AltText  string
	Position *int // 仅当对象中携带数字 position 时非空
	IsObject bool
}

// ImageURL 构造字符串形态的图片引用
func ImageURL(url string) ImageRef {
	return ImageRef{URL: url}
}

type imageObject struct {
	URL      string `json:"url,omitempty"`
	AltText  string `json:"altText,omitempty"`
	Position *int   `json:"position,omitempty"`
}

// UnmarshalJSON 无法识别的形态解码为空URL，由调用方丢弃
func (i *ImageRef) UnmarshalJSON(data []byte) error {
	*i = ImageRef{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			i.URL = s
		}
	case '{':
		var obj struct {
			URL      json.RawMessage `json:"url"`
			AltText  json.RawMessage `json:"altText"`
			Position Number          `json:"position"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil
		}
		i.IsObject = true
		_ = json.Unmarshal(obj.URL, &i.URL)
		_ = json.Unmarshal(obj.AltText, &i.AltText)
		if pos, ok := obj.Position.Float(); ok && pos >= 0 && pos == float64(int(pos)) {
			p := int(pos)
			i.Position = &p
		}
	}
	return nil
}

// MarshalJSON 保持原有形态
func (i ImageRef) MarshalJSON() ([]byte, error) {
	if !i.IsObject {
		return json.Marshal(i.URL)
	}
	return json.Marshal(imageObject{URL: i.URL, AltText: i.AltText, Position: i.Position})
}

// ColorRef 颜色引用：可能是颜色ID字符串，也可能是 {colorId, imageUrl} 对象
type ColorRef struct {
	Color    refs.Ref
	ImageURL string
}

// UnmarshalJSON 对象缺少 colorId 时把对象本身当作内嵌颜色记录
func (c *ColorRef) UnmarshalJSON(data []byte) error {
	*c = ColorRef{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	if data[0] != '{' {
		return json.Unmarshal(data, &c.Color)
	}

	var obj struct {
		ColorID  refs.Ref        `json:"colorId"`
		ImageURL json.RawMessage `json:"imageUrl"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	_ = json.Unmarshal(obj.ImageURL, &c.ImageURL)
	if obj.ColorID.IsAbsent() {
		return json.Unmarshal(data, &c.Color)
	}
	c.Color = obj.ColorID
	return nil
}

// MarshalJSON 统一编码为对象形态
func (c ColorRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ColorID  refs.Ref `json:"colorId"`
		ImageURL string   `json:"imageUrl,omitempty"`
	}{ColorID: c.Color, ImageURL: c.ImageURL})
}

// VariantAttributes 规格属性：旧数据是 {属性名: 值} 的映射，新数据是数组
type VariantAttributes struct {
	list   []refs.Ref
	fields map[string]refs.Ref
}

// AttributeList 构造数组形态
func AttributeList(ids ...string) VariantAttributes {
	list := make([]refs.Ref, 0, len(ids))
	for _, id := range ids {
		list = append(list, refs.ID(id))
	}
	return VariantAttributes{list: list}
}

// AttributeMap 构造映射形态
func AttributeMap(fields map[string]string) VariantAttributes {
	m := make(map[string]refs.Ref, len(fields))
	for k, v := range fields {
		m[k] = refs.ID(v)
	}
	return VariantAttributes{fields: m}
}

// IsMap 判断是否为映射形态
func (a VariantAttributes) IsMap() bool { return a.fields != nil }

// Flatten 把两种形态统一转换为数组；映射按键名排序以保证结果确定
func (a VariantAttributes) Flatten() refs.Ref {
	if a.fields == nil {
		return refs.List(a.list...)
	}

	keys := make([]string, 0, len(a.fields))
	for k := range a.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]refs.Ref, 0, len(keys))
	for _, k := range keys {
		items = append(items, a.fields[k])
	}
	return refs.List(items...)
}

// UnmarshalJSON 数组、对象以外的形态视为空
func (a *VariantAttributes) UnmarshalJSON(data []byte) error {
	*a = VariantAttributes{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '[':
		var list []refs.Ref
		if err := json.Unmarshal(data, &list); err == nil {
			a.list = list
		}
	case '{':
		var fields map[string]refs.Ref
		if err := json.Unmarshal(data, &fields); err == nil {
			a.fields = fields
		}
	}
	return nil
}

// MarshalJSON 保持原有形态
func (a VariantAttributes) MarshalJSON() ([]byte, error) {
	if a.fields != nil {
		return json.Marshal(a.fields)
	}
	if a.list == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.list)
}

// VariantInput 表单/记录中的单个规格
type VariantInput struct {
	ID         string            `json:"_id,omitempty"`
	SKU        string            `json:"sku,omitempty"`
	Name       string            `json:"name,omitempty"`
	Attributes VariantAttributes `json:"attributes"`
	Price      Number            `json:"price"`
	SalePrice  Number            `json:"salePrice"`
	Stock      Number            `json:"stock"`
	Images     []ImageRef        `json:"images,omitempty"`
	IsActive   *bool             `json:"isActive,omitempty"`
}
