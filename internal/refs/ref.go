// Package refs 解析多态的关联字段（分类、品牌、材质、颜色等）。
//
// 关联字段在前端草稿和后端记录中可能是裸ID字符串、内嵌对象、二者组成的数组，
// 也可能完全缺失。本包在边界处把它们建模为带标签的联合类型 Ref，并立即解析为
// 普通的ID或ID列表，下游逻辑只看到字符串。
package refs

import (
	"bytes"
	"encoding/json"
)

// refKind 表示 Ref 的形态
type refKind uint8

const (
	kindAbsent   refKind = iota // 缺失或 null
	kindID                      // 裸ID字符串
	kindEmbedded                // 内嵌对象
	kindList                    // 数组
	kindOther                   // 数字、布尔、嵌套数组等无法解析的值
)

// Ref 关联字段的联合类型
type Ref struct {
	kind  refKind
	id    string
	name  string
	items []Ref
}

// Absent 返回缺失值
func Absent() Ref { return Ref{} }

// ID 返回裸ID形态
func ID(id string) Ref { return Ref{kind: kindID, id: id} }

// Embedded 返回内嵌对象形态，name 仅用于展示
func Embedded(id, name string) Ref { return Ref{kind: kindEmbedded, id: id, name: name} }

// List 返回数组形态
func List(items ...Ref) Ref {
	return Ref{kind: kindList, items: append([]Ref(nil), items...)}
}

// IDs 由ID列表构造数组形态
func IDs(ids ...string) Ref {
	items := make([]Ref, 0, len(ids))
	for _, id := range ids {
		items = append(items, ID(id))
	}
	return Ref{kind: kindList, items: items}
}

// IsAbsent 判断是否缺失
func (r Ref) IsAbsent() bool { return r.kind == kindAbsent }

// Items 返回数组元素的副本；非数组返回 nil
func (r Ref) Items() []Ref {
	if r.kind != kindList {
		return nil
	}
	return append([]Ref(nil), r.items...)
}

// embeddedObject 内嵌对象的线上格式
type embeddedObject struct {
	MongoID json.RawMessage `json:"_id,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Name    string          `json:"name,omitempty"`
}

// UnmarshalJSON 按形态解码，形态不规则时不返回错误
func (r *Ref) UnmarshalJSON(data []byte) error {
	*r = decode(data, true)
	return nil
}

func decode(data []byte, allowList bool) Ref {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Ref{}
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Ref{kind: kindOther}
		}
		return ID(s)
	case '{':
		var obj embeddedObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return Ref{kind: kindOther}
		}
		id := stringValue(obj.MongoID)
		if id == "" {
			id = stringValue(obj.ID)
		}
		return Embedded(id, obj.Name)
	case '[':
		if !allowList {
			return Ref{kind: kindOther}
		}
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return Ref{kind: kindOther}
		}
		items := make([]Ref, 0, len(raw))
		for _, item := range raw {
			items = append(items, decode(item, false))
		}
		return Ref{kind: kindList, items: items}
	default:
		return Ref{kind: kindOther}
	}
}

// stringValue 只接受字符串形式的标识符
func stringValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// MarshalJSON 按原形态编码
func (r Ref) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case kindID:
		return json.Marshal(r.id)
	case kindEmbedded:
		return json.Marshal(struct {
			ID   string `json:"_id,omitempty"`
			Name string `json:"name,omitempty"`
		}{ID: r.id, Name: r.name})
	case kindList:
		items := r.items
		if items == nil {
			items = []Ref{}
		}
		return json.Marshal(items)
	default:
		return []byte("null"), nil
	}
}
