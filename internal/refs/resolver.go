package refs

import "strings"

// Resolve 解析单值关联字段（品牌、材质、颜色系等），返回第一个可解析的ID，
// 全部不可解析时返回空字符串
func Resolve(r Ref) string {
	if r.kind == kindList {
		for _, item := range r.items {
			if id := resolveItem(item); id != "" {
				return id
			}
		}
		return ""
	}
	return resolveItem(r)
}

// ResolveAll 解析多值关联字段（分类、标签、属性），不可解析的元素直接丢弃。
// 返回值永远不为 nil
func ResolveAll(r Ref) []string {
	if r.kind != kindList {
		if id := resolveItem(r); id != "" {
			return []string{id}
		}
		return []string{}
	}

	ids := make([]string, 0, len(r.items))
	for _, item := range r.items {
		if id := resolveItem(item); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// resolveItem 单个元素的解析规则：字符串原样返回（不做格式校验），
// 内嵌对象取其标识符，其余一律为空
func resolveItem(r Ref) string {
	switch r.kind {
	case kindID, kindEmbedded:
		if strings.TrimSpace(r.id) == "" {
			return ""
		}
		return r.id
	default:
		return ""
	}
}
