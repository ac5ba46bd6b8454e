package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number 表示表单中可能以数字或字符串形式出现的数值。
// 空字符串、null 和非数字字符串都视为未设置
type Number struct {
	Value float64
	Valid bool
}

// NewNumber 创建已设置的数值
func NewNumber(v float64) Number {
	return Number{Value: v, Valid: true}
}

// NumberPtr 由指针创建数值，nil 视为未设置
func NumberPtr(v *float64) Number {
	if v == nil {
		return Number{}
	}
	return NewNumber(*v)
}

// Float 返回数值及是否已设置
func (n Number) Float() (float64, bool) {
	return n.Value, n.Valid
}

// Ptr 返回指针形式，未设置时为 nil
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// OrZero 未设置时返回0
func (n Number) OrZero() float64 {
	if !n.Valid {
		return 0
	}
	return n.Value
}

// IntOrZero 取整，未设置时返回0
func (n Number) IntOrZero() int {
	if !n.Valid {
		return 0
	}
	return int(math.Round(n.Value))
}

// UnmarshalJSON 接受数字、数字字符串、空字符串和 null
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*n = ParseNumber(s)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	*n = NewNumber(v)
	return nil
}

// MarshalJSON 未设置时编码为 null
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// ParseNumber 解析表单输入的字符串
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return NewNumber(v)
}
