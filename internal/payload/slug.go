package payload

import (
	"regexp"
	"strings"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace   = regexp.MustCompile(`\s+`)
	slugDashRuns     = regexp.MustCompile(`-+`)
)

// Slugify 生成商品 slug：小写，只保留字母数字、空白和短横线，空白转为短横线，合并连续短横线。
// 对已经是合法 slug 的输入结果不变，因此可以重复调用
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalidChars.ReplaceAllString(s, "")
	s = slugWhitespace.ReplaceAllString(s, "-")
	s = slugDashRuns.ReplaceAllString(s, "-")
	return s
}

// deriveSlug 依次尝试显式 slug、SEO slug、商品名称
func deriveSlug(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) == "" {
			continue
		}
		if s := Slugify(c); s != "" {
			return s
		}
	}
	return ""
}
