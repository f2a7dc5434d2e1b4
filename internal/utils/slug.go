package utils

import (
	"regexp"
	"strings"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	hexColor    = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// DefaultSlug 楼宇名称不含可用字符时使用
const DefaultSlug = "building"

// Slugify 将楼宇名称转换为展示页地址标识
func Slugify(name string) string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 48 {
		slug = strings.TrimRight(slug[:48], "-")
	}
	if slug == "" {
		return DefaultSlug
	}
	return slug
}

// IsHexColor 是否为 #rrggbb 格式的颜色
func IsHexColor(s string) bool {
	return hexColor.MatchString(s)
}
