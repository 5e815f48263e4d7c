package util

import (
	"regexp"
	"strings"
)

// IndexSelectionPattern 匹配纯数字参数（按序号选择上次结果）
var IndexSelectionPattern = regexp.MustCompile(`^\d+$`)

// HTMLTagPattern 匹配HTML标签
var HTMLTagPattern = regexp.MustCompile(`<[^>]*>`)

// IsIndexSelection 判断参数是否为结果序号
func IsIndexSelection(arg string) bool {
	return IndexSelectionPattern.MatchString(arg)
}

// CollapseSpaces 合并连续空白为单个空格并去除首尾空白
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripTags 去除HTML标签并合并空白
func StripTags(s string) string {
	return CollapseSpaces(HTMLTagPattern.ReplaceAllString(s, " "))
}
