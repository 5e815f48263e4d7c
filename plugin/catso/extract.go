package catso

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"panbot/model"
	"panbot/util"
)

// ItemExtractor 从搜索结果页中提取条目
type ItemExtractor interface {
	Extract(html string) []model.SearchResult
}

// itemPattern 每个结果块的链接和标题
var itemPattern = regexp.MustCompile(`<van-row>\s*<a href="([^"]+)"[^>]*>[\s\S]*?<template #title>\s*<div[^>]*>([\s\S]*?)</div>`)

// PageExtractor 基于结构正则的结果页提取器，链接以站点首页为前缀
type PageExtractor struct {
	HomeURL string
}

// Extract 提取页面中的全部条目，顺序与页面一致
func (e PageExtractor) Extract(html string) []model.SearchResult {
	matches := itemPattern.FindAllStringSubmatch(html, -1)
	results := make([]model.SearchResult, 0, len(matches))
	for _, match := range matches {
		href := strings.TrimSpace(match[1])
		title := cleanTitle(match[2])
		if href == "" || title == "" {
			continue
		}

		link := e.HomeURL + href
		results = append(results, model.SearchResult{
			Title:        title,
			Link:         link,
			SourceItemID: link,
		})
	}
	return results
}

// cleanTitle 去掉标题中的高亮标签并合并空白
func cleanTitle(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<div>" + fragment + "</div>"))
	if err != nil {
		return util.CollapseSpaces(util.StripTags(fragment))
	}
	return util.CollapseSpaces(doc.Find("div").First().Text())
}
