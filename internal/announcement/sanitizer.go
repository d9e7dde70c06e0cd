// Package announcement はお知らせの状態管理を提供する。
//
// お知らせの本文はサーバー由来のHTMLであり、取り込み時に
// bluemondayの許可リストベースのポリシーでサニタイズする。
// script, iframe, styleタグおよびon*イベント属性は除去され、
// 安全なタグのみが通過する。
package announcement

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// newBodyPolicy はお知らせ本文用のサニタイズポリシーを構築する。
// ポリシーの内容:
//   - 許可タグ: p, br, a, ul, ol, li, blockquote, pre, code, strong, em
//   - aタグ: href属性のみ許可し、target="_blank" と
//     rel="noopener noreferrer" を自動付与
//   - imgのsrc属性: httpsスキームのみ許可
func newBodyPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src").OnElements("img")
	p.AllowAttrs("alt").OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return true
	})

	return p
}
