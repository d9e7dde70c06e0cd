// Package model はドメインモデルを定義する。
package model

// Announcement はお知らせを表す。
// ペイロードにIDが含まれないため、(Subject, Date) の組で識別する。
// Bodyはストアへの取り込み時にサニタイズ済みのHTMLを保持する。
type Announcement struct {
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Date     string `json:"date"`
	AuthorID string `json:"author_id"`
}
