// Package model はドメインモデルを定義する。
package model

// Book は蔵書を表す。
// クライアント側からは再フェッチ以外で変更されないイミュータブルなデータ。
// 不変条件: 0 <= AvailableStock <= TotalStock。
type Book struct {
	ID             int      `json:"id"`
	Title          string   `json:"title"`
	Author         string   `json:"author"`
	Publisher      string   `json:"publisher"`
	YearPublished  string   `json:"year_published"`
	TotalStock     int      `json:"total_stock"`
	AvailableStock int      `json:"available_stock"`
	CoverImage     string   `json:"cover_image,omitempty"`
	ISBN           string   `json:"isbn,omitempty"`
	Description    string   `json:"description,omitempty"`
	Categories     []string `json:"categories,omitempty"`
}

// IsAvailable は貸出可能な在庫があるかどうかを返す。
func (b *Book) IsAvailable() bool {
	return b.AvailableStock > 0
}
