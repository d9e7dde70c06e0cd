// Package catalog は蔵書カタログの状態管理を提供する。
package catalog

import (
	"strings"

	"github.com/hitoshi/tosho/internal/model"
)

// Filter は検索クエリで蔵書を絞り込む純粋関数。
// タイトル・著者・出版社に対する大文字小文字を区別しない部分一致で、
// 空（または空白のみ）のクエリは全件を通す。
// 同一の入力に対して常に同一の結果を返す。
func Filter(books []model.Book, query string) []model.Book {
	q := strings.TrimSpace(query)
	if q == "" {
		return books
	}

	lower := strings.ToLower(q)
	filtered := make([]model.Book, 0, len(books))
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), lower) ||
			strings.Contains(strings.ToLower(b.Author), lower) ||
			strings.Contains(strings.ToLower(b.Publisher), lower) {
			filtered = append(filtered, b)
		}
	}
	return filtered
}
