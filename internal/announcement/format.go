package announcement

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/hitoshi/tosho/internal/model"
)

// dateLayouts はサーバーが返す日付文字列の候補フォーマット。
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// indonesianMonths は表示用のインドネシア語の月名。
var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate は日付文字列を表示用に整形する（例: "2 Januari 2024"）。
// パースできない場合は入力をそのまま返す。
func FormatDate(dateString string) string {
	t, ok := parseDate(dateString)
	if !ok {
		return dateString
	}
	return fmt.Sprintf("%d %s %d", t.Day(), indonesianMonths[t.Month()-1], t.Year())
}

// RelativeTime は日付文字列をnowからの相対表現に変換する。
// 当日は "Hari ini"、前日は "Kemarin"、7日未満は "N hari yang lalu"、
// 30日未満は "N minggu yang lalu"、それ以上はFormatDateの結果を返す。
// パースできない場合は入力をそのまま返す。
func RelativeTime(dateString string, now time.Time) string {
	t, ok := parseDate(dateString)
	if !ok {
		return dateString
	}

	diffDays := int(now.Sub(t).Hours() / 24)
	switch {
	case diffDays <= 0:
		return "Hari ini"
	case diffDays == 1:
		return "Kemarin"
	case diffDays < 7:
		return fmt.Sprintf("%d hari yang lalu", diffDays)
	case diffDays < 30:
		return fmt.Sprintf("%d minggu yang lalu", diffDays/7)
	default:
		return FormatDate(dateString)
	}
}

// Excerpt はお知らせ本文のプレーンテキスト抜粋を返す。
// HTMLタグを取り除き、空白を正規化した上で最大maxRunes文字に切り詰める。
// 切り詰めた場合は末尾に "…" を付ける。
func Excerpt(a *model.Announcement, maxRunes int) string {
	text := plainText(a.Body)
	runes := []rune(text)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return text
	}
	return strings.TrimSpace(string(runes[:maxRunes])) + "…"
}

// plainText はHTMLからテキストノードのみを抽出し、空白を1つに畳む。
func plainText(rawHTML string) string {
	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(tokenizer.Text())
			b.WriteByte(' ')
		}
	}
}
