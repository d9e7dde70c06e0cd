// Package loan は貸出リクエストの状態管理を提供する。
package loan

import (
	"math"
	"time"

	"github.com/hitoshi/tosho/internal/model"
)

// dateLayouts はサーバーが返す日付文字列の候補フォーマット。
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate はサーバーの日付文字列をパースする。
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Pending は承認待ちの貸出リクエストを返す純粋関数。
func Pending(requests []model.LoanRequest) []model.LoanRequest {
	return filterByStatus(requests, model.LoanStatusPending)
}

// Approved は承認済みの貸出リクエストを返す純粋関数。
func Approved(requests []model.LoanRequest) []model.LoanRequest {
	return filterByStatus(requests, model.LoanStatusApproved)
}

func filterByStatus(requests []model.LoanRequest, status model.LoanStatus) []model.LoanRequest {
	out := make([]model.LoanRequest, 0, len(requests))
	for _, r := range requests {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// Overdue は延滞中の貸出リクエストを返す純粋関数。
// 延滞の定義: 貸出情報があり、未返却で、返却期限がnowより過去。
// nowは呼び出し時の現在時刻を注入する。日付の変わり目を跨いでも
// 結果が固定されないよう、結果をキャッシュしてはならない。
func Overdue(requests []model.LoanRequest, now time.Time) []model.LoanRequest {
	out := make([]model.LoanRequest, 0, len(requests))
	for _, r := range requests {
		if IsOverdue(&r, now) {
			out = append(out, r)
		}
	}
	return out
}

// IsOverdue は貸出リクエストが延滞中かどうかを返す。
// 貸出情報がない、または既に返却済みの場合はfalse。
func IsOverdue(r *model.LoanRequest, now time.Time) bool {
	if r.Loan == nil || r.Loan.DueDate == "" || r.Loan.IsReturned {
		return false
	}
	due, ok := parseDate(r.Loan.DueDate)
	if !ok {
		return false
	}
	return now.After(due)
}

// DaysUntilDue は返却期限までの日数を返す。
// ceil((期限 - now) / 1日) で、延滞時は負の値となる。
// 貸出情報がない場合は第2戻り値がfalse。
func DaysUntilDue(r *model.LoanRequest, now time.Time) (int, bool) {
	if r.Loan == nil || r.Loan.DueDate == "" {
		return 0, false
	}
	due, ok := parseDate(r.Loan.DueDate)
	if !ok {
		return 0, false
	}
	diff := due.Sub(now)
	return int(math.Ceil(diff.Hours() / 24)), true
}

// StatusLabel は貸出状態の表示ラベルを返す。
func StatusLabel(status model.LoanStatus) string {
	switch status {
	case model.LoanStatusPending:
		return "Menunggu"
	case model.LoanStatusApproved:
		return "Disetujui"
	case model.LoanStatusRejected:
		return "Ditolak"
	case model.LoanStatusReturned:
		return "Dikembalikan"
	default:
		return string(status)
	}
}

// StatusColor は貸出状態の表示色を返す。
func StatusColor(status model.LoanStatus) string {
	switch status {
	case model.LoanStatusPending:
		return "yellow"
	case model.LoanStatusApproved:
		return "green"
	case model.LoanStatusRejected:
		return "red"
	case model.LoanStatusReturned:
		return "blue"
	default:
		return "gray"
	}
}
