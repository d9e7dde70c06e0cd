package loan

import (
	"testing"
	"time"

	"github.com/hitoshi/tosho/internal/model"
)

func requestWithDueDate(id int, dueDate string, returned bool) model.LoanRequest {
	return model.LoanRequest{
		ID:     id,
		Status: model.LoanStatusApproved,
		Loan: &model.Loan{
			LoanDate:   "2024-06-01",
			DueDate:    dueDate,
			IsReturned: returned,
		},
	}
}

// TestPendingAndApproved は状態別の絞り込みを検証する。
func TestPendingAndApproved(t *testing.T) {
	requests := []model.LoanRequest{
		{ID: 1, Status: model.LoanStatusPending},
		{ID: 2, Status: model.LoanStatusApproved},
		{ID: 3, Status: model.LoanStatusPending},
		{ID: 4, Status: model.LoanStatusRejected},
		{ID: 5, Status: model.LoanStatusReturned},
	}

	pending := Pending(requests)
	if len(pending) != 2 || pending[0].ID != 1 || pending[1].ID != 3 {
		t.Errorf("Pending = %+v", pending)
	}

	approved := Approved(requests)
	if len(approved) != 1 || approved[0].ID != 2 {
		t.Errorf("Approved = %+v", approved)
	}
}

// TestIsOverdue_Definition は延滞の定義
// （未返却 かつ now > 期限）を検証する。
func TestIsOverdue_Definition(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  model.LoanRequest
		want bool
	}{
		{
			name: "no loan",
			req:  model.LoanRequest{ID: 1, Status: model.LoanStatusPending},
			want: false,
		},
		{
			name: "already returned",
			req:  requestWithDueDate(2, "2024-06-10T00:00:00Z", true),
			want: false,
		},
		{
			name: "due date passed",
			req:  requestWithDueDate(3, "2024-06-10T00:00:00Z", false),
			want: true,
		},
		{
			name: "due date in future",
			req:  requestWithDueDate(4, "2024-06-20T00:00:00Z", false),
			want: false,
		},
		{
			name: "date-only layout",
			req:  requestWithDueDate(5, "2024-06-10", false),
			want: true,
		},
		{
			name: "unparseable due date",
			req:  requestWithDueDate(6, "not-a-date", false),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOverdue(&tt.req, now); got != tt.want {
				t.Errorf("IsOverdue = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestOverdue_SelectsOnlyOverdueLoans は延滞セレクタの抽出を検証する。
func TestOverdue_SelectsOnlyOverdueLoans(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	requests := []model.LoanRequest{
		requestWithDueDate(1, "2024-06-10T00:00:00Z", false), // 延滞
		requestWithDueDate(2, "2024-06-10T00:00:00Z", true),  // 返却済み
		requestWithDueDate(3, "2024-06-20T00:00:00Z", false), // 期限内
		{ID: 4, Status: model.LoanStatusPending},             // 貸出なし
	}

	overdue := Overdue(requests, now)
	if len(overdue) != 1 || overdue[0].ID != 1 {
		t.Errorf("Overdue = %+v", overdue)
	}
}

// TestDaysUntilDue_SignFlipsAtBoundary は期限境界で符号が反転する
// ことを検証する。
func TestDaysUntilDue_SignFlipsAtBoundary(t *testing.T) {
	req := requestWithDueDate(1, "2024-06-10T00:00:00Z", false)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"day before", time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC), 1},
		{"exactly at due", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), 0},
		{"later the due day", time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC), 0},
		{"day after", time.Date(2024, 6, 11, 12, 0, 0, 0, time.UTC), -1},
		{"a week before", time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DaysUntilDue(&req, tt.now)
			if !ok {
				t.Fatal("expected ok=true with a loan present")
			}
			if got != tt.want {
				t.Errorf("DaysUntilDue = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestDaysUntilDue_NoLoan は貸出情報がない場合にok=falseとなる
// ことを検証する。
func TestDaysUntilDue_NoLoan(t *testing.T) {
	req := model.LoanRequest{ID: 1, Status: model.LoanStatusPending}

	if _, ok := DaysUntilDue(&req, time.Now()); ok {
		t.Error("expected ok=false without a loan")
	}
}

// TestStatusLabelAndColor は表示用ヘルパーの対応表を検証する。
func TestStatusLabelAndColor(t *testing.T) {
	tests := []struct {
		status    model.LoanStatus
		wantLabel string
		wantColor string
	}{
		{model.LoanStatusPending, "Menunggu", "yellow"},
		{model.LoanStatusApproved, "Disetujui", "green"},
		{model.LoanStatusRejected, "Ditolak", "red"},
		{model.LoanStatusReturned, "Dikembalikan", "blue"},
		{model.LoanStatus("unknown"), "unknown", "gray"},
	}

	for _, tt := range tests {
		if got := StatusLabel(tt.status); got != tt.wantLabel {
			t.Errorf("StatusLabel(%s) = %q, want %q", tt.status, got, tt.wantLabel)
		}
		if got := StatusColor(tt.status); got != tt.wantColor {
			t.Errorf("StatusColor(%s) = %q, want %q", tt.status, got, tt.wantColor)
		}
	}
}
