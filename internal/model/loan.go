// Package model はドメインモデルを定義する。
package model

// LoanStatus は貸出リクエストの状態を表す。
// 状態遷移は一方向: pending → approved|rejected、approved → returned。
// 遷移の決定権はサーバー側にあり、クライアントは状態を書き換えない。
type LoanStatus string

const (
	// LoanStatusPending は承認待ちの状態。
	LoanStatusPending LoanStatus = "pending"
	// LoanStatusApproved は承認済みの状態。
	LoanStatusApproved LoanStatus = "approved"
	// LoanStatusRejected は却下された状態。
	LoanStatusRejected LoanStatus = "rejected"
	// LoanStatusReturned は返却済みの状態。
	LoanStatusReturned LoanStatus = "returned"
)

// LoanReturn は返却時の罰金計算の入力を表す。
// FineAmountはサーバーが返す10進文字列をそのまま保持する。
// 丸めや通貨の整形は表示層の責務とする。
type LoanReturn struct {
	ReturnDate              string `json:"return_date"`
	IsDamaged               bool   `json:"is_damaged"`
	IsLost                  bool   `json:"is_lost"`
	IsLate                  bool   `json:"is_late"`
	DamageDescription       string `json:"damage_description,omitempty"`
	FineAmount              string `json:"fine_amount"`
	FineType                string `json:"fine_type"`
	ReplacementInstructions string `json:"replacement_instructions,omitempty"`
}

// Loan は承認後の貸出情報を表す。
// 不変条件: IsReturned == true ならば Return != nil。
type Loan struct {
	LoanDate   string      `json:"loan_date"`
	DueDate    string      `json:"due_date"`
	ReturnDate string      `json:"return_date,omitempty"`
	IsReturned bool        `json:"is_returned"`
	Return     *LoanReturn `json:"return,omitempty"`
}

// LoanRequest は書籍の貸出申請を表す。
// Loanは承認後にのみ存在し、Loan.Returnは返却後にのみ存在する。
type LoanRequest struct {
	ID          int        `json:"id"`
	RequestDate string     `json:"request_date"`
	Status      LoanStatus `json:"status"`
	Book        Book       `json:"book"`
	Loan        *Loan      `json:"loan,omitempty"`
}

// CreateLoanRequest は貸出申請作成のリクエストボディを表す。
type CreateLoanRequest struct {
	BookID      int    `json:"book_id"`
	RequestDate string `json:"request_date"`
}
