// Package loan は貸出リクエストの状態管理を提供する。
//
// コレクションは全件置き換えフェッチで同期し、世代カウンタで古い
// レスポンスを破棄する。作成成功時はサーバーが確定したオブジェクトを
// 再フェッチなしで先頭に挿入する（最新が先頭の並び）。
package loan

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/hitoshi/tosho/internal/model"
)

// Gateway は貸出ストアが必要とするAPIゲートウェイのインターフェース。
type Gateway interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	PostJSON(ctx context.Context, path string, body any, out any) error
}

// Service は貸出リクエストストアの実装。
type Service struct {
	mu       sync.Mutex
	requests []model.LoanRequest
	loading  bool
	err      string

	issuedGen  uint64
	appliedGen uint64

	gw     Gateway
	logger *slog.Logger

	// now はテストで時刻を固定するための注入ポイント。
	now func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(gw Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		gw:     gw,
		logger: logger,
		now:    time.Now,
	}
}

// FetchAll は貸出リクエスト一覧を取得し、コレクションを全件置き換える。
// 置き換えの順序規則はカタログストアと同じで、後に発行された結果が勝つ。
func (s *Service) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.issuedGen++
	gen := s.issuedGen
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	var requests []model.LoanRequest
	err := s.gw.GetJSON(ctx, "/loanrequests", nil, &requests)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen <= s.appliedGen {
		s.logger.Debug("古いフェッチ結果を破棄します",
			slog.Uint64("generation", gen),
			slog.Uint64("applied", s.appliedGen),
		)
		return err
	}

	if err != nil {
		if gen == s.issuedGen {
			s.loading = false
			s.err = errMessage(err)
		}
		s.logger.Error("貸出リクエスト一覧の取得に失敗しました", slog.String("error", err.Error()))
		return err
	}

	s.appliedGen = gen
	s.requests = requests
	if gen == s.issuedGen {
		s.loading = false
	}
	s.err = ""

	s.logger.Info("貸出リクエスト一覧を取得しました", slog.Int("count", len(requests)))
	return nil
}

// Create は貸出申請を作成する。
// 成功時はサーバーが確定したリクエストをコレクションの先頭に挿入する。
// 全件再フェッチは行わない。
func (s *Service) Create(ctx context.Context, req model.CreateLoanRequest) (*model.LoanRequest, error) {
	s.setLoading(true)

	var created model.LoanRequest
	err := s.gw.PostJSON(ctx, "/loanrequests", req, &created)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.err = errMessage(err)
		s.mu.Unlock()
		s.logger.Error("貸出申請の作成に失敗しました",
			slog.Int("book_id", req.BookID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append([]model.LoanRequest{created}, s.requests...)
	s.loading = false
	s.err = ""

	s.logger.Info("貸出申請を作成しました",
		slog.Int("loan_request_id", created.ID),
		slog.Int("book_id", req.BookID),
		slog.String("status", string(created.Status)),
	)
	return &created, nil
}

// Requests は貸出リクエストのスナップショットを返す。
func (s *Service) Requests() []model.LoanRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.LoanRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// Pending は承認待ちのリクエストを返す。呼び出しごとに再計算される。
func (s *Service) Pending() []model.LoanRequest {
	return Pending(s.Requests())
}

// Approved は承認済みのリクエストを返す。呼び出しごとに再計算される。
func (s *Service) Approved() []model.LoanRequest {
	return Approved(s.Requests())
}

// Overdue は延滞中のリクエストを返す。
// 呼び出し時点の現在時刻で毎回計算され、日付の変わり目を隠す
// キャッシュは持たない。
func (s *Service) Overdue() []model.LoanRequest {
	return Overdue(s.Requests(), s.now())
}

// Loading は処理中かどうかを返す。
func (s *Service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err は直近のエラーメッセージを返す。エラーがない場合は空文字列。
func (s *Service) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ClearError は記録されたエラーを消去する。
func (s *Service) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// Reset はストアを初期状態に戻す。
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
	s.loading = false
	s.err = ""
}

func (s *Service) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
	if v {
		s.err = ""
	}
}

// errMessage はAPIErrorのユーザー向けメッセージを優先して取り出す。
func errMessage(err error) string {
	if apiErr, ok := model.AsAPIError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}
