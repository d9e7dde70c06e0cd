// Package catalog は蔵書カタログの状態管理を提供する。
//
// フェッチは全件置き換えで、世代カウンタにより古いレスポンスが新しい
// 結果を上書きしないことを保証する。検索クエリは静止期間で間引かれ、
// 絞り込みは純粋関数Filterで計算される。
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/hitoshi/tosho/internal/model"
)

// Gateway はカタログストアが必要とするAPIゲートウェイのインターフェース。
type Gateway interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
}

// Service はカタログストアの実装。
type Service struct {
	mu          sync.Mutex
	books       []model.Book
	currentBook *model.Book
	searchQuery string
	loading     bool
	err         string

	// 世代カウンタ。発行時にissuedGenを進め、コミット時にappliedGenと
	// 比較して古いレスポンスを破棄する
	issuedGen  uint64
	appliedGen uint64

	// currentBookスロット用の世代カウンタ
	currentIssuedGen  uint64
	currentAppliedGen uint64

	gw       Gateway
	logger   *slog.Logger
	debounce *debouncer
}

// NewService はServiceの新しいインスタンスを生成する。
// searchDebounceは検索クエリ反映の静止期間。0以下で即時反映となる。
func NewService(gw Gateway, searchDebounce time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		gw:       gw,
		logger:   logger,
		debounce: newDebouncer(searchDebounce),
	}
}

// FetchAll は蔵書一覧を取得し、コレクションを全件置き換える。
// 先に発行されたフェッチのレスポンスが後から届いた場合は破棄され、
// 後に発行された結果が常に勝つ。
func (s *Service) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.issuedGen++
	gen := s.issuedGen
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	var books []model.Book
	err := s.gw.GetJSON(ctx, "/books", nil, &books)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen <= s.appliedGen {
		// 新しい世代が既にコミット済み。このレスポンスは古い
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
		s.logger.Error("蔵書一覧の取得に失敗しました", slog.String("error", err.Error()))
		return err
	}

	s.appliedGen = gen
	s.books = books
	if gen == s.issuedGen {
		s.loading = false
	}
	s.err = ""

	s.logger.Info("蔵書一覧を取得しました", slog.Int("count", len(books)))
	return nil
}

// Search は検索パラメータ付きで蔵書一覧を取得する。
// サーバー側検索に対応している場合に使用し、置き換えの規則はFetchAllと同じ。
func (s *Service) Search(ctx context.Context, query string) error {
	s.mu.Lock()
	s.issuedGen++
	gen := s.issuedGen
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	q := url.Values{}
	q.Set("search", query)

	var books []model.Book
	err := s.gw.GetJSON(ctx, "/books", q, &books)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen <= s.appliedGen {
		return err
	}

	if err != nil {
		if gen == s.issuedGen {
			s.loading = false
			s.err = errMessage(err)
		}
		return err
	}

	s.appliedGen = gen
	s.books = books
	if gen == s.issuedGen {
		s.loading = false
	}
	s.err = ""
	return nil
}

// FetchByID は指定IDの蔵書を取得してcurrentBookスロットに設定する。
func (s *Service) FetchByID(ctx context.Context, id int) (*model.Book, error) {
	s.mu.Lock()
	s.currentIssuedGen++
	gen := s.currentIssuedGen
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	var book model.Book
	err := s.gw.GetJSON(ctx, "/books/"+strconv.Itoa(id), nil, &book)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen <= s.currentAppliedGen {
		return nil, err
	}

	if err != nil {
		if gen == s.currentIssuedGen {
			s.loading = false
			s.err = errMessage(err)
		}
		s.logger.Error("蔵書の取得に失敗しました",
			slog.Int("book_id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.currentAppliedGen = gen
	s.currentBook = &book
	if gen == s.currentIssuedGen {
		s.loading = false
	}
	s.err = ""

	return &book, nil
}

// SetSearchQuery は検索クエリの更新をスケジュールする。
// 静止期間（コンストラクタで指定）が経過するまで反映されず、
// 連続した呼び出しは最後の1回に合流する。リモートには触れない。
func (s *Service) SetSearchQuery(query string) {
	s.debounce.trigger(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.searchQuery = query
		s.logger.Debug("検索クエリを更新しました", slog.String("query", query))
	})
}

// SearchQuery は現在反映されている検索クエリを返す。
func (s *Service) SearchQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchQuery
}

// Books は蔵書コレクションのスナップショットを返す。
func (s *Service) Books() []model.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Book, len(s.books))
	copy(out, s.books)
	return out
}

// FilteredBooks は現在の検索クエリで絞り込んだ蔵書を返す。
// 生の状態からの純粋な導出で、キャッシュは持たない。
func (s *Service) FilteredBooks() []model.Book {
	s.mu.Lock()
	books := s.books
	query := s.searchQuery
	s.mu.Unlock()
	return Filter(books, query)
}

// CurrentBook は現在選択中の蔵書を返す。未選択の場合はnil。
func (s *Service) CurrentBook() *model.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentBook
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

// Reset はストアを初期状態に戻す。保留中のクエリ反映もキャンセルする。
func (s *Service) Reset() {
	s.debounce.stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = nil
	s.currentBook = nil
	s.searchQuery = ""
	s.loading = false
	s.err = ""
}

// errMessage はAPIErrorのユーザー向けメッセージを優先して取り出す。
func errMessage(err error) string {
	if apiErr, ok := model.AsAPIError(err); ok {
		return apiErr.Message
	}
	return fmt.Sprintf("%v", err)
}
