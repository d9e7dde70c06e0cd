// Package app はアプリケーションの組み立てと起動を提供する。
package app

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/tosho/internal/announcement"
	"github.com/hitoshi/tosho/internal/api"
	"github.com/hitoshi/tosho/internal/attendance"
	"github.com/hitoshi/tosho/internal/catalog"
	"github.com/hitoshi/tosho/internal/config"
	"github.com/hitoshi/tosho/internal/cover"
	"github.com/hitoshi/tosho/internal/loan"
	"github.com/hitoshi/tosho/internal/metrics"
	"github.com/hitoshi/tosho/internal/model"
	"github.com/hitoshi/tosho/internal/security"
	"github.com/hitoshi/tosho/internal/session"
	"github.com/hitoshi/tosho/internal/storage"
	"github.com/hitoshi/tosho/internal/toast"
	"github.com/hitoshi/tosho/internal/ui"
)

// Client はアプリケーション全体の状態コアを束ねる。
// 各ストアは単一のAPIゲートウェイを共有し、認可失敗（401）の検出時には
// 全ストアのセッション依存状態がまとめて無効化される。
type Client struct {
	Config  *config.Config
	Store   storage.Storage
	Gateway *api.Client

	Session       *session.Service
	Catalog       *catalog.Service
	Loans         *loan.Service
	Toasts        *toast.Queue
	Announcements *announcement.Service
	Attendance    *attendance.Service
	Prefs         *ui.Prefs
	Covers        *cover.Fetcher

	logger *slog.Logger

	mu               sync.Mutex
	onSessionExpired func()
	onChange         func(Snapshot)
}

// Snapshot は全ストアの特定時点の状態ビュー。
// デバッグ用の全状態購読の代わりに、観測したい側が明示的に取得する。
type Snapshot struct {
	Session         model.Session
	Books           []model.Book
	LoanRequests    []model.LoanRequest
	Announcements   []model.Announcement
	TodayAttendance *model.TodayAttendance
	Toasts          []model.ToastMessage
	Theme           ui.Theme
}

// NewClient は設定とストレージから全ストアをワイヤリングして生成する。
// ゲートウェイの401フックはここで接続され、検出時に以下を行う:
//  1. セッションのローカル消去（リモート呼び出しなし）
//  2. セッションエラートーストの通知
//  3. OnSessionExpiredで登録されたコールバックの呼び出し
func NewClient(cfg *config.Config, store storage.Storage, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	collector := metrics.NewCollector(prometheus.NewRegistry())
	gateway := api.NewClient(api.ClientConfig{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.APITimeout,
		RateRPS:   cfg.RateLimitRPS,
		RateBurst: cfg.RateLimitBurst,
	}, store, collector, logger)

	ssrfGuard := security.NewSSRFGuard()

	c := &Client{
		Config:  cfg,
		Store:   store,
		Gateway: gateway,

		Session:       session.NewService(gateway, store, logger),
		Catalog:       catalog.NewService(gateway, cfg.SearchDebounce, logger),
		Loans:         loan.NewService(gateway, logger),
		Toasts:        toast.NewQueue(cfg.ToastDuration, logger),
		Announcements: announcement.NewService(gateway, logger),
		Attendance:    attendance.NewService(gateway, logger),
		Prefs:         ui.NewPrefs(store, logger),
		Covers:        cover.NewFetcher(ssrfGuard, cfg.CoverTimeout, cfg.CoverMaxSize, logger),

		logger: logger,
	}

	gateway.SetUnauthorizedHook(c.handleUnauthorized)

	// 保存済みのセッションがあれば復元する
	c.Session.Restore()

	return c
}

// OnSessionExpired はセッション失効時に呼ばれるコールバックを登録する。
// CLIではログインを促すメッセージの表示などに使用する。
func (c *Client) OnSessionExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSessionExpired = fn
}

// OnChange は状態変化後に呼ばれるオブザーバーを登録する。
// 構築直後に1回だけ登録する任意のフックで、各操作の完了後に
// NotifyChangeから最新のSnapshotを受け取る。
func (c *Client) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Snapshot は全ストアの現在の状態をまとめて返す。
func (c *Client) Snapshot() Snapshot {
	return Snapshot{
		Session:         c.Session.Session(),
		Books:           c.Catalog.Books(),
		LoanRequests:    c.Loans.Requests(),
		Announcements:   c.Announcements.Announcements(),
		TodayAttendance: c.Attendance.Today(),
		Toasts:          c.Toasts.List(),
		Theme:           c.Prefs.Theme(),
	}
}

// NotifyChange は登録済みのオブザーバーへ最新のSnapshotを通知する。
// オブザーバー未登録の場合は何もしない。
func (c *Client) NotifyChange() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(c.Snapshot())
	}
}

// handleUnauthorized はゲートウェイが401を検出したときに呼ばれる。
// リモートへのログアウト呼び出しは行わない（セッションは既に無効）。
func (c *Client) handleUnauthorized() {
	c.logger.Warn("セッションが無効化されました")

	c.Session.ForceClear()
	c.ResetStores()
	c.Toasts.Enqueue(model.ToastError, "Session expired. Please login again.")

	c.mu.Lock()
	fn := c.onSessionExpired
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
	c.NotifyChange()
}

// ResetStores はセッションに依存する全ストアを初期状態に戻す。
// セッションストア自体とテーマ設定は対象外。
func (c *Client) ResetStores() {
	c.Catalog.Reset()
	c.Loans.Reset()
	c.Announcements.Reset()
	c.Attendance.Reset()
}

// Close は保持しているタイマー等の資源を解放する。
func (c *Client) Close() {
	c.Toasts.Clear()
}
