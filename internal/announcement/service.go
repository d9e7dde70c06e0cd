package announcement

import (
	"context"
	"log/slog"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/tosho/internal/model"
)

// Gateway はお知らせストアが必要とするAPIゲートウェイのインターフェース。
// 一覧取得はサーバーの仕様によりPOSTで行う。
type Gateway interface {
	PostJSON(ctx context.Context, path string, body any, out any) error
}

// Service はお知らせストアの実装。
// 取得した本文はコレクションへ入る前にサニタイズされるため、
// ストアから読み出したお知らせは常に安全なHTMLを保持する。
type Service struct {
	mu            sync.Mutex
	announcements []model.Announcement
	loading       bool
	err           string

	issuedGen  uint64
	appliedGen uint64

	gw     Gateway
	policy *bluemonday.Policy
	logger *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(gw Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		gw:     gw,
		policy: newBodyPolicy(),
		logger: logger,
	}
}

// FetchAll はお知らせ一覧を取得し、コレクションを全件置き換える。
// 本文は取り込み時にサニタイズされる。置き換えの順序規則は
// ほかのストアと同じで、後に発行された結果が勝つ。
func (s *Service) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.issuedGen++
	gen := s.issuedGen
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	var announcements []model.Announcement
	err := s.gw.PostJSON(ctx, "/pengumuman", nil, &announcements)

	if err == nil {
		for i := range announcements {
			announcements[i].Body = s.policy.Sanitize(announcements[i].Body)
		}
	}

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
		s.logger.Error("お知らせ一覧の取得に失敗しました", slog.String("error", err.Error()))
		return err
	}

	s.appliedGen = gen
	s.announcements = announcements
	if gen == s.issuedGen {
		s.loading = false
	}
	s.err = ""

	s.logger.Info("お知らせ一覧を取得しました", slog.Int("count", len(announcements)))
	return nil
}

// Announcements はお知らせのスナップショットを返す。
func (s *Service) Announcements() []model.Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Announcement, len(s.announcements))
	copy(out, s.announcements)
	return out
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
	s.announcements = nil
	s.loading = false
	s.err = ""
}

// errMessage はAPIErrorのユーザー向けメッセージを優先して取り出す。
func errMessage(err error) string {
	if apiErr, ok := model.AsAPIError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}
