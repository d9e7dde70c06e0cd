// Package session は認証セッションの状態管理を提供する。
//
// トークン・セッションID・ユーザー・認証フラグを保持し、永続ストレージと
// 同期する。認可失敗時のローカル消去（ForceClear）はゲートウェイのフック
// 経由でどのストア発の呼び出しからも起動される。
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"sync"

	"github.com/hitoshi/tosho/internal/model"
	"github.com/hitoshi/tosho/internal/storage"
)

// Gateway はセッションストアが必要とするAPIゲートウェイのインターフェース。
type Gateway interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	PostForm(ctx context.Context, path string, fields map[string]string, out any) error
}

// Service はセッションストアの実装。
// 永続ストレージの認証キーを書き換えるのはこのストアだけとする。
type Service struct {
	mu      sync.Mutex
	session model.Session
	loading bool
	err     string

	gw     Gateway
	store  storage.Storage
	logger *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(gw Gateway, store storage.Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		gw:     gw,
		store:  store,
		logger: logger,
	}
}

// Restore は永続ストレージからセッションを復元する。
// プロセス起動時に1回呼び出す。認証済みと判定する条件は
// トークンの存在と明示的なログイン済みフラグの両方が揃っていること。
func (s *Service) Restore() {
	token, _ := s.store.Get(storage.KeyToken)
	loggedIn, _ := s.store.Get(storage.KeyIsLoggedIn)
	sessionID, _ := s.store.Get(storage.KeySessionID)

	var user *model.User
	if raw, ok := s.store.Get(storage.KeyUser); ok && raw != "" {
		var u model.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			s.logger.Error("永続化されたユーザーの復元に失敗しました",
				slog.String("error", err.Error()),
			)
		} else {
			user = &u
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = model.Session{
		Token:           token,
		SessionID:       sessionID,
		User:            user,
		IsAuthenticated: token != "" && loggedIn == "true",
	}

	s.logger.Debug("セッションを復元しました",
		slog.Bool("authenticated", s.session.IsAuthenticated),
		slog.Bool("has_user", user != nil),
	)
}

// Login は認証を行い、成功時にセッションを確立して永続化する。
// 失敗時は状態を変更せず、エラーメッセージのみ記録する。
func (s *Service) Login(ctx context.Context, creds model.LoginCredentials) error {
	s.setLoading(true)

	var data model.LoginData
	err := s.gw.PostForm(ctx, "/login", map[string]string{
		"email":    creds.Email,
		"password": creds.Password,
	}, &data)
	if err != nil {
		s.finishWithError(err)
		s.logger.Error("ログインに失敗しました", slog.String("error", err.Error()))
		return err
	}

	// 永続化: token, ログイン済みフラグ, user, session_id
	if werr := s.store.Set(storage.KeyToken, data.Token); werr != nil {
		s.logger.Error("トークンの永続化に失敗しました", slog.String("error", werr.Error()))
	}
	if werr := s.store.Set(storage.KeyIsLoggedIn, "true"); werr != nil {
		s.logger.Error("ログインフラグの永続化に失敗しました", slog.String("error", werr.Error()))
	}
	if data.User != nil {
		if raw, merr := json.Marshal(data.User); merr == nil {
			if werr := s.store.Set(storage.KeyUser, string(raw)); werr != nil {
				s.logger.Error("ユーザーの永続化に失敗しました", slog.String("error", werr.Error()))
			}
		}
	}
	if data.SessionID != "" {
		if werr := s.store.Set(storage.KeySessionID, data.SessionID); werr != nil {
			s.logger.Error("セッションIDの永続化に失敗しました", slog.String("error", werr.Error()))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = model.Session{
		Token:           data.Token,
		SessionID:       data.SessionID,
		User:            data.User,
		IsAuthenticated: true,
	}
	s.loading = false
	s.err = ""

	if data.User != nil {
		s.logger.Info("ログインしました", slog.Int("user_id", data.User.ID))
	}
	return nil
}

// Logout はセッションを破棄する。
// セッションIDがある場合のみリモート無効化を試みるが、リモートの成否に
// かかわらずローカルの消去は無条件に行う。リモート失敗はログに残すのみで
// 呼び出し側の処理を妨げない。
func (s *Service) Logout(ctx context.Context) {
	s.mu.Lock()
	sessionID := s.session.SessionID
	s.mu.Unlock()

	if sessionID != "" {
		if err := s.gw.GetJSON(ctx, "/auth/logout/"+url.PathEscape(sessionID), nil, nil); err != nil {
			s.logger.Warn("リモートのログアウト呼び出しに失敗しました",
				slog.String("error", err.Error()),
			)
		}
	} else {
		s.logger.Debug("セッションIDがないためリモートのログアウトをスキップします")
	}

	s.ForceClear()
	s.logger.Info("ログアウトしました")
}

// FetchCurrentUser は現在のユーザーを再取得し、セッションのユーザーを更新する。
// 認証フラグには影響しない。リロード後のプロフィール復元に使用する。
func (s *Service) FetchCurrentUser(ctx context.Context) (*model.User, error) {
	s.setLoading(true)

	var user model.User
	if err := s.gw.GetJSON(ctx, "/user", nil, &user); err != nil {
		s.finishWithError(err)
		s.logger.Error("ユーザーの取得に失敗しました", slog.String("error", err.Error()))
		return nil, err
	}

	if raw, merr := json.Marshal(&user); merr == nil {
		if werr := s.store.Set(storage.KeyUser, string(raw)); werr != nil {
			s.logger.Error("ユーザーの永続化に失敗しました", slog.String("error", werr.Error()))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.User = &user
	s.loading = false
	s.err = ""

	return &user, nil
}

// ForceClear はローカルのセッション状態と永続化された認証キーを
// 無条件に消去する。401受信時のゲートウェイフックからも呼ばれる。
func (s *Service) ForceClear() {
	if err := s.store.ClearAuth(); err != nil {
		s.logger.Error("認証キーの消去に失敗しました", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = model.Session{}
	s.loading = false
	s.err = ""
}

// Session は現在のセッションのスナップショットを返す。
func (s *Service) Session() model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// IsAuthenticated は認証済みかどうかを返す。
func (s *Service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.IsAuthenticated
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

func (s *Service) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
	if v {
		s.err = ""
	}
}

func (s *Service) finishWithError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.err = err.Error()
	if apiErr, ok := model.AsAPIError(err); ok {
		s.err = apiErr.Message
	}
}
