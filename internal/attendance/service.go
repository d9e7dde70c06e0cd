// Package attendance は当日の出席記録の状態管理を提供する。
package attendance

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/tosho/internal/model"
)

// Gateway は出席ストアが必要とするAPIゲートウェイのインターフェース。
// 当日分の取得もサーバーの仕様によりPOSTで行う。
type Gateway interface {
	PostJSON(ctx context.Context, path string, body any, out any) error
}

// submitRequest は打刻のリクエストボディ。
type submitRequest struct {
	Type model.AttendanceType `json:"type"`
}

// Service は出席ストアの実装。
// 当日の記録は存在しないことがあり、その場合Todayはnilを返す。
type Service struct {
	mu      sync.Mutex
	today   *model.TodayAttendance
	loading bool
	err     string

	gw     Gateway
	logger *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(gw Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gw: gw, logger: logger}
}

// FetchToday は当日の出席記録を取得する。
// 記録がまだ存在しない場合、サーバーはデータなしで成功を返し、
// Todayはnilのままとなる。これはエラーではない。
func (s *Service) FetchToday(ctx context.Context) error {
	s.setLoading(true)

	var today *model.TodayAttendance
	err := s.gw.PostJSON(ctx, "/attendance/today/", nil, &today)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.err = errMessage(err)
		s.logger.Error("当日の出席記録の取得に失敗しました", slog.String("error", err.Error()))
		return err
	}

	s.today = today
	s.err = ""
	if today != nil {
		s.logger.Info("当日の出席記録を取得しました",
			slog.Int("attendance_id", today.ID),
			slog.String("check_in", today.CheckIn),
			slog.String("check_out", today.CheckOut),
		)
	} else {
		s.logger.Info("当日の出席記録はまだありません")
	}
	return nil
}

// Submit は出勤または退勤を打刻し、サーバーが確定した記録で
// 当日分を置き換える。
func (s *Service) Submit(ctx context.Context, typ model.AttendanceType) (*model.TodayAttendance, error) {
	s.setLoading(true)

	var today model.TodayAttendance
	err := s.gw.PostJSON(ctx, "/attendance", submitRequest{Type: typ}, &today)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.err = errMessage(err)
		s.logger.Error("打刻に失敗しました",
			slog.String("type", string(typ)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.today = &today
	s.err = ""
	s.logger.Info("打刻しました",
		slog.String("type", string(typ)),
		slog.Int("attendance_id", today.ID),
	)
	return &today, nil
}

// Today は当日の出席記録を返す。記録がない場合はnil。
func (s *Service) Today() *model.TodayAttendance {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.today == nil {
		return nil
	}
	out := *s.today
	return &out
}

// HasCheckedIn は出勤打刻済みかどうかを返す。
func (s *Service) HasCheckedIn() bool {
	return s.Today().HasCheckedIn()
}

// HasCheckedOut は退勤打刻済みかどうかを返す。
func (s *Service) HasCheckedOut() bool {
	return s.Today().HasCheckedOut()
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
	s.today = nil
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

// timeLayouts はサーバーが返す時刻文字列の候補フォーマット。
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"15:04:05",
}

// FormatTime は打刻時刻を表示用の "HH.MM" 形式に整形する。
// 未打刻（空文字列）は "-"、パースできない場合は入力をそのまま返す。
func FormatTime(timeString string) string {
	if timeString == "" {
		return "-"
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, timeString); err == nil {
			return t.Format("15.04")
		}
	}
	return timeString
}

// errMessage はAPIErrorのユーザー向けメッセージを優先して取り出す。
func errMessage(err error) string {
	if apiErr, ok := model.AsAPIError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}
