// Package toast は自己消滅するユーザー向け通知のキューを提供する。
//
// 各トーストはエンキュー時に自身の破棄タスクをスケジュールし、
// 手動で消去された場合は保留中の自動破棄をキャンセルする。
// IDはエンキューごとに一意で再利用されないため、同一IDの二重破棄は
// 起こり得ず、Dismissは冪等となる。
package toast

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/tosho/internal/model"
)

// Queue はトースト通知の順序付きキュー。
// 挿入順がそのまま表示順になる。
type Queue struct {
	mu              sync.Mutex
	toasts          []model.ToastMessage
	timers          map[string]*time.Timer
	defaultDuration time.Duration
	logger          *slog.Logger
}

// NewQueue はQueueの新しいインスタンスを生成する。
// defaultDurationが0以下の場合は既定の表示時間を使用する。
func NewQueue(defaultDuration time.Duration, logger *slog.Logger) *Queue {
	if defaultDuration <= 0 {
		defaultDuration = model.DefaultToastDuration
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		timers:          make(map[string]*time.Timer),
		defaultDuration: defaultDuration,
		logger:          logger,
	}
}

// newToastID は一意のトーストIDを生成する。
// 時刻とランダムサフィックスの組で、衝突確率は無視できる水準とする。
func newToastID() string {
	return fmt.Sprintf("toast_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// Enqueue は既定の表示時間でトーストを追加し、IDを返す。
func (q *Queue) Enqueue(typ model.ToastType, message string) string {
	return q.EnqueueWithDuration(typ, message, q.defaultDuration)
}

// EnqueueWithDuration は表示時間を指定してトーストを追加し、IDを返す。
// durationが0以下の場合は既定値を使用する。
func (q *Queue) EnqueueWithDuration(typ model.ToastType, message string, duration time.Duration) string {
	if duration <= 0 {
		duration = q.defaultDuration
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	id := newToastID()
	q.toasts = append(q.toasts, model.ToastMessage{
		ID:       id,
		Type:     typ,
		Message:  message,
		Duration: duration,
	})

	// トーストごとに自動破棄をスケジュールする。
	// タイマーの所有権はキューにあり、Dismissでキャンセルされる
	q.timers[id] = time.AfterFunc(duration, func() {
		q.Dismiss(id)
	})

	q.logger.Debug("トーストを追加しました",
		slog.String("toast_id", id),
		slog.String("type", string(typ)),
		slog.String("message", message),
	)

	return id
}

// Dismiss は指定IDのトーストを削除する。
// 既に存在しない場合は何もしない（冪等）。保留中の自動破棄はキャンセルされる。
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}

	for i, tst := range q.toasts {
		if tst.ID == id {
			q.toasts = append(q.toasts[:i], q.toasts[i+1:]...)
			q.logger.Debug("トーストを削除しました", slog.String("toast_id", id))
			return
		}
	}
}

// List は現在のトーストを挿入順で返す。
// 返り値は内部状態のコピーで、呼び出し側が変更しても影響しない。
func (q *Queue) List() []model.ToastMessage {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]model.ToastMessage, len(q.toasts))
	copy(out, q.toasts)
	return out
}

// Clear は全トーストを削除し、保留中の自動破棄を全てキャンセルする。
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.toasts = nil
	q.logger.Debug("全トーストを消去しました")
}
