package catalog

import (
	"sync"
	"time"
)

// debouncer は呼び出しを静止期間で間引く。
// 新しいtriggerは保留中の実行をキャンセルし、連続した更新を
// 最後の1回に合流させる。
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

// trigger はdelay経過後にfnを実行するようスケジュールする。
// 保留中の実行がある場合はキャンセルして置き換える。
// delayが0以下の場合はその場で同期実行する。
func (d *debouncer) trigger(fn func()) {
	if d.delay <= 0 {
		fn()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// stop は保留中の実行をキャンセルする。
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
