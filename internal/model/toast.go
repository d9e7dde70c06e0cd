// Package model はドメインモデルを定義する。
package model

import "time"

// ToastType はトースト通知の種別を表す。
type ToastType string

const (
	// ToastSuccess は成功通知。
	ToastSuccess ToastType = "success"
	// ToastError はエラー通知。
	ToastError ToastType = "error"
	// ToastWarning は警告通知。
	ToastWarning ToastType = "warning"
	// ToastInfo は情報通知。
	ToastInfo ToastType = "info"
)

// DefaultToastDuration はトーストの既定の表示時間。
const DefaultToastDuration = 5 * time.Second

// ToastMessage は一時的なユーザー向け通知を表す。
// IDはエンキューごとに一意に生成され、再利用されない。
// Durationの経過または手動での消去のどちらか早い方で破棄される。
type ToastMessage struct {
	ID       string
	Type     ToastType
	Message  string
	Duration time.Duration
}
