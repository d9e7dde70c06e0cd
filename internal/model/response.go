// Package model はドメインモデルを定義する。
package model

import "encoding/json"

// APIResponse はサーバーAPIの共通レスポンスエンベロープを表す。
// 全エンドポイントが {status, data?, message?} の形式で応答する。
type APIResponse struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// エンベロープのstatusフィールドが取る値。
const (
	ResponseStatusSuccess = "success"
	ResponseStatusFailed  = "failed"
)

// IsSuccess はエンベロープが成功応答かどうかを返す。
func (r *APIResponse) IsSuccess() bool {
	return r.Status == ResponseStatusSuccess
}
