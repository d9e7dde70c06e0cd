// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// ゲートウェイでの分類結果を保持し、ストアはMessageをそのまま
// エラーフィールドとして記録する。
type APIError struct {
	Code     string // エラーコード
	Message  string // ユーザー向けメッセージ（サーバー提供を優先）
	Category string // カテゴリ: validation, auth, notfound, server, network
	Status   int    // HTTPステータスコード。レスポンスなしの場合は0
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeValidation   = "VALIDATION_FAILED"
	ErrCodeServer       = "SERVER_ERROR"
	ErrCodeNetwork      = "NETWORK_ERROR"
)

// エラーカテゴリ
const (
	CategoryValidation = "validation"
	CategoryAuth       = "auth"
	CategoryNotFound   = "notfound"
	CategoryServer     = "server"
	CategoryNetwork    = "network"
)

// NewValidationError は入力不正エラー（400/422）を生成する。
func NewValidationError(status int, message string) *APIError {
	code := ErrCodeBadRequest
	if status == 422 {
		code = ErrCodeValidation
	}
	return &APIError{
		Code:     code,
		Message:  message,
		Category: CategoryValidation,
		Status:   status,
	}
}

// NewAuthError は認可エラー（401/403）を生成する。
func NewAuthError(status int, message string) *APIError {
	code := ErrCodeUnauthorized
	if status == 403 {
		code = ErrCodeForbidden
	}
	return &APIError{
		Code:     code,
		Message:  message,
		Category: CategoryAuth,
		Status:   status,
	}
}

// NewNotFoundError はリソース未検出エラー（404）を生成する。
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  message,
		Category: CategoryNotFound,
		Status:   404,
	}
}

// NewServerError はサーバー側エラー（5xx）を生成する。
func NewServerError(status int, message string) *APIError {
	return &APIError{
		Code:     ErrCodeServer,
		Message:  message,
		Category: CategoryServer,
		Status:   status,
	}
}

// NewNetworkError はレスポンス未到達エラーを生成する。
// タイムアウトや接続失敗を表し、HTTPステータスエラーとは区別される。
// 原因の詳細はログにのみ残し、ユーザー向けメッセージは固定とする。
func NewNetworkError() *APIError {
	return &APIError{
		Code:     ErrCodeNetwork,
		Message:  "Network error. Please check your connection.",
		Category: CategoryNetwork,
		Status:   0,
	}
}

// AsAPIError はエラーチェーンからAPIErrorを取り出す。
// APIErrorでない場合はnilとfalseを返す。
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsAuthError はエラーが認可エラーかどうかを返す。
func IsAuthError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Category == CategoryAuth
}

// IsNetworkError はエラーがネットワークエラーかどうかを返す。
func IsNetworkError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Category == CategoryNetwork
}
