// Package api はリモートAPIへの単一ゲートウェイを提供する。
package api

import (
	"fmt"

	"github.com/hitoshi/tosho/internal/model"
)

// statusMessage はHTTPステータスコードに対応する既定のユーザー向けメッセージを返す。
// サーバーがmessageを返した場合はそちらが優先される。
func statusMessage(status int) string {
	switch status {
	case 400:
		return "Bad request. Please check your input."
	case 401:
		return "Unauthorized. Please login again."
	case 403:
		return "Forbidden. You do not have permission."
	case 404:
		return "Resource not found."
	case 422:
		return "Validation error. Please check your input."
	case 500:
		return "Server error. Please try again later."
	case 502:
		return "Bad gateway. Please try again later."
	case 503:
		return "Service unavailable. Please try again later."
	default:
		return fmt.Sprintf("Request failed with status %d", status)
	}
}

// classifyStatus は非2xxのHTTPステータスコードをエラー分類に変換する。
// serverMessageが空でない場合はそれをユーザー向けメッセージとして採用する。
func classifyStatus(status int, serverMessage string) *model.APIError {
	message := serverMessage
	if message == "" {
		message = statusMessage(status)
	}

	switch {
	case status == 401 || status == 403:
		return model.NewAuthError(status, message)
	case status == 404:
		return model.NewNotFoundError(message)
	case status == 400 || status == 422:
		return model.NewValidationError(status, message)
	case status >= 500:
		return model.NewServerError(status, message)
	default:
		// その他の4xxは入力起因として扱う
		return model.NewValidationError(status, message)
	}
}
