// Package model はドメインモデルを定義する。
package model

// User はサービス利用ユーザーを表す。
// サーバーAPIの /user レスポンスおよびログインレスポンスに含まれる形式。
type User struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	EmailVerifiedAt string `json:"email_verified_at,omitempty"`
	Role            string `json:"role"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// Session は認証済みアイデンティティのコンテキストを表す。
// トークンとセッションIDは不透明な資格情報文字列として扱う。
// 不変条件: IsAuthenticated == true ならば Token は空でない。
type Session struct {
	Token           string
	SessionID       string
	User            *User
	IsAuthenticated bool
}

// LoginCredentials はログイン要求の入力を表す。
type LoginCredentials struct {
	Email    string
	Password string
}

// LoginData はログイン成功時のレスポンスデータを表す。
type LoginData struct {
	Token     string `json:"token"`
	User      *User  `json:"user"`
	SessionID string `json:"session_id,omitempty"`
}
