// Package storage はクライアント側の永続ストレージを提供する。
//
// ブラウザのlocalStorage相当で、固定キーの下に文字列値を保持し、
// プロセスの再起動をまたいで生存する。認証キーはログアウトまたは
// 認可失敗時にひとまとめに消去される（テーマ設定は消去の対象外）。
package storage

// 永続ストレージの固定キー。
const (
	// KeyToken はベアラートークン。
	KeyToken = "token"
	// KeyIsLoggedIn は明示的なログイン済みフラグ（"true"）。
	KeyIsLoggedIn = "isLoggedIn"
	// KeyUser はJSONシリアライズされたユーザー。
	KeyUser = "user"
	// KeySessionID はサーバーセッションID。
	KeySessionID = "session_id"
	// KeyTheme はテーマ設定（light/dark）。認証キーの消去では残る。
	KeyTheme = "theme"
)

// authKeys はClearAuthで消去されるキーの集合。
var authKeys = []string{KeyToken, KeyIsLoggedIn, KeyUser, KeySessionID}

// Storage はキー・バリュー永続化のインターフェース。
// 書き込みはセッションストア（認証キー）とUIストア（テーマ）のみが行い、
// APIゲートウェイはトークンを読むだけとする。
type Storage interface {
	// Get は指定キーの値を返す。キーが存在しない場合は第2戻り値がfalse。
	Get(key string) (string, bool)

	// Set は指定キーに値を保存する。
	Set(key, value string) error

	// Delete は指定キーを削除する。存在しないキーの削除は何もしない。
	Delete(key string) error

	// ClearAuth は認証キー（token, isLoggedIn, user, session_id）を
	// ひとまとめに削除する。テーマ設定は残る。
	ClearAuth() error
}
