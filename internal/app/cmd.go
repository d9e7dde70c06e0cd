package app

// Command はCLIのサブコマンドを表す。
type Command string

const (
	// CommandLogin はログインして認証情報を保存する。
	CommandLogin Command = "login"
	// CommandLogout はサーバーセッションを破棄し、認証情報を消去する。
	CommandLogout Command = "logout"
	// CommandBooks は蔵書一覧（任意で検索）を表示する。
	CommandBooks Command = "books"
	// CommandBook は書籍の詳細を表示する。
	CommandBook Command = "book"
	// CommandLoans は自分の貸出リクエスト一覧を表示する。
	CommandLoans Command = "loans"
	// CommandBorrow は貸出申請を作成する。
	CommandBorrow Command = "borrow"
	// CommandAnnouncements はお知らせ一覧を表示する。
	CommandAnnouncements Command = "announcements"
	// CommandAttendance は当日の出席を表示または打刻する。
	CommandAttendance Command = "attendance"
	// CommandWhoami はログイン中のユーザーを表示する。
	CommandWhoami Command = "whoami"
	// CommandVersion はバージョンを表示する。
	CommandVersion Command = "version"
	// CommandHelp は使い方を表示する。
	CommandHelp Command = "help"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandHelpを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandHelp
	}

	switch args[0] {
	case "login":
		return CommandLogin
	case "logout":
		return CommandLogout
	case "books":
		return CommandBooks
	case "book":
		return CommandBook
	case "loans":
		return CommandLoans
	case "borrow":
		return CommandBorrow
	case "announcements":
		return CommandAnnouncements
	case "attendance":
		return CommandAttendance
	case "whoami":
		return CommandWhoami
	case "version":
		return CommandVersion
	default:
		return CommandHelp
	}
}
