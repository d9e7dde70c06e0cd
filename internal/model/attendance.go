// Package model はドメインモデルを定義する。
package model

// AttendanceType は出退勤の打刻種別を表す。
type AttendanceType string

const (
	// AttendanceCheckIn は出勤打刻。
	AttendanceCheckIn AttendanceType = "check_in"
	// AttendanceCheckOut は退勤打刻。
	AttendanceCheckOut AttendanceType = "check_out"
)

// TodayAttendance は当日の出席記録を表す。
// ユーザーごとに1日1件で、初回の出勤打刻時にサーバー側で暗黙的に作成される。
type TodayAttendance struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// HasCheckedIn は出勤打刻済みかどうかを返す。
func (a *TodayAttendance) HasCheckedIn() bool {
	return a != nil && a.CheckIn != ""
}

// HasCheckedOut は退勤打刻済みかどうかを返す。
func (a *TodayAttendance) HasCheckedOut() bool {
	return a != nil && a.CheckOut != ""
}
