package app

import "testing"

// TestParseCommand はサブコマンドの解析を検証する。
func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Command
	}{
		{"empty defaults to help", []string{}, CommandHelp},
		{"nil defaults to help", nil, CommandHelp},
		{"login", []string{"login", "a@b.c", "pw"}, CommandLogin},
		{"logout", []string{"logout"}, CommandLogout},
		{"books", []string{"books"}, CommandBooks},
		{"book", []string{"book", "7"}, CommandBook},
		{"loans", []string{"loans"}, CommandLoans},
		{"borrow", []string{"borrow", "7"}, CommandBorrow},
		{"announcements", []string{"announcements"}, CommandAnnouncements},
		{"attendance", []string{"attendance"}, CommandAttendance},
		{"whoami", []string{"whoami"}, CommandWhoami},
		{"version", []string{"version"}, CommandVersion},
		{"unknown falls back to help", []string{"frobnicate"}, CommandHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCommand(tt.args); got != tt.want {
				t.Errorf("ParseCommand(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}
