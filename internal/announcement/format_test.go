package announcement

import (
	"testing"
	"time"

	"github.com/hitoshi/tosho/internal/model"
)

// TestRelativeTime は相対時刻表現の段階を検証する。
func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date string
		want string
	}{
		{"same day", "2024-06-15T09:00:00Z", "Hari ini"},
		{"yesterday", "2024-06-14T09:00:00Z", "Kemarin"},
		{"three days ago", "2024-06-12T09:00:00Z", "3 hari yang lalu"},
		{"two weeks ago", "2024-06-01T09:00:00Z", "2 minggu yang lalu"},
		{"over a month ago", "2024-05-01T09:00:00Z", "1 Mei 2024"},
		{"date-only layout", "2024-06-12", "3 hari yang lalu"},
		{"unparseable", "bukan-tanggal", "bukan-tanggal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativeTime(tt.date, now); got != tt.want {
				t.Errorf("RelativeTime(%q) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

// TestFormatDate はインドネシア語の日付表記を検証する。
func TestFormatDate(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2024-01-02", "2 Januari 2024"},
		{"2024-12-31T23:59:59Z", "31 Desember 2024"},
		{"invalid", "invalid"},
	}

	for _, tt := range tests {
		if got := FormatDate(tt.date); got != tt.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

// TestExcerpt はHTML本文からのプレーンテキスト抜粋を検証する。
func TestExcerpt(t *testing.T) {
	a := &model.Announcement{
		Body: "<p>Perpustakaan  akan <strong>tutup</strong></p><p>selama libur nasional</p>",
	}

	full := Excerpt(a, 0)
	if full != "Perpustakaan akan tutup selama libur nasional" {
		t.Errorf("full excerpt = %q", full)
	}

	short := Excerpt(a, 17)
	if short != "Perpustakaan akan…" {
		t.Errorf("short excerpt = %q", short)
	}

	// 上限より短い本文はそのまま返る。
	if got := Excerpt(a, 1000); got != full {
		t.Errorf("Excerpt with large limit = %q", got)
	}
}
