package announcement

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hitoshi/tosho/internal/model"
)

type mockGateway struct {
	postJSONFn func(ctx context.Context, path string, body any, out any) error
}

func (m *mockGateway) PostJSON(ctx context.Context, path string, body any, out any) error {
	return m.postJSONFn(ctx, path, body, out)
}

func fillJSON(t *testing.T, out any, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
}

// TestFetchAll_ReplacesAndSanitizes は全件置き換えと取り込み時の
// サニタイズを検証する。
func TestFetchAll_ReplacesAndSanitizes(t *testing.T) {
	gw := &mockGateway{
		postJSONFn: func(ctx context.Context, path string, body any, out any) error {
			if path != "/pengumuman" {
				t.Errorf("path = %q", path)
			}
			if body != nil {
				t.Errorf("body = %v, want nil", body)
			}
			fillJSON(t, out, []model.Announcement{
				{
					Subject: "Perpustakaan tutup",
					Body:    `<p>Libur nasional</p><script>alert("x")</script>`,
					Date:    "2024-06-01",
				},
				{
					Subject: "Buku baru",
					Body:    "<strong>Koleksi</strong> terbaru sudah tersedia",
					Date:    "2024-06-02",
				},
			})
			return nil
		},
	}
	svc := NewService(gw, nil)
	svc.announcements = []model.Announcement{{Subject: "lama"}}

	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	got := svc.Announcements()
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if strings.Contains(got[0].Body, "<script") || strings.Contains(got[0].Body, "alert") {
		t.Errorf("script should be stripped, got %q", got[0].Body)
	}
	if !strings.Contains(got[0].Body, "<p>Libur nasional</p>") {
		t.Errorf("allowed tags should survive, got %q", got[0].Body)
	}
	if !strings.Contains(got[1].Body, "<strong>Koleksi</strong>") {
		t.Errorf("strong should survive, got %q", got[1].Body)
	}
	if svc.Loading() {
		t.Error("loading should be false after fetch settles")
	}
}

// TestFetchAll_Error はエラー時の状態遷移を検証する。
func TestFetchAll_Error(t *testing.T) {
	gw := &mockGateway{
		postJSONFn: func(ctx context.Context, path string, body any, out any) error {
			return model.NewServerError(500, "Server error. Please try again later.")
		},
	}
	svc := NewService(gw, nil)

	if err := svc.FetchAll(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if svc.Loading() {
		t.Error("loading should reset on error")
	}
	if svc.Err() == "" {
		t.Error("error message should be recorded")
	}
}

// TestReset はストアが初期状態に戻ることを検証する。
func TestReset(t *testing.T) {
	svc := NewService(&mockGateway{}, nil)
	svc.announcements = []model.Announcement{{Subject: "a"}}
	svc.err = "boom"

	svc.Reset()

	if len(svc.Announcements()) != 0 || svc.Err() != "" {
		t.Error("Reset should clear announcements and error")
	}
}
