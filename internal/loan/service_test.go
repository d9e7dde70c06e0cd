package loan

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/tosho/internal/model"
)

type mockGateway struct {
	getJSONFn  func(ctx context.Context, path string, query url.Values, out any) error
	postJSONFn func(ctx context.Context, path string, body any, out any) error
}

func (m *mockGateway) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return m.getJSONFn(ctx, path, query, out)
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

// TestFetchAll_ReplacesCollection は全件置き換えフェッチを検証する。
func TestFetchAll_ReplacesCollection(t *testing.T) {
	gw := &mockGateway{
		getJSONFn: func(ctx context.Context, path string, query url.Values, out any) error {
			if path != "/loanrequests" {
				t.Errorf("path = %q", path)
			}
			fillJSON(t, out, []model.LoanRequest{
				{ID: 10, Status: model.LoanStatusApproved},
				{ID: 11, Status: model.LoanStatusPending},
			})
			return nil
		},
	}
	svc := NewService(gw, nil)
	svc.requests = []model.LoanRequest{{ID: 99}}

	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	got := svc.Requests()
	if len(got) != 2 || got[0].ID != 10 || got[1].ID != 11 {
		t.Errorf("Requests = %+v", got)
	}
	if svc.Loading() {
		t.Error("loading should be false after fetch settles")
	}
	if svc.Err() != "" {
		t.Errorf("Err = %q", svc.Err())
	}
}

// TestFetchAll_StaleResponseDiscarded は古いレスポンスが新しい結果を
// 上書きしないことを検証する。
func TestFetchAll_StaleResponseDiscarded(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls int
	var callMu sync.Mutex

	gw := &mockGateway{
		getJSONFn: func(ctx context.Context, path string, query url.Values, out any) error {
			callMu.Lock()
			calls++
			n := calls
			callMu.Unlock()
			if n == 1 {
				close(firstStarted)
				<-releaseFirst
				fillJSON(t, out, []model.LoanRequest{{ID: 1}})
				return nil
			}
			fillJSON(t, out, []model.LoanRequest{{ID: 2}})
			return nil
		},
	}
	svc := NewService(gw, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = svc.FetchAll(context.Background())
	}()
	<-firstStarted

	// 2回目のフェッチが先に完了する。
	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	close(releaseFirst)
	wg.Wait()

	got := svc.Requests()
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("stale response should be discarded, got %+v", got)
	}
	if svc.Loading() {
		t.Error("loading should be false after all fetches settle")
	}
}

// TestFetchAll_ErrorThenRetry はエラー後の再試行でエラーが消える
// ことを検証する。
func TestFetchAll_ErrorThenRetry(t *testing.T) {
	fail := true
	gw := &mockGateway{
		getJSONFn: func(ctx context.Context, path string, query url.Values, out any) error {
			if fail {
				return model.NewServerError(500, "Server error. Please try again later.")
			}
			fillJSON(t, out, []model.LoanRequest{{ID: 1}})
			return nil
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

	fail = false
	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if svc.Err() != "" {
		t.Errorf("error should clear on success, got %q", svc.Err())
	}
	if len(svc.Requests()) != 1 {
		t.Errorf("Requests = %+v", svc.Requests())
	}
}

// TestCreate_PrependsConfirmedRequest は作成成功時にサーバー確定の
// オブジェクトが先頭に挿入されることを検証する。
func TestCreate_PrependsConfirmedRequest(t *testing.T) {
	gw := &mockGateway{
		postJSONFn: func(ctx context.Context, path string, body any, out any) error {
			if path != "/loanrequests" {
				t.Errorf("path = %q", path)
			}
			req, ok := body.(model.CreateLoanRequest)
			if !ok {
				t.Fatalf("body type = %T", body)
			}
			if req.BookID != 7 {
				t.Errorf("book_id = %d", req.BookID)
			}
			fillJSON(t, out, model.LoanRequest{
				ID:          100,
				RequestDate: req.RequestDate,
				Status:      model.LoanStatusPending,
				Book:        model.Book{ID: 7, Title: "Laskar Pelangi"},
			})
			return nil
		},
	}
	svc := NewService(gw, nil)
	svc.requests = []model.LoanRequest{{ID: 50, Status: model.LoanStatusApproved}}

	created, err := svc.Create(context.Background(), model.CreateLoanRequest{
		BookID:      7,
		RequestDate: "2024-06-01",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != 100 {
		t.Errorf("created.ID = %d", created.ID)
	}

	got := svc.Requests()
	if len(got) != 2 {
		t.Fatalf("len(Requests) = %d", len(got))
	}
	if got[0].Book.ID != 7 || got[0].Status != model.LoanStatusPending {
		t.Errorf("first element = %+v", got[0])
	}
	if got[1].ID != 50 {
		t.Errorf("existing element displaced: %+v", got[1])
	}
}

// TestCreate_ErrorLeavesCollectionUntouched は作成失敗時にコレクション
// が変化しないことを検証する。
func TestCreate_ErrorLeavesCollectionUntouched(t *testing.T) {
	gw := &mockGateway{
		postJSONFn: func(ctx context.Context, path string, body any, out any) error {
			return model.NewValidationError(422, "Book already borrowed")
		},
	}
	svc := NewService(gw, nil)
	svc.requests = []model.LoanRequest{{ID: 50}}

	if _, err := svc.Create(context.Background(), model.CreateLoanRequest{BookID: 7}); err == nil {
		t.Fatal("expected error")
	}
	if svc.Err() != "Book already borrowed" {
		t.Errorf("Err = %q", svc.Err())
	}
	if svc.Loading() {
		t.Error("loading should reset on error")
	}
	if got := svc.Requests(); len(got) != 1 || got[0].ID != 50 {
		t.Errorf("collection changed: %+v", got)
	}
}

// TestOverdue_UsesInjectedNow は延滞セレクタが呼び出し時点の時刻で
// 計算されることを検証する。
func TestOverdue_UsesInjectedNow(t *testing.T) {
	svc := NewService(&mockGateway{}, nil)
	svc.requests = []model.LoanRequest{
		requestWithDueDate(1, "2024-06-10T00:00:00Z", false),
	}

	svc.now = func() time.Time { return time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC) }
	if got := svc.Overdue(); len(got) != 0 {
		t.Errorf("not yet due, got %+v", got)
	}

	// 翌日になると同じコレクションでも結果が変わる。
	svc.now = func() time.Time { return time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC) }
	if got := svc.Overdue(); len(got) != 1 || got[0].ID != 1 {
		t.Errorf("overdue after due date, got %+v", got)
	}
}

// TestReset はストアが初期状態に戻ることを検証する。
func TestReset(t *testing.T) {
	svc := NewService(&mockGateway{}, nil)
	svc.requests = []model.LoanRequest{{ID: 1}}
	svc.err = "boom"
	svc.loading = true

	svc.Reset()

	if len(svc.Requests()) != 0 || svc.Err() != "" || svc.Loading() {
		t.Error("Reset should clear requests, error and loading")
	}
}
