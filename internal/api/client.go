// Package api はリモートAPIへの単一ゲートウェイを提供する。
//
// 全ての送信リクエストに相関ID（X-Request-ID）とベアラートークンを付与し、
// レスポンスをエラー分類表に従って分類する。認可失敗（401）を受け取った
// 場合は登録されたフックを呼び出し、どのストア発のリクエストであっても
// グローバルなセッション無効化を引き起こす。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/tosho/internal/metrics"
	"github.com/hitoshi/tosho/internal/model"
	"github.com/hitoshi/tosho/internal/storage"
)

// maxResponseBody はAPIレスポンスボディの読み取り上限。
const maxResponseBody = 10 << 20

// ClientConfig はClientの生成に必要な設定をまとめた構造体。
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateRPS   float64
	RateBurst int
}

// Client はリモートAPIへのHTTPゲートウェイ。
// トークンの注入、相関IDの付与、失敗の分類、送信レート制限、
// メトリクス記録を一箇所で行う。
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      storage.Storage
	limiter    *rate.Limiter
	collector  metrics.MetricsCollector
	logger     *slog.Logger

	// reqSeq は相関IDの単調増加カウンタ。
	reqSeq atomic.Uint64

	mu             sync.RWMutex
	onUnauthorized func()
}

// NewClient はClientの新しいインスタンスを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewClient(cfg ClientConfig, store storage.Storage, collector metrics.MetricsCollector, logger *slog.Logger) *Client {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	rps := cfg.RateRPS
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 20
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		store:      store,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		collector:  collector,
		logger:     logger,
	}
}

// SetUnauthorizedHook は401受信時に呼び出されるフックを登録する。
// セッションストアのローカル消去と未認証エントリポイントへの誘導を
// 合成ルートで束ねて渡すことを想定している。
func (c *Client) SetUnauthorizedHook(hook func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = hook
}

// nextRequestID は診断用の相関IDを生成する。
// プロトコル上の要求ではなく、ログの突き合わせにのみ使用する。
func (c *Client) nextRequestID() string {
	seq := c.reqSeq.Add(1)
	return fmt.Sprintf("req_%d_%d", time.Now().UnixMilli(), seq)
}

// GetJSON はGETリクエストを送り、エンベロープのdataをoutにデコードする。
// outがnilの場合はdataを無視する。
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

// PostJSON はJSONボディのPOSTリクエストを送り、dataをoutにデコードする。
func (c *Client) PostJSON(ctx context.Context, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	return c.do(ctx, http.MethodPost, path, nil, reader, "application/json", out)
}

// PostForm はmultipart/form-dataのPOSTリクエストを送り、dataをoutにデコードする。
// ログインエンドポイントがこの形式を要求する。
func (c *Client) PostForm(ctx context.Context, path string, fields map[string]string, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	// フィールド順を安定させてテストでの検証を容易にする
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return fmt.Errorf("フォームフィールドの書き込みに失敗: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("フォームの終端に失敗: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, nil, &buf, w.FormDataContentType(), out)
}

// do はリクエストの構築、送信、分類を行う。
// 分類結果: 2xx成功 → dataをoutへ、401 → フック呼び出し後にAuthError、
// その他の4xx/5xx → 分類表に従うAPIError、レスポンスなし → NetworkError。
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return model.NewNetworkError()
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("リクエスト作成に失敗: %w", err)
	}

	reqID := c.nextRequestID()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	token, hasToken := c.store.Get(storage.KeyToken)
	if hasToken && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("APIリクエストを送信します",
		slog.String("request_id", reqID),
		slog.String("method", method),
		slog.String("path", path),
		slog.Bool("authenticated", hasToken && token != ""),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	c.collector.RecordRequestLatency(latency)

	if err != nil {
		// レスポンス未到達。タイムアウトを含め、HTTPステータスエラーとは区別する
		c.collector.RecordNetworkError()
		c.logger.Error("APIリクエストがレスポンス未到達で失敗しました",
			slog.String("request_id", reqID),
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return model.NewNetworkError()
	}
	defer resp.Body.Close()

	c.collector.RecordHTTPStatus(resp.StatusCode)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		c.collector.RecordNetworkError()
		return model.NewNetworkError()
	}

	// エンベロープのデコード。失敗時はserverMessageなしで分類を続ける
	var envelope model.APIResponse
	if len(data) > 0 {
		_ = json.Unmarshal(data, &envelope)
	}

	c.logger.Debug("APIレスポンスを受信しました",
		slog.String("request_id", reqID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", latency),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		c.collector.RecordSessionInvalidation()
		c.logger.Warn("認可失敗を受信したためセッションを無効化します",
			slog.String("request_id", reqID),
			slog.String("path", path),
		)
		c.mu.RLock()
		hook := c.onUnauthorized
		c.mu.RUnlock()
		if hook != nil {
			hook()
		}
		return classifyStatus(resp.StatusCode, envelope.Message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("APIリクエストがエラーステータスで失敗しました",
			slog.String("request_id", reqID),
			slog.Int("status", resp.StatusCode),
			slog.String("path", path),
			slog.String("message", envelope.Message),
		)
		return classifyStatus(resp.StatusCode, envelope.Message)
	}

	// 2xxでもエンベロープがfailedの場合はエラーとして扱う
	if envelope.Status != "" && !envelope.IsSuccess() {
		message := envelope.Message
		if message == "" {
			message = "Request failed."
		}
		return &model.APIError{
			Code:     "REQUEST_FAILED",
			Message:  message,
			Category: model.CategoryServer,
			Status:   resp.StatusCode,
		}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("レスポンスデータのデコードに失敗: %w", err)
		}
	}

	return nil
}
