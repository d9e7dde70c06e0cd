// Package cover は書籍のカバー画像の取得を提供する。
//
// カバーURLはAPIが返す書籍データに含まれ、任意の外部ホストを指しうる。
// そのためAPIゲートウェイは経由せず、SSRF防止付きのHTTPクライアントで
// 直接取得する。
package cover

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/tosho/internal/model"
)

// Guard はカバー取得が必要とするSSRF防止機能のインターフェース。
type Guard interface {
	NewSafeClient(timeout time.Duration) *http.Client
	ValidateURL(rawURL string) error
}

// Fetcher はカバー画像取得の実装。
type Fetcher struct {
	guard   Guard
	timeout time.Duration
	maxSize int64
	logger  *slog.Logger
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
func NewFetcher(guard Guard, timeout time.Duration, maxSize int64, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		guard:   guard,
		timeout: timeout,
		maxSize: maxSize,
		logger:  logger,
	}
}

// FetchForBook は書籍のカバー画像を取得する。
// カバーURLが設定されていない書籍にはnilデータを返す（エラーではない）。
func (f *Fetcher) FetchForBook(ctx context.Context, book *model.Book) ([]byte, string, error) {
	if book.CoverImage == "" {
		return nil, "", nil
	}
	return f.Fetch(ctx, book.CoverImage)
}

// Fetch は指定URLからカバー画像を取得し、データとMIMEタイプを返す。
// SSRF検証に失敗したURL、画像以外のContent-Type、サイズ超過はエラー。
func (f *Fetcher) Fetch(ctx context.Context, coverURL string) ([]byte, string, error) {
	if err := f.guard.ValidateURL(coverURL); err != nil {
		f.logger.Warn("カバー取得: SSRFブロック",
			slog.String("url", coverURL),
			slog.String("error", err.Error()),
		)
		return nil, "", fmt.Errorf("cover URL rejected: %w", err)
	}

	client := f.guard.NewSafeClient(f.timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("cover request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := client.Do(req)
	if err != nil {
		f.logger.Warn("カバー取得: HTTPリクエスト失敗",
			slog.String("url", coverURL),
			slog.String("error", err.Error()),
		)
		return nil, "", fmt.Errorf("cover fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.logger.Warn("カバー取得: HTTPステータス異常",
			slog.String("url", coverURL),
			slog.Int("status", resp.StatusCode),
		)
		return nil, "", fmt.Errorf("cover fetch: unexpected status %d", resp.StatusCode)
	}

	mimeType := extractMimeType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(mimeType, "image/") {
		f.logger.Warn("カバー取得: 画像以外のContent-Type",
			slog.String("url", coverURL),
			slog.String("content_type", mimeType),
		)
		return nil, "", fmt.Errorf("cover fetch: not an image: %q", mimeType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("cover read: %w", err)
	}
	if int64(len(body)) > f.maxSize {
		f.logger.Warn("カバー取得: サイズ超過",
			slog.String("url", coverURL),
			slog.Int("size", len(body)),
		)
		return nil, "", fmt.Errorf("cover fetch: response exceeds %d bytes", f.maxSize)
	}

	return body, mimeType, nil
}

// extractMimeType はContent-Typeヘッダーからメディアタイプを抽出する。
func extractMimeType(contentType string) string {
	if contentType == "" {
		return ""
	}
	parts := strings.SplitN(contentType, ";", 2)
	return strings.TrimSpace(strings.ToLower(parts[0]))
}
