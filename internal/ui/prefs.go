// Package ui は表示設定（テーマ、サイドバー）の状態管理を提供する。
package ui

import (
	"log/slog"
	"sync"

	"github.com/hitoshi/tosho/internal/storage"
)

// Theme は画面のテーマを表す。
type Theme string

const (
	// ThemeLight はライトテーマ。
	ThemeLight Theme = "light"
	// ThemeDark はダークテーマ。
	ThemeDark Theme = "dark"
)

// Prefs は表示設定の実装。
// テーマはストレージの "theme" キーで永続化され、ログアウト時の
// 認証キー消去後も保持される。サイドバーの開閉はメモリ上のみ。
type Prefs struct {
	mu          sync.Mutex
	theme       Theme
	sidebarOpen bool

	store  storage.Storage
	logger *slog.Logger
}

// NewPrefs はPrefsの新しいインスタンスを生成する。
// 保存済みのテーマがあれば復元し、なければライトテーマで開始する。
func NewPrefs(store storage.Storage, logger *slog.Logger) *Prefs {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Prefs{
		theme:       ThemeLight,
		sidebarOpen: true,
		store:       store,
		logger:      logger,
	}
	if saved, ok := store.Get(storage.KeyTheme); ok {
		switch Theme(saved) {
		case ThemeLight, ThemeDark:
			p.theme = Theme(saved)
		}
	}
	return p
}

// Theme は現在のテーマを返す。
func (p *Prefs) Theme() Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.theme
}

// SetTheme はテーマを設定し、永続化する。
func (p *Prefs) SetTheme(theme Theme) error {
	if theme != ThemeLight && theme != ThemeDark {
		theme = ThemeLight
	}
	p.mu.Lock()
	p.theme = theme
	p.mu.Unlock()

	if err := p.store.Set(storage.KeyTheme, string(theme)); err != nil {
		p.logger.Warn("テーマの保存に失敗しました", slog.String("error", err.Error()))
		return err
	}
	p.logger.Debug("テーマを変更しました", slog.String("theme", string(theme)))
	return nil
}

// ToggleTheme はライトとダークを切り替え、切り替え後のテーマを返す。
func (p *Prefs) ToggleTheme() (Theme, error) {
	next := ThemeDark
	if p.Theme() == ThemeDark {
		next = ThemeLight
	}
	return next, p.SetTheme(next)
}

// SidebarOpen はサイドバーが開いているかどうかを返す。
func (p *Prefs) SidebarOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sidebarOpen
}

// SetSidebarOpen はサイドバーの開閉状態を設定する。
func (p *Prefs) SetSidebarOpen(open bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sidebarOpen = open
}

// ToggleSidebar はサイドバーの開閉を切り替える。
func (p *Prefs) ToggleSidebar() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sidebarOpen = !p.sidebarOpen
}
