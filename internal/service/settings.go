package service

import (
	"database/sql"
	"fmt"

	"studio/internal/editor"
	"studio/internal/geometry"
	"studio/internal/history"
	"studio/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Settings Persistence
// ─────────────────────────────────────────────────────────────
//
// Window size and editor tuning survive between sessions as key/value
// rows in app_settings. Missing or out-of-range values fall back to
// defaults.

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// EditorSettings are the user-tunable editor options.
type EditorSettings struct {
	SnapThreshold float64 `json:"snapThreshold"`
	HandleSize    float64 `json:"handleSize"`
	HistoryLimit  int     `json:"historyLimit"`
}

// SettingsService reads and writes app_settings.
type SettingsService struct {
	db *storage.DB
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(db *storage.DB) *SettingsService {
	return &SettingsService{db: db}
}

const (
	settingWindowWidth   = "window_width"
	settingWindowHeight  = "window_height"
	settingSnapThreshold = "snap_threshold"
	settingHandleSize    = "handle_size"
	settingHistoryLimit  = "history_limit"
	defaultWindowWidth   = 1280
	defaultWindowHeight  = 800
)

// DefaultEditorSettings mirrors editor.DefaultOptions.
func DefaultEditorSettings() EditorSettings {
	return EditorSettings{
		SnapThreshold: geometry.DefaultSnapThreshold,
		HandleSize:    geometry.DefaultHandleSize,
		HistoryLimit:  history.DefaultLimit,
	}
}

// LoadWindowSize returns the saved window dimensions, or sensible defaults.
func (s *SettingsService) LoadWindowSize() WindowSize {
	if s.db == nil {
		return WindowSize{Width: defaultWindowWidth, Height: defaultWindowHeight}
	}
	conn := s.db.Conn()

	w := defaultWindowWidth
	h := defaultWindowHeight
	conn.QueryRow(`SELECT value FROM app_settings WHERE key = ?`, settingWindowWidth).Scan(&w)
	conn.QueryRow(`SELECT value FROM app_settings WHERE key = ?`, settingWindowHeight).Scan(&h)

	if w < 800 {
		w = defaultWindowWidth
	}
	if h < 600 {
		h = defaultWindowHeight
	}
	return WindowSize{Width: w, Height: h}
}

// SaveWindowSize persists the current window dimensions.
func (s *SettingsService) SaveWindowSize(width, height int) error {
	if s.db == nil {
		return fmt.Errorf("window settings: no db")
	}
	conn := s.db.Conn()
	if err := upsertSetting(conn, settingWindowWidth, width); err != nil {
		return err
	}
	return upsertSetting(conn, settingWindowHeight, height)
}

// LoadEditorSettings returns the saved editor tuning.
func (s *SettingsService) LoadEditorSettings() EditorSettings {
	out := DefaultEditorSettings()
	if s.db == nil {
		return out
	}
	conn := s.db.Conn()

	var snap, handle float64
	var limit int
	if err := conn.QueryRow(`SELECT value FROM app_settings WHERE key = ?`, settingSnapThreshold).Scan(&snap); err == nil && snap > 0 {
		out.SnapThreshold = snap
	}
	if err := conn.QueryRow(`SELECT value FROM app_settings WHERE key = ?`, settingHandleSize).Scan(&handle); err == nil && handle > 0 {
		out.HandleSize = handle
	}
	if err := conn.QueryRow(`SELECT value FROM app_settings WHERE key = ?`, settingHistoryLimit).Scan(&limit); err == nil && limit > 0 {
		out.HistoryLimit = limit
	}
	return out
}

// SaveEditorSettings persists the editor tuning. Non-positive values are
// rejected.
func (s *SettingsService) SaveEditorSettings(es EditorSettings) error {
	if s.db == nil {
		return fmt.Errorf("editor settings: no db")
	}
	if es.SnapThreshold <= 0 || es.HandleSize <= 0 || es.HistoryLimit <= 0 {
		return fmt.Errorf("editor settings: values must be positive")
	}
	conn := s.db.Conn()
	if err := upsertSetting(conn, settingSnapThreshold, es.SnapThreshold); err != nil {
		return err
	}
	if err := upsertSetting(conn, settingHandleSize, es.HandleSize); err != nil {
		return err
	}
	return upsertSetting(conn, settingHistoryLimit, es.HistoryLimit)
}

// EditorOptions builds editor options from the saved settings.
func (s *SettingsService) EditorOptions(m geometry.Measurer) editor.Options {
	es := s.LoadEditorSettings()
	opts := editor.DefaultOptions()
	opts.SnapThreshold = es.SnapThreshold
	opts.HandleSize = es.HandleSize
	opts.HistoryLimit = es.HistoryLimit
	if m != nil {
		opts.Measurer = m
	}
	return opts
}

func upsertSetting(conn *sql.DB, key string, value any) error {
	_, err := conn.Exec(
		`INSERT INTO app_settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, fmt.Sprint(value),
	)
	return err
}
