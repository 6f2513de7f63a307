package app

import "studio/internal/service"

// ============================================================
// Settings
// ============================================================

func (a *App) GetEditorSettings() service.EditorSettings {
	return a.settings.LoadEditorSettings()
}

// SaveEditorSettings persists editor tuning. It applies to documents opened
// afterwards.
func (a *App) SaveEditorSettings(s service.EditorSettings) error {
	return a.settings.SaveEditorSettings(s)
}

func (a *App) GetWindowSize() service.WindowSize {
	return a.settings.LoadWindowSize()
}

func (a *App) SaveWindowSize(width, height int) error {
	return a.settings.SaveWindowSize(width, height)
}
