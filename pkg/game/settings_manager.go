package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// ShowcaseSettings 调试展示程序的偏好设置
// 只保存显示与音量偏好，不保存任何战斗状态
type ShowcaseSettings struct {
	// 音频设置
	SoundVolume  float64 `yaml:"soundVolume"`  // 音效音量 0.0 ~ 1.0
	SoundEnabled bool    `yaml:"soundEnabled"` // 音效开关

	// 显示设置
	ShowColliders bool    `yaml:"showColliders"` // 绘制角色与武器碰撞体
	ShowProbes    bool    `yaml:"showProbes"`    // 绘制正在生效的探针
	Zoom          float64 `yaml:"zoom"`          // 每米对应的像素数
	Fullscreen    bool    `yaml:"fullscreen"`
}

// DefaultSettings 返回默认设置
func DefaultSettings() *ShowcaseSettings {
	return &ShowcaseSettings{
		SoundVolume:   0.8,
		SoundEnabled:  true,
		ShowColliders: true,
		ShowProbes:    true,
		Zoom:          80,
	}
}

// SettingsManager 设置管理器
// 负责展示程序设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager    // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *ShowcaseSettings // 当前设置
}

const (
	settingsObject   = "settings"
	settingsProperty = "showcase"
)

// NewSettingsManager 创建设置管理器并尝试加载已保存的设置
//
// gdataManager 可为 nil，此时只使用内存中的设置。
// 加载失败不是致命错误，会退回默认设置。
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}
	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}
	return sm
}

// Load 从 gdata 加载设置，不存在时使用默认设置
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil || !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.SoundVolume = clamp01(loaded.SoundVolume)
	if loaded.Zoom <= 0 {
		loaded.Zoom = DefaultSettings().Zoom
	}

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata，降级模式下什么也不做
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *ShowcaseSettings {
	return sm.settings
}

// SetSoundVolume 设置音效音量，限制在 0.0 ~ 1.0
// 仅修改内存中的设置，需调用 Save() 持久化
func (sm *SettingsManager) SetSoundVolume(volume float64) {
	sm.settings.SoundVolume = clamp01(volume)
}

// SetSoundEnabled 设置音效开关
func (sm *SettingsManager) SetSoundEnabled(enabled bool) {
	sm.settings.SoundEnabled = enabled
}

// ToggleColliders 切换碰撞体显示
func (sm *SettingsManager) ToggleColliders() {
	sm.settings.ShowColliders = !sm.settings.ShowColliders
}

// ToggleProbes 切换探针显示
func (sm *SettingsManager) ToggleProbes() {
	sm.settings.ShowProbes = !sm.settings.ShowProbes
}

// SetZoom 设置缩放，限制在 20 ~ 400 像素每米
func (sm *SettingsManager) SetZoom(zoom float64) {
	sm.settings.Zoom = max(20, min(400, zoom))
}

// SetFullscreen 设置全屏模式
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// ApplyAudio 把音量设置应用到音频管理器，关闭音效时音量为 0
func (sm *SettingsManager) ApplyAudio(am *AudioManager) {
	if am == nil {
		return
	}
	if !sm.settings.SoundEnabled {
		am.SetSoundVolume(0)
		return
	}
	am.SetSoundVolume(sm.settings.SoundVolume)
}
