package config

import (
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/pkg/combo"
	"github.com/decker502/actioncombo/pkg/embedded"
	"github.com/decker502/actioncombo/pkg/systems"
	"gopkg.in/yaml.v3"
)

// DefaultTPS 未配置 global.playback.tps 时的游戏 TPS
const DefaultTPS = 60

var _ systems.ComboLibrary = (*ComboConfigManager)(nil)

// ComboConfigManager 连招配置管理器
// 负责加载连招目录、解析引用的片段并构建运行时连招配置
type ComboConfigManager struct {
	fsys   fs.FS
	global ComboGlobalConfig

	combos  map[string]*combo.Config // 按名称索引的运行时配置
	sources map[string]string        // 连招名 -> 定义它的文件
	clips   map[string]*clip.Clip    // 片段路径 -> 已解析片段（多个连招可共享）
	mu      sync.RWMutex             // 读写锁（并发安全）
}

// NewComboConfigManager 从文件系统加载连招配置
//
// 参数：
//   - fsys: 配置所在的文件系统（嵌入的 data 目录、os.DirFS 或 fstest.MapFS）
//   - configPath: 单个 YAML 文件路径，或包含多个 YAML 文件的目录
//
// 片段路径（combos[].clip）相对于 fsys 的根目录。
func NewComboConfigManager(fsys fs.FS, configPath string) (*ComboConfigManager, error) {
	m := &ComboConfigManager{
		fsys:    fsys,
		combos:  make(map[string]*combo.Config),
		sources: make(map[string]string),
		clips:   make(map[string]*clip.Clip),
	}

	var files []string
	if entries, err := fs.ReadDir(fsys, configPath); err == nil {
		for _, e := range entries {
			if !e.IsDir() && (path.Ext(e.Name()) == ".yaml" || path.Ext(e.Name()) == ".yml") {
				files = append(files, path.Join(configPath, e.Name()))
			}
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("目录 %s 中没有连招配置文件", configPath)
		}
	} else if _, err := fs.Stat(fsys, configPath); err == nil {
		files = []string{configPath}
	} else {
		return nil, fmt.Errorf("无法访问路径 %s: %w", configPath, err)
	}

	for _, file := range files {
		if err := m.loadFile(file); err != nil {
			return nil, fmt.Errorf("加载文件 %s 失败: %w", file, err)
		}
	}
	if m.global.Playback.TPS == 0 {
		m.global.Playback.TPS = DefaultTPS
	}

	log.Printf("[ComboConfigManager] Loaded %d combos (%d clips) from %s", len(m.combos), len(m.clips), configPath)
	return m, nil
}

// NewEmbeddedComboConfigManager 从嵌入的 data 目录加载，configPath 形如 "data/combos"
func NewEmbeddedComboConfigManager(configPath string) (*ComboConfigManager, error) {
	root, err := embedded.Sub("data")
	if err != nil {
		return nil, err
	}
	rel := strings.TrimPrefix(path.Clean(configPath), "data")
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		rel = "."
	}
	return NewComboConfigManager(root, rel)
}

// loadFile 解析一个连招文件并合并到管理器
func (m *ComboConfigManager) loadFile(file string) error {
	data, err := fs.ReadFile(m.fsys, file)
	if err != nil {
		return fmt.Errorf("无法读取文件: %w", err)
	}

	var doc ComboFileConfig
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("无法解析 YAML: %w", err)
	}

	m.mergeGlobal(doc.Global)

	for i := range doc.Combos {
		entry := &doc.Combos[i]
		if entry.Name == "" {
			return fmt.Errorf("连招 #%d 缺少 'name' 字段", i)
		}
		if prev, exists := m.sources[entry.Name]; exists {
			return fmt.Errorf("重复的连招名称 %s (已在 %s 中定义)", entry.Name, prev)
		}
		if entry.Clip == "" {
			return fmt.Errorf("连招 %s 缺少 'clip' 字段", entry.Name)
		}

		cl, err := m.loadClip(entry.Clip)
		if err != nil {
			return fmt.Errorf("连招 %s: %w", entry.Name, err)
		}
		cfg, err := entry.Build(cl)
		if err != nil {
			return err
		}
		m.combos[entry.Name] = cfg
		m.sources[entry.Name] = file
	}
	return nil
}

func (m *ComboConfigManager) mergeGlobal(g ComboGlobalConfig) {
	if g.Playback.TPS != 0 {
		m.global.Playback.TPS = g.Playback.TPS
	}
	for group, cd := range g.SharedGroupCooldown {
		if m.global.SharedGroupCooldown == nil {
			m.global.SharedGroupCooldown = make(map[int]float64)
		}
		m.global.SharedGroupCooldown[group] = cd
	}
}

// loadClip 解析片段，同一路径只解析一次
func (m *ComboConfigManager) loadClip(p string) (*clip.Clip, error) {
	if c, ok := m.clips[p]; ok {
		return c, nil
	}
	c, err := clip.ParseFS(m.fsys, p)
	if err != nil {
		return nil, err
	}
	m.clips[p] = c
	return c, nil
}

// Combo 获取运行时连招配置，实现 systems.ComboLibrary
func (m *ComboConfigManager) Combo(name string) (*combo.Config, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, ok := m.combos[name]
	return cfg, ok
}

// GetCombo 获取运行时连招配置，不存在时返回错误
func (m *ComboConfigManager) GetCombo(name string) (*combo.Config, error) {
	cfg, ok := m.Combo(name)
	if !ok {
		return nil, fmt.Errorf("连招 '%s' 不存在", name)
	}
	return cfg, nil
}

// GetGlobalConfig 获取全局配置
func (m *ComboConfigManager) GetGlobalConfig() *ComboGlobalConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &m.global
}

// ListCombos 列出所有连招名称（按名称排序）
func (m *ComboConfigManager) ListCombos() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.combos))
	for name := range m.combos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sounds 列出所有片段与连招引用的音效名，用于预加载
func (m *ComboConfigManager) Sounds() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var sounds []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			sounds = append(sounds, name)
		}
	}
	for _, cfg := range m.combos {
		for _, a := range cfg.HitAudios {
			add(a.Clip)
		}
	}
	for _, c := range m.clips {
		for _, a := range c.AudioTrack {
			if a.Randomizer != nil {
				for _, name := range a.Randomizer.Clips {
					add(name)
				}
				continue
			}
			add(a.Clip)
		}
	}
	sort.Strings(sounds)
	return sounds
}
