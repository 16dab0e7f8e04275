package game

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log"
	"path"
	"strings"

	audec "github.com/decker502/actioncombo/internal/audio"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// soundExtensions 是按名称查找音效时依次尝试的扩展名
var soundExtensions = []string{".ogg", ".wav", ".mp3", ".au"}

// AudioManager 音频管理器，实现动作片段的音频能力
//
// 音效按名称从 fs 中的 dir 目录加载（name.ogg / name.wav / name.mp3 / name.au），
// 解码后的 PCM 数据会被缓存。每次 PlaySound 创建独立的播放器，
// 同一音效可以叠加播放；返回的 id 用于 StopSound。
type AudioManager struct {
	context *audio.Context
	fsys    fs.FS
	dir     string

	pcm     map[string][]byte    // 音效名 -> 解码后的 PCM 数据
	players map[int]*activeSound // 播放 id -> 播放器
	missing map[string]bool      // 已确认不存在的音效，避免重复告警
	nextID  int
	volume  float64
}

type activeSound struct {
	name   string
	player *audio.Player
	loop   bool
	volume float64 // 单个音效的音量，实际音量再乘以总音量
}

// NewAudioManager 创建新的音频管理器
//
// 参数：
//   - ctx: 全局音频上下文（ebiten 只允许创建一个）
//   - fsys: 音效所在的文件系统，通常是嵌入的 data 目录
//   - dir: 音效目录，例如 "audio"
func NewAudioManager(ctx *audio.Context, fsys fs.FS, dir string) *AudioManager {
	return &AudioManager{
		context: ctx,
		fsys:    fsys,
		dir:     dir,
		pcm:     make(map[string][]byte),
		players: make(map[int]*activeSound),
		missing: make(map[string]bool),
		nextID:  1,
		volume:  0.8,
	}
}

// SetSoundVolume 设置音效总音量 (0.0 ~ 1.0)，立即应用到正在播放的音效
func (am *AudioManager) SetSoundVolume(volume float64) {
	am.volume = clamp01(volume)
	for _, s := range am.players {
		s.player.SetVolume(am.volume * s.volume)
	}
}

// GetSoundVolume 获取音效总音量
func (am *AudioManager) GetSoundVolume() float64 {
	return am.volume
}

// PlaySound 播放音效，返回播放 id；音效不存在时返回 0
func (am *AudioManager) PlaySound(name string, loop bool, volume float64) int {
	data, err := am.load(name)
	if err != nil {
		if !am.missing[name] {
			log.Printf("[AudioManager] Warning: %v", err)
			am.missing[name] = true
		}
		return 0
	}

	var player *audio.Player
	if loop {
		stream := audio.NewInfiniteLoop(bytes.NewReader(data), int64(len(data)))
		player, err = am.context.NewPlayer(stream)
		if err != nil {
			log.Printf("[AudioManager] Warning: Failed to create player for %s: %v", name, err)
			return 0
		}
	} else {
		player = am.context.NewPlayerFromBytes(data)
	}
	volume = clamp01(volume)
	player.SetVolume(am.volume * volume)
	player.Play()

	id := am.nextID
	am.nextID++
	am.players[id] = &activeSound{name: name, player: player, loop: loop, volume: volume}
	return id
}

// StopSound 停止并释放播放 id 对应的音效，重复调用无副作用
func (am *AudioManager) StopSound(id int) {
	s, ok := am.players[id]
	if !ok {
		return
	}
	s.player.Pause()
	if err := s.player.Close(); err != nil {
		log.Printf("[AudioManager] Warning: Failed to close sound %s: %v", s.name, err)
	}
	delete(am.players, id)
}

// Playing 返回正在播放的音效数量
func (am *AudioManager) Playing() int {
	return len(am.players)
}

// Update 回收已播放完毕的单次音效
func (am *AudioManager) Update() {
	for id, s := range am.players {
		if !s.loop && !s.player.IsPlaying() {
			am.StopSound(id)
		}
	}
}

// Preload 预先解码音效，避免首次播放时卡顿
func (am *AudioManager) Preload(names []string) error {
	for _, name := range names {
		if _, err := am.load(name); err != nil {
			return err
		}
	}
	log.Printf("[AudioManager] Preloaded %d sounds", len(names))
	return nil
}

// load 返回音效的 PCM 数据（16 位立体声，采样率与上下文一致）
func (am *AudioManager) load(name string) ([]byte, error) {
	if data, ok := am.pcm[name]; ok {
		return data, nil
	}
	if am.fsys == nil {
		return nil, fmt.Errorf("sound %s: no audio filesystem", name)
	}

	for _, ext := range soundExtensions {
		p := path.Join(am.dir, name+ext)
		raw, err := fs.ReadFile(am.fsys, p)
		if err != nil {
			continue
		}
		data, err := am.decode(p, raw)
		if err != nil {
			return nil, err
		}
		am.pcm[name] = data
		return data, nil
	}
	return nil, fmt.Errorf("sound %s not found in %s", name, am.dir)
}

func (am *AudioManager) decode(p string, raw []byte) ([]byte, error) {
	reader := bytes.NewReader(raw)

	var stream interface {
		io.ReadSeeker
		Length() int64
		SampleRate() int
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".wav":
		s, err := wav.DecodeWithoutResampling(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode WAV audio %s: %w", p, err)
		}
		stream = s
	case ".mp3":
		s, err := mp3.DecodeWithoutResampling(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode MP3 audio %s: %w", p, err)
		}
		stream = s
	case ".ogg":
		s, err := vorbis.DecodeWithoutResampling(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode OGG audio %s: %w", p, err)
		}
		stream = s
	case ".au":
		s, err := audec.DecodeAU(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode AU audio %s: %w", p, err)
		}
		stream = s
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .ogg, .wav, .mp3, .au)", p)
	}

	var src io.Reader = stream
	if rate := am.context.SampleRate(); stream.SampleRate() != rate {
		src = audio.Resample(stream, stream.Length(), stream.SampleRate(), rate)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio %s: %w", p, err)
	}
	return data, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
