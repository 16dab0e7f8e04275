package components

import "github.com/decker502/actioncombo/pkg/combo"

// ComboComponent 保存角色正在播放的连招
type ComboComponent struct {
	Player *combo.Player
	// Queued 是当前连招结束后要接着播放的连招名
	Queued string
}
