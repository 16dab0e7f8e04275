package combo

import (
	"fmt"
	"log"

	"github.com/decker502/actioncombo/internal/geom"
	"github.com/decker502/actioncombo/pkg/probe"
)

// FreezeKey 顿帧命令的 ID，按攻击者和连招区分，重复命中只会刷新同一个命令
func FreezeKey(attacker uint64, combo string) string {
	return fmt.Sprintf("hitfreeze:%d:%s", attacker, combo)
}

// ShakeKey 命中镜头震动的 ID
func ShakeKey(attacker uint64, combo string) string {
	return fmt.Sprintf("hitshake:%d:%s", attacker, combo)
}

// applyHit 依次执行有效命中的反馈: 音效、顿帧、镜头震动、伤害
func (p *Player) applyHit(group int, target Combatant, c probe.Collider) {
	center := p.attacker.Center()
	point := c.ClosestPoint(center)
	id := p.attacker.CombatantID()

	if audio := p.co.Abilities.Audio; audio != nil {
		for _, a := range p.cfg.HitAudios {
			audio.PlaySound(a.Clip, false, a.Volume)
		}
	}

	if freeze := p.cfg.HitFreeze; p.co.TimeScale != nil && freeze.Duration > 0 {
		p.co.TimeScale.AddTimeScale(FreezeKey(id, p.cfg.Name), freeze.TimeScale, freeze.Duration)
	}

	if shake := p.cfg.HitShake; p.co.CameraShake != nil && shake.Amplitude > 0 {
		var dir geom.Vec3
		if shake.Directional && (p.attacker.PrimaryPlayer() || target.PrimaryPlayer()) {
			dir = point.Sub(center).Horizontal().Normalize()
		}
		p.co.CameraShake.AddShake(ShakeKey(id, p.cfg.Name), shake.Amplitude, shake.Frequency, shake.Duration, dir)
	}

	hit := Hit{
		Source:             p.attacker,
		Target:             target,
		Method:             p.attacker.WeaponMethod(),
		Type:               p.cfg.Damage.Type,
		Value:              p.cfg.Damage.Fixed + p.attacker.AttackPower()*p.cfg.Damage.Multiplier,
		ResourceMultiplier: p.cfg.Damage.ResourceMultiplier,
		CritRate:           p.attacker.CritRate(),
		Direction:          point.Sub(center).Horizontal().Normalize(),
		Point:              point,
		Channel:            group,
	}
	log.Printf("[ComboPlayer] %s: hit %d on group %d for %.1f", p.cfg.Name, target.CombatantID(), group, hit.Value)
	if p.co.Damage != nil {
		p.co.Damage.AddDamage(hit)
	}
	for _, fn := range p.hitListeners {
		fn(hit)
	}
}
