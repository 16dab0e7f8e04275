package systems

import (
	"testing"

	"github.com/decker502/actioncombo/pkg/components"
	"github.com/decker502/actioncombo/pkg/ecs"
)

func TestFlashEffectSystem_ExpiresAfterDuration(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewFlashEffectSystem(em)
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.FlashEffectComponent{Duration: 0.1, Intensity: 1})

	system.Update(0.05)
	flash, ok := ecs.GetComponent[*components.FlashEffectComponent](em, id)
	if !ok {
		t.Fatal("Flash should still be active halfway through")
	}
	if flash.Elapsed != 0.05 {
		t.Errorf("Elapsed: got %v, want 0.05", flash.Elapsed)
	}

	system.Update(0.06)
	if ecs.HasComponent[*components.FlashEffectComponent](em, id) {
		t.Error("Flash should be removed once its duration has passed")
	}
}
