package ecs

import "testing"

type benchmarkComp1 struct{ Value int }
type benchmarkComp2 struct{ Value int }
type benchmarkComp3 struct{ Value int }

// setupBenchmarkEntities 创建 count 个实体，每个实体拥有前 compsPerEntity 种组件
func setupBenchmarkEntities(count int, compsPerEntity int) *EntityManager {
	em := NewEntityManager()
	for i := 0; i < count; i++ {
		id := em.CreateEntity()
		if compsPerEntity >= 1 {
			AddComponent(em, id, &benchmarkComp1{Value: i})
		}
		if compsPerEntity >= 2 && i%2 == 0 {
			AddComponent(em, id, &benchmarkComp2{Value: i})
		}
		if compsPerEntity >= 3 && i%3 == 0 {
			AddComponent(em, id, &benchmarkComp3{Value: i})
		}
	}
	return em
}

func BenchmarkGetEntitiesWith3(b *testing.B) {
	em := setupBenchmarkEntities(1000, 3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GetEntitiesWith3[*benchmarkComp1, *benchmarkComp2, *benchmarkComp3](em)
	}
}

func BenchmarkGetComponent(b *testing.B) {
	em := setupBenchmarkEntities(1000, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = GetComponent[*benchmarkComp1](em, EntityID(i%1000+1))
	}
}

func BenchmarkDestroyAndCompact(b *testing.B) {
	for i := 0; i < b.N; i++ {
		em := setupBenchmarkEntities(500, 1)
		for id := EntityID(1); id <= 500; id += 2 {
			em.DestroyEntity(id)
		}
		em.RemoveMarkedEntities()
	}
}
