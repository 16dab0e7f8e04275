package combo

// cooldownEpsilon 让记录在间隔到期的 tick 准时过期，不受浮点累积误差影响
const cooldownEpsilon = 1e-9

// dedupRecord 冷却结束前同一组不能再次命中该目标
type dedupRecord struct {
	target    uint64
	remaining float64
}

// dedupTable 一次连招播放中按组记录的命中历史
type dedupTable struct {
	groups map[int][]dedupRecord
}

func newDedupTable() *dedupTable {
	return &dedupTable{groups: make(map[int][]dedupRecord)}
}

// tryAdd 在组未满且尚未记录该目标时记录 target
func (d *dedupTable) tryAdd(group int, target uint64, rule GroupRule) bool {
	records := d.groups[group]
	if rule.Maximum > 0 && len(records) >= rule.Maximum {
		return false
	}
	for _, r := range records {
		if r.target == target {
			return false
		}
	}
	d.groups[group] = append(records, dedupRecord{target: target, remaining: rule.Interval})
	return true
}

// update 按 dt 推进所有记录并移除已过期的记录
func (d *dedupTable) update(dt float64) {
	for group, records := range d.groups {
		kept := records[:0]
		for _, r := range records {
			r.remaining -= dt
			if r.remaining > cooldownEpsilon {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			delete(d.groups, group)
			continue
		}
		d.groups[group] = kept
	}
}

func (d *dedupTable) clear() {
	clear(d.groups)
}

// count 返回 group 中的有效记录数
func (d *dedupTable) count(group int) int {
	return len(d.groups[group])
}
