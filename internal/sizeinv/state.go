package sizeinv

import "github.com/MorseWayne/catalog_admin/internal/domain"

// State 工作表的可序列化形式，用于在编辑会话中保存
type State struct {
	Entries  []Entry                `json:"entries"`
	Snapshot []domain.SizeInventory `json:"snapshot"`
	Defaults Defaults               `json:"defaults"`
}

// State 导出当前状态
func (t *Table) State() State {
	return State{
		Entries:  t.Entries(),
		Snapshot: append([]domain.SizeInventory(nil), t.snapshot...),
		Defaults: t.defaults,
	}
}

// FromState 由保存的状态恢复工作表
func FromState(s State) *Table {
	t := &Table{
		entries:  append([]Entry(nil), s.Entries...),
		defaults: s.Defaults,
	}
	t.Refresh(s.Snapshot)
	return t
}
