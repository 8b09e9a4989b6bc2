package core

// Row 是有序的 key -> score 映射，迭代顺序为首次写入顺序。
type Row struct {
	keys   []string
	scores map[string]float64
}

func NewRow() *Row {
	return &Row{scores: make(map[string]float64)}
}

// Get 读取 key 对应的分数；ok 表示 key 是否存在（与分数是否为 0 无关）。
func (r *Row) Get(key string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	v, ok := r.scores[key]
	return v, ok
}

// Has 判断 key 是否存在
func (r *Row) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys 按写入顺序返回所有 key。返回值不可修改。
func (r *Row) Keys() []string {
	if r == nil {
		return nil
	}
	return r.keys
}

func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Set 写入分数，新 key 追加到末尾。
func (r *Row) Set(key string, score float64) {
	if _, ok := r.scores[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.scores[key] = score
}

// Add 在已有分数上累加，key 不存在时从 0 开始。
func (r *Row) Add(key string, delta float64) {
	r.Set(key, r.scores[key]+delta)
}

// Each 按写入顺序遍历。
func (r *Row) Each(fn func(key string, score float64)) {
	if r == nil {
		return
	}
	for _, k := range r.keys {
		fn(k, r.scores[k])
	}
}

func (r *Row) reset() {
	r.keys = nil
	r.scores = make(map[string]float64)
}

// Table 是两级有序容器：entity -> counterpart -> score。
//
// 亲和度表（用户 -> 菜系）和它的转置（菜系 -> 用户）都使用 Table，
// 相似度、近邻、推荐算法统一把它当作"评分视图"读取。
// 行的迭代顺序即首次写入顺序，近邻排序的并列项依赖这个顺序。
//
// Table 由构建方独占写入；交给下游后只读。
type Table struct {
	keys []string
	rows map[string]*Row
}

func NewTable() *Table {
	return &Table{rows: make(map[string]*Row)}
}

// EnsureRow 返回 key 对应的行，不存在则追加一个空行。
func (t *Table) EnsureRow(key string) *Row {
	if row, ok := t.rows[key]; ok {
		return row
	}
	row := NewRow()
	t.keys = append(t.keys, key)
	t.rows[key] = row
	return row
}

// ResetRow 清空 key 对应的行但保留它在表中的位置；不存在时等同 EnsureRow。
func (t *Table) ResetRow(key string) *Row {
	row, ok := t.rows[key]
	if !ok {
		return t.EnsureRow(key)
	}
	row.reset()
	return row
}

// Row 读取一行
func (t *Table) Row(key string) (*Row, bool) {
	if t == nil {
		return nil, false
	}
	row, ok := t.rows[key]
	return row, ok
}

func (t *Table) Has(key string) bool {
	_, ok := t.Row(key)
	return ok
}

// Keys 按写入顺序返回所有行 key。返回值不可修改。
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	return t.keys
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Get 读取单个单元格
func (t *Table) Get(rowKey, colKey string) (float64, bool) {
	row, ok := t.Row(rowKey)
	if !ok {
		return 0, false
	}
	return row.Get(colKey)
}

// Transpose 返回转置视图（counterpart -> entity -> score）。
// 新表的行按首次出现顺序排列，空行不会出现在转置中。
func (t *Table) Transpose() *Table {
	out := NewTable()
	for _, rk := range t.Keys() {
		t.rows[rk].Each(func(ck string, score float64) {
			out.EnsureRow(ck).Set(rk, score)
		})
	}
	return out
}

// Each 按行顺序遍历所有单元格。
func (t *Table) Each(fn func(rowKey, colKey string, score float64)) {
	for _, rk := range t.Keys() {
		t.rows[rk].Each(func(ck string, score float64) {
			fn(rk, ck, score)
		})
	}
}
