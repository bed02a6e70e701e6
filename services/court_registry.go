package services

// CourtRegistry 本场次有效场地编号的只读集合,启动时从配置载入。
// 事件里出现的未注册场地不会被拒绝,状态存储会为其懒创建记录。
type CourtRegistry struct {
	courts []string
	index  map[string]bool
}

// NewCourtRegistry 创建场地注册表
func NewCourtRegistry(courts []string) *CourtRegistry {
	index := make(map[string]bool, len(courts))
	var list []string
	for _, c := range courts {
		if c == "" || index[c] {
			continue
		}
		index[c] = true
		list = append(list, c)
	}
	return &CourtRegistry{courts: list, index: index}
}

// Courts 返回配置顺序的场地列表
func (r *CourtRegistry) Courts() []string {
	out := make([]string, len(r.courts))
	copy(out, r.courts)
	return out
}

// Contains 判断场地是否在注册表中
func (r *CourtRegistry) Contains(court string) bool {
	return r.index[court]
}

// Len 场地数量
func (r *CourtRegistry) Len() int {
	return len(r.courts)
}
