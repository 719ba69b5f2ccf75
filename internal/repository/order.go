package repository

// orderByIDs 按 ids 的顺序排列查询结果，不存在的 ID 跳过
func orderByIDs[T any](ids []uint, rows []*T, id func(*T) uint) []*T {
	byID := make(map[uint]*T, len(rows))
	for _, r := range rows {
		byID[id(r)] = r
	}
	out := make([]*T, 0, len(rows))
	for _, i := range ids {
		if r, ok := byID[i]; ok {
			out = append(out, r)
			delete(byID, i)
		}
	}
	return out
}
