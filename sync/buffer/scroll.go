package buffer

import "LSProject/sync/model"

// PlanScroll 根据变更原因计算滚动目标位置。
// init / new_item：滚到底部；pagination：用前插导致的高度差补偿 scrollTop，
// 保持用户视觉位置不跳动。
func PlanScroll(reason model.Reason, oldScrollTop, oldScrollHeight, newScrollHeight int) int {
	switch reason {
	case model.ReasonPagination:
		return oldScrollTop + (newScrollHeight - oldScrollHeight)
	default:
		return newScrollHeight
	}
}
