package optimizer

import "github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"

// variable: 一个 (员工, 日期, 排班希望) 的 0-1 决策变量
type variable struct {
	request *domain.ShiftRequest
	userID  int64
	weight  int32 // 4 - priority，优先级越强权重越大
}

// choiceGroup: 同一个员工在同一天的全部候选希望，至多采用其中一个
type choiceGroup struct {
	vars    []*variable
	dateIdx int // 所属日期约束的下标
	weekIdx int // 所属周约束的下标
}

// staffBounds: 单个日期的最小、最大在岗人数约束
type staffBounds struct {
	min int
	max int
}

// problem: 完整的 0-1 指派模型
// 目标为最大化所有被采用变量的权重之和
type problem struct {
	groups     []*choiceGroup
	dateBounds []staffBounds
	weekCaps   []int // 每个 (员工, 周) 约束允许的最大排班天数
}

const (
	statusOptimal = iota
	statusInfeasible
)

// solution: 求解结果
// selected[i] 为第 i 个选择组选中的变量下标，-1 表示该组不选
type solution struct {
	status   int
	selected []int
	weight   int32
}
