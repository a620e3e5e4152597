package optimizer

import "sort"

// solve 用回溯搜索加上界剪枝精确求解 0-1 指派模型
// 约束对组内变量一视同仁，因此每个选择组只需要尝试组内权重最大的变量，
// 搜索退化为每组「选或不选」的二叉分支；等权重候选之间的取舍由变量顺序决定，
// 合同上只保证目标值最优，不保证逐位可复现
func (p *problem) solve() *solution {
	n := len(p.groups)

	// 组内变量按权重从大到小排序
	groupBest := make([]int32, n)
	for i, group := range p.groups {
		sort.SliceStable(group.vars, func(a, b int) bool {
			return group.vars[a].weight > group.vars[b].weight
		})
		groupBest[i] = group.vars[0].weight
	}

	// suffixBest[i]: 第 i 组及其之后所有组还能贡献的权重上界
	suffixBest := make([]int32, n+1)
	for i := n - 1; i >= 0; i-- {
		suffixBest[i] = suffixBest[i+1] + groupBest[i]
	}

	// 每个日期在未处理的组中还剩多少个候选组，用于最小人数的可行性剪枝
	remainingByDate := make([]int, len(p.dateBounds))
	for _, group := range p.groups {
		remainingByDate[group.dateIdx]++
	}

	dateCount := make([]int, len(p.dateBounds))
	weekCount := make([]int, len(p.weekCaps))
	selected := make([]int, n)

	best := &solution{status: statusInfeasible, selected: make([]int, n), weight: -1}

	var current int32
	var search func(i int)
	search = func(i int) {
		if i == n {
			if current > best.weight {
				best.status = statusOptimal
				best.weight = current
				copy(best.selected, selected)
			}
			return
		}

		// 上界剪枝：剩余的组全部采用也追不上已知最优解
		if best.status == statusOptimal && current+suffixBest[i] <= best.weight {
			return
		}

		group := p.groups[i]
		remainingByDate[group.dateIdx]--

		// 不论选或不选，该日期已排的人数加上剩余候选组都必须仍然凑得够最小人数
		// 处理到该日期的最后一个组时 remainingByDate 为 0，这个条件就退化成了下界本身
		// 分支一：采用组内权重最大的希望
		if dateCount[group.dateIdx] < p.dateBounds[group.dateIdx].max && weekCount[group.weekIdx] < p.weekCaps[group.weekIdx] {
			dateCount[group.dateIdx]++
			weekCount[group.weekIdx]++
			current += group.vars[0].weight
			selected[i] = 0

			if dateCount[group.dateIdx]+remainingByDate[group.dateIdx] >= p.dateBounds[group.dateIdx].min {
				search(i + 1)
			}

			dateCount[group.dateIdx]--
			weekCount[group.weekIdx]--
			current -= group.vars[0].weight
		}

		// 分支二：不采用
		if dateCount[group.dateIdx]+remainingByDate[group.dateIdx] >= p.dateBounds[group.dateIdx].min {
			selected[i] = -1
			search(i + 1)
		}

		remainingByDate[group.dateIdx]++
	}

	search(0)

	return best
}
