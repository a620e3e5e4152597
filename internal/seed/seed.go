package seed

import (
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// 演示环境的固定员工名单
var demoRoster = []struct {
	Username string
	FullName string
	Role     domain.Role
}{
	{"zhangwei", "张伟", domain.RoleManager},
	{"lifang", "李芳", domain.RoleSubManager},
	{"wangmin", "王敏", domain.RoleEvaluator},
	{"liujing", "刘静", domain.RoleStaff},
	{"chenqiang", "陈强", domain.RoleStaff},
	{"yangli", "杨丽", domain.RoleStaff},
	{"zhaogang", "赵刚", domain.RoleStaff},
	{"huangjie", "黄杰", domain.RoleStaff},
}

// 演示环境的常用值班时段，按优先级轮流分配
var demoSlots = [][2]string{
	{"08:00:00", "12:00:00"},
	{"12:00:00", "18:00:00"},
	{"18:00:00", "22:00:00"},
}

// SeedDemoData 插入一套固定的演示数据：员工名单加上未来两周的排班意愿
func SeedDemoData(r *repository.Repository, password string, emailDomain string) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("无法生成密码哈希", "error", err)
		return
	}

	users := make([]*domain.User, 0, len(demoRoster))
	for _, entry := range demoRoster {
		user := &domain.User{
			Username:     entry.Username,
			PasswordHash: string(passwordHash),
			FullName:     entry.FullName,
			Email:        entry.Username + "@" + emailDomain,
			Role:         entry.Role,
		}
		if err := r.CreateUser(user); err != nil {
			slog.Error("无法插入演示用户", "username", entry.Username, "error", err)
			continue
		}
		users = append(users, user)
	}
	slog.Info("插入演示用户成功", "count", len(users))

	now := time.Now()
	startDate := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)

	count := 0
	for day := 0; day < 14; day++ {
		date := startDate.AddDate(0, 0, day)
		for i, user := range users {
			// 错开时段和优先级，保证每天每个时段都有候选人
			slot := demoSlots[(i+day)%len(demoSlots)]
			request := &domain.ShiftRequest{
				UserID:    user.ID,
				Date:      date,
				StartTime: slot[0],
				EndTime:   slot[1],
				Priority:  int32((i+day)%3 + 1),
			}
			if err := r.CreateShiftRequest(request); err != nil {
				slog.Error("无法插入排班意愿", "username", user.Username, "error", err)
				continue
			}
			count++
		}
	}
	slog.Info("插入演示排班意愿成功", "count", count)
}
