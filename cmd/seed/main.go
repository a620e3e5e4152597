package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/seed"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var daysAhead int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机排班意愿, 3: 插入演示数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.IntVar(&daysAhead, "days-ahead", 14, "随机排班意愿分布在未来多少天内")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("无法生成随机用户", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(user); err != nil {
				slog.Error("无法插入用户", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("插入用户成功", slog.Int("count", n-cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的意愿数量")
			return
		}

		users, err := repo.GetActiveUsers()
		if err != nil {
			slog.Error("无法获取在职员工", slog.String("error", err.Error()))
			return
		}
		if len(users) == 0 {
			slog.Error("数据库中没有在职员工，请先插入用户")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			user := users[i%len(users)]
			request := utils.GenerateRandomShiftRequest(user.ID, daysAhead)
			if err := repo.CreateShiftRequest(request); err != nil {
				slog.Error("无法插入排班意愿", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("插入排班意愿成功", slog.Int("count", n-cnt))
	case 3:
		seed.SeedDemoData(repo, cfg.Seed.User.Password, cfg.Email.UserDomain)
	default:
		slog.Error("指定的操作非法")
	}
}
