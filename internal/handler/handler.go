package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/labor"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/workflow"
)

type Handler struct {
	validate      *validator.Validate
	config        *config.Config
	repository    *repository.Repository
	translator    ut.Translator
	notifyChannel *amqp.Channel
	redisClient   *redis.Client
	workflow      *workflow.Service
	checker       *labor.Checker

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, notifyCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:      validate,
		config:        cfg,
		repository:    repo,
		translator:    trans,
		notifyChannel: notifyCh,
		redisClient:   rdb,
		workflow:      workflow.NewService(repo),
		checker: labor.NewChecker(labor.Limits{
			MaxHoursPerDay:     cfg.Labor.MaxWorkHoursPerDay,
			MaxHoursPerWeek:    cfg.Labor.MaxWorkHoursPerWeek,
			MaxConsecutiveDays: cfg.Labor.MaxConsecutiveWorkDays,
			MinRestAfter6H:     cfg.Labor.MinRestTime6H,
			MinRestAfter8H:     cfg.Labor.MinRestTime8H,
		}),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo) // 值班表上要显示其他人的名字，所有人都允许获取用户列表
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/password", h.UpdateUserPassword)
			})
		})

		// 员工的排班意愿和个人班表
		r.Route("/shift-requests", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Use(h.preventLeavedStaff)
			r.With(h.RequiredPermission(domain.PermissionRequestShift)).Post("/", h.CreateShiftRequest)
			r.Get("/", h.GetMyShiftRequests)
			r.Delete("/{id}", h.CancelShiftRequest)
		})
		r.Route("/my-shifts", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyPublishedShifts)
		})

		// 排班组的生成、调整和审批流
		r.Route("/shifts", func(r chi.Router) {
			r.With(h.RequiredPermission(domain.PermissionCreateDraft)).Post("/generate", h.GenerateShifts)
			r.Route("/groups/{groupID}", func(r chi.Router) {
				r.With(h.RequiredPermission(domain.PermissionViewAllShifts)).Get("/", h.GetGroupShifts)
				r.With(h.RequiredPermission(domain.PermissionAdjustShift)).Post("/start-adjustment", h.StartAdjustment)
				r.With(h.RequiredPermission(domain.PermissionApproveShift)).Post("/approve", h.ApproveShifts)
				r.With(h.RequiredPermission(domain.PermissionPublishShift)).Post("/publish", h.PublishShifts)
				r.With(h.RequiredPermission(domain.PermissionRejectShift)).Post("/reject", h.RejectShifts)
			})
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftInfo)
				r.With(h.RequiredPermission(domain.PermissionViewAllShifts)).Get("/", h.GetShift)
				r.With(h.RequiredPermission(domain.PermissionAdjustShift)).Patch("/", h.AdjustShift)
				r.With(h.RequiredPermission(domain.PermissionViewAllShifts)).Get("/revisions", h.GetShiftRevisions)
			})
		})

		// 审计日志
		r.Route("/audit-logs", func(r chi.Router) {
			r.Use(h.RequiredPermission(domain.PermissionViewAuditLogs))
			r.Get("/actors/{id}", h.GetAuditLogsByActor)
			r.Get("/shifts/{id}", h.GetAuditLogsByShift)
		})
	})
}
