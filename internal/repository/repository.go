package repository

import (
	"database/sql"

	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/config"
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

func statusStrings[T ~string](statuses []T) []string {
	result := make([]string, len(statuses))
	for i, status := range statuses {
		result[i] = string(status)
	}
	return result
}
