package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
)

// executor 同时覆盖 *sql.DB 和 *sql.Tx，
// 审计日志既可能跟随事务写入，也可能在操作失败后单独写入
type executor interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertAuditLog(ctx context.Context, ex executor, entry *domain.AuditLog) error {
	query := `
		INSERT INTO audit_logs (action, actor_id, resource_type, resource_id, data_accessed, result, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	args := []any{
		entry.Action,
		entry.ActorID,
		entry.ResourceType,
		entry.ResourceID,
		entry.DataAccessed,
		entry.Result,
		entry.ErrorMessage,
	}

	if err := ex.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return err
	}

	return nil
}

// InsertAuditLog 在事务之外单独写入一条审计日志，用于记录失败的操作
func (r *Repository) InsertAuditLog(entry *domain.AuditLog) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return insertAuditLog(ctx, r.dbpool, entry)
}

func (r *Repository) GetAuditLogsByActor(actorID int64, limit int) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, action, actor_id, resource_type, resource_id, data_accessed, result, error_message, created_at
		FROM audit_logs
		WHERE actor_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, actorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAuditLogs(rows)
}

func (r *Repository) GetAuditLogsByResource(resourceType string, resourceID int64, limit int) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, action, actor_id, resource_type, resource_id, data_accessed, result, error_message, created_at
		FROM audit_logs
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, resourceType, resourceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAuditLogs(rows)
}

func scanAuditLogs(rows *sql.Rows) ([]*domain.AuditLog, error) {
	entries := make([]*domain.AuditLog, 0)
	for rows.Next() {
		entry := &domain.AuditLog{}
		dst := []any{
			&entry.ID,
			&entry.Action,
			&entry.ActorID,
			&entry.ResourceType,
			&entry.ResourceID,
			&entry.DataAccessed,
			&entry.Result,
			&entry.ErrorMessage,
			&entry.CreatedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
