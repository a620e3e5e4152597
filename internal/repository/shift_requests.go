package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
)

func (r *Repository) CreateShiftRequest(request *domain.ShiftRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO shift_requests (user_id, date, start_time, end_time, priority, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at, version
	`

	args := []any{request.UserID, request.Date, request.StartTime, request.EndTime, request.Priority, domain.RequestStatusPending}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt, &request.Version); err != nil {
		return err
	}
	request.Status = domain.RequestStatusPending

	return nil
}

// GetPendingRequestsInRange 获取日期区间内所有待处理的排班意愿，供生成器使用
func (r *Repository) GetPendingRequestsInRange(startDate time.Time, endDate time.Time) ([]*domain.ShiftRequest, error) {
	query := `
		SELECT id, user_id, date, start_time, end_time, priority, status, created_at, updated_at, version
		FROM shift_requests
		WHERE status = $1 AND date >= $2 AND date <= $3
		ORDER BY date, start_time, id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, domain.RequestStatusPending, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanShiftRequests(rows)
}

func (r *Repository) GetShiftRequestsByUserID(userID int64) ([]*domain.ShiftRequest, error) {
	query := `
		SELECT id, user_id, date, start_time, end_time, priority, status, created_at, updated_at, version
		FROM shift_requests
		WHERE user_id = $1
		ORDER BY date DESC, start_time
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanShiftRequests(rows)
}

// CancelShiftRequest 取消员工自己的待处理意愿，已经被处理过的意愿不能取消
func (r *Repository) CancelShiftRequest(id int64, userID int64) (int64, error) {
	query := `
		UPDATE shift_requests
		SET status = $1, updated_at = NOW(), version = version + 1
		WHERE id = $2 AND user_id = $3 AND status = $4
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, domain.RequestStatusCancelled, id, userID, domain.RequestStatusPending)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// MarkRequestOutcomes 在一个事务中把被采用和未被采用的意愿分别标记为 accepted 和 rejected
func (r *Repository) MarkRequestOutcomes(acceptedIDs []int64, rejectedIDs []int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE shift_requests
		SET status = $1, updated_at = NOW(), version = version + 1
		WHERE id = ANY($2) AND status = $3
	`

	if len(acceptedIDs) > 0 {
		if _, err := tx.ExecContext(ctx, query, domain.RequestStatusAccepted, acceptedIDs, domain.RequestStatusPending); err != nil {
			return err
		}
	}

	if len(rejectedIDs) > 0 {
		if _, err := tx.ExecContext(ctx, query, domain.RequestStatusRejected, rejectedIDs, domain.RequestStatusPending); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func scanShiftRequests(rows *sql.Rows) ([]*domain.ShiftRequest, error) {
	requests := make([]*domain.ShiftRequest, 0)
	for rows.Next() {
		request := &domain.ShiftRequest{}
		dst := []any{
			&request.ID,
			&request.UserID,
			&request.Date,
			&request.StartTime,
			&request.EndTime,
			&request.Priority,
			&request.Status,
			&request.CreatedAt,
			&request.UpdatedAt,
			&request.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}
