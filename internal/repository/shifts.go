package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
)

// InsertDraftShifts 把一批草稿班次和对应的审计日志放在同一个事务中写入
func (r *Repository) InsertDraftShifts(shifts []*domain.Shift, entry *domain.AuditLog) error {
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
		INSERT INTO shifts (group_id, user_id, date, start_time, end_time, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`

	for _, shift := range shifts {
		args := []any{
			shift.GroupID,
			shift.UserID,
			shift.Date,
			shift.StartTime,
			shift.EndTime,
			shift.Status,
			shift.CreatedBy,
		}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&shift.ID, &shift.CreatedAt, &shift.Version); err != nil {
			return err
		}
	}

	if err := insertAuditLog(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetShiftByID(id int64) (*domain.Shift, error) {
	query := `
		SELECT
			s.group_id,
			s.user_id,
			u.full_name,
			s.date,
			s.start_time,
			s.end_time,
			s.status,
			s.version,
			s.created_by,
			s.created_at,
			s.adjusted_by,
			s.adjusted_at,
			s.approved_by,
			s.approved_at,
			s.published_by,
			s.published_at,
			s.rejected_by,
			s.rejected_at,
			s.rejection_reason
		FROM shifts s
		LEFT JOIN users u ON s.user_id = u.id
		WHERE s.id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	shift := &domain.Shift{
		ID: id,
	}

	dst := []any{
		&shift.GroupID,
		&shift.UserID,
		&shift.UserFullName,
		&shift.Date,
		&shift.StartTime,
		&shift.EndTime,
		&shift.Status,
		&shift.Version,
		&shift.CreatedBy,
		&shift.CreatedAt,
		&shift.AdjustedBy,
		&shift.AdjustedAt,
		&shift.ApprovedBy,
		&shift.ApprovedAt,
		&shift.PublishedBy,
		&shift.PublishedAt,
		&shift.RejectedBy,
		&shift.RejectedAt,
		&shift.RejectionReason,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return shift, nil
}

// GetShiftsByGroupID 按组和状态集合查询班次
func (r *Repository) GetShiftsByGroupID(groupID string, statuses []domain.ShiftStatus) ([]*domain.Shift, error) {
	query := `
		SELECT
			s.id,
			s.user_id,
			u.full_name,
			s.date,
			s.start_time,
			s.end_time,
			s.status,
			s.version,
			s.created_by,
			s.created_at,
			s.adjusted_by,
			s.adjusted_at,
			s.approved_by,
			s.approved_at,
			s.published_by,
			s.published_at,
			s.rejected_by,
			s.rejected_at,
			s.rejection_reason
		FROM shifts s
		LEFT JOIN users u ON s.user_id = u.id
		WHERE s.group_id = $1 AND s.status = ANY($2)
		ORDER BY s.date, s.start_time, s.id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, groupID, statusStrings(statuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift := &domain.Shift{
			GroupID: groupID,
		}
		dst := []any{
			&shift.ID,
			&shift.UserID,
			&shift.UserFullName,
			&shift.Date,
			&shift.StartTime,
			&shift.EndTime,
			&shift.Status,
			&shift.Version,
			&shift.CreatedBy,
			&shift.CreatedAt,
			&shift.AdjustedBy,
			&shift.AdjustedAt,
			&shift.ApprovedBy,
			&shift.ApprovedAt,
			&shift.PublishedBy,
			&shift.PublishedAt,
			&shift.RejectedBy,
			&shift.RejectedAt,
			&shift.RejectionReason,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

// GetPublishedShiftsByUser 获取某个员工在日期区间内已发布的班次
func (r *Repository) GetPublishedShiftsByUser(userID int64, startDate time.Time, endDate time.Time) ([]*domain.Shift, error) {
	query := `
		SELECT
			s.id,
			s.group_id,
			u.full_name,
			s.date,
			s.start_time,
			s.end_time,
			s.status,
			s.version,
			s.created_by,
			s.created_at,
			s.published_by,
			s.published_at
		FROM shifts s
		LEFT JOIN users u ON s.user_id = u.id
		WHERE s.user_id = $1 AND s.status = $2 AND s.date >= $3 AND s.date <= $4
		ORDER BY s.date, s.start_time
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID, domain.ShiftStatusPublished, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift := &domain.Shift{
			UserID: userID,
		}
		dst := []any{
			&shift.ID,
			&shift.GroupID,
			&shift.UserFullName,
			&shift.Date,
			&shift.StartTime,
			&shift.EndTime,
			&shift.Status,
			&shift.Version,
			&shift.CreatedBy,
			&shift.CreatedAt,
			&shift.PublishedBy,
			&shift.PublishedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

// StartGroupAdjustment 把组内 draft 状态的班次全部转为 adjusting
func (r *Repository) StartGroupAdjustment(groupID string, entry *domain.AuditLog) (int64, error) {
	query := `
		UPDATE shifts
		SET status = $1
		WHERE group_id = $2 AND status = $3
	`

	return r.transitionGroup(entry, query, domain.ShiftStatusAdjusting, groupID, domain.ShiftStatusDraft)
}

// ApproveGroup 审批组内 adjusted 或 pending 状态的班次
func (r *Repository) ApproveGroup(groupID string, approverID int64, entry *domain.AuditLog) (int64, error) {
	query := `
		UPDATE shifts
		SET status = $1, approved_by = $2, approved_at = NOW()
		WHERE group_id = $3 AND status = ANY($4)
	`

	return r.transitionGroup(entry, query, domain.ShiftStatusApproved, approverID, groupID, statusStrings(domain.ApprovableStatuses))
}

// PublishGroup 发布组内 approved 状态的班次
func (r *Repository) PublishGroup(groupID string, publisherID int64, entry *domain.AuditLog) (int64, error) {
	query := `
		UPDATE shifts
		SET status = $1, published_by = $2, published_at = NOW()
		WHERE group_id = $3 AND status = ANY($4)
	`

	return r.transitionGroup(entry, query, domain.ShiftStatusPublished, publisherID, groupID, statusStrings(domain.PublishableStatuses))
}

// RejectGroup 把组内可驳回状态的班次重置回 draft 并记录驳回信息
func (r *Repository) RejectGroup(groupID string, rejecterID int64, reason string, entry *domain.AuditLog) (int64, error) {
	query := `
		UPDATE shifts
		SET status = $1, rejected_by = $2, rejected_at = NOW(), rejection_reason = $3
		WHERE group_id = $4 AND status = ANY($5)
	`

	return r.transitionGroup(entry, query, domain.ShiftStatusDraft, rejecterID, reason, groupID, statusStrings(domain.RejectableStatuses))
}

// transitionGroup 在一个事务中执行组级别的状态转换并写入审计日志
// 影响行数回填到审计日志的 data_accessed 中
func (r *Repository) transitionGroup(entry *domain.AuditLog, query string, args ...any) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	entry.DataAccessed = fmt.Sprintf("%s, affected=%d", entry.DataAccessed, affected)
	if err := insertAuditLog(ctx, tx, entry); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return affected, nil
}

// AdjustShift 在一个事务中更新班次、追加变更历史并写入审计日志
// 乐观锁：版本号不匹配时更新不到任何行，返回 sql.ErrNoRows
func (r *Repository) AdjustShift(shift *domain.Shift, revisions []*domain.ShiftRevision, entry *domain.AuditLog) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 即使没有字段变化，版本号也固定加一
	query := `
		UPDATE shifts
		SET
			user_id = $1,
			start_time = $2,
			end_time = $3,
			status = $4,
			adjusted_by = $5,
			adjusted_at = NOW(),
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version, adjusted_at
	`

	args := []any{
		shift.UserID,
		shift.StartTime,
		shift.EndTime,
		shift.Status,
		shift.AdjustedBy,
		shift.ID,
		shift.Version,
	}

	if err := tx.QueryRowContext(ctx, query, args...).Scan(&shift.Version, &shift.AdjustedAt); err != nil {
		return err
	}

	revisionQuery := `
		INSERT INTO shift_revisions (shift_id, field_name, old_value, new_value, changed_by, change_reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, changed_at
	`

	for _, revision := range revisions {
		revisionArgs := []any{
			revision.ShiftID,
			revision.FieldName,
			revision.OldValue,
			revision.NewValue,
			revision.ChangedBy,
			revision.ChangeReason,
		}
		if err := tx.QueryRowContext(ctx, revisionQuery, revisionArgs...).Scan(&revision.ID, &revision.ChangedAt); err != nil {
			return err
		}
	}

	if err := insertAuditLog(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
