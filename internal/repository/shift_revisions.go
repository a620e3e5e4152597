package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
)

// GetRevisionsByShiftID 按时间顺序返回某个班次的全部变更历史
func (r *Repository) GetRevisionsByShiftID(shiftID int64) ([]*domain.ShiftRevision, error) {
	query := `
		SELECT id, field_name, old_value, new_value, changed_by, change_reason, changed_at
		FROM shift_revisions
		WHERE shift_id = $1
		ORDER BY changed_at, id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	revisions := make([]*domain.ShiftRevision, 0)
	for rows.Next() {
		revision := &domain.ShiftRevision{
			ShiftID: shiftID,
		}
		dst := []any{
			&revision.ID,
			&revision.FieldName,
			&revision.OldValue,
			&revision.NewValue,
			&revision.ChangedBy,
			&revision.ChangeReason,
			&revision.ChangedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		revisions = append(revisions, revision)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return revisions, nil
}
