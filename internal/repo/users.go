package repo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// UserExists checks the user directory before checkout writes rows
// owned by that user.
func (r *postgresRepo) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	query, args := r.qb.Select("COUNT(1)").
		From("users").
		Where(sq.Eq{"user_id": userID}).
		MustSql()

	var count int
	if err := r.getContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return count > 0, nil
}
