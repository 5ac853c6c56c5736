package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// progressRepo implements ProgressRepo on the user_progress table.
type progressRepo struct {
	db *sql.DB
}

var progressSelectColumns = []string{
	"user_id",
	"topic",
	"current_level",
	"diagnostic_attempts",
	"diagnostic_passed",
	"hint_stage",
	"updated_at",
}

func (r *progressRepo) Get(ctx context.Context, userID string) (*Progress, error) {
	b := builder()
	query, args := b.Select(progressSelectColumns...).
		From(b.Table(userProgressTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	p, err := scanProgress(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	return p, nil
}

func (r *progressRepo) Upsert(ctx context.Context, userID string, patch ProgressPatch) (*Progress, error) {
	columns := []string{"user_id", "updated_at"}
	values := []any{userID, time.Now().UTC()}
	var present []string

	add := func(col string, set bool, v any) {
		if !set {
			return
		}
		columns = append(columns, col)
		values = append(values, v)
		present = append(present, col)
	}
	add("topic", patch.Topic.Set, patch.Topic.sqlValue())
	add("current_level", patch.CurrentLevel.Set, patch.CurrentLevel.sqlValue())
	add("diagnostic_attempts", patch.DiagnosticAttempts.Set, patch.DiagnosticAttempts.sqlValue())
	add("diagnostic_passed", patch.DiagnosticPassed.Set, patch.DiagnosticPassed.sqlValue())
	add("hint_stage", patch.HintStage.Set, patch.HintStage.sqlValue())

	query, args := builder().Insert(userProgressTable.Name).
		Columns(columns...).
		Values(values...).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("updated_at")
				for _, col := range present {
					u.SetExcluded(col)
				}
			}),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("upsert progress: %w", err)
	}

	p, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("upsert progress: row for %q vanished", userID)
	}
	return p, nil
}

func (r *progressRepo) Delete(ctx context.Context, userID string) error {
	query, args := builder().Delete(userProgressTable.Name).
		Where(entsql.EQ("user_id", userID)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

func scanProgress(row *sql.Row) (*Progress, error) {
	var (
		p     Progress
		topic sql.NullString
		level sql.NullInt64
	)
	err := row.Scan(
		&p.UserID,
		&topic,
		&level,
		&p.DiagnosticAttempts,
		&p.DiagnosticPassed,
		&p.HintStage,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if topic.Valid {
		p.Topic = &topic.String
	}
	if level.Valid {
		l := int(level.Int64)
		p.CurrentLevel = &l
	}
	return &p, nil
}
