package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// pushTx writes one snapshot for one user inside a transaction
type pushTx struct {
	ctx    context.Context
	tx     *sql.Tx
	userID string
}

// owned checks that an upsert hit a row of this user. A row with the same id
// owned by someone else is left alone and reported as a conflict.
func owned(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s belongs to another user", ports.ErrPrecondition, kind, id)
	}
	return nil
}

// UpsertTask inserts or updates a task row
func (t *pushTx) UpsertTask(rt domain.RemoteTask) error {
	res, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO tasks (id, user_id, title, completed, completed_at, section, archived_month,
		                   position, url, do_date, do_time, recurrence, goal_id, source_file, source_line)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			completed = excluded.completed,
			completed_at = excluded.completed_at,
			section = excluded.section,
			archived_month = excluded.archived_month,
			position = excluded.position,
			url = excluded.url,
			do_date = excluded.do_date,
			do_time = excluded.do_time,
			recurrence = excluded.recurrence,
			goal_id = excluded.goal_id,
			source_file = excluded.source_file,
			source_line = excluded.source_line,
			updated_at = CURRENT_TIMESTAMP
		WHERE tasks.user_id = excluded.user_id
	`, rt.ID, t.userID, rt.Title, rt.Completed, rt.CompletedAt, string(rt.Section), nullable(rt.ArchivedMonth),
		rt.Position, rt.URL, rt.DoDate, rt.DoTime, rt.Recurrence, rt.GoalID, rt.SourceFile, rt.SourceLine)
	if err != nil {
		return fmt.Errorf("failed to upsert task %s: %w", rt.ID, err)
	}
	return owned(res, "task", rt.ID)
}

// UpsertGoal inserts or updates a goal row
func (t *pushTx) UpsertGoal(g domain.RemoteGoal) error {
	res, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO goals (id, user_id, title, position) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, position = excluded.position
		WHERE goals.user_id = excluded.user_id
	`, g.ID, t.userID, g.Title, g.Position)
	if err != nil {
		return fmt.Errorf("failed to upsert goal %s: %w", g.ID, err)
	}
	return owned(res, "goal", g.ID)
}

// UpsertHabit inserts or updates a habit row
func (t *pushTx) UpsertHabit(h domain.RemoteHabit) error {
	res, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO habits (id, user_id, title, position) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, position = excluded.position
		WHERE habits.user_id = excluded.user_id
	`, h.ID, t.userID, h.Title, h.Position)
	if err != nil {
		return fmt.Errorf("failed to upsert habit %s: %w", h.ID, err)
	}
	return owned(res, "habit", h.ID)
}

// ReplaceCompletions swaps the completion rows of one day
func (t *pushTx) ReplaceCompletions(date string, completions []domain.HabitCompletion) error {
	if _, err := t.tx.ExecContext(t.ctx,
		`DELETE FROM habit_completions WHERE user_id = ? AND date = ?`, t.userID, date); err != nil {
		return fmt.Errorf("failed to clear completions: %w", err)
	}
	for _, c := range completions {
		if c.Date != date {
			continue
		}
		if _, err := t.tx.ExecContext(t.ctx,
			`INSERT OR REPLACE INTO habit_completions (habit_id, user_id, date) VALUES (?, ?, ?)`,
			c.HabitID, t.userID, c.Date); err != nil {
			return fmt.Errorf("failed to record completion of %s: %w", c.HabitID, err)
		}
	}
	return nil
}

// UpsertSettings writes the settings row
func (t *pushTx) UpsertSettings(s domain.RemoteSettings) error {
	_, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO settings (user_id, week_of, habit_reset_date) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			week_of = excluded.week_of,
			habit_reset_date = excluded.habit_reset_date
	`, t.userID, s.WeekOf, s.HabitResetDate)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}

// Delete removes rows of this user by id
func (t *pushTx) Delete(table string, ids domain.IDSet) error {
	for id := range ids {
		if _, err := t.tx.ExecContext(t.ctx,
			`DELETE FROM `+table+` WHERE id = ? AND user_id = ?`, id, t.userID); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	return nil
}

// RecordRevision appends to the change feed
func (t *pushTx) RecordRevision(clientID string) error {
	_, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO revisions (user_id, client_id) VALUES (?, ?)`, t.userID, clientID)
	return err
}

// Commit commits the transaction
func (t *pushTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *pushTx) Rollback() error {
	return t.tx.Rollback()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
