package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"focuslist/internal/domain"
	"focuslist/internal/logging"
)

// Pull reads the whole state of the signed-in user
func (s *Store) Pull(ctx context.Context, today string) (domain.RemoteSnapshot, error) {
	var snap domain.RemoteSnapshot
	userID, err := s.user()
	if err != nil {
		return snap, err
	}

	if snap.Tasks, err = s.tasks(ctx, userID); err != nil {
		return snap, err
	}
	if snap.Goals, err = s.goals(ctx, userID); err != nil {
		return snap, err
	}
	if snap.Habits, err = s.habits(ctx, userID); err != nil {
		return snap, err
	}
	if snap.Completions, err = s.completions(ctx, userID, today); err != nil {
		return snap, err
	}

	var settings domain.RemoteSettings
	err = s.db.QueryRowContext(ctx,
		`SELECT week_of, habit_reset_date FROM settings WHERE user_id = ?`, userID,
	).Scan(&settings.WeekOf, &settings.HabitResetDate)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return snap, fmt.Errorf("failed to read settings: %w", err)
	default:
		snap.Settings = &settings
	}
	return snap, nil
}

func (s *Store) tasks(ctx context.Context, userID string) ([]domain.RemoteTask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, completed, completed_at, section, archived_month, position,
		       url, do_date, do_time, recurrence, goal_id, source_file, source_line
		FROM tasks
		WHERE user_id = ?
		ORDER BY position, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.RemoteTask
	for rows.Next() {
		var t domain.RemoteTask
		var section string
		var month sql.NullString
		if err := rows.Scan(&t.ID, &t.Title, &t.Completed, &t.CompletedAt, &section, &month, &t.Position,
			&t.URL, &t.DoDate, &t.DoTime, &t.Recurrence, &t.GoalID, &t.SourceFile, &t.SourceLine); err != nil {
			return nil, err
		}
		t.Section = domain.Section(section)
		t.ArchivedMonth = month.String
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) goals(ctx context.Context, userID string) ([]domain.RemoteGoal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, position FROM goals WHERE user_id = ? ORDER BY position, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read goals: %w", err)
	}
	defer rows.Close()

	var goals []domain.RemoteGoal
	for rows.Next() {
		var g domain.RemoteGoal
		if err := rows.Scan(&g.ID, &g.Title, &g.Position); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *Store) habits(ctx context.Context, userID string) ([]domain.RemoteHabit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, position FROM habits WHERE user_id = ? ORDER BY position, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read habits: %w", err)
	}
	defer rows.Close()

	var habits []domain.RemoteHabit
	for rows.Next() {
		var h domain.RemoteHabit
		if err := rows.Scan(&h.ID, &h.Title, &h.Position); err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) completions(ctx context.Context, userID, date string) ([]domain.HabitCompletion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT habit_id, date FROM habit_completions WHERE user_id = ? AND date = ?`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to read habit completions: %w", err)
	}
	defer rows.Close()

	var out []domain.HabitCompletion
	for rows.Next() {
		var c domain.HabitCompletion
		if err := rows.Scan(&c.HabitID, &c.Date); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Push upserts the snapshot and deletes the given ids in one transaction
func (s *Store) Push(ctx context.Context, snap domain.RemoteSnapshot, deletes domain.SnapshotIDs, today string) error {
	userID, err := s.user()
	if err != nil {
		return err
	}
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	tx := &pushTx{ctx: ctx, tx: sqlTx, userID: userID}
	if err := s.write(tx, snap, deletes, today); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) write(tx *pushTx, snap domain.RemoteSnapshot, deletes domain.SnapshotIDs, today string) error {
	if err := tx.Delete("tasks", deletes.Tasks); err != nil {
		return err
	}
	if err := tx.Delete("goals", deletes.Goals); err != nil {
		return err
	}
	if err := tx.Delete("habits", deletes.Habits); err != nil {
		return err
	}
	for _, t := range snap.Tasks {
		if err := tx.UpsertTask(t); err != nil {
			return err
		}
	}
	for _, g := range snap.Goals {
		if err := tx.UpsertGoal(g); err != nil {
			return err
		}
	}
	for _, h := range snap.Habits {
		if err := tx.UpsertHabit(h); err != nil {
			return err
		}
	}
	if err := tx.ReplaceCompletions(today, snap.Completions); err != nil {
		return err
	}
	if snap.Settings != nil {
		if err := tx.UpsertSettings(*snap.Settings); err != nil {
			return err
		}
	}
	return tx.RecordRevision(s.clientID)
}

// Subscribe signals whenever another client records a revision for the
// signed-in user. The channel is closed when ctx is done.
func (s *Store) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	userID, err := s.user()
	if err != nil {
		return nil, err
	}
	last, err := s.latestRevision(ctx, userID)
	if err != nil {
		return nil, err
	}

	interval := s.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rev, err := s.latestRevision(ctx, userID)
				if err != nil {
					if ctx.Err() == nil {
						logging.Warn("remote", "polling revisions: %v", err)
					}
					continue
				}
				if rev <= last {
					continue
				}
				last = rev
				select {
				case ch <- struct{}{}:
				default: // a signal is already pending
				}
			}
		}
	}()
	return ch, nil
}

// latestRevision returns the newest revision written by other clients
func (s *Store) latestRevision(ctx context.Context, userID string) (int64, error) {
	var rev sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(id) FROM revisions WHERE user_id = ? AND client_id != ?`, userID, s.clientID,
	).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("failed to read revisions: %w", err)
	}
	return rev.Int64, nil
}
