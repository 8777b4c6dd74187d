package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cosmonotes/internal/logger"
	"cosmonotes/internal/models"
	"cosmonotes/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	pool *pgxpool.Pool
}

type PoolConfig struct {
	MaxConns    int32
	MinConns    int32
	IdleTimeout time.Duration
}

func New(ctx context.Context, connString string, poolCfg PoolConfig) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: failed to parse connection string", err)
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	if poolCfg.MaxConns > 0 {
		config.MaxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 {
		config.MinConns = poolCfg.MinConns
	}
	if poolCfg.IdleTimeout > 0 {
		config.MaxConnIdleTime = poolCfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: failed to create pool", err)
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("Repository: connected to PostgreSQL")
	return &Storage{pool: pool}, nil
}

var _ repository.TaskRepository = (*Storage)(nil)

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: closed all PostgreSQL connections")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}

const taskColumns = `id, title, content, due_date, tags, is_public, is_overdue, share_id, created_at, updated_at, user_id`

func (s *Storage) Create(ctx context.Context, t *models.Task) error {
	start := time.Now()

	tags, err := tagsToJSON(t.Tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}

	query := `INSERT INTO tasks (` + taskColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = s.pool.Exec(ctx, query,
		t.ID,
		t.Title,
		nullable(t.Content),
		t.DueDate,
		tags,
		t.IsPublic,
		t.IsOverdue,
		nullable(t.ShareID),
		t.CreatedAt,
		t.UpdatedAt,
		nullable(t.UserID),
	)

	if err != nil {
		logger.Error("Repository: failed to insert task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("inserting task: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		logger.Error("Repository: failed to get task", err, zap.String("task_id", id))
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return t, nil
}

func (s *Storage) List(ctx context.Context, filter repository.Filter) ([]*models.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	args := []any{}

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.Tag != "" {
		// tags is serialized JSON, match the quoted element
		args = append(args, `%"`+filter.Tag+`"%`)
		query += fmt.Sprintf(" AND tags LIKE $%d", len(args))
	}
	if filter.Overdue != nil {
		args = append(args, *filter.Overdue)
		query += fmt.Sprintf(" AND is_overdue = $%d", len(args))
	}
	if filter.Public != nil {
		args = append(args, *filter.Public)
		query += fmt.Sprintf(" AND is_public = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: failed to list tasks", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, err
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return tasks, nil
}

func (s *Storage) Update(ctx context.Context, id string, patch repository.TaskPatch) (*models.Task, error) {
	start := time.Now()

	if patch.Empty() {
		return s.GetByID(ctx, id)
	}

	sets := []string{}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Content != nil {
		add("content", nullable(*patch.Content))
	}
	if patch.DueDateSet {
		add("due_date", patch.DueDate)
		// overdue is recomputed only when the due date itself changes
		add("is_overdue", models.OverdueAt(patch.DueDate, time.Now()))
	}
	if patch.Tags != nil {
		tags, err := tagsToJSON(*patch.Tags)
		if err != nil {
			return nil, fmt.Errorf("encoding tags: %w", err)
		}
		add("tags", tags)
	}
	if patch.IsPublic != nil {
		add("is_public", *patch.IsPublic)
	}

	add("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d RETURNING `+taskColumns,
		strings.Join(sets, ", "), len(args))

	t, err := scanTask(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		logger.Error("Repository: failed to update task", err, zap.String("task_id", id))
		return nil, fmt.Errorf("updating task: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return t, nil
}

func (s *Storage) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: failed to delete task", err, zap.String("task_id", id))
		return false, fmt.Errorf("deleting task: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Storage) GetByShareID(ctx context.Context, shareID string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE share_id = $1 AND is_public = TRUE`

	t, err := scanTask(s.pool.QueryRow(ctx, query, shareID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		logger.Error("Repository: failed to resolve shared task", err, zap.String("share_id", shareID))
		return nil, fmt.Errorf("resolving shared task: %w", err)
	}
	return t, nil
}

func (s *Storage) SetPublic(ctx context.Context, id, shareID string) (bool, error) {
	query := `UPDATE tasks SET is_public = TRUE, share_id = $1, updated_at = $2 WHERE id = $3`

	tag, err := s.pool.Exec(ctx, query, shareID, time.Now(), id)
	if err != nil {
		logger.Error("Repository: failed to publish task", err, zap.String("task_id", id))
		return false, fmt.Errorf("publishing task: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Storage) SetPrivate(ctx context.Context, id string) (bool, error) {
	query := `UPDATE tasks SET is_public = FALSE, share_id = NULL, updated_at = $1 WHERE id = $2`

	tag, err := s.pool.Exec(ctx, query, time.Now(), id)
	if err != nil {
		logger.Error("Repository: failed to unpublish task", err, zap.String("task_id", id))
		return false, fmt.Errorf("unpublishing task: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RecomputeOverdue rewrites is_overdue for every row with a due date. The
// returned count is rows written, not rows that changed value.
func (s *Storage) RecomputeOverdue(ctx context.Context, now time.Time) (int64, error) {
	start := time.Now()

	query := `UPDATE tasks
			SET is_overdue = (due_date < $1),
				updated_at = $2
			WHERE due_date IS NOT NULL`

	tag, err := s.pool.Exec(ctx, query, now, now)
	if err != nil {
		logger.Error("Repository: failed to recompute overdue flags", err, zap.Duration("ms", time.Since(start)))
		return 0, fmt.Errorf("recomputing overdue flags: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return tag.RowsAffected(), nil
}

func (s *Storage) GetOverdue(ctx context.Context, userID string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE is_overdue = TRUE`
	args := []any{}

	if userID != "" {
		args = append(args, userID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}

	query += " ORDER BY due_date ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: failed to get overdue tasks", err)
		return nil, fmt.Errorf("getting overdue tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

func scanTask(row pgx.Row) (*models.Task, error) {
	t := &models.Task{}
	var content, tagsJSON, shareID, userID *string

	err := row.Scan(
		&t.ID,
		&t.Title,
		&content,
		&t.DueDate,
		&tagsJSON,
		&t.IsPublic,
		&t.IsOverdue,
		&shareID,
		&t.CreatedAt,
		&t.UpdatedAt,
		&userID,
	)
	if err != nil {
		return nil, err
	}

	if content != nil {
		t.Content = *content
	}
	if shareID != nil {
		t.ShareID = *shareID
	}
	if userID != nil {
		t.UserID = *userID
	}
	if tagsJSON != nil {
		if err := json.Unmarshal([]byte(*tagsJSON), &t.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags: %w", err)
		}
	}
	return t, nil
}

func collectTasks(rows pgx.Rows) ([]*models.Task, error) {
	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: failed to scan task row", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: row iteration failed", err)
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return tasks, nil
}

func tagsToJSON(tags []string) (*string, error) {
	if tags == nil {
		return nil, nil
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
