package task

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/example/tasks-api/domain/task"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// taskRecord is the GORM model backing SQLiteStore.
// Seq preserves insertion order; deletes are soft.
type taskRecord struct {
	Seq           uint   `gorm:"primarykey;autoIncrement"`
	ID            string `gorm:"size:36;uniqueIndex;not null"`
	Text          string `gorm:"not null"`
	Completed     bool   `gorm:"not null;default:false;index"`
	CreatedDate   int64  `gorm:"not null"`
	CompletedDate *int64
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for taskRecord.
func (taskRecord) TableName() string {
	return "tasks"
}

func (r *taskRecord) toDomain() *domain.Task {
	return &domain.Task{
		ID:            r.ID,
		Text:          r.Text,
		Completed:     r.Completed,
		CreatedDate:   r.CreatedDate,
		CompletedDate: r.CompletedDate,
	}
}

// SQLiteStore persists tasks in SQLite through GORM.
type SQLiteStore struct {
	db *gorm.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens the database at path and runs migrations.
// Use ":memory:" for a throwaway database.
func OpenSQLiteStore(path string, debug bool) (*SQLiteStore, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases shared across calls.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return NewSQLiteStore(db)
}

// NewSQLiteStore wraps an open GORM connection and runs migrations.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// ListAll retrieves all tasks in insertion order.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]*domain.Task, error) {
	var records []taskRecord
	if err := s.db.WithContext(ctx).Order("seq ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return toDomainTasks(records), nil
}

// ListCompleted retrieves completed tasks in insertion order.
func (s *SQLiteStore) ListCompleted(ctx context.Context) ([]*domain.Task, error) {
	var records []taskRecord
	err := s.db.WithContext(ctx).
		Where("completed = ?", true).
		Order("seq ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list completed tasks: %w", err)
	}
	return toDomainTasks(records), nil
}

// Create saves a new task.
func (s *SQLiteStore) Create(ctx context.Context, text string) (*domain.Task, error) {
	task := domain.New(uuid.New().String(), text, clock())
	record := &taskRecord{
		ID:          task.ID,
		Text:        task.Text,
		CreatedDate: task.CreatedDate,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return record.toDomain(), nil
}

// FindByID retrieves a task by its ID.
func (s *SQLiteStore) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	record, err := findRecord(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// UpdateText replaces the text of a task.
func (s *SQLiteStore) UpdateText(ctx context.Context, id, text string) (*domain.Task, error) {
	var updated *domain.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := findRecord(tx, id)
		if err != nil {
			return err
		}
		record.Text = text
		if err := tx.Model(record).Update("text", text).Error; err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		updated = record.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete soft-deletes a task by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) (*domain.Task, error) {
	var deleted *domain.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := findRecord(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(record).Error; err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		deleted = record.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// SetCompleted marks a task complete or incomplete.
func (s *SQLiteStore) SetCompleted(ctx context.Context, id string, completed bool) (*domain.Task, error) {
	var updated *domain.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := findRecord(tx, id)
		if err != nil {
			return err
		}
		task := record.toDomain()
		task.SetCompleted(completed, clock())

		// Select forces zero values (false, NULL) to be written.
		err = tx.Model(record).
			Select("completed", "completed_date").
			Updates(map[string]any{
				"completed":      task.Completed,
				"completed_date": task.CompletedDate,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update task completion: %w", err)
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func findRecord(db *gorm.DB, id string) (*taskRecord, error) {
	var record taskRecord
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &record, nil
}

func toDomainTasks(records []taskRecord) []*domain.Task {
	tasks := make([]*domain.Task, 0, len(records))
	for i := range records {
		tasks = append(tasks, records[i].toDomain())
	}
	return tasks
}
