package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "tonegrade.sqlite3"

const errClientNil = "storage client is nil"

// Attempt is one recorded comparison: which reference was practiced, the
// sub-scores, the total, the grade, and which fallback strategy produced
// the alignment.
type Attempt struct {
	ID          string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ReferenceID string  `gorm:"index:idx_reference" json:"reference_id"`
	Accuracy    float64 `json:"accuracy"`
	Trend       float64 `json:"trend"`
	Stability   float64 `json:"stability"`
	Range       float64 `json:"range"`
	TotalScore  float64 `json:"total_score"`
	Grade       string  `json:"grade"`
	Method      string  `gorm:"index:idx_method" json:"method_used"`
	CreatedAt   time.Time
}

// Client wraps the sqlite-backed attempt history.
type Client struct {
	DB *gorm.DB
}

// NewClient opens (or creates) the attempt database at dbPath and runs
// migrations.
func NewClient(dbPath string) (*Client, error) {
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.AutoMigrate(&Attempt{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &Client{DB: db}, nil
}

func (c *Client) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveAttempt persists one comparison result and returns its generated ID.
func (c *Client) SaveAttempt(attempt Attempt) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errClientNil)
	}
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if err := c.DB.Create(&attempt).Error; err != nil {
		return "", fmt.Errorf("creating attempt: %w", err)
	}
	return attempt.ID, nil
}

// GetAttempt fetches one attempt by ID.
func (c *Client) GetAttempt(id string) (*Attempt, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errClientNil)
	}
	var attempt Attempt
	if err := c.DB.First(&attempt, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("fetching attempt %s: %w", id, err)
	}
	return &attempt, nil
}

// ListAttempts returns attempts most recent first, optionally filtered by
// reference ID. limit <= 0 means no limit.
func (c *Client) ListAttempts(referenceID string, limit int) ([]Attempt, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errClientNil)
	}
	q := c.DB.Order("created_at DESC")
	if referenceID != "" {
		q = q.Where("reference_id = ?", referenceID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var attempts []Attempt
	if err := q.Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}
	return attempts, nil
}

// DeleteAttempt removes one attempt by ID.
func (c *Client) DeleteAttempt(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errClientNil)
	}
	res := c.DB.Delete(&Attempt{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting attempt %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
