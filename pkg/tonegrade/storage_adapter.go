package tonegrade

import (
	"github.com/speechcoach/tonegrade/internal/storage"
	"github.com/speechcoach/tonegrade/pkg/models"
)

// storageAdapter bridges the sqlite client to the Storage interface.
type storageAdapter struct {
	client *storage.Client
}

func newSQLiteStorage(dbPath string) (Storage, error) {
	client, err := storage.NewClient(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{client: client}, nil
}

func attemptToModel(a storage.Attempt) models.Attempt {
	return models.Attempt{
		ID:          a.ID,
		ReferenceID: a.ReferenceID,
		Accuracy:    a.Accuracy,
		Trend:       a.Trend,
		Stability:   a.Stability,
		Range:       a.Range,
		TotalScore:  a.TotalScore,
		Grade:       a.Grade,
		MethodUsed:  a.Method,
		CreatedAt:   a.CreatedAt,
	}
}

func (s *storageAdapter) SaveAttempt(attempt models.Attempt) (string, error) {
	return s.client.SaveAttempt(storage.Attempt{
		ID:          attempt.ID,
		ReferenceID: attempt.ReferenceID,
		Accuracy:    attempt.Accuracy,
		Trend:       attempt.Trend,
		Stability:   attempt.Stability,
		Range:       attempt.Range,
		TotalScore:  attempt.TotalScore,
		Grade:       attempt.Grade,
		Method:      attempt.MethodUsed,
	})
}

func (s *storageAdapter) GetAttempt(id string) (*models.Attempt, error) {
	a, err := s.client.GetAttempt(id)
	if err != nil {
		return nil, err
	}
	out := attemptToModel(*a)
	return &out, nil
}

func (s *storageAdapter) ListAttempts(referenceID string, limit int) ([]models.Attempt, error) {
	list, err := s.client.ListAttempts(referenceID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.Attempt, len(list))
	for i, a := range list {
		out[i] = attemptToModel(a)
	}
	return out, nil
}

func (s *storageAdapter) DeleteAttempt(id string) error {
	return s.client.DeleteAttempt(id)
}

func (s *storageAdapter) Close() error {
	return s.client.Close()
}
