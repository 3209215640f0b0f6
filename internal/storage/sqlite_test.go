package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/gorm"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(filepath.Join(t.TempDir(), "test.sqlite3"))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func sampleAttempt(referenceID string, total float64) Attempt {
	return Attempt{
		ReferenceID: referenceID,
		Accuracy:    88.5,
		Trend:       72.0,
		Stability:   91.3,
		Range:       64.0,
		TotalScore:  total,
		Grade:       "good",
		Method:      "vad_guided",
	}
}

func TestSaveAndGetAttempt(t *testing.T) {
	client := newTestClient(t)

	id, err := client.SaveAttempt(sampleAttempt("lesson1", 82.4))
	if err != nil {
		t.Fatalf("SaveAttempt failed: %v", err)
	}
	if id == "" {
		t.Fatal("Expected a generated ID")
	}

	got, err := client.GetAttempt(id)
	if err != nil {
		t.Fatalf("GetAttempt failed: %v", err)
	}
	if got.ReferenceID != "lesson1" {
		t.Errorf("Expected reference lesson1, got %s", got.ReferenceID)
	}
	if got.TotalScore != 82.4 {
		t.Errorf("Expected total 82.4, got %f", got.TotalScore)
	}
	if got.Method != "vad_guided" {
		t.Errorf("Expected method vad_guided, got %s", got.Method)
	}
	if got.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

func TestGetAttemptMissing(t *testing.T) {
	client := newTestClient(t)

	if _, err := client.GetAttempt("no-such-id"); err == nil {
		t.Error("Expected error for missing attempt")
	}
}

func TestListAttempts(t *testing.T) {
	client := newTestClient(t)

	for i := 0; i < 3; i++ {
		if _, err := client.SaveAttempt(sampleAttempt("lesson1", float64(60+i*10))); err != nil {
			t.Fatalf("SaveAttempt failed: %v", err)
		}
	}
	if _, err := client.SaveAttempt(sampleAttempt("lesson2", 95)); err != nil {
		t.Fatalf("SaveAttempt failed: %v", err)
	}

	all, err := client.ListAttempts("", 0)
	if err != nil {
		t.Fatalf("ListAttempts failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("Expected 4 attempts, got %d", len(all))
	}

	filtered, err := client.ListAttempts("lesson1", 0)
	if err != nil {
		t.Fatalf("ListAttempts failed: %v", err)
	}
	if len(filtered) != 3 {
		t.Errorf("Expected 3 attempts for lesson1, got %d", len(filtered))
	}

	limited, err := client.ListAttempts("", 2)
	if err != nil {
		t.Fatalf("ListAttempts failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected 2 attempts with limit, got %d", len(limited))
	}
}

func TestDeleteAttempt(t *testing.T) {
	client := newTestClient(t)

	id, err := client.SaveAttempt(sampleAttempt("lesson1", 75))
	if err != nil {
		t.Fatalf("SaveAttempt failed: %v", err)
	}

	if err := client.DeleteAttempt(id); err != nil {
		t.Fatalf("DeleteAttempt failed: %v", err)
	}
	if _, err := client.GetAttempt(id); err == nil {
		t.Error("Expected error after deletion")
	}

	if err := client.DeleteAttempt(id); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound for double delete, got %v", err)
	}
}

func TestNilClient(t *testing.T) {
	var client *Client

	if _, err := client.SaveAttempt(Attempt{}); err == nil {
		t.Error("Expected error on nil client")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close on nil client should be a no-op, got %v", err)
	}
}
