package storage

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/hakim/scandeck/internal/models"
)

// Begin records a new submission and returns its journal ID.
func (j *Journal) Begin(req models.ScanRequest) (string, error) {
	entry := models.JournalEntry{
		ID:        uuid.New().String(),
		Tool:      req.Tool,
		Target:    req.Target,
		Options:   req.Options,
		State:     "dispatching",
		StartedAt: j.now().UTC(),
	}

	err := j.db.Update(func(tx *bbolt.Tx) error {
		if err := putEntry(tx, &entry); err != nil {
			return err
		}

		// tool -> []entry_id
		index := tx.Bucket([]byte(bucketDispatchIndex))
		toolKey := []byte(entry.Tool)
		var ids []string
		if existing := index.Get(toolKey); existing != nil {
			if err := json.Unmarshal(existing, &ids); err != nil {
				return err
			}
		}
		ids = append(ids, entry.ID)
		data, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		return index.Put(toolKey, data)
	})
	if err != nil {
		return "", fmt.Errorf("journaling dispatch: %w", err)
	}
	return entry.ID, nil
}

// Finish stamps the terminal state and status on an entry. Finishing an
// already finished entry keeps the first finish time.
func (j *Journal) Finish(id, state string, status models.OutcomeStatus) error {
	return j.db.Update(func(tx *bbolt.Tx) error {
		entry, err := getEntry(tx, id)
		if err != nil {
			return err
		}
		entry.State = state
		entry.Status = status
		if entry.FinishedAt == nil {
			now := j.now().UTC()
			entry.FinishedAt = &now
		}
		return putEntry(tx, entry)
	})
}

// Get retrieves a journal entry by ID
func (j *Journal) Get(id string) (*models.JournalEntry, error) {
	var entry *models.JournalEntry
	err := j.db.View(func(tx *bbolt.Tx) error {
		var err error
		entry, err = getEntry(tx, id)
		return err
	})
	return entry, err
}

// List returns journal entries newest first. A non-empty tool restricts the
// result to that tool; limit <= 0 means no limit.
func (j *Journal) List(tool string, limit int) ([]*models.JournalEntry, error) {
	var entries []*models.JournalEntry

	err := j.db.View(func(tx *bbolt.Tx) error {
		if tool == "" {
			return tx.Bucket([]byte(bucketDispatches)).ForEach(func(_, v []byte) error {
				var e models.JournalEntry
				if err := json.Unmarshal(v, &e); err != nil {
					return err
				}
				entries = append(entries, &e)
				return nil
			})
		}

		data := tx.Bucket([]byte(bucketDispatchIndex)).Get([]byte(tool))
		if data == nil {
			return nil
		}
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		for _, id := range ids {
			e, err := getEntry(tx, id)
			if err != nil {
				continue
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing journal: %w", err)
	}

	slices.SortStableFunc(entries, func(a, b *models.JournalEntry) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func getEntry(tx *bbolt.Tx, id string) (*models.JournalEntry, error) {
	data := tx.Bucket([]byte(bucketDispatches)).Get([]byte(id))
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	var e models.JournalEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func putEntry(tx *bbolt.Tx, e *models.JournalEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return tx.Bucket([]byte(bucketDispatches)).Put([]byte(e.ID), data)
}

