package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"calmme-backend-go/internal/models"
)

const moodsCollection = "moods"

// firestoreMoodRepository implements MoodRepository using Firestore.
type firestoreMoodRepository struct {
	client *firestore.Client
}

// NewFirestoreMoodRepository creates a new instance of firestoreMoodRepository.
func NewFirestoreMoodRepository(client *firestore.Client) MoodRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for MoodRepository.")
	}
	return &firestoreMoodRepository{client: client}
}

// FindByUserAndRange returns mood entries for a user whose date falls in
// [from, to], ordered date descending.
func (r *firestoreMoodRepository) FindByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]*models.MoodEntry, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for FindByUserAndRange operation")
	}
	iter := r.client.Collection(moodsCollection).
		Where("userId", "==", userID).
		Where("date", ">=", from).
		Where("date", "<=", to).
		OrderBy("date", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var entries []*models.MoodEntry
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate moods for user '%s': %w", userID, err)
		}
		var entry models.MoodEntry
		if err := docSnap.DataTo(&entry); err != nil {
			return nil, fmt.Errorf("failed to decode mood document '%s': %w", docSnap.Ref.ID, err)
		}
		entry.ID = docSnap.Ref.ID
		entries = append(entries, &entry)
	}
	return entries, nil
}

// Create inserts a new mood entry with a generated document ID.
func (r *firestoreMoodRepository) Create(ctx context.Context, entry *models.MoodEntry) (string, error) {
	if entry.UserID == "" {
		return "", errors.New("mood entry userId cannot be empty")
	}
	docRef := r.client.Collection(moodsCollection).NewDoc()
	if _, err := docRef.Create(ctx, entry); err != nil {
		return "", fmt.Errorf("failed to create mood entry for user '%s': %w", entry.UserID, err)
	}
	entry.ID = docRef.ID
	return docRef.ID, nil
}

// UpdateMood overwrites moodId/moodLabel/updatedAt on an existing entry,
// leaving the original date and createdAt intact.
func (r *firestoreMoodRepository) UpdateMood(ctx context.Context, entryID, moodID, moodLabel string, updatedAt time.Time) error {
	if entryID == "" {
		return errors.New("mood entry ID cannot be empty for UpdateMood operation")
	}
	_, err := r.client.Collection(moodsCollection).Doc(entryID).Update(ctx, []firestore.Update{
		{Path: "moodId", Value: moodID},
		{Path: "moodLabel", Value: moodLabel},
		{Path: "updatedAt", Value: updatedAt},
	})
	if err != nil {
		return fmt.Errorf("failed to update mood entry '%s': %w", entryID, err)
	}
	return nil
}
