package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"daily-tasks-bot/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoWorkEntryRepository keeps one document per (user_id, date) keyed by the entry id.
type MongoWorkEntryRepository struct {
	entries *mongo.Collection
	logger  *logrus.Logger
}

func NewMongoWorkEntryRepository(ctx context.Context, db *MongoDB) (*MongoWorkEntryRepository, error) {
	entries := db.Collection("work_entries")

	if _, err := entries.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "date", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create work_entries indexes: %w", err)
	}

	return &MongoWorkEntryRepository{entries: entries, logger: newLogger()}, nil
}

func (r *MongoWorkEntryRepository) GetByUserAndDate(ctx context.Context, userID uint, date string) (*models.WorkEntry, error) {
	var entry models.WorkEntry
	err := r.entries.FindOne(ctx, bson.M{
		"user_id": userID,
		"date":    date,
	}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find work entry: %w", err)
	}
	return &entry, nil
}

func (r *MongoWorkEntryRepository) Upsert(ctx context.Context, entry *models.WorkEntry) error {
	entry.Normalize()

	now := time.Now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	_, err := r.entries.ReplaceOne(ctx, bson.M{"_id": entry.ID}, entry, options.Replace().SetUpsert(true))
	if err != nil {
		r.logger.WithError(err).WithField("id", entry.ID).Error("Failed to save work entry")
		return fmt.Errorf("save work entry: %w", err)
	}
	return nil
}

func (r *MongoWorkEntryRepository) List(ctx context.Context, filter EntryFilter) ([]*models.WorkEntry, error) {
	if filter.UserIDs != nil && len(filter.UserIDs) == 0 {
		return []*models.WorkEntry{}, nil
	}

	query := bson.M{}
	if len(filter.UserIDs) > 0 {
		query["user_id"] = bson.M{"$in": filter.UserIDs}
	}
	dateRange := bson.M{}
	if filter.DateFrom != "" {
		dateRange["$gte"] = filter.DateFrom
	}
	if filter.DateTo != "" {
		dateRange["$lte"] = filter.DateTo
	}
	if len(dateRange) > 0 {
		query["date"] = dateRange
	}

	cursor, err := r.entries.Find(ctx, query, options.Find().SetSort(bson.D{
		{Key: "user_id", Value: 1},
		{Key: "date", Value: 1},
	}))
	if err != nil {
		return nil, fmt.Errorf("find work entries: %w", err)
	}

	var results []*models.WorkEntry
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode work entries: %w", err)
	}
	return results, nil
}

// MongoCompletionRepository stores the append-only completion history.
type MongoCompletionRepository struct {
	records *mongo.Collection
}

func NewMongoCompletionRepository(ctx context.Context, db *MongoDB) (*MongoCompletionRepository, error) {
	records := db.Collection("task_completion_records")

	if _, err := records.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "task_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "completed_at", Value: -1}}},
	}); err != nil {
		return nil, fmt.Errorf("create task_completion_records indexes: %w", err)
	}

	return &MongoCompletionRepository{records: records}, nil
}

func (r *MongoCompletionRepository) Create(ctx context.Context, record *models.TaskCompletionRecord) error {
	if _, err := r.records.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert completion record: %w", err)
	}
	return nil
}

func (r *MongoCompletionRepository) DeleteLatest(ctx context.Context, taskID, userID uint) (bool, error) {
	err := r.records.FindOneAndDelete(ctx,
		bson.M{"task_id": taskID, "user_id": userID},
		options.FindOneAndDelete().SetSort(bson.D{{Key: "completed_at", Value: -1}}),
	).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete completion record: %w", err)
	}
	return true, nil
}

func (r *MongoCompletionRepository) ListByTask(ctx context.Context, taskID uint) ([]*models.TaskCompletionRecord, error) {
	cursor, err := r.records.Find(ctx, bson.M{"task_id": taskID},
		options.Find().SetSort(bson.D{{Key: "completed_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find completion records: %w", err)
	}

	var results []*models.TaskCompletionRecord
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode completion records: %w", err)
	}
	return results, nil
}
