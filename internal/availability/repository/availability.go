package repository

import (
	"context"
	availabilityerrors "crewcall/internal/availability/errors"
	"crewcall/pkg/config"
	mongodb "crewcall/pkg/db/mongo"
	"crewcall/pkg/engine"
	"crewcall/pkg/model"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Availability"
)

// Filter narrows list queries. Empty fields are ignored; From and To are
// inclusive calendar days.
type Filter struct {
	SubjectID string
	From      string
	To        string
}

func (f Filter) toBSON() bson.M {
	filter := bson.M{}
	if f.SubjectID != "" {
		filter["subject_id"] = f.SubjectID
	}
	dateRange := bson.M{}
	if f.From != "" {
		dateRange["$gte"] = f.From
	}
	if f.To != "" {
		dateRange["$lte"] = f.To
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}
	return filter
}

type AvailabilityRepository interface {
	Create(ctx context.Context, record *model.AvailabilityRecord) error
	UpsertMany(ctx context.Context, subjectID string, dates []string, status model.AvailabilityStatus, notes string) (*model.AvailabilityBulkResult, error)
	FindByID(ctx context.Context, id string) (*model.AvailabilityRecord, error)
	Find(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.AvailabilityRecord, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	FindBySubject(ctx context.Context, dayRange engine.DayRange, subjectIDs ...string) ([]*model.AvailabilityRecord, error)
	DistinctSubjects(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id string, record *model.AvailabilityRecord) error
	Delete(ctx context.Context, id string) error
}

type mongoAvailabilityRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAvailabilityRepository(cfg *config.Config) AvailabilityRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAvailabilityRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoAvailabilityRepository) Create(ctx context.Context, record *model.AvailabilityRecord) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	record.CreatedAt = now
	record.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s %s", availabilityerrors.ErrDuplicate, record.SubjectID, record.Date)
		}
		return fmt.Errorf("failed to create availability record: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid.Hex()
	}
	return nil
}

// UpsertMany writes one record per date keyed by (subject_id, date). The
// unique index on that pair makes concurrent upserts of the same day
// converge on a single document.
func (r *mongoAvailabilityRepository) UpsertMany(ctx context.Context, subjectID string, dates []string, status model.AvailabilityStatus, notes string) (*model.AvailabilityBulkResult, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	writes := make([]mongo.WriteModel, 0, len(dates))
	for _, date := range dates {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"subject_id": subjectID, "date": date}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"status":     status,
					"notes":      notes,
					"updated_at": now,
				},
				"$setOnInsert": bson.M{
					"subject_id": subjectID,
					"date":       date,
					"created_at": now,
				},
			}).
			SetUpsert(true))
	}

	result, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert availability: %w", err)
	}

	return &model.AvailabilityBulkResult{
		SubjectID: subjectID,
		Upserted:  result.UpsertedCount,
		Updated:   result.ModifiedCount,
	}, nil
}

func (r *mongoAvailabilityRepository) FindByID(ctx context.Context, id string) (*model.AvailabilityRecord, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var record model.AvailabilityRecord
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, availabilityerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find availability record: %w", err)
	}
	return &record, nil
}

func (r *mongoAvailabilityRepository) Find(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.AvailabilityRecord, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "subject_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, filter.toBSON(), opts)
}

func (r *mongoAvailabilityRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter.toBSON())
	if err != nil {
		return 0, fmt.Errorf("failed to count availability records: %w", err)
	}
	return count, nil
}

// FindBySubject returns every record inside dayRange, optionally restricted
// to subjectIDs.
func (r *mongoAvailabilityRepository) FindBySubject(ctx context.Context, dayRange engine.DayRange, subjectIDs ...string) ([]*model.AvailabilityRecord, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"date": bson.M{
			"$gte": dayRange.Start.String(),
			"$lte": dayRange.End.String(),
		},
	}
	if len(subjectIDs) > 0 {
		filter["subject_id"] = bson.M{"$in": subjectIDs}
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "subject_id", Value: 1}})
	return r.find(ctx, filter, opts)
}

// DistinctSubjects lists every subject id with at least one record, sorted.
func (r *mongoAvailabilityRepository) DistinctSubjects(ctx context.Context) ([]string, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "subject_id", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list availability subjects: %w", err)
	}

	subjects := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok && id != "" {
			subjects = append(subjects, id)
		}
	}
	sort.Strings(subjects)
	return subjects, nil
}

func (r *mongoAvailabilityRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.AvailabilityRecord, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find availability records: %w", err)
	}
	defer cursor.Close(ctx)

	records := []*model.AvailabilityRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode availability records: %w", err)
	}
	return records, nil
}

func (r *mongoAvailabilityRepository) Update(ctx context.Context, id string, record *model.AvailabilityRecord) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	record.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"status":     record.Status,
			"notes":      record.Notes,
			"updated_at": record.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update availability record: %w", err)
	}
	if result.MatchedCount == 0 {
		return availabilityerrors.ErrNotFound
	}
	return nil
}

func (r *mongoAvailabilityRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete availability record: %w", err)
	}
	if result.DeletedCount == 0 {
		return availabilityerrors.ErrNotFound
	}
	return nil
}
