package repository

import (
	"context"
	equipmenterrors "crewcall/internal/equipment/errors"
	"crewcall/pkg/config"
	mongodb "crewcall/pkg/db/mongo"
	"crewcall/pkg/engine"
	"crewcall/pkg/model"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "EquipmentBookings"
)

// Filter narrows list queries. Empty fields are ignored. From and To select
// bookings overlapping [From, To).
type Filter struct {
	EquipmentID string
	EventID     string
	Status      model.EquipmentBookingStatus
	From        *time.Time
	To          *time.Time
}

func (f Filter) toBSON() bson.M {
	filter := bson.M{}
	if f.EquipmentID != "" {
		filter["equipment_id"] = f.EquipmentID
	}
	if f.EventID != "" {
		filter["event_id"] = f.EventID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.To != nil {
		filter["start_time"] = bson.M{"$lt": *f.To}
	}
	if f.From != nil {
		filter["end_time"] = bson.M{"$gt": *f.From}
	}
	return filter
}

type EquipmentBookingRepository interface {
	Create(ctx context.Context, booking *model.EquipmentBooking) error
	FindByID(ctx context.Context, id string) (*model.EquipmentBooking, error)
	Find(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.EquipmentBooking, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	FindByEquipment(ctx context.Context, equipmentIDs []string, window engine.Interval, limit int64) ([]*model.EquipmentBooking, error)
	Update(ctx context.Context, id string, booking *model.EquipmentBooking) error
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error
}

type mongoEquipmentBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongodb.TransactionManager
}

func NewMongoEquipmentBookingRepository(cfg *config.Config) EquipmentBookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEquipmentBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongodb.NewTransactionManager(cfg.Client.Mongo),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", equipmenterrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoEquipmentBookingRepository) Create(ctx context.Context, booking *model.EquipmentBooking) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create equipment booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoEquipmentBookingRepository) FindByID(ctx context.Context, id string) (*model.EquipmentBooking, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var booking model.EquipmentBooking
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, equipmenterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find equipment booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoEquipmentBookingRepository) Find(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.EquipmentBooking, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, filter.toBSON(), opts)
}

func (r *mongoEquipmentBookingRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter.toBSON())
	if err != nil {
		return 0, fmt.Errorf("failed to count equipment bookings: %w", err)
	}
	return count, nil
}

// FindByEquipment returns the occupying bookings of the given equipment that
// overlap window, at most limit of them. An empty id list matches all
// equipment.
func (r *mongoEquipmentBookingRepository) FindByEquipment(ctx context.Context, equipmentIDs []string, window engine.Interval, limit int64) ([]*model.EquipmentBooking, error) {
	filter := bson.M{
		"start_time": bson.M{"$lt": window.End},
		"end_time":   bson.M{"$gt": window.Start},
		"status":     bson.M{"$nin": []model.EquipmentBookingStatus{model.EquipmentCancelled, model.EquipmentReturned}},
	}
	if len(equipmentIDs) > 0 {
		filter["equipment_id"] = bson.M{"$in": equipmentIDs}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(limit)

	return r.find(ctx, filter, opts)
}

func (r *mongoEquipmentBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.EquipmentBooking, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find equipment bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*model.EquipmentBooking, 0)
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode equipment bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoEquipmentBookingRepository) Update(ctx context.Context, id string, booking *model.EquipmentBooking) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"event_id":   booking.EventID,
			"start_time": booking.StartTime,
			"end_time":   booking.EndTime,
			"status":     booking.Status,
			"notes":      booking.Notes,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update equipment booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return equipmenterrors.ErrNotFound
	}
	return nil
}

func (r *mongoEquipmentBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete equipment booking: %w", err)
	}
	if result.DeletedCount == 0 {
		return equipmenterrors.ErrNotFound
	}
	return nil
}

func (r *mongoEquipmentBookingRepository) ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
