package repository

import (
	"context"
	crewerrors "crewcall/internal/crew/errors"
	"crewcall/pkg/config"
	mongodb "crewcall/pkg/db/mongo"
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
	CollectionName = "CrewMembers"
)

type CrewRepository interface {
	Create(ctx context.Context, member *model.CrewMember) error
	FindByID(ctx context.Context, id string) (*model.CrewMember, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.CrewMember, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, member *model.CrewMember) error
	Delete(ctx context.Context, id string) error
	FindExistingIDs(ctx context.Context, ids []string) ([]string, error)
	ListActiveIDs(ctx context.Context) ([]string, error)
}

type mongoCrewRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCrewRepository(cfg *config.Config) CrewRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCrewRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", crewerrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoCrewRepository) Create(ctx context.Context, member *model.CrewMember) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	member.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, member)
	if err != nil {
		return fmt.Errorf("failed to create crew member: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		member.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCrewRepository) FindByID(ctx context.Context, id string) (*model.CrewMember, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var member model.CrewMember
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&member); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, crewerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find crew member: %w", err)
	}
	return &member, nil
}

func (r *mongoCrewRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.CrewMember, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find crew members: %w", err)
	}
	defer cursor.Close(ctx)

	members := []*model.CrewMember{}
	if err := cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("failed to decode crew members: %w", err)
	}
	return members, nil
}

func (r *mongoCrewRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count crew members: %w", err)
	}
	return count, nil
}

func (r *mongoCrewRepository) Update(ctx context.Context, id string, member *model.CrewMember) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"name":   member.Name,
			"role":   member.Role,
			"phone":  member.Phone,
			"email":  member.Email,
			"active": member.Active,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update crew member: %w", err)
	}
	if result.MatchedCount == 0 {
		return crewerrors.ErrNotFound
	}
	return nil
}

func (r *mongoCrewRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete crew member: %w", err)
	}
	if result.DeletedCount == 0 {
		return crewerrors.ErrNotFound
	}
	return nil
}

// FindExistingIDs returns the subset of ids that belong to stored crew
// members. Malformed ids are treated as unknown rather than as an error.
func (r *mongoCrewRepository) FindExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []string{}, nil
	}

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to look up crew ids: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode crew ids: %w", err)
	}

	existing := make([]string, 0, len(docs))
	for _, d := range docs {
		existing = append(existing, d.ID.Hex())
	}
	return existing, nil
}

// ListActiveIDs returns the ids of every active crew member ordered by name.
func (r *mongoCrewRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list active crew: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode active crew ids: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID.Hex())
	}
	return ids, nil
}
