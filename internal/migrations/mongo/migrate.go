package mongo

import (
	"context"
	"fmt"

	availabilityrepo "crewcall/internal/availability/repository"
	crewrepo "crewcall/internal/crew/repository"
	equipmentrepo "crewcall/internal/equipment/repository"
	eventsrepo "crewcall/internal/events/repository"
	"crewcall/internal/migrations/mongo/validators"
	mongodb "crewcall/pkg/db/mongo"
	"crewcall/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	CrewMembersIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "phone", Value: 1}}},
	}

	// One record per subject per day; bulk upserts rely on it.
	AvailabilityIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "subject_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("subject_date_unique"),
		},
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "status", Value: 1}}},
	}

	EquipmentBookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "equipment_id", Value: 1},
			{Key: "start_time", Value: 1},
			{Key: "end_time", Value: 1},
		}},
		{Keys: bson.D{{Key: "event_id", Value: 1}}},
	}

	EventsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "attendees", Value: 1}, {Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "start_time", Value: 1}, {Key: "end_time", Value: 1}}},
	}

	// Expired locks are reaped by Mongo's TTL monitor.
	ResourceLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
		},
	}
)

type CollectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() []CollectionDef {
	return []CollectionDef{
		{Name: crewrepo.CollectionName, Indexes: CrewMembersIndexes, Validator: validators.CrewMemberValidator},
		{Name: availabilityrepo.CollectionName, Indexes: AvailabilityIndexes, Validator: validators.AvailabilityValidator},
		{Name: equipmentrepo.CollectionName, Indexes: EquipmentBookingsIndexes, Validator: validators.EquipmentBookingValidator},
		{Name: eventsrepo.CollectionName, Indexes: EventsIndexes, Validator: validators.EventValidator},
		{Name: mongodb.LockCollectionName, Indexes: ResourceLocksIndexes, Validator: validators.ResourceLockValidator},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
