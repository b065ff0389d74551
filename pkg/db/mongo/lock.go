package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crewcall/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "ResourceLocks"

// ErrLockHeld is returned by Acquire while another writer holds the lock.
var ErrLockHeld = errors.New("resource lock is held")

// ErrLockLost is returned by Release when the lock expired and is no longer
// held under the caller's token.
var ErrLockLost = errors.New("resource lock is no longer held by this token")

// LockRepository hands out advisory locks keyed by resource id. A lock
// expires after its TTL even if it is never released; the TTL index on
// expires_at reaps it, and Acquire also steals locks that have expired but
// not yet been reaped. Acquire returns a token that Release must present, so
// a holder whose lock expired and was taken over cannot release the new one.
type LockRepository interface {
	Acquire(ctx context.Context, resourceID string, ttl time.Duration) (string, error)
	Release(ctx context.Context, resourceID, token string) error
}

type mongoLockRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
	now        func() time.Time
	newToken   func() string
}

func NewLockRepository(db *mongo.Database, timeout time.Duration) LockRepository {
	return &mongoLockRepository{
		collection: db.Collection(LockCollectionName),
		timeout:    timeout,
		now:        time.Now,
		newToken:   uuid.NewString,
	}
}

func (r *mongoLockRepository) Acquire(ctx context.Context, resourceID string, ttl time.Duration) (string, error) {
	ctx, cancel := WithTimeout(ctx, r.timeout)
	defer cancel()

	now := r.now().UTC()
	lock := &model.ResourceLock{
		ID:        resourceID,
		Token:     r.newToken(),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err == nil {
		return lock.Token, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return "", fmt.Errorf("failed to acquire lock %s: %w", resourceID, err)
	}

	stale, err := r.collection.DeleteOne(ctx, bson.M{"_id": resourceID, "expires_at": bson.M{"$lte": now}})
	if err != nil {
		return "", fmt.Errorf("failed to clear expired lock %s: %w", resourceID, err)
	}
	if stale.DeletedCount == 0 {
		return "", fmt.Errorf("%w: %s", ErrLockHeld, resourceID)
	}

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: %s", ErrLockHeld, resourceID)
		}
		return "", fmt.Errorf("failed to acquire lock %s: %w", resourceID, err)
	}
	return lock.Token, nil
}

func (r *mongoLockRepository) Release(ctx context.Context, resourceID, token string) error {
	ctx, cancel := WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, ownedLockFilter(resourceID, token))
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", resourceID, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrLockLost, resourceID)
	}
	return nil
}

func ownedLockFilter(resourceID, token string) bson.M {
	return bson.M{"_id": resourceID, "token": token}
}
