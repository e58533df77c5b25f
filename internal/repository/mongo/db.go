// Package mongo implements the repository gateway on MongoDB. MongoDB here offers no
// multi-document transactions, so the plan store does not implement PlanTransactor and
// cascades are carried out by the stores themselves.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"alcyxob/gym-tracker/internal/repository"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

const (
	accountCollectionName  = "accounts"
	exerciseCollectionName = "exercises"
	gymLogCollectionName   = "gym_logs"
	planCollectionName     = "workout_plans"
	planItemCollectionName = "plan_items"
)

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection.
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// New returns the gateway backed by db.
func New(db *mongo.Database) repository.Repositories {
	return repository.Repositories{
		Accounts:  NewAccountRepository(db),
		Exercises: NewExerciseRepository(db),
		GymLogs:   NewGymLogRepository(db),
		Plans:     NewPlanRepository(db),
	}
}

// EnsureIndexes creates the indexes every collection relies on, including the unique ones
// that back ErrDuplicate. Call during startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	ensure := []struct {
		collection string
		fn         func(context.Context, *mongo.Collection) error
	}{
		{accountCollectionName, EnsureAccountIndexes},
		{exerciseCollectionName, EnsureExerciseIndexes},
		{gymLogCollectionName, EnsureGymLogIndexes},
		{planCollectionName, EnsurePlanIndexes},
		{planItemCollectionName, EnsurePlanItemIndexes},
	}
	for _, e := range ensure {
		if err := e.fn(ctx, db.Collection(e.collection)); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", e.collection, err)
		}
		logger.Debug("indexes ensured", slog.String("collection", e.collection))
	}
	return nil
}

// mapError translates driver errors into repository errors.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	default:
		return err
	}
}

// containsFold matches a case-insensitive substring, with regex metacharacters escaped.
func containsFold(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

func findPage(page repository.Page) *options.FindOptions {
	opts := options.Find()
	if page.Offset > 0 {
		opts.SetSkip(int64(page.Offset))
	}
	if page.Limit > 0 {
		opts.SetLimit(int64(page.Limit))
	}
	return opts
}

// patchDoc collects $set and $unset operators for a partial update.
type patchDoc struct {
	set   bson.M
	unset bson.M
}

func newPatchDoc() *patchDoc {
	return &patchDoc{set: bson.M{}, unset: bson.M{}}
}

func (p *patchDoc) setField(key string, value any) { p.set[key] = value }

func (p *patchDoc) unsetField(key string) { p.unset[key] = "" }

func (p *patchDoc) update() bson.M {
	u := bson.M{}
	if len(p.set) > 0 {
		u["$set"] = p.set
	}
	if len(p.unset) > 0 {
		u["$unset"] = p.unset
	}
	return u
}

func exists(ctx context.Context, c *mongo.Collection, id string) (bool, error) {
	n, err := c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
