package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
)

// mongoGymLogRepository implements repository.GymLogRepository
type mongoGymLogRepository struct {
	collection *mongo.Collection
	accounts   *mongo.Collection
}

func NewGymLogRepository(db *mongo.Database) repository.GymLogRepository {
	return &mongoGymLogRepository{
		collection: db.Collection(gymLogCollectionName),
		accounts:   db.Collection(accountCollectionName),
	}
}

// Create inserts a log entry after checking its owner exists.
func (r *mongoGymLogRepository) Create(ctx context.Context, log *domain.GymLog) error {
	ok, err := exists(ctx, r.accounts, log.OwnerID)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrInvalidReference
	}

	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now
	if log.PerformedAt.IsZero() {
		log.PerformedAt = now
	}
	_, err = r.collection.InsertOne(ctx, log)
	return mapError(err)
}

func (r *mongoGymLogRepository) GetByID(ctx context.Context, id string) (*domain.GymLog, error) {
	var log domain.GymLog
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&log); err != nil {
		return nil, mapError(err)
	}
	return &log, nil
}

func (r *mongoGymLogRepository) List(ctx context.Context, f repository.GymLogFilter) ([]domain.GymLog, int, error) {
	filter := bson.M{"ownerId": f.OwnerID}
	if f.Search != "" {
		filter["exerciseName"] = containsFold(f.Search)
	}
	if f.From != nil || f.To != nil {
		performed := bson.M{}
		if f.From != nil {
			performed["$gte"] = *f.From
		}
		if f.To != nil {
			performed["$lte"] = *f.To
		}
		filter["performedAt"] = performed
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := findPage(f.Page).SetSort(bson.D{
		{Key: "performedAt", Value: -1},
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	logs := []domain.GymLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, 0, err
	}
	return logs, int(total), nil
}

func (r *mongoGymLogRepository) Update(ctx context.Context, id string, patch domain.GymLogPatch) (*domain.GymLog, error) {
	doc := newPatchDoc()
	if patch.ExerciseName.Present() {
		doc.setField("exerciseName", patch.ExerciseName.Value)
	}
	if patch.Sets.Present() {
		doc.setField("sets", patch.Sets.Value)
	}
	if patch.Reps.Present() {
		doc.setField("reps", patch.Reps.Value)
	}
	if patch.Weight.Present() {
		doc.setField("weight", patch.Weight.Value)
	}
	if patch.Notes.Present() {
		doc.setField("notes", patch.Notes.Value)
	} else if patch.Notes.Null {
		doc.unsetField("notes")
	}
	if patch.PerformedAt.Present() {
		doc.setField("performedAt", patch.PerformedAt.Value)
	}
	doc.setField("updatedAt", time.Now().UTC())

	var log domain.GymLog
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, doc.update(), opts).Decode(&log); err != nil {
		return nil, mapError(err)
	}
	return &log, nil
}

func (r *mongoGymLogRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureGymLogIndexes creates necessary indexes for the gym_logs collection.
func EnsureGymLogIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "performedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
