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

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new catalog exercise. Both _id and name are unique.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == "" {
		exercise.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, exercise)
	return mapError(err)
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	var exercise domain.Exercise
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise); err != nil {
		return nil, mapError(err)
	}
	return &exercise, nil
}

func (r *mongoExerciseRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Exercise, error) {
	found := make(map[string]*domain.Exercise, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []domain.Exercise
	if err := cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	for i := range exercises {
		found[exercises[i].ID] = &exercises[i]
	}
	return found, nil
}

func (r *mongoExerciseRepository) List(ctx context.Context, f repository.ExerciseFilter) ([]domain.Exercise, int, error) {
	filter := bson.M{}
	if f.Search != "" {
		filter["name"] = containsFold(f.Search)
	}
	if f.BodyPart != "" {
		filter["bodyPart"] = f.BodyPart
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Difficulty != "" {
		filter["difficulty"] = f.Difficulty
	}
	if len(f.Equipment) > 0 {
		filter["equipment"] = bson.M{"$all": f.Equipment}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := findPage(f.Page).SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err := cursor.All(ctx, &exercises); err != nil {
		return nil, 0, err
	}
	return exercises, int(total), nil
}

// Update applies a partial edit and returns the stored result.
func (r *mongoExerciseRepository) Update(ctx context.Context, id string, patch domain.ExercisePatch) (*domain.Exercise, error) {
	doc := newPatchDoc()
	if patch.Name.Present() {
		doc.setField("name", patch.Name.Value)
	}
	if patch.Description.Present() {
		doc.setField("description", patch.Description.Value)
	}
	if patch.BodyPart.Present() {
		doc.setField("bodyPart", patch.BodyPart.Value)
	}
	if patch.Type.Present() {
		doc.setField("type", patch.Type.Value)
	}
	if patch.Difficulty.Present() {
		doc.setField("difficulty", patch.Difficulty.Value)
	} else if patch.Difficulty.Null {
		doc.unsetField("difficulty")
	}
	if patch.Equipment.Present() && len(patch.Equipment.Value) > 0 {
		doc.setField("equipment", patch.Equipment.Value)
	} else if patch.Equipment.Set {
		doc.unsetField("equipment")
	}
	doc.setField("updatedAt", time.Now().UTC())

	var exercise domain.Exercise
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, doc.update(), opts).Decode(&exercise); err != nil {
		return nil, mapError(err)
	}
	return &exercise, nil
}

func (r *mongoExerciseRepository) SetMediaKey(ctx context.Context, id, key string) error {
	update := bson.M{"$set": bson.M{"mediaKey": key, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "bodyPart", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
