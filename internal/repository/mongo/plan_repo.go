package mongo

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
)

// mongoPlanRepository implements repository.PlanRepository over two collections: plan
// headers and plan items. It does not implement repository.PlanTransactor.
type mongoPlanRepository struct {
	plans     *mongo.Collection
	items     *mongo.Collection
	accounts  *mongo.Collection
	exercises *mongo.Collection
}

// itemDocument stores the insertion sequence used as the ordering tie-breaker.
type itemDocument struct {
	domain.PlanItem `bson:",inline"`
	Seq             int64 `bson:"seq"`
}

var itemSeq atomic.Int64

// nextSeq is monotonic within a process and roughly ordered across processes.
func nextSeq() int64 {
	now := time.Now().UnixNano()
	for {
		last := itemSeq.Load()
		next := max(now, last+1)
		if itemSeq.CompareAndSwap(last, next) {
			return next
		}
	}
}

func NewPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		plans:     db.Collection(planCollectionName),
		items:     db.Collection(planItemCollectionName),
		accounts:  db.Collection(accountCollectionName),
		exercises: db.Collection(exerciseCollectionName),
	}
}

func (r *mongoPlanRepository) CreatePlan(ctx context.Context, plan *domain.WorkoutPlan) error {
	ok, err := exists(ctx, r.accounts, plan.OwnerID)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrInvalidReference
	}

	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.Revision == 0 {
		plan.Revision = 1
	}
	_, err = r.plans.InsertOne(ctx, plan)
	return mapError(err)
}

func (r *mongoPlanRepository) GetPlan(ctx context.Context, id string) (*domain.WorkoutPlan, error) {
	var plan domain.WorkoutPlan
	if err := r.plans.FindOne(ctx, bson.M{"_id": id}).Decode(&plan); err != nil {
		return nil, mapError(err)
	}
	return &plan, nil
}

func (r *mongoPlanRepository) ListPlans(ctx context.Context, f repository.PlanFilter) ([]domain.WorkoutPlan, int, error) {
	filter := bson.M{}
	switch {
	case f.OnlyOwn:
		filter["ownerId"] = f.ViewerID
	case f.ViewerID != "":
		filter["$or"] = bson.A{bson.M{"isPublic": true}, bson.M{"ownerId": f.ViewerID}}
	default:
		filter["isPublic"] = true
	}
	if f.Search != "" {
		filter["name"] = containsFold(f.Search)
	}
	if len(f.MuscleTypes) > 0 {
		filter["muscleTypes"] = bson.M{"$all": f.MuscleTypes}
	}
	if f.Difficulty != "" {
		filter["difficulty"] = f.Difficulty
	}
	if f.ExerciseID != "" {
		planIDs, err := r.items.Distinct(ctx, "planId", bson.M{"exerciseId": f.ExerciseID})
		if err != nil {
			return nil, 0, err
		}
		if len(planIDs) == 0 {
			return []domain.WorkoutPlan{}, 0, nil
		}
		filter["_id"] = bson.M{"$in": planIDs}
	}

	total, err := r.plans.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := findPage(f.Page).SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.plans.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	plans := []domain.WorkoutPlan{}
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, 0, err
	}
	return plans, int(total), nil
}

func (r *mongoPlanRepository) UpdatePlan(ctx context.Context, id string, patch domain.PlanPatch) (*domain.WorkoutPlan, error) {
	doc := newPatchDoc()
	if patch.Name.Present() {
		doc.setField("name", patch.Name.Value)
	}
	if patch.Description.Present() {
		doc.setField("description", patch.Description.Value)
	}
	if patch.MuscleTypes.Present() {
		doc.setField("muscleTypes", patch.MuscleTypes.Value)
	}
	if patch.Difficulty.Present() {
		doc.setField("difficulty", patch.Difficulty.Value)
	} else if patch.Difficulty.Null {
		doc.unsetField("difficulty")
	}
	if patch.DurationMinutes.Present() {
		doc.setField("durationMinutes", patch.DurationMinutes.Value)
	} else if patch.DurationMinutes.Null {
		doc.unsetField("durationMinutes")
	}
	if patch.IsPublic.Present() {
		doc.setField("isPublic", patch.IsPublic.Value)
	}
	doc.setField("updatedAt", time.Now().UTC())

	var plan domain.WorkoutPlan
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.plans.FindOneAndUpdate(ctx, bson.M{"_id": id}, doc.update(), opts).Decode(&plan); err != nil {
		return nil, mapError(err)
	}
	return &plan, nil
}

// DeletePlan removes the header, then its items.
func (r *mongoPlanRepository) DeletePlan(ctx context.Context, id string) error {
	result, err := r.plans.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	_, err = r.items.DeleteMany(ctx, bson.M{"planId": id})
	return err
}

func (r *mongoPlanRepository) AdvanceRevision(ctx context.Context, id string, expected *int) (int, error) {
	filter := bson.M{"_id": id}
	if expected != nil {
		filter["revision"] = *expected
	}
	update := bson.M{
		"$inc": bson.M{"revision": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	var plan domain.WorkoutPlan
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.plans.FindOneAndUpdate(ctx, filter, update, opts).Decode(&plan)
	if errors.Is(err, mongo.ErrNoDocuments) && expected != nil {
		ok, existsErr := exists(ctx, r.plans, id)
		if existsErr != nil {
			return 0, existsErr
		}
		if ok {
			return 0, repository.ErrStaleRevision
		}
	}
	if err != nil {
		return 0, mapError(err)
	}
	return plan.Revision, nil
}

// CreateItem checks both references by hand; the unique (planId, exerciseId) index rejects duplicates.
func (r *mongoPlanRepository) CreateItem(ctx context.Context, item *domain.PlanItem) error {
	for _, ref := range []struct {
		c  *mongo.Collection
		id string
	}{{r.plans, item.PlanID}, {r.exercises, item.ExerciseID}} {
		ok, err := exists(ctx, ref.c, ref.id)
		if err != nil {
			return err
		}
		if !ok {
			return repository.ErrInvalidReference
		}
	}

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = time.Now().UTC()
	_, err := r.items.InsertOne(ctx, itemDocument{PlanItem: *item, Seq: nextSeq()})
	return mapError(err)
}

func (r *mongoPlanRepository) GetItem(ctx context.Context, id string) (*domain.PlanItem, error) {
	var doc itemDocument
	if err := r.items.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return &doc.PlanItem, nil
}

func (r *mongoPlanRepository) ListItems(ctx context.Context, planID string) ([]domain.PlanItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "orderIndex", Value: 1}, {Key: "seq", Value: 1}})
	cursor, err := r.items.Find(ctx, bson.M{"planId": planID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []itemDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	items := make([]domain.PlanItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.PlanItem)
	}
	return items, nil
}

func (r *mongoPlanRepository) FindItemByExercise(ctx context.Context, planID, exerciseID string) (*domain.PlanItem, error) {
	var doc itemDocument
	if err := r.items.FindOne(ctx, bson.M{"planId": planID, "exerciseId": exerciseID}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return &doc.PlanItem, nil
}

func (r *mongoPlanRepository) MaxOrderIndex(ctx context.Context, planID string) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "orderIndex", Value: -1}})
	var doc itemDocument
	err := r.items.FindOne(ctx, bson.M{"planId": planID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.OrderIndex, nil
}

func (r *mongoPlanRepository) UpdateItem(ctx context.Context, id string, patch domain.PlanItemPatch) (*domain.PlanItem, error) {
	doc := newPatchDoc()
	if patch.Sets.Present() {
		doc.setField("sets", patch.Sets.Value)
	}
	if patch.Reps.Present() {
		doc.setField("reps", patch.Reps.Value)
	}
	if patch.Weight.Present() {
		doc.setField("weight", patch.Weight.Value)
	} else if patch.Weight.Null {
		doc.unsetField("weight")
	}
	if patch.RestSeconds.Present() {
		doc.setField("restSeconds", patch.RestSeconds.Value)
	} else if patch.RestSeconds.Null {
		doc.unsetField("restSeconds")
	}
	if patch.Notes.Present() {
		doc.setField("notes", patch.Notes.Value)
	} else if patch.Notes.Null {
		doc.unsetField("notes")
	}
	if patch.OrderIndex.Present() {
		doc.setField("orderIndex", patch.OrderIndex.Value)
	}
	if patch.IsEmpty() {
		return r.GetItem(ctx, id)
	}

	var item itemDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.items.FindOneAndUpdate(ctx, bson.M{"_id": id}, doc.update(), opts).Decode(&item); err != nil {
		return nil, mapError(err)
	}
	return &item.PlanItem, nil
}

func (r *mongoPlanRepository) DeleteItem(ctx context.Context, id string) error {
	result, err := r.items.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoPlanRepository) DeleteItems(ctx context.Context, planID string) error {
	_, err := r.items.DeleteMany(ctx, bson.M{"planId": planID})
	return err
}

// EnsurePlanIndexes creates necessary indexes for the workout_plans collection.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "isPublic", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// EnsurePlanItemIndexes creates the unique (planId, exerciseId) index and the lookup by exercise.
func EnsurePlanItemIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "exerciseId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "exerciseId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
