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

// mongoAccountRepository implements repository.AccountRepository
type mongoAccountRepository struct {
	collection *mongo.Collection
	logs       *mongo.Collection
	plans      *mongo.Collection
	items      *mongo.Collection
}

// NewAccountRepository creates an Account repository backed by MongoDB.
func NewAccountRepository(db *mongo.Database) repository.AccountRepository {
	return &mongoAccountRepository{
		collection: db.Collection(accountCollectionName),
		logs:       db.Collection(gymLogCollectionName),
		plans:      db.Collection(planCollectionName),
		items:      db.Collection(planItemCollectionName),
	}
}

// Create inserts a new account. The unique email index turns a second registration into ErrDuplicate.
func (r *mongoAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.Email = domain.NormalizeEmail(account.Email)
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, account)
	return mapError(err)
}

func (r *mongoAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var account domain.Account
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&account); err != nil {
		return nil, mapError(err)
	}
	return &account, nil
}

func (r *mongoAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	filter := bson.M{"email": domain.NormalizeEmail(email)}
	if err := r.collection.FindOne(ctx, filter).Decode(&account); err != nil {
		return nil, mapError(err)
	}
	return &account, nil
}

func (r *mongoAccountRepository) Update(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error) {
	doc := newPatchDoc()
	if patch.Name.Present() {
		doc.setField("name", patch.Name.Value)
	}
	if patch.Email.Present() {
		doc.setField("email", domain.NormalizeEmail(patch.Email.Value))
	}
	if patch.PasswordHash.Present() {
		doc.setField("passwordHash", patch.PasswordHash.Value)
	}
	doc.setField("updatedAt", time.Now().UTC())

	var account domain.Account
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, doc.update(), opts).Decode(&account); err != nil {
		return nil, mapError(err)
	}
	return &account, nil
}

// Delete removes the account and then everything it owns. The cascade is not atomic.
func (r *mongoAccountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError(err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}

	if _, err := r.logs.DeleteMany(ctx, bson.M{"ownerId": id}); err != nil {
		return err
	}
	planIDs, err := r.plans.Distinct(ctx, "_id", bson.M{"ownerId": id})
	if err != nil {
		return err
	}
	if len(planIDs) == 0 {
		return nil
	}
	if _, err := r.items.DeleteMany(ctx, bson.M{"planId": bson.M{"$in": planIDs}}); err != nil {
		return err
	}
	_, err = r.plans.DeleteMany(ctx, bson.M{"ownerId": id})
	return err
}

// EnsureAccountIndexes creates necessary indexes for the accounts collection.
func EnsureAccountIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
