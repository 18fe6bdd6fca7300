package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studyplan-backend/models"
)

const plansCollection = "study_plans"

// MongoPlanRepository stores every plan as one document with embedded
// tasks, members and invitations.
type MongoPlanRepository struct {
	collection *mongo.Collection
}

func NewMongoPlanRepository(db *mongo.Database) *MongoPlanRepository {
	return &MongoPlanRepository{collection: db.Collection(plansCollection)}
}

// EnsureIndexes creates the indexes backing the list queries.
func (r *MongoPlanRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		{Keys: bson.D{{Key: "members.user", Value: 1}}},
		{Keys: bson.D{{Key: "invitations.email", Value: 1}, {Key: "invitations.status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create plan indexes: %w", err)
	}
	return nil
}

func (r *MongoPlanRepository) Create(ctx context.Context, plan *models.StudyPlan) error {
	_, err := r.collection.InsertOne(ctx, plan)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *MongoPlanRepository) Get(ctx context.Context, id string) (*models.StudyPlan, error) {
	var plan models.StudyPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *MongoPlanRepository) Update(ctx context.Context, plan *models.StudyPlan) error {
	expected := plan.Version
	next := *plan
	next.Version = expected + 1

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": plan.ID, "version": expected}, &next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": plan.ID})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}

	plan.Version = next.Version
	return nil
}

func (r *MongoPlanRepository) ListForUser(ctx context.Context, userID string) ([]models.StudyPlan, error) {
	return r.find(ctx, bson.M{
		"$or": bson.A{
			bson.M{"createdBy": userID},
			bson.M{"members.user": userID},
		},
	})
}

func (r *MongoPlanRepository) ListWithPendingInvitation(ctx context.Context, email string) ([]models.StudyPlan, error) {
	return r.find(ctx, bson.M{
		"invitations": bson.M{
			"$elemMatch": bson.M{
				"email":  email,
				"status": models.InvitationPending,
			},
		},
	})
}

func (r *MongoPlanRepository) find(ctx context.Context, filter bson.M) ([]models.StudyPlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plans := make([]models.StudyPlan, 0)
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}
