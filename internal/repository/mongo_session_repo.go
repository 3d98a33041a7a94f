package repository

import (
	"context"
	"errors"

	"github.com/compsocial/compsocial-server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoSessionRepo struct {
	col *mongo.Collection
}

// NewMongoSessionRepo builds the refresh-session store. The unique index on
// userId keeps a single live session per user.
func NewMongoSessionRepo(db *mongo.Database) SessionRepository {
	col := db.Collection("refreshTokens")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &mongoSessionRepo{col: col}
}

func (r *mongoSessionRepo) Put(ctx context.Context, s *models.RefreshSession) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"userId": s.UserID},
		bson.M{"$set": s},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *mongoSessionRepo) Get(ctx context.Context, userID primitive.ObjectID) (*models.RefreshSession, error) {
	var s models.RefreshSession
	err := r.col.FindOne(ctx, bson.M{"userId": userID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *mongoSessionRepo) Delete(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}
