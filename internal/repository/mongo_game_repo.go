package repository

import (
	"context"
	"errors"
	"time"

	"github.com/compsocial/compsocial-server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoGameRepo struct {
	col *mongo.Collection
}

// NewMongoGameRepo builds the game store. Join codes are unique across live
// games; the index backs the collision retry in the service layer.
func NewMongoGameRepo(db *mongo.Database) GameRepository {
	col := db.Collection("games")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "joinCode", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &mongoGameRepo{col: col}
}

func (r *mongoGameRepo) Create(ctx context.Context, g *models.Game) (primitive.ObjectID, error) {
	g.CreatedAt = time.Now().UTC()
	g.UpdatedAt = g.CreatedAt
	res, err := r.col.InsertOne(ctx, g)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("unexpected inserted id type")
	}
	g.ID = id
	return id, nil
}

func (r *mongoGameRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Game, error) {
	var g models.Game
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *mongoGameRepo) FindByJoinCode(ctx context.Context, code string) (*models.Game, error) {
	var g models.Game
	err := r.col.FindOne(ctx, bson.M{"joinCode": code}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *mongoGameRepo) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	err := r.col.FindOne(ctx, bson.M{"joinCode": code},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *mongoGameRepo) Update(ctx context.Context, g *models.Game) error {
	g.UpdatedAt = time.Now().UTC()
	_, err := r.col.UpdateByID(ctx, g.ID, bson.M{"$set": g})
	return err
}

func (r *mongoGameRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
