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

type mongoUserRepo struct {
	users   *mongo.Collection
	pending *mongo.Collection
}

// NewMongoUserRepo builds the user store over the verified-users and
// awaiting-verification collections.
func NewMongoUserRepo(db *mongo.Database) UserRepository {
	users := db.Collection("users")
	pending := db.Collection("awaitingAuth")
	// indexes
	_, _ = users.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	_, _ = pending.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &mongoUserRepo{users: users, pending: pending}
}

func (r *mongoUserRepo) CreatePendingRegistration(ctx context.Context, username, email, passwordHash string) (string, error) {
	err := r.users.FindOne(ctx, bson.M{"email": email}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return "", ErrEmailTaken
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", err
	}

	reg := models.PendingRegistration{
		Email: email,
		User: models.User{
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
		},
		CreatedAt: time.Now().UTC(),
	}

	// Delete-then-insert rather than upsert: the pending row gets a fresh id
	// each time, so a token emailed for an earlier registration attempt stops
	// resolving.
	if _, err := r.pending.DeleteOne(ctx, bson.M{"email": email}); err != nil {
		return "", err
	}
	res, err := r.pending.InsertOne(ctx, reg)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected inserted id type")
	}
	return oid.Hex(), nil
}

func (r *mongoUserRepo) FindPendingByEmail(ctx context.Context, email string) (*models.PendingRegistration, error) {
	var reg models.PendingRegistration
	err := r.pending.FindOne(ctx, bson.M{"email": email},
		options.FindOne().SetProjection(bson.M{"userObj": 0})).Decode(&reg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *mongoUserRepo) PromoteToVerifiedUser(ctx context.Context, token string) error {
	id, err := primitive.ObjectIDFromHex(token)
	if err != nil {
		return ErrNotFound
	}

	var reg models.PendingRegistration
	err = r.pending.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&reg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	user := reg.User
	user.Games = []primitive.ObjectID{}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	_, err = r.users.UpdateOne(ctx,
		bson.M{"email": user.Email},
		bson.M{"$set": user},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *mongoUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mongoUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mongoUserRepo) FindPublicByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := r.users.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"_id": 1, "username": 1})).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mongoUserRepo) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	_, err := r.users.UpdateByID(ctx, u.ID, bson.M{"$set": u})
	return err
}
