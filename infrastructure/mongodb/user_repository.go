package mongodb

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"task-api/domain/models"
	"task-api/domain/repositories"
)

type userDocument struct {
	ID        string    `bson:"_id"`
	GoogleID  *string   `bson:"google_id"`
	Email     string    `bson:"email"`
	Username  string    `bson:"username"`
	Password  string    `bson:"password"`
	FirstName string    `bson:"first_name"`
	LastName  string    `bson:"last_name"`
	Avatar    string    `bson:"avatar"`
	Role      string    `bson:"role"`
	IsActive  bool      `bson:"is_active"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toUserDocument(u *models.User) userDocument {
	return userDocument{
		ID:        u.ID.String(),
		GoogleID:  u.GoogleID,
		Email:     u.Email,
		Username:  u.Username,
		Password:  u.Password,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (d userDocument) toModel() (*models.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:        id,
		GoogleID:  d.GoogleID,
		Email:     d.Email,
		Username:  d.Username,
		Password:  d.Password,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Avatar:    d.Avatar,
		Role:      d.Role,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

type UserRepository struct {
	users *mongo.Collection
	tasks *mongo.Collection
}

func NewUserRepository(db *mongo.Database) repositories.UserRepository {
	return &UserRepository{
		users: db.Collection(usersCollection),
		tasks: db.Collection(tasksCollection),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.users.InsertOne(ctx, toUserDocument(user))
	return translate(err)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	pattern := "^" + regexp.QuoteMeta(email) + "$"
	return r.findOne(ctx, bson.M{"email": primitive.Regex{Pattern: pattern, Options: "i"}})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"google_id": googleID})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel()
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	doc := toUserDocument(user)

	result, err := r.users.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{
		"google_id":  doc.GoogleID,
		"email":      doc.Email,
		"username":   doc.Username,
		"password":   doc.Password,
		"first_name": doc.FirstName,
		"last_name":  doc.LastName,
		"avatar":     doc.Avatar,
		"role":       doc.Role,
		"is_active":  doc.IsActive,
		"updated_at": doc.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Delete removes the user's tasks first, then the user.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.tasks.DeleteMany(ctx, bson.M{"owner_id": id.String()}); err != nil {
		return err
	}

	result, err := r.users.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
