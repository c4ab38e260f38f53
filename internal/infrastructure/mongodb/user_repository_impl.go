package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-user-accounts/internal/domain/repository"
)

// userDocument is the stored shape of entity.User.
type userDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Email       string             `bson:"email"`
	Password    string             `bson:"password,omitempty"`
	Phone       string             `bson:"phone,omitempty"`
	Address     string             `bson:"address,omitempty"`
	Image       string             `bson:"image,omitempty"`
	IsActive    bool               `bson:"isActive"`
	CodeID      string             `bson:"codeId,omitempty"`
	CodeExpired *time.Time         `bson:"codeExpired,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func toDocument(u *entity.User) userDocument {
	return userDocument{
		Name:        u.Name,
		Email:       u.Email,
		Password:    u.Password,
		Phone:       u.Phone,
		Address:     u.Address,
		Image:       u.Image,
		IsActive:    u.IsActive,
		CodeID:      u.CodeID,
		CodeExpired: u.CodeExpired,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (d userDocument) toEntity() *entity.User {
	return &entity.User{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Email:       d.Email,
		Password:    d.Password,
		Phone:       d.Phone,
		Address:     d.Address,
		Image:       d.Image,
		IsActive:    d.IsActive,
		CodeID:      d.CodeID,
		CodeExpired: d.CodeExpired,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type UserRepository struct {
	col     *mongo.Collection
	timeout time.Duration
	now     func() time.Time
}

func NewUserRepository(db *mongo.Database, collection string, timeout time.Duration) *UserRepository {
	return newUserRepository(db.Collection(collection), timeout)
}

func newUserRepository(col *mongo.Collection, timeout time.Duration) *UserRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &UserRepository{col: col, timeout: timeout, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureIndexes creates the unique email index. Uniqueness is enforced here;
// the service-level existence check is only a fast path.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	return err
}

func (r *UserRepository) ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := r.col.FindOne(ctx, bson.M{"email": email}, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := r.now()
	u.CreatedAt, u.UpdatedAt = now, now
	doc := toDocument(u)
	doc.ID = primitive.NewObjectID()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert user %s: %w", u.Email, repository.ErrDuplicateKey)
		}
		return err
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (r *UserRepository) Count(ctx context.Context, filter map[string]any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.col.CountDocuments(ctx, normalizeFilter(filter))
}

func (r *UserRepository) Find(ctx context.Context, p repository.ListParams) ([]*entity.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"password": 0})
	if p.Skip > 0 {
		opts.SetSkip(p.Skip)
	}
	if p.Limit > 0 {
		opts.SetLimit(p.Limit)
	}
	if len(p.Sort) > 0 {
		sort := make(bson.D, 0, len(p.Sort))
		for _, s := range p.Sort {
			dir := 1
			if s.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: s.Field, Value: dir})
		}
		opts.SetSort(sort)
	}

	cur, err := r.col.Find(ctx, normalizeFilter(p.Filter), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*entity.User{}
	for cur.Next(ctx) {
		var d userDocument
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		u := d.toEntity()
		u.Password = ""
		out = append(out, u)
	}
	return out, cur.Err()
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var d userDocument
	err := r.col.FindOne(ctx, filter).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d.toEntity(), nil
}

func (r *UserRepository) UpdateOne(ctx context.Context, id string, match, set map[string]any) (repository.UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.UpdateResult{}, repository.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{}
	for k, v := range match {
		filter[k] = v
	}
	filter["_id"] = oid

	if len(set) == 0 {
		n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
		if err != nil {
			return repository.UpdateResult{}, err
		}
		return repository.UpdateResult{Matched: n}, nil
	}

	fields := bson.M{}
	for k, v := range set {
		fields[k] = v
	}
	fields["updatedAt"] = r.now()

	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.UpdateResult{}, fmt.Errorf("update user %s: %w", id, repository.ErrDuplicateKey)
		}
		return repository.UpdateResult{}, err
	}
	return repository.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, repository.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// normalizeFilter copies f into a bson.M, mapping "id" to "_id" and hex
// strings under "_id" to ObjectIDs.
func normalizeFilter(f map[string]any) bson.M {
	out := bson.M{}
	for k, v := range f {
		if k == "id" {
			k = "_id"
		}
		if k == "_id" {
			v = toObjectID(v)
		}
		out[k] = v
	}
	return out
}

func toObjectID(v any) any {
	switch x := v.(type) {
	case string:
		if oid, err := primitive.ObjectIDFromHex(x); err == nil {
			return oid
		}
	case map[string]any:
		cp := make(map[string]any, len(x))
		for op, val := range x {
			if list, ok := val.([]any); ok {
				conv := make([]any, len(list))
				for i, item := range list {
					conv[i] = toObjectID(item)
				}
				cp[op] = conv
				continue
			}
			cp[op] = toObjectID(val)
		}
		return cp
	}
	return v
}

var _ repository.UserRepository = (*UserRepository)(nil)
