package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/slothstore/internal/app/system/normalize"
	"github.com/dalemusser/slothstore/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicate is returned when the username or email is already taken.
	ErrDuplicate = errors.New("username or email already exists")
	ErrNotFound  = errors.New("user not found")
	errBadRole   = errors.New(`role must be "user"|"admin"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Usernames maps each id in ids to its username. Unknown ids are absent.
func (s *Store) Usernames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"username": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID       primitive.ObjectID `bson:"_id"`
			Username string             `bson:"username"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = row.Username
	}
	return out, cur.Err()
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByLogin resolves a login id that may be either an email or a username.
func (s *Store) GetByLogin(ctx context.Context, loginID string) (*models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": normalize.Email(loginID)},
		bson.M{"username_ci": text.Fold(normalize.Username(loginID))},
	}}
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Taken reports whether username or email belongs to a user other than excludeID.
func (s *Store) Taken(ctx context.Context, username, email string, excludeID primitive.ObjectID) (bool, error) {
	var or bson.A
	if username != "" {
		or = append(or, bson.M{"username_ci": text.Fold(normalize.Username(username))})
	}
	if email != "" {
		or = append(or, bson.M{"email": normalize.Email(email)})
	}
	if len(or) == 0 {
		return false, nil
	}
	filter := bson.M{"$or": or}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := s.c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	return n > 0, err
}

// Create inserts a new user after normalizing fields. PasswordHash must
// already be set. An empty role defaults to "user".
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Username = normalize.Username(u.Username)
	u.UsernameCI = text.Fold(u.Username)
	u.Email = normalize.Email(u.Email)
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if !u.Role.Valid() {
		return models.User{}, errBadRole
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, err
	}
	return u, nil
}

// Update holds optional admin edits; nil fields are left unchanged.
type Update struct {
	Username     *string
	Email        *string
	Role         *models.Role
	PasswordHash *string
}

// Update applies upd to the user. Setting a password also records
// password_changed_at so earlier tokens stop working.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.User, error) {
	now := time.Now().UTC()
	set := bson.M{"updated_at": now}
	if upd.Username != nil {
		name := normalize.Username(*upd.Username)
		set["username"] = name
		set["username_ci"] = text.Fold(name)
	}
	if upd.Email != nil {
		set["email"] = normalize.Email(*upd.Email)
	}
	if upd.Role != nil {
		if !upd.Role.Valid() {
			return nil, errBadRole
		}
		set["role"] = *upd.Role
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
		set["password_changed_at"] = changedAt(now)
	}

	var out models.User
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &out, nil
}

// Delete removes a user. Returns ErrNotFound when nothing was deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// changedAt back-dates the change by one second so a token signed in the
// same second as the change still validates.
func changedAt(now time.Time) time.Time {
	return now.Add(-time.Second)
}

// SetPassword stores a new hash, records the change time, and clears every
// password-reset field.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"password_hash":       hash,
			"password_changed_at": changedAt(now),
			"updated_at":          now,
		},
		"$unset": resetFields(),
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func resetFields() bson.M {
	return bson.M{
		"password_reset_token_hash":  "",
		"password_reset_expires":     "",
		"password_reset_otp_hash":    "",
		"password_reset_otp_expires": "",
	}
}

// SetResetOTP stores a hashed OTP and its expiry.
func (s *Store) SetResetOTP(ctx context.Context, id primitive.ObjectID, otpHash string, expires time.Time) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_reset_otp_hash":    otpHash,
		"password_reset_otp_expires": expires.UTC(),
	}})
	return err
}

// ClearResetOTP removes a pending OTP (e.g. when the email could not be sent).
func (s *Store) ClearResetOTP(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$unset": bson.M{
		"password_reset_otp_hash":    "",
		"password_reset_otp_expires": "",
	}})
	return err
}

// ExchangeOTPForToken consumes the OTP and stores the hashed reset token.
func (s *Store) ExchangeOTPForToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"password_reset_token_hash": tokenHash,
			"password_reset_expires":    expires.UTC(),
		},
		"$unset": bson.M{
			"password_reset_otp_hash":    "",
			"password_reset_otp_expires": "",
		},
	})
	return err
}

// GetByResetToken finds the user holding an unexpired reset token hash.
func (s *Store) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{
		"password_reset_token_hash": tokenHash,
		"password_reset_expires":    bson.M{"$gt": now.UTC()},
	}).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ClearExpiredResets unsets OTPs and reset tokens whose expiry has passed.
func (s *Store) ClearExpiredResets(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	res, err := s.c.UpdateMany(ctx,
		bson.M{"password_reset_otp_expires": bson.M{"$lte": now.UTC()}},
		bson.M{"$unset": bson.M{"password_reset_otp_hash": "", "password_reset_otp_expires": ""}})
	if err != nil {
		return 0, err
	}
	total += res.ModifiedCount
	res, err = s.c.UpdateMany(ctx,
		bson.M{"password_reset_expires": bson.M{"$lte": now.UTC()}},
		bson.M{"$unset": bson.M{"password_reset_token_hash": "", "password_reset_expires": ""}})
	if err != nil {
		return total, err
	}
	return total + res.ModifiedCount, nil
}
