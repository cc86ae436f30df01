// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
	CategoryOrder = "order"
)

// Auth event types
const (
	EventSignup                   = "signup"
	EventLoginSuccess             = "login_success"
	EventLoginFailedUserNotFound  = "login_failed_user_not_found"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLoginFailedRateLimit     = "login_failed_rate_limit"
	EventPasswordChanged          = "password_changed"
	EventPasswordResetRequested   = "password_reset_requested"
	EventPasswordResetOTPFailed   = "password_reset_otp_failed"
	EventPasswordReset            = "password_reset"
)

// Admin event types
const (
	EventUserCreated    = "user_created"
	EventUserUpdated    = "user_updated"
	EventUserDeleted    = "user_deleted"
	EventProductCreated = "product_created"
	EventProductUpdated = "product_updated"
	EventProductDeleted = "product_deleted"
)

// Order event types
const (
	EventOrderPlaced        = "order_placed"
	EventOrderStatusChanged = "order_status_changed"
)

// Event is one audit record. UserID is the shopper the event is about,
// ActorID the account that acted (an admin, or the shopper themselves).
type Event struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	Timestamp     time.Time           `bson:"timestamp"`
	Category      string              `bson:"category"`
	EventType     string              `bson:"event_type"`
	UserID        *primitive.ObjectID `bson:"user_id,omitempty"`
	ActorID       *primitive.ObjectID `bson:"actor_id,omitempty"`
	IP            string              `bson:"ip"`
	UserAgent     string              `bson:"user_agent,omitempty"`
	Success       bool                `bson:"success"`
	FailureReason string              `bson:"failure_reason,omitempty"`
	Details       map[string]string   `bson:"details,omitempty"`
}

// QueryFilter narrows a listing. Zero fields match everything; the time
// bounds are inclusive.
type QueryFilter struct {
	UserID    *primitive.ObjectID
	Category  string
	EventType string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}

func (f QueryFilter) match() bson.D {
	m := bson.D{}
	if f.UserID != nil {
		m = append(m, bson.E{Key: "user_id", Value: *f.UserID})
	}
	for key, val := range map[string]string{"category": f.Category, "event_type": f.EventType} {
		if val != "" {
			m = append(m, bson.E{Key: key, Value: val})
		}
	}
	span := bson.D{}
	if f.StartTime != nil {
		span = append(span, bson.E{Key: "$gte", Value: *f.StartTime})
	}
	if f.EndTime != nil {
		span = append(span, bson.E{Key: "$lte", Value: *f.EndTime})
	}
	if len(span) > 0 {
		m = append(m, bson.E{Key: "timestamp", Value: span})
	}
	return m
}

const defaultQueryLimit = 100

// Store persists audit events in the audit_events collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log inserts e, stamping an ID and timestamp when missing.
func (s *Store) Log(ctx context.Context, e Event) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// Query returns matching events newest first.
func (s *Store) Query(ctx context.Context, f QueryFilter) ([]Event, error) {
	if f.Limit <= 0 {
		f.Limit = defaultQueryLimit
	}
	cur, err := s.c.Find(ctx, f.match(), options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(f.Offset).
		SetLimit(f.Limit))
	if err != nil {
		return nil, err
	}
	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) CountByFilter(ctx context.Context, f QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.match())
}

// GetByUser is Query scoped to the affected user.
func (s *Store) GetByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{UserID: &userID, Limit: limit})
}
