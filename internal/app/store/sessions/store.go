// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// End reasons
const (
	EndReasonLogout     = "logout"
	EndReasonInactive   = "inactive"
	EndReasonSuperseded = "superseded"
)

// ErrNotFound is returned when no session has the given id.
var ErrNotFound = errors.New("sessions: not found")

// Session is one sign-in, from login until logout or cleanup.
type Session struct {
	ID        string `bson:"_id"`
	UserID    string `bson:"user_id"`
	CompanyID string `bson:"company_id"`

	LoginAt      time.Time  `bson:"login_at"`
	LogoutAt     *time.Time `bson:"logout_at,omitempty"`
	LastActiveAt time.Time  `bson:"last_active_at"`
	EndReason    string     `bson:"end_reason,omitempty"`

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	DurationSecs int64 `bson:"duration_secs,omitempty"`
}

// Store keeps activity sessions in the sessions collection. It satisfies
// auth.ActivityTracker.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{
		c:   db.Collection("sessions"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the lookup indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "logout_at", Value: 1}, {Key: "last_active_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_active"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "company_id", Value: 1}, {Key: "login_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Open starts a session for userID in companyID and returns its id.
// Sessions the same user left open in that company are closed first.
func (s *Store) Open(ctx context.Context, userID, companyID, ip, userAgent string) (string, error) {
	now := s.now()

	if _, err := s.closeWhere(ctx, bson.M{
		"user_id":    userID,
		"company_id": companyID,
		"logout_at":  nil,
	}, now, EndReasonSuperseded); err != nil {
		return "", err
	}

	sess := Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		CompanyID:    companyID,
		LoginAt:      now,
		LastActiveAt: now,
		IP:           ip,
		UserAgent:    userAgent,
	}
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return "", err
	}
	return sess.ID, nil
}

// Close ends the session with reason and records its duration. Closing an
// already closed session is a no-op.
func (s *Store) Close(ctx context.Context, id, reason string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess.LogoutAt != nil {
		return nil
	}
	now := s.now()
	_, err = s.c.UpdateOne(ctx,
		bson.M{"_id": id, "logout_at": nil},
		bson.M{"$set": bson.M{
			"logout_at":     now,
			"end_reason":    reason,
			"duration_secs": int64(now.Sub(sess.LoginAt).Seconds()),
		}},
	)
	return err
}

// Touch moves last_active_at to now on an open session. It reports whether
// an open session was found.
func (s *Store) Touch(ctx context.Context, id string) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "logout_at": nil},
		bson.M{"$set": bson.M{"last_active_at": s.now()}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Get loads one session.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Session{}, ErrNotFound
	}
	return sess, err
}

// ActiveByUser lists the open sessions of userID in companyID.
func (s *Store) ActiveByUser(ctx context.Context, userID, companyID string) ([]Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "login_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{
		"user_id":    userID,
		"company_id": companyID,
		"logout_at":  nil,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Session
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CloseInactive closes open sessions idle for longer than threshold and
// returns how many it closed.
func (s *Store) CloseInactive(ctx context.Context, threshold time.Duration) (int64, error) {
	now := s.now()
	return s.closeWhere(ctx, bson.M{
		"logout_at":      nil,
		"last_active_at": bson.M{"$lt": now.Add(-threshold)},
	}, now, EndReasonInactive)
}

// closeWhere closes every open session matching filter, computing each
// duration from its login time, and returns how many it closed.
func (s *Store) closeWhere(ctx context.Context, filter bson.M, now time.Time, reason string) (int64, error) {
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var closed int64
	for cur.Next(ctx) {
		var sess Session
		if err := cur.Decode(&sess); err != nil {
			return closed, err
		}
		res, err := s.c.UpdateOne(ctx,
			bson.M{"_id": sess.ID, "logout_at": nil},
			bson.M{"$set": bson.M{
				"logout_at":     now,
				"end_reason":    reason,
				"duration_secs": int64(now.Sub(sess.LoginAt).Seconds()),
			}},
		)
		if err != nil {
			return closed, err
		}
		closed += res.ModifiedCount
	}
	return closed, cur.Err()
}
