package txn_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dalemusser/slothstore/internal/app/system/txn"
	"github.com/dalemusser/slothstore/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unrelated", errors.New("connection reset by peer"), false},
		{"IllegalOperation code", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}, true},
		{"legacy code 51", mongo.CommandError{Code: 51}, true},
		{"code 263", mongo.CommandError{Code: 263}, true},
		{"duplicate key is not it", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key"}, false},
		{"wrapped command error", fmt.Errorf("claim cart: %w", mongo.CommandError{Code: 20}), true},
		{"standalone message", errors.New("Transaction numbers are only allowed on a Replica Set member"), true},
		{"sessions unsupported", errors.New("sessions are not supported by the MongoDB cluster"), true},
		{"transaction alone", errors.New("transaction aborted"), false},
		{"illegal operation text", errors.New("Illegal Operation"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := txn.IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRun_CommitsOrFallsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection("txn_check")
	calls := 0
	fellBack, err := txn.Run(ctx, db.Client(), func(ctx context.Context) error {
		calls++
		_, err := coll.InsertOne(ctx, bson.M{"n": calls})
		return err
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	n, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if want := !testutil.SupportsTransactions(t, db); fellBack != want {
		t.Errorf("fellBack = %v, want %v", fellBack, want)
	}
	if n < 1 {
		t.Errorf("expected the write to land, found %d documents", n)
	}
}

func TestRun_AbortsOnError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	if !testutil.SupportsTransactions(t, db) {
		t.Skip("transactions need a replica set")
	}
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection("txn_check")
	boom := errors.New("boom")
	_, err := txn.Run(ctx, db.Client(), func(ctx context.Context) error {
		if _, err := coll.InsertOne(ctx, bson.M{"n": 1}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if n, _ := coll.CountDocuments(ctx, bson.M{}); n != 0 {
		t.Errorf("aborted transaction left %d documents", n)
	}
}
