// Package txn runs MongoDB multi-document transactions and detects servers
// that cannot run them (standalone mongod).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Command error codes returned when transactions are unavailable.
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation
	51:  true, // IllegalOperation on older servers
	263: true, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err means the deployment cannot run
// transactions, so the caller should retry without one.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if notSupportedCodes[ce.Code] {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	hasTxn := strings.Contains(msg, "transaction")
	switch {
	case hasTxn && strings.Contains(msg, "replica set"):
		return true
	case hasTxn && strings.Contains(msg, "session"):
		return true
	case strings.Contains(msg, "session") && strings.Contains(msg, "not supported"):
		return true
	case strings.Contains(msg, "illegal operation"):
		return true
	}
	return false
}

// Run executes fn inside a transaction on client. When the deployment does
// not support transactions, fn is run again without one and fellBack is true.
// fn must be safe to run twice.
func Run(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) (fellBack bool, err error) {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return true, fn(ctx)
		}
		return false, err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return true, fn(ctx)
	}
	return false, err
}
