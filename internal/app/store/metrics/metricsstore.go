package metricsstore

import (
	"context"

	"github.com/dalemusser/slothstore/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of totals used by the admin stats view and the
// Prometheus gauges.
type Counts struct {
	Users           int64 `json:"users"`
	Admins          int64 `json:"admins"`
	Products        int64 `json:"products"`
	ActiveCarts     int64 `json:"activeCarts"`
	PlacedOrders    int64 `json:"placedOrders"`
	ApprovedOrders  int64 `json:"approvedOrders"`
	CancelledOrders int64 `json:"cancelledOrders"`
}

// FetchCounts returns the store-wide totals.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchCounts(ctx context.Context, db *mongo.Database) Counts {
	var out Counts

	if n, err := db.Collection("users").CountDocuments(ctx, bson.M{}); err == nil {
		out.Users = n
	}
	if n, err := db.Collection("users").CountDocuments(ctx, bson.M{"role": models.RoleAdmin}); err == nil {
		out.Admins = n
	}
	if n, err := db.Collection("products").CountDocuments(ctx, bson.M{}); err == nil {
		out.Products = n
	}

	byStatus := map[models.OrderStatus]*int64{
		models.OrderCart:      &out.ActiveCarts,
		models.OrderPlaced:    &out.PlacedOrders,
		models.OrderApproved:  &out.ApprovedOrders,
		models.OrderCancelled: &out.CancelledOrders,
	}
	cur, err := db.Collection("orders").Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var row struct {
			Status models.OrderStatus `bson:"_id"`
			N      int64              `bson:"n"`
		}
		if cur.Decode(&row) != nil {
			continue
		}
		if dst, ok := byStatus[row.Status]; ok {
			*dst = row.N
		}
	}

	return out
}
