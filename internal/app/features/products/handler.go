// internal/app/features/products/handler.go
package products

import (
	"context"
	"errors"

	productstore "github.com/dalemusser/slothstore/internal/app/store/products"
	"github.com/dalemusser/slothstore/internal/app/system/auditlog"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Catalog is the product persistence the handlers need. Both
// *productstore.Store and *productstore.Cached satisfy it.
type Catalog interface {
	List(ctx context.Context, typ string) ([]models.Product, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Create(ctx context.Context, p models.Product) (models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, upd productstore.Update) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Stats(ctx context.Context) ([]productstore.Stat, error)
}

// Handler serves the catalog endpoints.
type Handler struct {
	Catalog  Catalog
	DB       *mongo.Database
	Storage  storage.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger

	MaxImageBytes int64
}

// NewHandler constructs a products Handler.
func NewHandler(catalog Catalog, db *mongo.Database, store storage.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Catalog:       catalog,
		DB:            db,
		Storage:       store,
		AuditLog:      audit,
		Log:           logger,
		MaxImageBytes: 5 << 20,
	}
}

func parseID(raw string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	return id, err == nil
}

func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, productstore.ErrNotFound)
}

const msgProductNotFound = "Product not found"
