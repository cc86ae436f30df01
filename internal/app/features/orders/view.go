package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	addressstore "github.com/dalemusser/slothstore/internal/app/store/addresses"
	"github.com/dalemusser/slothstore/internal/app/system/pricing"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineView is an order line with its product embedded. Product is nil when
// the product no longer exists.
type LineView struct {
	Product  *models.Product `json:"id"`
	Quantity int             `json:"quantity"`
	Size     string          `json:"size"`
	Color    string          `json:"color"`
}

// OrderView is an order with products and address resolved.
type OrderView struct {
	ID        primitive.ObjectID `json:"_id"`
	UserID    primitive.ObjectID `json:"user"`
	Products  []LineView         `json:"products"`
	Address   *models.Address    `json:"address"`
	Total     float64            `json:"total"`
	Status    models.OrderStatus `json:"status"`
	PlacedAt  *time.Time         `json:"placedAt,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Subtotal  string             `json:"subtotal,omitempty"`

	subtotal decimal.Decimal
}

// populate resolves products and addresses for orders with one product
// query and one address book read per distinct owner.
func (s *Service) populate(ctx context.Context, orders []models.Order) ([]OrderView, error) {
	var ids []primitive.ObjectID
	owners := map[primitive.ObjectID]bool{}
	for _, o := range orders {
		ids = append(ids, productIDs(o.Products)...)
		if o.AddressID != nil {
			owners[o.UserID] = true
		}
	}

	products := map[primitive.ObjectID]models.Product{}
	if len(ids) > 0 {
		var err error
		if products, err = s.catalog.GetMany(ctx, ids); err != nil {
			return nil, err
		}
	}

	books := map[primitive.ObjectID]*models.AddressBook{}
	for uid := range owners {
		b, err := s.addresses.GetBook(ctx, uid)
		if errors.Is(err, addressstore.ErrBookNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		books[uid] = b
	}

	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		v := OrderView{
			ID:        o.ID,
			UserID:    o.UserID,
			Products:  make([]LineView, 0, len(o.Products)),
			Total:     o.Total,
			Status:    o.Status,
			PlacedAt:  o.PlacedAt,
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.UpdatedAt,
			subtotal:  pricing.CartTotal(o.Products, products),
		}
		for _, l := range o.Products {
			lv := LineView{Quantity: l.Quantity, Size: l.Size, Color: l.Color}
			if p, ok := products[l.ProductID]; ok {
				p := p
				lv.Product = &p
			}
			v.Products = append(v.Products, lv)
		}
		if b := books[o.UserID]; b != nil && o.AddressID != nil {
			if i := b.Find(*o.AddressID); i >= 0 {
				a := b.Addresses[i]
				v.Address = &a
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func formatAddress(a models.Address) string {
	parts := []string{a.FullName, a.PhoneNumber, a.Street, a.Ward, a.District, a.Province}
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
