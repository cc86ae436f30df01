// internal/app/features/orders/service.go
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	addressstore "github.com/dalemusser/slothstore/internal/app/store/addresses"
	orderstore "github.com/dalemusser/slothstore/internal/app/store/orders"
	productstore "github.com/dalemusser/slothstore/internal/app/store/products"
	"github.com/dalemusser/slothstore/internal/app/system/authz"
	"github.com/dalemusser/slothstore/internal/app/system/mailer"
	"github.com/dalemusser/slothstore/internal/app/system/metrics"
	"github.com/dalemusser/slothstore/internal/app/system/pricing"
	"github.com/dalemusser/slothstore/internal/app/system/txn"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Catalog is the product access the order engine needs. Both
// *productstore.Store and *productstore.Cached satisfy it.
type Catalog interface {
	GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
	AdjustInventory(ctx context.Context, id primitive.ObjectID, size, color string, counter productstore.Counter, delta int) error
}

// invalidationDeferrer is implemented by caching catalogs that must not drop
// product entries until a transaction has committed.
type invalidationDeferrer interface {
	DeferInvalidation(ctx context.Context) (context.Context, func(context.Context))
}

// UserLookup resolves the recipient of order emails.
type UserLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Sender delivers email. *mailer.Mailer satisfies it.
type Sender interface {
	Send(e mailer.Email) error
}

// Options tune checkout behavior.
type Options struct {
	// AllowBackorder lets checkout drive stock negative. When false,
	// checkout rejects carts that exceed current stock.
	AllowBackorder bool
	// Transactions runs the claim and inventory writes in one Mongo
	// transaction when the deployment supports it.
	Transactions bool
	// VerifyTotal rejects a client total that differs from the computed
	// cart subtotal by more than a cent.
	VerifyTotal bool
	// SiteName appears in confirmation emails.
	SiteName string
	// EmailTimeout bounds the background confirmation send.
	EmailTimeout time.Duration
	// InventoryWorkers caps concurrent inventory writes per checkout.
	InventoryWorkers int
}

// Service implements the cart and order engine.
type Service struct {
	orders    *orderstore.Store
	catalog   Catalog
	addresses *addressstore.Store
	users     UserLookup
	client    *mongo.Client
	mail      Sender
	metrics   *metrics.Metrics
	log       *zap.Logger
	opts      Options

	// async runs background work; tests replace it to run inline.
	async func(func())
}

// NewService wires the order engine. client may be nil when transactions
// are disabled; mail may be nil to skip confirmation emails.
func NewService(db *mongo.Database, client *mongo.Client, catalog Catalog, users UserLookup, mail Sender, m *metrics.Metrics, logger *zap.Logger, opts Options) *Service {
	if opts.EmailTimeout <= 0 {
		opts.EmailTimeout = 30 * time.Second
	}
	if opts.InventoryWorkers <= 0 {
		opts.InventoryWorkers = 8
	}
	if opts.SiteName == "" {
		opts.SiteName = "SlothStore"
	}
	return &Service{
		orders:    orderstore.New(db),
		catalog:   catalog,
		addresses: addressstore.New(db),
		users:     users,
		client:    client,
		mail:      mail,
		metrics:   m,
		log:       logger,
		opts:      opts,
		async:     func(fn func()) { go fn() },
	}
}

// CartResult is the outcome of a cart write.
type CartResult struct {
	Order        *models.Order
	Created      bool
	LinesChanged bool
}

// MergeCart adds quantity deltas to the user's active cart, creating the
// cart when needed.
func (s *Service) MergeCart(ctx context.Context, userID primitive.ObjectID, deltas []LineDelta) (CartResult, error) {
	return s.writeCart(ctx, userID, deltas, mergeLines, "merge")
}

// SetCartQuantities sets absolute line quantities on the user's active cart.
func (s *Service) SetCartQuantities(ctx context.Context, userID primitive.ObjectID, deltas []LineDelta) (CartResult, error) {
	return s.writeCart(ctx, userID, deltas, setLines, "set")
}

func (s *Service) writeCart(ctx context.Context, userID primitive.ObjectID, deltas []LineDelta, apply func([]models.OrderLine, []LineDelta) []models.OrderLine, mode string) (CartResult, error) {
	known, err := s.knownDeltas(ctx, deltas)
	if err != nil {
		return CartResult{}, err
	}

	// A cart checked out between the read and the write is gone; the
	// next attempt creates a fresh one.
	for attempt := 0; ; attempt++ {
		cart, created, err := s.orders.GetOrCreateCart(ctx, userID)
		if err != nil {
			return CartResult{}, err
		}
		lines := apply(cart.Products, known)
		saved, err := s.orders.SaveCartLines(ctx, cart.ID, lines)
		if errors.Is(err, orderstore.ErrNotFound) && attempt < 2 {
			continue
		}
		if err != nil {
			return CartResult{}, err
		}
		s.metrics.CartUpdated(mode)
		return CartResult{
			Order:        saved,
			Created:      created,
			LinesChanged: len(cart.Products) != len(saved.Products),
		}, nil
	}
}

// knownDeltas drops deltas for products that do not exist.
func (s *Service) knownDeltas(ctx context.Context, deltas []LineDelta) ([]LineDelta, error) {
	if len(deltas) == 0 {
		return nil, nil
	}
	ids := make([]primitive.ObjectID, 0, len(deltas))
	for _, d := range deltas {
		ids = append(ids, d.ProductID)
	}
	products, err := s.catalog.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]LineDelta, 0, len(deltas))
	for _, d := range deltas {
		if _, ok := products[d.ProductID]; !ok {
			s.log.Warn("cart: product not found, skipping", zap.String("product_id", d.ProductID.Hex()))
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// GetCart returns the user's active cart with products, address and a
// computed subtotal.
func (s *Service) GetCart(ctx context.Context, userID primitive.ObjectID) (OrderView, error) {
	cart, err := s.orders.FindActiveCart(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return OrderView{}, ErrNoActiveCart
	}
	if err != nil {
		return OrderView{}, err
	}
	views, err := s.populate(ctx, []models.Order{*cart})
	if err != nil {
		return OrderView{}, err
	}
	v := views[0]
	v.Subtotal = pricing.Format(v.subtotal)
	return v, nil
}

// PlaceInput is a checkout request. A nil Total uses the computed subtotal.
type PlaceInput struct {
	Total     *float64
	AddressID primitive.ObjectID
}

// PlaceOrder checks out the user's active cart. The cart is claimed with a
// conditional write so a cart is placed at most once; stock is then
// decremented per line. Confirmation email is sent in the background.
func (s *Service) PlaceOrder(ctx context.Context, userID primitive.ObjectID, in PlaceInput) (*models.Order, error) {
	cart, err := s.orders.FindActiveCart(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoActiveCart
	}
	if err != nil {
		return nil, err
	}
	if len(cart.Products) == 0 {
		return nil, ErrEmptyCart
	}

	ok, err := s.addresses.Has(ctx, userID, in.AddressID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidAddress
	}

	products, err := s.catalog.GetMany(ctx, productIDs(cart.Products))
	if err != nil {
		return nil, err
	}
	computed := pricing.CartTotal(cart.Products, products)
	total := pricing.Float(computed)
	if in.Total != nil {
		if *in.Total < 0 {
			return nil, ErrNegativeTotal
		}
		if s.opts.VerifyTotal && !pricing.Matches(*in.Total, computed) {
			return nil, ErrTotalMismatch
		}
		total = *in.Total
	}

	short := shortfalls(cart.Products, products)
	if len(short) > 0 {
		if !s.opts.AllowBackorder {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, strings.Join(short, ", "))
		}
		for _, v := range short {
			s.metrics.Backorder()
			s.log.Warn("checkout: stock goes negative", zap.String("order_id", cart.ID.Hex()), zap.String("variant", v))
		}
	}

	var placed *models.Order
	place := func(ctx context.Context, concurrent bool) error {
		o, err := s.orders.ClaimForCheckout(ctx, cart.ID, total, in.AddressID)
		if err != nil {
			return err
		}
		placed = o
		return s.adjustLines(ctx, o.Products, productstore.Stock, -1, concurrent, "checkout")
	}

	transactional := false
	if s.opts.Transactions && s.client != nil {
		runCtx, flush := ctx, func(context.Context) {}
		if d, ok := s.catalog.(invalidationDeferrer); ok {
			runCtx, flush = d.DeferInvalidation(ctx)
		}
		fellBack, err := txn.Run(runCtx, s.client, func(ctx context.Context) error {
			// A session is not safe for concurrent use.
			return place(ctx, false)
		})
		flush(ctx)
		transactional = !fellBack
		err = s.claimErr(err)
		if err != nil {
			return nil, err
		}
	} else if err := s.claimErr(place(ctx, true)); err != nil {
		return nil, err
	}

	s.metrics.OrderPlaced(placed.Total, transactional)
	s.sendConfirmation(*placed, products)
	return placed, nil
}

func (s *Service) claimErr(err error) error {
	if errors.Is(err, orderstore.ErrNotFound) {
		return ErrNoActiveCart
	}
	return err
}

// shortfalls lists variants whose current stock does not cover the cart.
// Lines for missing products or entries are ignored.
func shortfalls(lines []models.OrderLine, products map[primitive.ObjectID]models.Product) []string {
	type key struct {
		id          primitive.ObjectID
		size, color string
	}
	want := map[key]int{}
	var order []key
	for _, l := range lines {
		k := key{l.ProductID, l.Size, l.Color}
		if _, seen := want[k]; !seen {
			order = append(order, k)
		}
		want[k] += l.Quantity
	}

	var out []string
	for _, k := range order {
		p, ok := products[k.id]
		if !ok {
			continue
		}
		for _, it := range p.Inventory {
			if it.Size == k.size && it.Color == k.color && it.Stock < want[k] {
				out = append(out, fmt.Sprintf("%s (%s/%s)", p.Name, k.size, k.color))
			}
		}
	}
	return out
}

// adjustLines adds sign*quantity to counter for every line. Missing
// products or inventory entries are logged and skipped.
func (s *Service) adjustLines(ctx context.Context, lines []models.OrderLine, counter productstore.Counter, sign int, concurrent bool, op string) error {
	adjust := func(ctx context.Context, l models.OrderLine) error {
		err := s.catalog.AdjustInventory(ctx, l.ProductID, l.Size, l.Color, counter, sign*l.Quantity)
		if errors.Is(err, productstore.ErrNoInventory) {
			s.metrics.InventorySkipped(op)
			s.log.Warn("inventory entry not found, skipping",
				zap.String("op", op),
				zap.String("product_id", l.ProductID.Hex()),
				zap.String("size", l.Size),
				zap.String("color", l.Color))
			return nil
		}
		return err
	}

	if !concurrent {
		for _, l := range lines {
			if err := adjust(ctx, l); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.InventoryWorkers)
	for _, l := range lines {
		l := l
		g.Go(func() error { return adjust(gctx, l) })
	}
	return g.Wait()
}

// StatusChange is the outcome of UpdateStatus.
type StatusChange struct {
	Order   *models.Order
	From    models.OrderStatus
	Changed bool
}

// UpdateStatus moves an order to status. Non-admin actors may only change
// their own orders. Cancelling restores stock and approving counts the
// lines as sold. Changed is false when the order already had status.
func (s *Service) UpdateStatus(ctx context.Context, actor authz.Actor, orderID primitive.ObjectID, status models.OrderStatus) (StatusChange, error) {
	if !status.Valid() {
		return StatusChange{}, ErrInvalidStatus
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return StatusChange{}, ErrOrderNotFound
	}
	if err != nil {
		return StatusChange{}, err
	}
	if !actor.CanAccess(o.UserID) {
		return StatusChange{}, ErrOrderNotFound
	}
	from := o.Status
	if from == status {
		return StatusChange{Order: o, From: from}, nil
	}

	switch err := s.orders.TransitionStatus(ctx, o.ID, from, status); {
	case errors.Is(err, orderstore.ErrStatusChanged):
		return StatusChange{}, ErrStatusConflict
	case errors.Is(err, orderstore.ErrActiveCartExists):
		return StatusChange{}, ErrSecondCart
	case err != nil:
		return StatusChange{}, err
	}

	switch status {
	case models.OrderCancelled:
		err = s.adjustLines(ctx, o.Products, productstore.Stock, 1, true, "cancel")
	case models.OrderApproved:
		err = s.adjustLines(ctx, o.Products, productstore.Sold, 1, true, "approve")
	}
	if err != nil {
		return StatusChange{}, err
	}

	s.metrics.StatusChanged(status.String())
	o.Status = status
	return StatusChange{Order: o, From: from, Changed: true}, nil
}

// History lists the orders of userID in history statuses, newest first.
// A nil userID lists every user's orders.
func (s *Service) History(ctx context.Context, userID *primitive.ObjectID) ([]OrderView, error) {
	orders, err := s.orders.ListByStatus(ctx, userID, models.HistoryStatuses)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, orders)
}

func productIDs(lines []models.OrderLine) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}
