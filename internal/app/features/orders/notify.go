package orders

import (
	"context"

	"github.com/dalemusser/slothstore/internal/app/system/mailer"
	"github.com/dalemusser/slothstore/internal/app/system/pricing"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// sendConfirmation emails the order owner in the background. Failures are
// logged and counted; they never affect the placed order.
func (s *Service) sendConfirmation(o models.Order, products map[primitive.ObjectID]models.Product) {
	if s.mail == nil || s.users == nil {
		return
	}
	s.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.EmailTimeout)
		defer cancel()

		u, err := s.users.GetByID(ctx, o.UserID)
		if err != nil {
			s.log.Warn("order email: user lookup failed", zap.String("order_id", o.ID.Hex()), zap.Error(err))
			return
		}

		data := mailer.OrderConfirmationData{
			SiteName: s.opts.SiteName,
			Username: u.Username,
			OrderID:  o.ID.Hex(),
			Total:    pricing.Format(pricing.Price(o.Total)),
		}
		for _, l := range o.Products {
			row := mailer.OrderLineData{Size: l.Size, Color: l.Color, Quantity: l.Quantity, Name: "(unavailable)"}
			if p, ok := products[l.ProductID]; ok {
				row.Name = p.Name
				row.Subtotal = pricing.Format(pricing.LineSubtotal(p.Price, l.Quantity))
			}
			data.Lines = append(data.Lines, row)
		}
		if o.AddressID != nil {
			if b, err := s.addresses.GetBook(ctx, o.UserID); err == nil {
				if i := b.Find(*o.AddressID); i >= 0 {
					data.Address = formatAddress(b.Addresses[i])
				}
			}
		}

		email := mailer.BuildOrderConfirmationEmail(data)
		email.To = u.Email
		err = s.mail.Send(email)
		s.metrics.EmailSent("order_confirmation", err)
		if err != nil {
			s.log.Warn("order email: send failed", zap.String("order_id", o.ID.Hex()), zap.Error(err))
		}
	})
}
