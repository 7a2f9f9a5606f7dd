package service

import (
	"context"
	"errors"
	"time"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

var ErrSaveInProgress = apperrors.NewConflictError("Order is already being saved.")

// TicketView is a ticket with its totals and their display amounts.
type TicketView struct {
	*models.Ticket
	Totals  models.OrderTotal     `json:"totals"`
	Display models.AmountsDisplay `json:"display"`
}

// AddLineRequest adds one unit of a menu item variant.
type AddLineRequest struct {
	ItemID      string `json:"itemId"`
	VariantName string `json:"variantName"`
}

// SetQuantityRequest sets the quantity of a line; zero or less removes it.
type SetQuantityRequest struct {
	ItemID      string `json:"itemId"`
	VariantName string `json:"variantName"`
	Quantity    int    `json:"quantity"`
}

// CheckoutService drives the in-progress order of each session from
// building through payment confirmation to a saved order.
type CheckoutService struct {
	tickets    repository.TicketStore
	menuRepo   repository.MenuRepository
	orders     *OrderService
	profiles   *ProfileService
	pricing    *PricingEngine
	currencies *CurrencyTable
	metrics    *metrics.Metrics
	config     *config.Config
	locks      *keyedMutex
	logger     *logging.LoggerV2
	now        func() time.Time
}

func NewCheckoutService(
	tickets repository.TicketStore,
	menuRepo repository.MenuRepository,
	orders *OrderService,
	profiles *ProfileService,
	pricing *PricingEngine,
	currencies *CurrencyTable,
	m *metrics.Metrics,
	cfg *config.Config,
) *CheckoutService {
	return &CheckoutService{
		tickets:    tickets,
		menuRepo:   menuRepo,
		orders:     orders,
		profiles:   profiles,
		pricing:    pricing,
		currencies: currencies,
		metrics:    m,
		config:     cfg,
		locks:      newKeyedMutex(),
		logger:     logging.NewLoggerV2("checkout-service"),
		now:        time.Now,
	}
}

// Get returns the session's ticket, empty if none was started.
func (s *CheckoutService) Get(ctx context.Context, session *models.Session) (*TicketView, error) {
	unlock := s.locks.Lock(session.UserID)
	defer unlock()

	ticket, err := s.load(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, ticket), nil
}

// AddLine adds one unit of the given variant of one of the user's menu items.
func (s *CheckoutService) AddLine(ctx context.Context, session *models.Session, req AddLineRequest) (*TicketView, error) {
	if req.VariantName == "" {
		return nil, models.ErrVariantRequired
	}

	item, err := s.menuRepo.GetByID(ctx, session.UserID, req.ItemID)
	if err != nil {
		return nil, err
	}
	variant := item.Variant(req.VariantName)
	if variant == nil {
		return nil, apperrors.NewValidationError("selectedVariant", "Unknown variant: "+req.VariantName)
	}

	return s.mutate(ctx, session, func(t *models.Ticket) error {
		return t.AddLine(item, variant)
	})
}

// SetQuantity sets or removes a line.
func (s *CheckoutService) SetQuantity(ctx context.Context, session *models.Session, req SetQuantityRequest) (*TicketView, error) {
	return s.mutate(ctx, session, func(t *models.Ticket) error {
		return t.SetQuantity(req.ItemID, req.VariantName, req.Quantity)
	})
}

// SetCustomer replaces the customer details.
func (s *CheckoutService) SetCustomer(ctx context.Context, session *models.Session, customer models.Customer) (*TicketView, error) {
	return s.mutate(ctx, session, func(t *models.Ticket) error {
		return t.SetCustomer(customer)
	})
}

// SetTax toggles tax inclusion.
func (s *CheckoutService) SetTax(ctx context.Context, session *models.Session, included bool) (*TicketView, error) {
	return s.mutate(ctx, session, func(t *models.Ticket) error {
		return t.SetTaxIncluded(included)
	})
}

// SetCurrency changes the display currency.
func (s *CheckoutService) SetCurrency(ctx context.Context, session *models.Session, code string) (*TicketView, error) {
	currency, err := s.currencies.Lookup(code)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, session, func(t *models.Ticket) error {
		return t.SetCurrency(currency)
	})
}

// Clear empties the ticket.
func (s *CheckoutService) Clear(ctx context.Context, session *models.Session) (*TicketView, error) {
	return s.mutate(ctx, session, func(t *models.Ticket) error {
		return t.Clear()
	})
}

// Proceed freezes the totals and moves the ticket to awaiting payment.
func (s *CheckoutService) Proceed(ctx context.Context, session *models.Session) (*TicketView, error) {
	view, err := s.mutate(ctx, session, func(t *models.Ticket) error {
		if len(t.Lines) == 0 {
			return models.ErrEmptyTicket
		}
		if s.config.Features.RequireCustomerDetails && t.Mutable() {
			if err := ValidateCustomer(t.Customer); err != nil {
				return err
			}
		}
		quote := s.pricing.Calculate(t.Lines, t.TaxIncluded, s.profiles.ForPricing(ctx, t.UserID))
		return t.BeginPayment(quote)
	})
	if err != nil {
		s.metrics.CheckoutRejected(rejectionReason(err))
		return nil, err
	}

	s.logger.Info("Awaiting payment", logging.Fields{
		"user_id": session.UserID,
		"total":   view.Totals.Total,
	})
	return view, nil
}

// Cancel returns an awaiting-payment ticket to building.
func (s *CheckoutService) Cancel(ctx context.Context, session *models.Session) (*TicketView, error) {
	return s.mutate(ctx, session, func(t *models.Ticket) error {
		return t.CancelPayment()
	})
}

// Pay saves the frozen order with the chosen payment method and resets the
// ticket. If the save fails the ticket stays awaiting payment.
func (s *CheckoutService) Pay(ctx context.Context, session *models.Session, method models.PaymentMethod) (*models.Order, *TicketView, error) {
	if !method.Valid() {
		return nil, nil, apperrors.NewValidationError("paymentMethod", "Payment method must be cash, upi or card.")
	}

	unlock := s.locks.Lock(session.UserID)
	defer unlock()

	ticket, err := s.load(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	if ticket.State != models.TicketAwaitingPayment || ticket.Quote == nil {
		s.metrics.CheckoutRejected("not_awaiting_payment")
		return nil, nil, apperrors.NewConflictError("Order is not awaiting payment.")
	}

	lockToken, acquired, err := s.tickets.AcquireSubmitLock(ctx, session.UserID, s.config.Billing.SubmitLockTTL)
	if err != nil {
		return nil, nil, err
	}
	if !acquired {
		s.metrics.CheckoutRejected("save_in_progress")
		return nil, nil, ErrSaveInProgress
	}
	defer func() {
		if err := s.tickets.ReleaseSubmitLock(context.Background(), session.UserID, lockToken); err != nil {
			s.logger.Warn("Failed to release submit lock", logging.Fields{
				"user_id": session.UserID,
				"error":   err.Error(),
			})
		}
	}()

	// The save and the ticket reset outlive the request.
	ctx = context.WithoutCancel(ctx)

	order := orderFromTicket(ticket, method)
	if err := s.orders.Place(ctx, order); err != nil {
		s.metrics.CheckoutRejected("save_failed")
		return nil, nil, err
	}

	ticket.Complete()
	if err := s.save(ctx, ticket); err != nil {
		s.logger.Error("Order saved but ticket reset failed", logging.Fields{
			"user_id":  session.UserID,
			"order_id": order.ID,
			"error":    err.Error(),
		})
		if err := s.tickets.Delete(ctx, session.UserID); err != nil {
			s.logger.Error("Failed to drop ticket", logging.Fields{"user_id": session.UserID, "error": err.Error()})
		}
	}

	return order, s.view(ctx, ticket), nil
}

// Discard drops the session's ticket entirely.
func (s *CheckoutService) Discard(ctx context.Context, userID string) error {
	unlock := s.locks.Lock(userID)
	defer unlock()
	return s.tickets.Delete(ctx, userID)
}

func (s *CheckoutService) mutate(ctx context.Context, session *models.Session, fn func(*models.Ticket) error) (*TicketView, error) {
	unlock := s.locks.Lock(session.UserID)
	defer unlock()

	ticket, err := s.load(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if err := fn(ticket); err != nil {
		return nil, err
	}
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	return s.view(ctx, ticket), nil
}

func (s *CheckoutService) load(ctx context.Context, userID string) (*models.Ticket, error) {
	ticket, err := s.tickets.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		ticket = models.NewTicket(userID, models.BaseCurrency)
	}
	return ticket, nil
}

func (s *CheckoutService) save(ctx context.Context, ticket *models.Ticket) error {
	ticket.UpdatedAt = s.now().UTC()
	return s.tickets.Save(ctx, ticket)
}

// view prices a building ticket live and an awaiting ticket from its quote.
func (s *CheckoutService) view(ctx context.Context, ticket *models.Ticket) *TicketView {
	var totals models.OrderTotal
	if ticket.Quote != nil {
		totals = *ticket.Quote
	} else if len(ticket.Lines) > 0 {
		totals = s.pricing.Calculate(ticket.Lines, ticket.TaxIncluded, s.profiles.ForPricing(ctx, ticket.UserID))
	} else {
		totals = models.OrderTotal{TaxIncluded: ticket.TaxIncluded}
	}

	cur := ticket.Currency.OrBase()
	return &TicketView{
		Ticket: ticket,
		Totals: totals,
		Display: models.AmountsDisplay{
			Currency: cur,
			Subtotal: cur.Display(totals.Subtotal),
			Tax:      cur.Display(totals.Tax),
			Total:    cur.Display(totals.Total),
		},
	}
}

func orderFromTicket(t *models.Ticket, method models.PaymentMethod) *models.Order {
	lines := make([]models.OrderLine, len(t.Lines))
	copy(lines, t.Lines)
	return &models.Order{
		UserID:        t.UserID,
		Customer:      t.Customer,
		Items:         lines,
		Subtotal:      t.Quote.Subtotal,
		Tax:           t.Quote.Tax,
		Total:         t.Quote.Total,
		TaxRate:       t.Quote.TaxRate,
		Currency:      t.Currency.OrBase(),
		PaymentMethod: method,
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, models.ErrEmptyTicket):
		return "empty_ticket"
	case apperrors.IsValidation(err):
		return "invalid"
	case errors.Is(err, apperrors.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
