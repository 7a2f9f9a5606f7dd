package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/clients"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

// amountTolerance is how far client totals may drift from the server's.
const amountTolerance = 0.01

const dayLayout = "2006-01-02"

// OrderQuery is an order listing request as received from a client.
type OrderQuery struct {
	models.ListParams
	PaymentFilter string
	FilterType    models.DateFilterType
	SingleDate    string
	DateStart     string
	DateEnd       string
}

// OrderService handles order business logic.
type OrderService struct {
	orderRepo  repository.OrderRepository
	profiles   *ProfileService
	pricing    *PricingEngine
	currencies *CurrencyTable
	notifier   SMSSender
	publisher  EventPublisher
	metrics    *metrics.Metrics
	config     *config.Config
	logger     *logging.LoggerV2
	now        func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	profiles *ProfileService,
	pricing *PricingEngine,
	currencies *CurrencyTable,
	notifier SMSSender,
	publisher EventPublisher,
	m *metrics.Metrics,
	cfg *config.Config,
) *OrderService {
	return &OrderService{
		orderRepo:  orderRepo,
		profiles:   profiles,
		pricing:    pricing,
		currencies: currencies,
		notifier:   notifier,
		publisher:  publisher,
		metrics:    m,
		config:     cfg,
		logger:     logging.NewLoggerV2("order-service"),
		now:        time.Now,
	}
}

// Place persists a priced order and fires the post-save side effects. The
// order is unchanged if the store rejects it.
func (s *OrderService) Place(ctx context.Context, order *models.Order) error {
	s.logger.Info("Creating order", logging.Fields{
		"user_id":    order.UserID,
		"item_count": len(order.Items),
	})

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error("Failed to create order", logging.Fields{
			"user_id": order.UserID,
			"error":   err.Error(),
		})
		return err
	}

	s.metrics.ObserveOrder(order)

	if s.config.Features.EnableOrderEvents {
		if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
			// Log but don't fail
			s.logger.Error("Failed to publish order created event", logging.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	}

	if s.config.Features.EnableSMSReceipts && order.Customer.Mobile != "" {
		receipt := *order
		go s.sendReceipt(context.Background(), &receipt)
	}

	s.logger.Info("Order created successfully", logging.Fields{
		"order_id": order.ID,
		"total":    order.Total,
	})
	return nil
}

// Create saves an order priced by the client after checking its totals
// against the server's computation.
func (s *OrderService) Create(ctx context.Context, session *models.Session, req *models.CreateOrderRequest) (*models.Order, error) {
	if err := ValidateCreateOrderRequest(req, s.config.Features.RequireCustomerDetails); err != nil {
		return nil, err
	}

	currency := models.BaseCurrency
	if !req.Currency.IsZero() {
		c, err := s.currencies.Lookup(req.Currency.Code)
		if err != nil {
			return nil, err
		}
		currency = c
	}

	subtotal := s.pricing.Subtotal(req.Items)
	tax := 0.0
	if req.Tax != 0 {
		tax = subtotal * req.TaxRate
	}
	total := subtotal + tax

	if !closeTo(subtotal, req.Subtotal) || !closeTo(tax, req.Tax) || !closeTo(total, req.Total) {
		s.logger.Warn("Rejected order with mismatched totals", logging.Fields{
			"user_id":         session.UserID,
			"client_total":    req.Total,
			"computed_total":  total,
			"client_subtotal": req.Subtotal,
		})
		return nil, apperrors.NewValidationError("total", "Order totals do not match its items.")
	}

	order := &models.Order{
		UserID:        session.UserID,
		Customer:      req.Customer,
		Items:         req.Items,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         total,
		TaxRate:       req.TaxRate,
		Currency:      currency,
		PaymentMethod: req.PaymentMethod,
	}
	if err := s.Place(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Get returns one of the session user's orders.
func (s *OrderService) Get(ctx context.Context, session *models.Session, id string) (models.OrderView, error) {
	order, err := s.orderRepo.GetByID(ctx, session.UserID, id)
	if err != nil {
		return models.OrderView{}, err
	}
	return models.NewOrderView(order), nil
}

// List returns a page of the session user's orders.
func (s *OrderService) List(ctx context.Context, session *models.Session, q OrderQuery) (models.Page[models.OrderView], error) {
	filter, err := s.ResolveFilter(session.UserID, q)
	if err != nil {
		return models.Page[models.OrderView]{}, err
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return models.Page[models.OrderView]{}, err
	}
	return models.NewPage(toViews(orders), filter.ListParams, total), nil
}

// Count returns how many orders the session user has.
func (s *OrderService) Count(ctx context.Context, session *models.Session) (int, error) {
	return s.orderRepo.CountByUser(ctx, session.UserID)
}

// Export writes every order matching q as CSV.
func (s *OrderService) Export(ctx context.Context, session *models.Session, q OrderQuery, w io.Writer) error {
	q.Limit = 0
	q.Page = 1
	filter, err := s.ResolveFilter(session.UserID, q)
	if err != nil {
		return err
	}

	orders, _, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return err
	}

	s.logger.Info("Exporting orders", logging.Fields{
		"user_id": session.UserID,
		"count":   len(orders),
	})
	return WriteOrdersCSV(w, orders)
}

// ListAll returns every order newest first, optionally for one user.
func (s *OrderService) ListAll(ctx context.Context, userID string) ([]models.OrderView, error) {
	orders, err := s.orderRepo.ListAll(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return toViews(orders), nil
}

// ResolveFilter turns a client query into a repository filter. Date ranges
// are half-open: From inclusive, To exclusive.
func (s *OrderService) ResolveFilter(userID string, q OrderQuery) (models.OrderFilter, error) {
	filter := models.OrderFilter{ListParams: q.ListParams, UserID: userID}
	if filter.SortBy == "" {
		filter.SortBy = "date"
	}

	switch pf := strings.ToLower(strings.TrimSpace(q.PaymentFilter)); pf {
	case "", "all":
	default:
		method := models.PaymentMethod(pf)
		if !method.Valid() {
			return filter, apperrors.NewValidationError("paymentFilter", "Unknown payment method: "+q.PaymentFilter)
		}
		filter.PaymentMethod = method
	}

	from, to, err := s.dateRange(q)
	if err != nil {
		return filter, err
	}
	filter.From, filter.To = from, to

	if search := strings.TrimSpace(q.Search); search != "" {
		filter.Search = search
		if amount, err := strconv.ParseFloat(search, 64); err == nil && !math.IsNaN(amount) && !math.IsInf(amount, 0) {
			rounded := math.Round(amount*100) / 100
			filter.SearchAmount = &rounded
		}
	}
	return filter, nil
}

func (s *OrderService) dateRange(q OrderQuery) (*time.Time, *time.Time, error) {
	switch q.FilterType {
	case models.DateFilterNone:
		return nil, nil, nil
	case models.DateFilterToday:
		now := s.now()
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 0, 1)
		return &start, &end, nil
	case models.DateFilterSingle:
		if strings.TrimSpace(q.SingleDate) == "" {
			return nil, nil, nil
		}
		day, err := parseDay("singleDate", q.SingleDate)
		if err != nil {
			return nil, nil, err
		}
		end := day.AddDate(0, 0, 1)
		return &day, &end, nil
	case models.DateFilterRange:
		var from, to *time.Time
		if q.DateStart != "" {
			start, err := parseDay("dateStart", q.DateStart)
			if err != nil {
				return nil, nil, err
			}
			from = &start
		}
		if q.DateEnd != "" {
			end, err := parseDay("dateEnd", q.DateEnd)
			if err != nil {
				return nil, nil, err
			}
			end = end.AddDate(0, 0, 1)
			to = &end
		}
		if from != nil && to != nil && !from.Before(*to) {
			return nil, nil, apperrors.NewValidationError("dateStart", "Start date cannot be after end date.")
		}
		return from, to, nil
	default:
		return nil, nil, apperrors.NewValidationError("filterType", "Unknown date filter: "+string(q.FilterType))
	}
}

func parseDay(field, value string) (time.Time, error) {
	day, err := time.ParseInLocation(dayLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(field, "Dates must be formatted YYYY-MM-DD.")
	}
	return day, nil
}

func (s *OrderService) sendReceipt(ctx context.Context, order *models.Order) {
	ctx, cancel := context.WithTimeout(ctx, s.config.NotificationService.Timeout)
	defer cancel()

	restaurant := models.NewDefaultProfile(order.UserID).RestaurantName
	if p := s.profiles.ForPricing(ctx, order.UserID); p != nil {
		restaurant = p.RestaurantName
	}

	req := &clients.SMSRequest{
		To:        order.Customer.Mobile,
		Message:   ReceiptMessage(restaurant, order),
		Reference: order.ID,
	}
	if err := s.notifier.SendSMS(ctx, req); err != nil {
		s.logger.Error("Failed to send SMS receipt", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}
}

// ReceiptMessage is the SMS text sent for a saved order.
func ReceiptMessage(restaurant string, order *models.Order) string {
	return fmt.Sprintf("Thank you for dining at %s! Order %s: %s paid by %s.",
		restaurant, shortID(order.ID), order.Currency.DisplayWithSymbol(order.Total), order.PaymentMethod)
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < amountTolerance
}

func toViews(orders []*models.Order) []models.OrderView {
	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, models.NewOrderView(o))
	}
	return views
}
