package orders

import (
	"context"
	"strings"

	"github.com/PabloGalante/partsdesk/internal/domain"
)

// MockStore answers order questions from fixed sample data. It is read-only
// and safe for concurrent use.
type MockStore struct {
	orders        map[string]domain.OrderStatus
	transactions  []domain.Transaction
	paymentIssues map[string]domain.PaymentIssue
	refunds       []domain.Refund
}

var _ domain.OrderStore = (*MockStore)(nil)

func NewMockStore() *MockStore {
	return &MockStore{
		orders: map[string]domain.OrderStatus{
			"123456": {
				OrderNumber:       "123456",
				Status:            "shipped",
				OrderDate:         "2025-01-20",
				Items:             []domain.OrderItem{{PartNumber: "PS11756692", Name: "Dishwasher Pump and Motor Assembly", Quantity: 1, Price: 165.99}},
				TrackingNumber:    "1Z999AA1234567890",
				EstimatedDelivery: "Tomorrow",
			},
			"789012": {
				OrderNumber: "789012",
				Status:      "processing",
				OrderDate:   "2025-01-21",
				Items: []domain.OrderItem{
					{PartNumber: "PS2061451", Name: "Refrigerator Ice Maker Assembly", Quantity: 1, Price: 124.99},
					{PartNumber: "PS2179605", Name: "Refrigerator Water Filter", Quantity: 2, Price: 49.99},
				},
				EstimatedDelivery: "3-5 business days",
			},
			"987654": {
				OrderNumber:       "987654",
				Status:            "delivered",
				OrderDate:         "2025-01-15",
				Items:             []domain.OrderItem{{PartNumber: "PS11756692", Name: "Dishwasher Pump & Motor Assembly", Quantity: 1, Price: 165.99}},
				TrackingNumber:    "1Z999AA5555666777",
				EstimatedDelivery: "Delivered January 20, 2025",
			},
			"111222": {
				OrderNumber:       "111222",
				Status:            "cancelled",
				OrderDate:         "2025-01-18",
				Items:             []domain.OrderItem{{PartNumber: "PS733947", Name: "Ice Maker Motor Kit", Quantity: 1, Price: 78.50}},
				EstimatedDelivery: "Order cancelled",
			},
			"345678": {
				OrderNumber:       "345678",
				Status:            "delivered",
				OrderDate:         "2025-01-15",
				Items:             []domain.OrderItem{{PartNumber: "PS11739132", Name: "Dishwasher Door Seal", Quantity: 1, Price: 65.25}},
				TrackingNumber:    "1Z999AA1234567891",
				EstimatedDelivery: "Delivered",
			},
		},
		transactions: []domain.Transaction{{
			ID:              "TXN123456",
			OrderNumber:     "123456",
			Subtotal:        165.99,
			Tax:             13.28,
			Shipping:        0,
			Total:           179.27,
			PaymentMethod:   "Visa ending in 4532",
			Status:          "shipped",
			CustomerName:    "John Smith",
			ShippingAddress: "123 Main St, Springfield, IL 62701",
		}},
		paymentIssues: map[string]domain.PaymentIssue{
			"TXN789012": {
				TransactionID: "TXN789012",
				IssueType:     "card_declined",
				Description:   "Your credit card was declined during checkout.",
				ResolutionSteps: []string{
					"Verify your card information is correct",
					"Check with your bank for any holds or restrictions",
					"Try using a different payment method",
					"Contact customer service at 1-866-319-8402 for assistance",
				},
			},
		},
		refunds: []domain.Refund{{
			ID:            "REF123456",
			TransactionID: "TXN123456",
			OrderNumber:   "123456",
			Reason:        "Part did not fit my dishwasher model",
			Amount:        179.27,
			Status:        "approved",
		}},
	}
}

func (s *MockStore) GetOrderStatus(_ context.Context, orderID string) (*domain.OrderStatus, error) {
	o, ok := s.orders[strings.TrimSpace(orderID)]
	if !ok {
		return nil, nil
	}
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return &o, nil
}

func (s *MockStore) GetTransactionByOrderNumber(_ context.Context, orderID string) (*domain.Transaction, error) {
	orderID = strings.TrimSpace(orderID)
	for _, t := range s.transactions {
		if t.OrderNumber == orderID {
			return &t, nil
		}
	}
	return nil, nil
}

func (s *MockStore) GetPaymentIssue(_ context.Context, transactionID string) (*domain.PaymentIssue, error) {
	p, ok := s.paymentIssues[strings.ToUpper(strings.TrimSpace(transactionID))]
	if !ok {
		return nil, nil
	}
	p.ResolutionSteps = append([]string(nil), p.ResolutionSteps...)
	return &p, nil
}

func (s *MockStore) GetRefundStatus(_ context.Context, orderID string) (*domain.Refund, error) {
	orderID = strings.TrimSpace(orderID)
	for _, r := range s.refunds {
		if r.OrderNumber == orderID {
			return &r, nil
		}
	}
	return nil, nil
}
