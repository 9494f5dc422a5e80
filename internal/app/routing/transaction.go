package routing

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/partsdesk/internal/app/intent"
	"github.com/PabloGalante/partsdesk/internal/domain"
	"github.com/PabloGalante/partsdesk/internal/observability"
)

const (
	askOrderNumber = "I can help you check your order status. Could you please provide your order number? It's typically a 6-digit number found in your confirmation email or PartSelect account."

	askTransactionID = "I can help you with payment issues. Please provide your transaction ID or order number so I can look up the specific problem and guide you through the resolution."

	askRefundOrder = "I can help you with refunds and returns. Please provide your order number so I can look up your purchase and assist you with the return process."

	startRefund = "I can help you initiate a refund. Please provide the reason for the return and I'll start the process for you."

	orderLookupUnavailable = "I'm having trouble looking up order details right now. Please try again in a few minutes, or call PartSelect at " + ContactPhone + "."
)

// transactionStrategy answers order status, payment and refund questions.
// Only the first matching branch runs.
type transactionStrategy struct {
	orders domain.OrderStore
}

func (s *transactionStrategy) Name() string { return "transaction" }

func (s *transactionStrategy) Run(ctx context.Context, in *Input) (Outcome, error) {
	var (
		text string
		err  error
	)
	switch in.Signals.Transaction {
	case intent.TagOrderInquiry:
		text, err = s.orderStatus(ctx, in.Entities.OrderNumber)
	case intent.TagTransactionIssue:
		text, err = s.paymentIssue(ctx, in.Entities.TransactionID)
	case intent.TagRefundRequest:
		text, err = s.refundStatus(ctx, in.Entities.OrderNumber)
	default:
		return Pass(), nil
	}
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("order lookup failed",
			"intent", in.Signals.Transaction,
			"error", err,
		)
		text = orderLookupUnavailable
	}
	return Reply(text), nil
}

func (s *transactionStrategy) orderStatus(ctx context.Context, orderID string) (string, error) {
	if orderID == "" {
		return askOrderNumber, nil
	}
	status, err := s.orders.GetOrderStatus(ctx, orderID)
	if err != nil {
		return "", err
	}
	if status == nil {
		return fmt.Sprintf("I couldn't find an order with number %s. Please double-check your order number and try again. Order numbers are typically 6 digits long.\n\nIf you need help finding your order number, check your email confirmation or PartSelect account.", orderID), nil
	}
	txn, err := s.orders.GetTransactionByOrderNumber(ctx, orderID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Order %s Status: %s\n\n", orderID, strings.ToUpper(status.Status))
	fmt.Fprintf(&b, "Order Date: %s\n", status.OrderDate)

	items := make([]string, 0, len(status.Items))
	for _, it := range status.Items {
		items = append(items, fmt.Sprintf("%s (%dx)", it.Name, it.Quantity))
	}
	fmt.Fprintf(&b, "Items: %s\n", strings.Join(items, ", "))
	if status.TrackingNumber != "" {
		fmt.Fprintf(&b, "Tracking Number: %s\n", status.TrackingNumber)
	}
	fmt.Fprintf(&b, "Estimated Delivery: %s\n", status.EstimatedDelivery)
	if txn != nil {
		fmt.Fprintf(&b, "Total: %s\n", money(txn.Total))
		fmt.Fprintf(&b, "Payment Method: %s\n", txn.PaymentMethod)
	}

	switch status.Status {
	case "shipped":
		b.WriteString("\nYour order is on its way! You can track your package using the tracking number above.")
	case "processing":
		b.WriteString("\nYour order is being prepared for shipment. You'll receive tracking information once it ships.")
	case "delivered":
		b.WriteString("\nYour order has been delivered. If you need installation help or have any issues with your parts, I'm here to assist.")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (s *transactionStrategy) paymentIssue(ctx context.Context, transactionID string) (string, error) {
	if transactionID == "" {
		return askTransactionID, nil
	}
	issue, err := s.orders.GetPaymentIssue(ctx, transactionID)
	if err != nil {
		return "", err
	}
	if issue == nil {
		return askTransactionID, nil
	}

	var b strings.Builder
	b.WriteString("Payment Issue Detected\n\n")
	fmt.Fprintf(&b, "Issue: %s\n\n", issue.Description)
	b.WriteString("Resolution Steps:\n")
	for i, step := range issue.ResolutionSteps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (s *transactionStrategy) refundStatus(ctx context.Context, orderID string) (string, error) {
	if orderID == "" {
		return askRefundOrder, nil
	}
	refund, err := s.orders.GetRefundStatus(ctx, orderID)
	if err != nil {
		return "", err
	}
	if refund == nil {
		return startRefund, nil
	}
	return fmt.Sprintf("Refund Status for Order %s\n\nStatus: %s\nAmount: %s\nReason: %s",
		orderID, strings.ToUpper(refund.Status), money(refund.Amount), refund.Reason), nil
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
