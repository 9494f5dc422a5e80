package domain

type OrderItem struct {
	PartNumber string
	Name       string
	Quantity   int
	Price      float64
}

type OrderStatus struct {
	OrderNumber       string
	Status            string // processing, shipped, delivered, cancelled
	OrderDate         string
	Items             []OrderItem
	TrackingNumber    string
	EstimatedDelivery string
}

type Transaction struct {
	ID              string
	OrderNumber     string
	Total           float64
	Subtotal        float64
	Tax             float64
	Shipping        float64
	PaymentMethod   string
	Status          string
	CustomerName    string
	ShippingAddress string
}

type PaymentIssue struct {
	TransactionID   string
	IssueType       string
	Description     string
	ResolutionSteps []string
}

type Refund struct {
	ID            string
	TransactionID string
	OrderNumber   string
	Reason        string
	Amount        float64
	Status        string
}
