package orders

const Collection = "orders"

type Status string

// The ordered lifecycle set. Transitions are deliberately
// unconstrained: admin may set any status at any time.
const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
)

func Statuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

// Item is a line-item snapshot captured at checkout time. Later product
// edits never retroactively alter historical orders.
type Item struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
}

// Order documents are keyed by a backend-assigned id; Code is the
// short human-readable reference ("ORD-1234") generated at checkout.
// Codes repeat over time and are display-only, never a document key.
type Order struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	CustomerName string `json:"customerName"`
	Phone        string `json:"phone"` // unvalidated free text
	Items        []Item `json:"items"`
	Amount       int    `json:"amount"` // always the sum of item prices at creation
	Status       Status `json:"status"`
	Date         string `json:"date"` // YYYY-MM-DD
	UserID       string `json:"userId"`
}

func (o Order) DocID() string { return o.ID }

func (o Order) WithID(id string) Order {
	o.ID = id
	return o
}
