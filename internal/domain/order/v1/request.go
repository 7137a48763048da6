package orderv1

import "time"

// RequestType represents the kind of order-lifecycle request.
type RequestType string

const (
	// RequestTypeCreate represents a request to create a new order.
	RequestTypeCreate RequestType = "CREATE"
	// RequestTypeReplace represents a request to replace the quantity of a live order.
	RequestTypeReplace RequestType = "REPLACE"
	// RequestTypeCancel represents a request to cancel a live order.
	RequestTypeCancel RequestType = "CANCEL"
)

// Request represents a single validated order-lifecycle request.
type Request struct {
	Timestamp time.Time    `json:"timestamp"`
	OrderID   uint64       `json:"orderID"`
	Type      RequestType  `json:"type"`
	Content   OrderContent `json:"content"`
}
