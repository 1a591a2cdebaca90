package validation

// CreateOrderRequest is the payload for POST /users/:id/create_order.
// Quantity is a pointer so an absent field can be told apart from zero.
type CreateOrderRequest struct {
	Product  string `json:"product" validate:"required"`
	Quantity *int   `json:"quantity" validate:"required,gt=0"`
}

// Validation failure reasons, keyed by field in the 400 response.
const (
	ReasonMissingField    = "missing_field"
	ReasonInvalidQuantity = "invalid_quantity"
)
