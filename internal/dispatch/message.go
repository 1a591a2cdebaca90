package dispatch

// OrderMessage is the queue payload for one accepted order. The field names
// and types are the contract with downstream consumers; changing them
// requires a version marker.
type OrderMessage struct {
	UserID   string `json:"userId"`
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// Order holds the validated fields of an order submission.
type Order struct {
	Product  string
	Quantity int
}

// ResolvedUser is the read-only view of a user record the dispatch path needs.
type ResolvedUser struct {
	ID string
}

// ComposeOrderMessage builds the wire message from a resolved user and a
// validated order. Fields are copied verbatim; the message is never mutated
// after this point. Any change to the message shape belongs here, not at the
// call sites.
func ComposeOrderMessage(user ResolvedUser, order Order) OrderMessage {
	return OrderMessage{
		UserID:   user.ID,
		Product:  order.Product,
		Quantity: order.Quantity,
	}
}
