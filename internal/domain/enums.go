package domain

// OrderState is the platform's business order status.
type OrderState string

const (
	OrderStateOpen      OrderState = "Open"
	OrderStateConfirmed OrderState = "Confirmed"
	OrderStateComplete  OrderState = "Complete"
	OrderStateCancelled OrderState = "Cancelled"
)

// IsValid checks if the order state is one the platform accepts.
func (s OrderState) IsValid() bool {
	switch s {
	case OrderStateOpen, OrderStateConfirmed, OrderStateComplete, OrderStateCancelled:
		return true
	default:
		return false
	}
}

// PromotionValueType distinguishes relative from absolute discount values.
type PromotionValueType string

const (
	PromotionValueRelative PromotionValueType = "relative"
	PromotionValueAbsolute PromotionValueType = "absolute"
)

// PriceWorkflowState tracks the remove-then-add price sequence so an
// interrupted run can be resumed instead of leaving a variant priceless.
type PriceWorkflowState string

const (
	// PriceWorkflowPending - workflow recorded, nothing mutated yet
	PriceWorkflowPending PriceWorkflowState = "PENDING"
	// PriceWorkflowRemoved - old price removed and published, new one not added
	PriceWorkflowRemoved PriceWorkflowState = "REMOVED"
	// PriceWorkflowAdded - new price added and published, final check outstanding
	PriceWorkflowAdded PriceWorkflowState = "ADDED"
	// PriceWorkflowCommitted - verified: exactly one price for the channel/currency
	PriceWorkflowCommitted PriceWorkflowState = "COMMITTED"
)

// Resumable reports whether a sweeper or operator can pick the workflow up.
func (s PriceWorkflowState) Resumable() bool {
	return s == PriceWorkflowPending || s == PriceWorkflowRemoved || s == PriceWorkflowAdded
}
