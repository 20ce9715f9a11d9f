package domain

import "time"

// SessionSchemaVersion is embedded in every serialized session payload so a
// future shape change can be migrated instead of silently misread.
const SessionSchemaVersion = 1

// Session holds the logged-in seller's identity and the store they operate.
// StoreKey is only meaningful once a business unit has been resolved.
type Session struct {
	SchemaVersion          int    `json:"schemaVersion"`
	IsLoggedIn             bool   `json:"isLoggedIn"`
	CustomerID             string `json:"customerId"`
	Email                  string `json:"email"`
	FirstName              string `json:"firstName,omitempty"`
	LastName               string `json:"lastName,omitempty"`
	StoreKey               string `json:"storeKey,omitempty"`
	SelectedBusinessUnitID string `json:"selectedBusinessUnitId,omitempty"`
}

// Money is a platform money value in minor currency units.
type Money struct {
	CentAmount   int64  `json:"centAmount"`
	CurrencyCode string `json:"currencyCode"`
}

// Address mirrors the platform address shape used on business units and customers.
type Address struct {
	ID         string `json:"id,omitempty"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	StreetName string `json:"streetName,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// CustomField is one entry of a resource's custom-fields map.
type CustomField struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// StoreRef is a named tenant/channel key resolved from a business unit.
type StoreRef struct {
	ID   string `json:"id,omitempty"`
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

// BusinessUnit is the seller's organizational entity. Version is the
// optimistic concurrency token required on every mutation.
type BusinessUnit struct {
	ID           string        `json:"id"`
	Version      int64         `json:"version"`
	Key          string        `json:"key,omitempty"`
	Name         string        `json:"name"`
	Stores       []StoreRef    `json:"stores,omitempty"`
	Addresses    []Address     `json:"addresses,omitempty"`
	CustomFields []CustomField `json:"customFields,omitempty"`
}

// StateRef is a workflow state reference on an order (separate from orderState).
type StateRef struct {
	ID   string `json:"id,omitempty"`
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

// LineItem is one order line.
type LineItem struct {
	ID         string `json:"id"`
	ProductID  string `json:"productId,omitempty"`
	Name       string `json:"name"`
	SKU        string `json:"sku,omitempty"`
	Quantity   int64  `json:"quantity"`
	TotalPrice Money  `json:"totalPrice"`
}

// Order is a remote-owned order record. Only two narrow transitions are
// supported: the business orderState and the workflow state reference.
type Order struct {
	ID            string     `json:"id"`
	Version       int64      `json:"version"`
	OrderNumber   string     `json:"orderNumber,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	TotalPrice    Money      `json:"totalPrice"`
	OrderState    OrderState `json:"orderState"`
	State         *StateRef  `json:"state,omitempty"`
	CustomerID    string     `json:"customerId,omitempty"`
	CustomerEmail string     `json:"customerEmail,omitempty"`
	LineItems     []LineItem `json:"lineItems,omitempty"`
}

// CustomerGroupRef references a platform customer group.
type CustomerGroupRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Customer is read-only in this console; it is displayed and cross-referenced
// against orders but never mutated here.
type Customer struct {
	ID            string            `json:"id"`
	Version       int64             `json:"version"`
	Email         string            `json:"email"`
	FirstName     string            `json:"firstName,omitempty"`
	LastName      string            `json:"lastName,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	CustomerGroup *CustomerGroupRef `json:"customerGroup,omitempty"`
	Addresses     []Address         `json:"addresses,omitempty"`
	CustomFields  []CustomField     `json:"customFields,omitempty"`
}

// Price is a variant price scoped by sales channel key and currency. At most
// one price per (channel, currency) is treated as authoritative.
type Price struct {
	ID         string `json:"id"`
	ChannelKey string `json:"channelKey,omitempty"`
	Value      Money  `json:"value"`
	Staged     bool   `json:"staged,omitempty"`
}

// ProductVariant carries the variant's SKU and channel-scoped prices.
type ProductVariant struct {
	ID     int64   `json:"id"`
	SKU    string  `json:"sku,omitempty"`
	Prices []Price `json:"prices,omitempty"`
}

// Product is a master-catalog product; store visibility is governed by the
// store's product selection, not by the product itself.
type Product struct {
	ID            string         `json:"id"`
	Version       int64          `json:"version"`
	Name          string         `json:"name"`
	Slug          string         `json:"slug,omitempty"`
	ImageURL      string         `json:"imageUrl,omitempty"`
	MasterVariant ProductVariant `json:"masterVariant"`
	Published     bool           `json:"published"`
}

// ProductSelection is a store's visible catalog subset. Adding or removing a
// product is a version-guarded update of its product refs.
type ProductSelection struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`
	Key     string `json:"key"`
	Name    string `json:"name,omitempty"`
}

// PromotionValue is a cart-discount value: a relative permyriad or an
// absolute money amount.
type PromotionValue struct {
	Type      PromotionValueType `json:"type"`
	Permyriad int64              `json:"permyriad,omitempty"`
	Money     *Money             `json:"money,omitempty"`
}

// Promotion is a platform cart discount. SortOrder is a string-encoded
// decimal that must parse strictly between 0 and 1; the form layer enforces
// this, the API does not.
type Promotion struct {
	ID          string         `json:"id"`
	Version     int64          `json:"version"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	IsActive    bool           `json:"isActive"`
	Predicate   string         `json:"predicate"`
	Target      string         `json:"target,omitempty"`
	Value       PromotionValue `json:"value"`
	SortOrder   string         `json:"sortOrder"`
}

// PriceWorkflow is a checkpoint of the remove-then-add price update sequence,
// persisted just long enough to resume a run interrupted between phases.
type PriceWorkflow struct {
	ID         string             `json:"id"`
	ProductID  string             `json:"productId"`
	VariantID  int64              `json:"variantId"`
	ChannelKey string             `json:"channelKey"`
	Currency   string             `json:"currency"`
	CentAmount int64              `json:"centAmount"`
	State      PriceWorkflowState `json:"state"`
	// Version observed after the last completed phase; the next mutation
	// must carry it.
	ProductVersion int64     `json:"productVersion"`
	RemovedPriceID string    `json:"removedPriceId,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
