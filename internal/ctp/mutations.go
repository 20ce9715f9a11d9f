package ctp

// CustomerSignInMutation checks the seller's credentials against the project.
// The store-key custom field is read off the returned customer; a customer
// without it is not entitled to the console.
const CustomerSignInMutation = `
mutation customerSignIn($email: String!, $password: String!) {
  customerSignIn(draft: { email: $email, password: $password }) {
    customer {
      id
      version
      email
      firstName
      lastName
      custom {
        customFieldsRaw(includeNames: ["store-key"]) {
          name
          value
        }
      }
    }
  }
}
`

// UpdateOrderMutation applies an action list to an order. Used for the two
// narrow transitions the console supports: changeOrderState and transitionState.
const UpdateOrderMutation = `
mutation updateOrder($id: String!, $version: Long!, $actions: [OrderUpdateAction!]!) {
  updateOrder(id: $id, version: $version, actions: $actions) {
    id
    version
    orderState
    state {
      id
      key
      name(locale: "en-US")
    }
  }
}
`

// UpdateBusinessUnitMutation applies an action list to a business unit
// (e.g. setCustomField for console preferences).
const UpdateBusinessUnitMutation = `
mutation updateBusinessUnit($id: String!, $version: Long!, $actions: [BusinessUnitUpdateAction!]!) {
  updateBusinessUnit(id: $id, version: $version, actions: $actions) {
    id
    version
  }
}
`

// UpdateProductSelectionMutation adds or removes product refs on a store's
// selection, guarded by the selection's version.
const UpdateProductSelectionMutation = `
mutation updateProductSelection($id: String!, $version: Long!, $actions: [ProductSelectionUpdateAction!]!) {
  updateProductSelection(id: $id, version: $version, actions: $actions) {
    id
    version
  }
}
`

// UpdateProductMutation applies an action list to a product. The price
// sequencer issues removePrice+publish and addPrice+publish through it; the
// platform has no atomic replace.
const UpdateProductMutation = `
mutation updateProduct($id: String!, $version: Long!, $actions: [ProductUpdateAction!]!) {
  updateProduct(id: $id, version: $version, actions: $actions) {
    id
    version
  }
}
`

// CreateCartDiscountMutation creates a promotion.
const CreateCartDiscountMutation = `
mutation createCartDiscount($draft: CartDiscountDraft!) {
  createCartDiscount(draft: $draft) {
    id
    version
    cartPredicate
    sortOrder
  }
}
`

// UpdateCartDiscountMutation applies an action list to a promotion.
const UpdateCartDiscountMutation = `
mutation updateCartDiscount($id: String!, $version: Long!, $actions: [CartDiscountUpdateAction!]!) {
  updateCartDiscount(id: $id, version: $version, actions: $actions) {
    id
    version
  }
}
`

// DeleteCartDiscountMutation deletes a promotion, version-guarded.
const DeleteCartDiscountMutation = `
mutation deleteCartDiscount($id: String!, $version: Long!) {
  deleteCartDiscount(id: $id, version: $version) {
    id
  }
}
`

// UpsertCustomObjectMutation creates or replaces a checkpoint object.
const UpsertCustomObjectMutation = `
mutation upsertCustomObject($draft: CustomObjectDraft!) {
  createOrUpdateCustomObject(draft: $draft) {
    id
    version
    container
    key
  }
}
`

// DeleteCustomObjectMutation removes a checkpoint once a workflow commits.
const DeleteCustomObjectMutation = `
mutation deleteCustomObject($container: String!, $key: String!) {
  deleteCustomObject(container: $container, key: $key) {
    id
  }
}
`

// --- update-by-action-list inputs ---
//
// The platform's update convention is id + version + an actions array; each
// action is a one-key object naming the action type.

// ChangeOrderStateAction changes the business order status.
type ChangeOrderStateAction struct {
	OrderState string `json:"orderState"`
}

// TransitionStateAction moves the order's workflow state reference.
type TransitionStateAction struct {
	State StateResourceIdentifier `json:"state"`
	Force bool                    `json:"force,omitempty"`
}

type StateResourceIdentifier struct {
	Key string `json:"key"`
}

// SetCustomFieldAction writes one custom field on a resource.
type SetCustomFieldAction struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// ProductRefInput references a product inside a selection action.
type ProductRefInput struct {
	ID string `json:"id"`
}

// SelectionAddProductAction adds a product to a store's selection.
type SelectionAddProductAction struct {
	Product ProductRefInput `json:"product"`
}

// SelectionRemoveProductAction removes a product from a store's selection.
type SelectionRemoveProductAction struct {
	Product ProductRefInput `json:"product"`
}

// MoneyInput is a minor-unit money value in a mutation payload.
type MoneyInput struct {
	CentAmount   int64  `json:"centAmount"`
	CurrencyCode string `json:"currencyCode"`
}

// ChannelResourceIdentifier scopes a price to a sales channel by key.
type ChannelResourceIdentifier struct {
	Key string `json:"key"`
}

// PriceDraftInput is the new price added by the sequencer.
type PriceDraftInput struct {
	Value   MoneyInput                 `json:"value"`
	Channel *ChannelResourceIdentifier `json:"channel,omitempty"`
}

// AddPriceAction adds a price to a variant.
type AddPriceAction struct {
	VariantID int64           `json:"variantId"`
	Price     PriceDraftInput `json:"price"`
}

// RemovePriceAction removes a price by id.
type RemovePriceAction struct {
	PriceID string `json:"priceId"`
}

// PublishAction publishes staged product changes.
type PublishAction struct{}

// CartDiscountValueInput is either relative (permyriad) or absolute (money).
type CartDiscountValueInput struct {
	Relative *RelativeValueInput `json:"relative,omitempty"`
	Absolute *AbsoluteValueInput `json:"absolute,omitempty"`
}

type RelativeValueInput struct {
	Permyriad int64 `json:"permyriad"`
}

type AbsoluteValueInput struct {
	Money []MoneyInput `json:"money"`
}

// LocalizedStringInput is a single-locale localized string.
type LocalizedStringInput struct {
	Locale string `json:"locale"`
	Value  string `json:"value"`
}

// CartDiscountTargetInput names which items the discount applies to.
type CartDiscountTargetInput struct {
	LineItems *LineItemsTargetInput `json:"lineItems,omitempty"`
}

type LineItemsTargetInput struct {
	Predicate string `json:"predicate"`
}

// CartDiscountDraft is the create payload for a promotion.
type CartDiscountDraft struct {
	Name          []LocalizedStringInput   `json:"name"`
	Description   []LocalizedStringInput   `json:"description,omitempty"`
	CartPredicate string                   `json:"cartPredicate"`
	Target        *CartDiscountTargetInput `json:"target,omitempty"`
	Value         CartDiscountValueInput   `json:"value"`
	SortOrder     string                   `json:"sortOrder"`
	IsActive      bool                     `json:"isActive"`
}

// CustomObjectDraft is the upsert payload for a checkpoint object.
type CustomObjectDraft struct {
	Container string      `json:"container"`
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
}
