package ctp

// BusinessUnitsQuery fetches the business units a customer is an associate of,
// including their stores and custom fields.
const BusinessUnitsQuery = `
query businessUnitsForAssociate($where: String!) {
  businessUnits(where: $where) {
    total
    results {
      id
      version
      key
      name
      stores {
        id
        key
        name(locale: "en-US")
      }
      addresses {
        id
        firstName
        lastName
        streetName
        postalCode
        city
        country
        phone
        email
      }
      custom {
        customFieldsRaw {
          name
          value
        }
      }
    }
  }
}
`

// OrdersQuery fetches a page of store-scoped orders with server-side sort.
const OrdersQuery = `
query storeOrders($where: String!, $sort: [String!], $limit: Int!, $offset: Int!) {
  orders(where: $where, sort: $sort, limit: $limit, offset: $offset) {
    total
    results {
      id
      version
      orderNumber
      createdAt
      orderState
      totalPrice {
        centAmount
        currencyCode
      }
      state {
        id
        key
        name(locale: "en-US")
      }
      customerId
      customerEmail
    }
  }
}
`

// OrderByIDQuery fetches one order with its line items for the detail view.
const OrderByIDQuery = `
query orderDetail($id: String!) {
  order(id: $id) {
    id
    version
    orderNumber
    createdAt
    orderState
    totalPrice {
      centAmount
      currencyCode
    }
    state {
      id
      key
      name(locale: "en-US")
    }
    customerId
    customerEmail
    lineItems {
      id
      productId
      name(locale: "en-US")
      quantity
      variant {
        sku
      }
      totalPrice {
        centAmount
        currencyCode
      }
    }
  }
}
`

// CustomersQuery fetches a page of customers belonging to the store.
const CustomersQuery = `
query storeCustomers($where: String!, $sort: [String!], $limit: Int!, $offset: Int!) {
  customers(where: $where, sort: $sort, limit: $limit, offset: $offset) {
    total
    results {
      id
      version
      email
      firstName
      lastName
      createdAt
      customerGroup {
        id
        name
      }
    }
  }
}
`

// CustomerByIDQuery fetches one customer with addresses and custom fields.
const CustomerByIDQuery = `
query customerDetail($id: String!) {
  customer(id: $id) {
    id
    version
    email
    firstName
    lastName
    createdAt
    customerGroup {
      id
      name
    }
    addresses {
      id
      firstName
      lastName
      streetName
      postalCode
      city
      country
      phone
      email
    }
    custom {
      customFieldsRaw {
        name
        value
      }
    }
  }
}
`

// ProductSelectionQuery resolves a store's product selection by key.
const ProductSelectionQuery = `
query selectionByKey($key: String!) {
  productSelection(key: $key) {
    id
    version
    key
    name(locale: "en-US")
  }
}
`

// SelectionProductsQuery fetches a page of the products assigned to a selection.
const SelectionProductsQuery = `
query selectionProducts($key: String!, $limit: Int!, $offset: Int!) {
  productSelectionAssignments(productSelectionKey: $key, limit: $limit, offset: $offset) {
    total
    results {
      product {
        id
        version
        masterData {
          current {
            name(locale: "en-US")
            slug(locale: "en-US")
            masterVariant {
              id
              sku
              images {
                url
              }
              prices {
                id
                value {
                  centAmount
                  currencyCode
                }
                channel {
                  key
                }
              }
            }
          }
          published
        }
      }
    }
  }
}
`

// ProductSearchQuery free-text searches the master catalog.
const ProductSearchQuery = `
query productSearch($text: String!, $limit: Int!, $offset: Int!) {
  productProjectionSearch(text: $text, locale: "en-US", limit: $limit, offset: $offset) {
    total
    results {
      id
      version
      name(locale: "en-US")
      slug(locale: "en-US")
      published
      masterVariant {
        id
        sku
        images {
          url
        }
        prices {
          id
          value {
            centAmount
            currencyCode
          }
          channel {
            key
          }
        }
      }
    }
  }
}
`

// ProductPricesQuery fetches both current and staged prices of a product's
// master variant. A price edited but not published lives only in staged, so
// the price sequencer must check both lists.
const ProductPricesQuery = `
query productPrices($id: String!) {
  product(id: $id) {
    id
    version
    masterData {
      current {
        masterVariant {
          id
          sku
          prices {
            id
            value {
              centAmount
              currencyCode
            }
            channel {
              key
            }
          }
        }
      }
      staged {
        masterVariant {
          id
          sku
          prices {
            id
            value {
              centAmount
              currencyCode
            }
            channel {
              key
            }
          }
        }
      }
    }
  }
}
`

// CartDiscountsQuery fetches a page of cart discounts; store scoping is done
// via the predicate's channel clause, so the where filter matches on it.
const CartDiscountsQuery = `
query cartDiscounts($where: String, $sort: [String!], $limit: Int!, $offset: Int!) {
  cartDiscounts(where: $where, sort: $sort, limit: $limit, offset: $offset) {
    total
    results {
      id
      version
      name(locale: "en-US")
      description(locale: "en-US")
      isActive
      sortOrder
      cartPredicate
      target {
        type
        predicate
      }
      value {
        type
        ... on RelativeDiscountValue {
          permyriad
        }
        ... on AbsoluteDiscountValue {
          money {
            centAmount
            currencyCode
          }
        }
      }
    }
  }
}
`

// CartDiscountByIDQuery fetches one cart discount for the edit form.
const CartDiscountByIDQuery = `
query cartDiscount($id: String!) {
  cartDiscount(id: $id) {
    id
    version
    name(locale: "en-US")
    description(locale: "en-US")
    isActive
    sortOrder
    cartPredicate
    target {
      type
      predicate
    }
    value {
      type
      ... on RelativeDiscountValue {
        permyriad
      }
      ... on AbsoluteDiscountValue {
        money {
          centAmount
          currencyCode
        }
      }
    }
  }
}
`

// CustomObjectsQuery lists the checkpoints stored in a container.
const CustomObjectsQuery = `
query customObjects($container: String!, $limit: Int!) {
  customObjects(container: $container, limit: $limit) {
    total
    results {
      id
      version
      container
      key
      value
    }
  }
}
`

// CustomObjectQuery fetches a single checkpoint by container and key.
const CustomObjectQuery = `
query customObject($container: String!, $key: String!) {
  customObject(container: $container, key: $key) {
    id
    version
    container
    key
    value
  }
}
`

// ReportOrdersQuery pages through store orders with line items for the sales
// report aggregation.
const ReportOrdersQuery = `
query reportOrders($where: String!, $sort: [String!], $limit: Int!, $offset: Int!) {
  orders(where: $where, sort: $sort, limit: $limit, offset: $offset) {
    total
    results {
      id
      version
      orderNumber
      createdAt
      orderState
      totalPrice {
        centAmount
        currencyCode
      }
      lineItems {
        productId
        name(locale: "en-US")
        quantity
        variant {
          sku
        }
        totalPrice {
          centAmount
          currencyCode
        }
      }
    }
  }
}
`
