package models

// OrderStatus tracks an order through the lifecycle
// PENDING -> PROCESSING -> SHIPPING -> COMPLETED, with CANCELLED reachable
// from every non-terminal state. Customers never move an order out of
// COMPLETED or CANCELLED; the back office can override, which is why invoice
// generation on completion must be idempotent.
type OrderStatus int16

const (
	OrderPending    OrderStatus = 0
	OrderProcessing OrderStatus = 1
	OrderShipping   OrderStatus = 2
	OrderCompleted  OrderStatus = 3
	OrderCancelled  OrderStatus = 4
)

func (s OrderStatus) Valid() bool {
	return s >= OrderPending && s <= OrderCancelled
}

func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// UserCancellable reports whether a customer may still cancel the order.
// Customers lose the right to cancel once the order is shipping.
func (s OrderStatus) UserCancellable() bool {
	return s == OrderPending || s == OrderProcessing
}

// AdminCancellable reports whether an administrator may cancel the order.
func (s OrderStatus) AdminCancellable() bool {
	return s == OrderPending || s == OrderProcessing || s == OrderShipping
}

func (s OrderStatus) Label() string {
	switch s {
	case OrderPending:
		return "Chờ xử lý"
	case OrderProcessing:
		return "Đang xử lý"
	case OrderShipping:
		return "Đang giao hàng"
	case OrderCompleted:
		return "Hoàn thành"
	case OrderCancelled:
		return "Đã hủy"
	}
	return "Không xác định"
}

// InvoiceStatus is deliberately a separate type from OrderStatus: the integer
// values overlap but the meanings do not (invoice 2 is "paid", order 2 is
// "shipping"), and invoices have a soft-delete state orders do not.
type InvoiceStatus int16

const (
	InvoicePending    InvoiceStatus = 0
	InvoiceProcessing InvoiceStatus = 1
	InvoicePaid       InvoiceStatus = 2
	InvoiceDeleted    InvoiceStatus = 3
	InvoiceCancelled  InvoiceStatus = 4
)

// InvoiceStatusOnCompletion is the status a generated invoice starts in.
// In this shop completing an order means it was delivered and paid in full,
// so the invoice is born paid.
const InvoiceStatusOnCompletion = InvoicePaid

func (s InvoiceStatus) Valid() bool {
	return s >= InvoicePending && s <= InvoiceCancelled
}

func (s InvoiceStatus) Label() string {
	switch s {
	case InvoicePending:
		return "Chờ xác nhận"
	case InvoiceProcessing:
		return "Đang xử lý"
	case InvoicePaid:
		return "Đã thanh toán"
	case InvoiceDeleted:
		return "Đã xóa"
	case InvoiceCancelled:
		return "Đã hủy"
	}
	return "Không xác định"
}

// CartStatus marks a cart as open or already converted into an order.
type CartStatus int16

const (
	CartOpen   CartStatus = 0
	CartClosed CartStatus = 1
)

// CatalogStatus is the shared soft-delete enum for catalog records
// (products, categories, brands, collections, materials, product types).
// It is distinct from order/invoice statuses: 3 here means "deleted".
type CatalogStatus int16

const (
	CatalogHidden     CatalogStatus = 0
	CatalogActive     CatalogStatus = 1
	CatalogOutOfStock CatalogStatus = 2
	CatalogDeleted    CatalogStatus = 3
)

func (s CatalogStatus) Valid() bool {
	return s >= CatalogHidden && s <= CatalogDeleted
}

type AccountRole int16

const (
	RoleCustomer AccountRole = 0
	RoleAdmin    AccountRole = 1
)

func (r AccountRole) IsAdmin() bool { return r == RoleAdmin }

// AccountStatus is its own type so an account can never be assigned a catalog
// or order state by accident. Accounts only ever sit in two states.
type AccountStatus int16

const (
	AccountLocked AccountStatus = 0
	AccountActive AccountStatus = 1
)

func (s AccountStatus) Valid() bool {
	return s == AccountLocked || s == AccountActive
}
