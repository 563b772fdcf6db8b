package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID           uint          `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username     string        `gorm:"unique;not null"           json:"username"`
	PasswordHash string        `gorm:"not null"                  json:"-"`
	FullName     string        `gorm:"size:256"                  json:"full_name"`
	Email        string        `gorm:"size:256"                  json:"email"`
	Phone        string        `gorm:"size:32"                   json:"phone"`
	Address      string        `gorm:"size:512"                  json:"address"`
	Role         AccountRole   `gorm:"not null;default:0"        json:"role"`
	Status       AccountStatus `gorm:"not null;default:1"        json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	AccountID uint   `gorm:"index;not null"      json:"account_id"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}

type Product struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name         string          `gorm:"size:256;not null"         json:"name"`
	ImportPrice  decimal.Decimal `gorm:"type:numeric(12,2)"        json:"import_price"`
	SellPrice    decimal.Decimal `gorm:"type:numeric(12,2)"        json:"sell_price"`
	Weight       float64         `json:"weight"`
	Size         float64         `json:"size"`
	Gender       int16           `json:"gender"`
	Stock        int             `gorm:"not null;default:0"        json:"stock"`
	Unit         string          `gorm:"size:64"                   json:"unit"`
	Status       CatalogStatus   `gorm:"not null;default:1"        json:"status"`
	Description  string          `gorm:"type:text"                 json:"description"`
	CategoryID   *uint           `gorm:"index"                     json:"category_id"`
	TypeID       *uint           `gorm:"index"                     json:"type_id"`
	CollectionID *uint           `gorm:"index"                     json:"collection_id"`
	BrandID      *uint           `gorm:"index"                     json:"brand_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint   `gorm:"index;not null"           json:"product_id"`
	Path      string `gorm:"size:512;not null"        json:"path"`
	Main      bool   `gorm:"default:false"            json:"main"`
}

type Category struct {
	ID          uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string        `gorm:"size:256;not null"        json:"name"`
	Description string        `gorm:"type:text"                json:"description"`
	Status      CatalogStatus `gorm:"not null;default:1"       json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type Brand struct {
	ID          uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string        `gorm:"size:256;not null"        json:"name"`
	Description string        `gorm:"type:text"                json:"description"`
	Status      CatalogStatus `gorm:"not null;default:1"       json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type Collection struct {
	ID          uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string        `gorm:"size:256;not null"        json:"name"`
	Description string        `gorm:"type:text"                json:"description"`
	Status      CatalogStatus `gorm:"not null;default:1"       json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type Material struct {
	ID          uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string        `gorm:"size:256;not null"        json:"name"`
	Description string        `gorm:"type:text"                json:"description"`
	Status      CatalogStatus `gorm:"not null;default:1"       json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type ProductType struct {
	ID          uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string        `gorm:"size:256;not null"        json:"name"`
	Description string        `gorm:"type:text"                json:"description"`
	Status      CatalogStatus `gorm:"not null;default:1"       json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type ProductMaterial struct {
	ProductID  uint `gorm:"primaryKey" json:"product_id"`
	MaterialID uint `gorm:"primaryKey" json:"material_id"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID uint      `gorm:"index;not null"           json:"account_id"`
	ProductID uint      `gorm:"index;not null"           json:"product_id"`
	Content   string    `gorm:"type:text;not null"       json:"content"`
	Rating    int16     `gorm:"not null;default:5"       json:"rating"`
	Hidden    bool      `gorm:"default:false"            json:"hidden"`
	CreatedAt time.Time `json:"created_at"`
}

type Favorite struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                          json:"id"`
	AccountID uint      `gorm:"not null;uniqueIndex:idx_favorite_account_product" json:"account_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_favorite_account_product" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Contact struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:256;not null"        json:"name"`
	Email     string    `gorm:"size:256"                 json:"email"`
	Phone     string    `gorm:"size:32"                  json:"phone"`
	Message   string    `gorm:"type:text;not null"       json:"message"`
	Handled   bool      `gorm:"default:false"            json:"handled"`
	CreatedAt time.Time `json:"created_at"`
}

// Cart is the per-user mutable set of pending selections. At most one open
// cart exists per account; it closes the instant an order is created from it
// and is never physically deleted.
type Cart struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID uint       `gorm:"index;not null"           json:"account_id"`
	Status    CartStatus `gorm:"not null;default:0"       json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem carries the price snapshot taken when the product was added, so a
// later catalog price change cannot retroactively alter an open cart.
type CartItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"                   json:"id"`
	CartID    uint            `gorm:"not null;uniqueIndex:idx_cart_item_product" json:"cart_id"`
	ProductID uint            `gorm:"not null;uniqueIndex:idx_cart_item_product" json:"product_id"`
	Quantity  int             `gorm:"not null;check:quantity>0"                  json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2)"                         json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
}

type Order struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID uint            `gorm:"index;not null"           json:"account_id"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(12,2)"       json:"subtotal"`
	Status    OrderStatus     `gorm:"not null;default:0"       json:"status"`
	PlacedAt  *time.Time      `json:"placed_at"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderItem is immutable after creation. UnitPrice is copied from the cart
// line item, never read back from the product.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint            `gorm:"index;not null"           json:"order_id"`
	ProductID uint            `gorm:"not null"                 json:"product_id"`
	Quantity  int             `gorm:"not null"                 json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2)"       json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2)"       json:"line_total"`
}

// Invoice mirrors a completed order. OrderID carries a unique index so two
// concurrent completions of the same order cannot both insert: the second
// writer fails the constraint and the service returns the existing row.
type Invoice struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID uint            `gorm:"index;not null"           json:"account_id"`
	OrderID   *uint           `gorm:"uniqueIndex"              json:"order_id"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(12,2)"       json:"subtotal"`
	Status    InvoiceStatus   `gorm:"not null;default:0"       json:"status"`
	PlacedAt  *time.Time      `json:"placed_at"`
	CreatedAt time.Time       `json:"created_at"`
}

type InvoiceItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceID uint            `gorm:"index;not null"           json:"invoice_id"`
	ProductID uint            `gorm:"not null"                 json:"product_id"`
	Quantity  int             `gorm:"not null"                 json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2)"       json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2)"       json:"line_total"`
}
