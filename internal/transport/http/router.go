package http

import (
	elasticsearch "github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/iamminhquan/jewelry-store/internal/auth"
	"github.com/iamminhquan/jewelry-store/internal/cart"
	"github.com/iamminhquan/jewelry-store/internal/catalog"
	"github.com/iamminhquan/jewelry-store/internal/handlers"
	"github.com/iamminhquan/jewelry-store/internal/mykafka"
	"github.com/iamminhquan/jewelry-store/internal/order"
	"github.com/iamminhquan/jewelry-store/internal/report"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	DB            *gorm.DB
	ES            *elasticsearch.Client
	Producer      *mykafka.Producer
	JWTSecret     []byte
	RefreshSecret []byte
}

// Register wires every route onto the echo instance.
func Register(e *echo.Echo, d Deps) {
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	tokens := &auth.TokenService{DB: d.DB, JWTSecret: d.JWTSecret, RefreshSecret: d.RefreshSecret}

	carts := &cart.Service{DB: d.DB}
	orders := order.NewService(d.DB)
	invoices := orders.Invoices
	catalogSvc := &catalog.Service{DB: d.DB}
	reports := report.NewService(d.DB)

	authH := &handlers.AuthHandler{DB: d.DB, JWTSecret: d.JWTSecret, RefreshSecret: d.RefreshSecret, Producer: d.Producer}
	productH := &handlers.ProductHandler{Catalog: catalogSvc, ES: d.ES}
	storefrontH := &handlers.StorefrontHandler{DB: d.DB}
	cartH := &handlers.CartHandler{Carts: carts, Catalog: catalogSvc, Orders: orders, Producer: d.Producer}
	orderH := &handlers.OrderHandler{Orders: orders, Invoices: invoices, Producer: d.Producer}

	adminOrderH := &handlers.AdminOrderHandler{Orders: orders, Producer: d.Producer}
	adminInvoiceH := &handlers.AdminInvoiceHandler{Invoices: invoices}
	adminCatalogH := &handlers.AdminCatalogHandler{DB: d.DB, Catalog: catalogSvc, ES: d.ES, Producer: d.Producer}
	adminReportH := &handlers.AdminReportHandler{Reports: reports}

	api := e.Group("/api/v1")

	// Public storefront.
	api.POST("/register", authH.Register)
	api.POST("/login", authH.Login)
	api.POST("/logout", authH.LogOut)
	api.GET("/products", productH.List)
	api.GET("/products/search", productH.Search)
	api.GET("/products/:id", productH.Get)
	api.GET("/products/:id/comments", storefrontH.ListComments)
	api.GET("/categories", productH.ListCategories)
	api.GET("/brands", productH.ListBrands)
	api.GET("/collections", productH.ListCollections)
	api.GET("/materials", productH.ListMaterials)
	api.GET("/product-types", productH.ListProductTypes)
	api.POST("/contacts", storefrontH.SubmitContact)

	// Authenticated customer routes.
	user := api.Group("", tokens.AutoRefreshMiddleware)
	user.GET("/profile", authH.Profile)
	user.PUT("/profile", authH.UpdateProfile)

	user.GET("/cart", cartH.GetCart)
	user.GET("/cart/count", cartH.ItemCount)
	user.POST("/cart/items", cartH.AddToCart)
	user.PUT("/cart/items/:id", cartH.UpdateQuantity)
	user.DELETE("/cart/items/:id", cartH.RemoveItem)
	user.DELETE("/cart", cartH.ClearCart)
	user.POST("/cart/checkout", cartH.Checkout)
	user.POST("/orders/buy-now", cartH.BuyNow)

	user.GET("/orders", orderH.ListMine)
	user.GET("/orders/history", orderH.PurchaseHistory)
	user.GET("/orders/:id", orderH.GetMine)
	user.POST("/orders/:id/cancel", orderH.CancelMine)
	user.GET("/invoices", orderH.ListMyInvoices)
	user.GET("/invoices/:id", orderH.GetMyInvoice)

	user.POST("/products/:id/comments", storefrontH.AddComment)
	user.GET("/favorites", storefrontH.ListFavorites)
	user.POST("/favorites/:id", storefrontH.ToggleFavorite)

	// Back office.
	admin := api.Group("/admin", tokens.AutoRefreshMiddlewareAdmin)

	admin.GET("/dashboard", adminReportH.Dashboard)
	admin.GET("/reports", adminReportH.Report)
	admin.GET("/reports/revenue", adminReportH.Revenue)
	admin.GET("/reports/purchases", adminReportH.Purchases)
	admin.GET("/reports/export", adminReportH.Export)

	admin.GET("/orders", adminOrderH.List)
	admin.GET("/orders/counts", adminOrderH.Counts)
	admin.GET("/orders/:id", adminOrderH.Get)
	admin.POST("/orders/:id/confirm", adminOrderH.Confirm)
	admin.POST("/orders/:id/cancel", adminOrderH.Cancel)
	admin.PUT("/orders/:id/status", adminOrderH.UpdateStatus)
	admin.PUT("/orders/:id", adminOrderH.Update)

	admin.GET("/invoices", adminInvoiceH.List)
	admin.GET("/invoices/counts", adminInvoiceH.Counts)
	admin.GET("/invoices/:id", adminInvoiceH.Get)
	admin.POST("/invoices", adminInvoiceH.Create)
	admin.PUT("/invoices/:id", adminInvoiceH.Update)
	admin.DELETE("/invoices/:id", adminInvoiceH.Delete)

	admin.GET("/products", adminCatalogH.ListProducts)
	admin.GET("/products/:id", adminCatalogH.GetProduct)
	admin.POST("/products", adminCatalogH.CreateProduct)
	admin.PUT("/products/:id", adminCatalogH.UpdateProduct)
	admin.DELETE("/products/:id", adminCatalogH.DeleteProduct)

	admin.GET("/categories", adminCatalogH.ListCategories)
	admin.POST("/categories", adminCatalogH.CreateCategory)
	admin.PUT("/categories/:id", adminCatalogH.UpdateCategory)
	admin.DELETE("/categories/:id", adminCatalogH.DeleteCategory)

	admin.GET("/brands", adminCatalogH.ListBrands)
	admin.POST("/brands", adminCatalogH.CreateBrand)
	admin.PUT("/brands/:id", adminCatalogH.UpdateBrand)
	admin.DELETE("/brands/:id", adminCatalogH.DeleteBrand)

	admin.GET("/collections", adminCatalogH.ListCollections)
	admin.POST("/collections", adminCatalogH.CreateCollection)
	admin.PUT("/collections/:id", adminCatalogH.UpdateCollection)
	admin.DELETE("/collections/:id", adminCatalogH.DeleteCollection)

	admin.GET("/materials", adminCatalogH.ListMaterials)
	admin.POST("/materials", adminCatalogH.CreateMaterial)
	admin.PUT("/materials/:id", adminCatalogH.UpdateMaterial)
	admin.DELETE("/materials/:id", adminCatalogH.DeleteMaterial)

	admin.GET("/product-types", adminCatalogH.ListProductTypes)
	admin.POST("/product-types", adminCatalogH.CreateProductType)
	admin.PUT("/product-types/:id", adminCatalogH.UpdateProductType)
	admin.DELETE("/product-types/:id", adminCatalogH.DeleteProductType)

	admin.GET("/contacts", adminCatalogH.ListContacts)
	admin.PUT("/contacts/:id/handled", adminCatalogH.MarkContactHandled)

	admin.GET("/comments", adminCatalogH.ListComments)
	admin.PUT("/comments/:id/hidden", adminCatalogH.SetCommentHidden)
}
