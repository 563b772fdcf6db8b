package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iamminhquan/jewelry-store/internal/cart"
	"github.com/iamminhquan/jewelry-store/internal/catalog"
	"github.com/iamminhquan/jewelry-store/internal/config"
	"github.com/iamminhquan/jewelry-store/internal/invoice"
	"github.com/iamminhquan/jewelry-store/internal/models"
	"github.com/iamminhquan/jewelry-store/internal/mykafka"
	"github.com/iamminhquan/jewelry-store/internal/order"
	"github.com/iamminhquan/jewelry-store/internal/report"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB

	Auth         *AuthHandler
	Cart         *CartHandler
	Order        *OrderHandler
	AdminOrder   *AdminOrderHandler
	AdminInvoice *AdminInvoiceHandler
	AdminReport  *AdminReportHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	jwtSecret := []byte("test-jwt-secret")
	refreshSecret := []byte("test-refresh-secret")
	prod := &mykafka.Producer{}

	orders := order.NewService(db)
	carts := &cart.Service{DB: db}
	catalogSvc := &catalog.Service{DB: db}

	return &testEnv{
		T:  t,
		E:  echo.New(),
		DB: db,
		Auth: &AuthHandler{
			DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: prod,
		},
		Cart: &CartHandler{
			Carts: carts, Catalog: catalogSvc, Orders: orders, Producer: prod,
		},
		Order: &OrderHandler{
			Orders: orders, Invoices: orders.Invoices, Producer: prod,
		},
		AdminOrder: &AdminOrderHandler{Orders: orders, Producer: prod},
		AdminInvoice: &AdminInvoiceHandler{
			Invoices: &invoice.Service{DB: db},
		},
		AdminReport: &AdminReportHandler{Reports: report.NewService(db)},
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// asAccount simulates what the auth middleware puts into the context.
func asAccount(c echo.Context, id uint, role models.AccountRole) {
	c.Set("accountID", id)
	c.Set("role", role)
}

func (env *testEnv) createProduct(price string) *models.Product {
	env.T.Helper()
	p := &models.Product{
		Name:      "nhẫn vàng",
		SellPrice: decimal.RequireFromString(price),
		Stock:     10,
		Status:    models.CatalogActive,
	}
	require.NoError(env.T, env.DB.Create(p).Error)
	return p
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"username":  "an.nguyen",
		"password":  "secret123",
		"full_name": "Nguyễn Văn An",
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/register", payload)
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, c = env.doJSONRequest(http.MethodPost, "/api/v1/login", payload)
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	// Cookies are issued alongside the JSON response.
	cookies := rec.Result().Cookies()
	names := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		names = append(names, ck.Name)
	}
	require.Contains(t, names, "accessToken")
	require.Contains(t, names, "refreshToken")
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/register", map[string]string{
		"username": "user", "password": "right",
	})
	require.NoError(t, env.Auth.Register(c))

	_, c = env.doJSONRequest(http.MethodPost, "/api/v1/login", map[string]string{
		"username": "user", "password": "wrong",
	})
	err := env.Auth.Login(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestCartCheckoutFlow(t *testing.T) {
	env := newTestEnv(t)
	p1 := env.createProduct("100.00")
	p2 := env.createProduct("50.00")

	for i := 0; i < 2; i++ {
		rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart/items", map[string]uint{"product_id": p1.ID})
		asAccount(c, 1, models.RoleCustomer)
		require.NoError(t, env.Cart.AddToCart(c))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart/items", map[string]uint{"product_id": p2.ID})
	asAccount(c, 1, models.RoleCustomer)
	require.NoError(t, env.Cart.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, c = env.doJSONRequest(http.MethodGet, "/api/v1/cart", nil)
	asAccount(c, 1, models.RoleCustomer)
	require.NoError(t, env.Cart.GetCart(c))

	var cartResp struct {
		Total         decimal.Decimal   `json:"total"`
		TotalQuantity int               `json:"total_quantity"`
		Items         []models.CartItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cartResp))
	require.True(t, cartResp.Total.Equal(decimal.RequireFromString("250.00")))
	require.Equal(t, 3, cartResp.TotalQuantity)
	require.Len(t, cartResp.Items, 2)

	rec, c = env.doJSONRequest(http.MethodPost, "/api/v1/cart/checkout", nil)
	asAccount(c, 1, models.RoleCustomer)
	require.NoError(t, env.Cart.Checkout(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var ord models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ord))
	require.Equal(t, models.OrderPending, ord.Status)
	require.True(t, ord.Subtotal.Equal(decimal.RequireFromString("250.00")))

	// Checking out the now-closed cart fails.
	_, c = env.doJSONRequest(http.MethodPost, "/api/v1/cart/checkout", nil)
	asAccount(c, 1, models.RoleCustomer)
	err := env.Cart.Checkout(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestCheckoutDBFailureIsNotA400(t *testing.T) {
	env := newTestEnv(t)

	// A broken carts table is a server fault, not an empty cart.
	require.NoError(t, env.DB.Migrator().DropTable(&models.Cart{}))

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart/checkout", nil)
	asAccount(c, 1, models.RoleCustomer)

	err := env.Cart.Checkout(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusInternalServerError, httpErr.Code)
}

func TestBuyNow(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("80.00")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders/buy-now", map[string]any{
		"product_id": product.ID,
		"quantity":   2,
	})
	asAccount(c, 1, models.RoleCustomer)
	require.NoError(t, env.Cart.BuyNow(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var ord models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ord))
	require.True(t, ord.Subtotal.Equal(decimal.RequireFromString("160.00")))
}

func TestUserCannotCancelShippedOrder(t *testing.T) {
	env := newTestEnv(t)

	ord := &models.Order{AccountID: 1, Status: models.OrderShipping}
	require.NoError(t, env.DB.Create(ord).Error)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders/1/cancel", nil)
	asAccount(c, 1, models.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := env.Order.CancelMine(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestUserCannotSeeForeignOrder(t *testing.T) {
	env := newTestEnv(t)

	ord := &models.Order{AccountID: 2, Status: models.OrderPending}
	require.NoError(t, env.DB.Create(ord).Error)

	_, c := env.doJSONRequest(http.MethodGet, "/api/v1/orders/1", nil)
	asAccount(c, 1, models.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := env.Order.GetMine(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestAdminCompleteOrderReturnsInvoice(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("100.00")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders/buy-now", map[string]any{
		"product_id": product.ID,
		"quantity":   1,
	})
	asAccount(c, 1, models.RoleCustomer)
	require.NoError(t, env.Cart.BuyNow(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, c = env.doJSONRequest(http.MethodPut, "/api/v1/admin/orders/1/status", map[string]int{
		"status": int(models.OrderCompleted),
	})
	asAccount(c, 9, models.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.AdminOrder.UpdateStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Order          models.Order   `json:"order"`
		Invoice        models.Invoice `json:"invoice"`
		InvoiceCreated bool           `json:"invoice_created"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, models.OrderCompleted, resp.Order.Status)
	require.True(t, resp.InvoiceCreated)
	require.Equal(t, models.InvoicePaid, resp.Invoice.Status)

	// Completing again reports the existing invoice.
	rec, c = env.doJSONRequest(http.MethodPut, "/api/v1/admin/orders/1/status", map[string]int{
		"status": int(models.OrderCompleted),
	})
	asAccount(c, 9, models.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.AdminOrder.UpdateStatus(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.InvoiceCreated)
}

func TestAdminInvoiceCounts(t *testing.T) {
	env := newTestEnv(t)

	for _, status := range []models.InvoiceStatus{models.InvoicePaid, models.InvoicePaid, models.InvoiceDeleted} {
		require.NoError(t, env.DB.Create(&models.Invoice{AccountID: 1, Status: status}).Error)
	}

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/admin/invoices/counts", nil)
	asAccount(c, 9, models.RoleAdmin)
	require.NoError(t, env.AdminInvoice.Counts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var counts invoice.StatusCounts
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &counts))
	require.EqualValues(t, 2, counts.Total)
	require.EqualValues(t, 2, counts.Paid)
}

func TestReportExportContentType(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/admin/reports/export", nil)
	asAccount(c, 9, models.RoleAdmin)
	require.NoError(t, env.AdminReport.Export(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get(echo.HeaderContentType),
	)
	require.NotEmpty(t, rec.Body.Bytes())
}
