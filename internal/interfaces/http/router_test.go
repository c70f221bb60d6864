package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/auth"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/report"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/export"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
)

type testAPI struct {
	app    *fiber.App
	authUC *auth.AuthUseCase
}

func newTestAPI(t *testing.T, opts ...func(*memory.Store, *apphttp.RouterDeps)) *testAPI {
	t.Helper()
	store := memory.NewStore()
	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 10, Issuer: testIssuer}, zerolog.Nop())

	deps := apphttp.RouterDeps{
		AuthUC:          authUC,
		UserUC:          usecase.NewUserUseCase(store.Users()),
		GoodsUC:         usecase.NewGoodsUseCase(store.Goods()),
		LedgerUC:        inventory.NewLedgerUseCase(store, store.Orders(), zerolog.Nop()),
		StockUC:         inventory.NewStockQueryUseCase(store.Goods(), store.Lots(), store.Movements(), store),
		ReplenishmentUC: inventory.NewReplenishmentUseCase(store.Lots()),
		ReportUC: report.NewReportUseCase(
			store.Reports(), store.Movements(), store.Goods(),
			export.NewExcelWriter(), export.NewMarotoPDFWriter("Resumen de stock"), export.NewXMLWriter(),
			"", zerolog.Nop(),
		),
		JWTSecret: testJWTSecret,
		AppName:   "ledger-test",
	}
	for _, opt := range opts {
		opt(store, &deps)
	}

	app := fiber.New()
	apphttp.Router(app, deps)
	return &testAPI{app: app, authUC: authUC}
}

// call hace la petición con el rol dado ("" = sin token) y devuelve status y cuerpo.
func (a *testAPI) call(t *testing.T, method, path, role string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (a *testAPI) createGoods(t *testing.T, code string) string {
	t.Helper()
	status, body := a.call(t, http.MethodPost, "/api/goods", "operator", map[string]any{
		"code": code, "name": "Mercancía " + code, "unit": "und", "min_stock": "5",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var g dto.GoodsResponse
	require.NoError(t, json.Unmarshal(body, &g))
	return g.ID
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	return e.Code
}

func TestRouter_Health(t *testing.T) {
	api := newTestAPI(t)
	status, body := api.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "ledger-test")
}

func TestRouter_Login(t *testing.T) {
	api := newTestAPI(t)
	_, err := api.authUC.CreateUser(context.Background(), "ana", "secreto123", "operator")
	require.NoError(t, err)

	status, body := api.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "ana", Password: "secreto123"})
	require.Equal(t, http.StatusOK, status, string(body))
	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "operator", out.User.Role)

	status, body = api.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "ana", Password: "otra"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))

	status, _ = api.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "ana"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_RolePolicy(t *testing.T) {
	api := newTestAPI(t)
	id := api.createGoods(t, "G-1")

	status, _ := api.call(t, http.MethodGet, "/api/goods", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = api.call(t, http.MethodGet, "/api/goods", "viewer", nil)
	assert.Equal(t, http.StatusOK, status)

	status, body := api.call(t, http.MethodPost, "/api/goods", "viewer", map[string]any{"code": "X", "name": "X"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))

	status, _ = api.call(t, http.MethodDelete, "/api/goods/"+id, "operator", nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = api.call(t, http.MethodDelete, "/api/goods/"+id, "admin", nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = api.call(t, http.MethodGet, "/api/stock/consistency", "operator", nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = api.call(t, http.MethodGet, "/api/reports/stock-summary", "viewer", nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestRouter_GoodsCatalog(t *testing.T) {
	api := newTestAPI(t)
	id := api.createGoods(t, "TORN-8")
	api.createGoods(t, "ARAN-4")

	status, body := api.call(t, http.MethodPost, "/api/goods", "operator", map[string]any{"code": "TORN-8", "name": "Otro"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_CODE", errorCode(t, body))

	status, body = api.call(t, http.MethodGet, "/api/goods?keyword=torn&page=1&page_size=10", "viewer", nil)
	require.Equal(t, http.StatusOK, status)
	var list dto.GoodsListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "TORN-8", list.Items[0].Code)
	assert.Equal(t, 1, list.Page.Total)

	status, body = api.call(t, http.MethodPut, "/api/goods/"+id, "operator", map[string]any{"name": "Tornillo 8mm"})
	require.Equal(t, http.StatusOK, status, string(body))
	var g dto.GoodsResponse
	require.NoError(t, json.Unmarshal(body, &g))
	assert.Equal(t, "Tornillo 8mm", g.Name)

	status, body = api.call(t, http.MethodGet, "/api/goods/no-existe", "viewer", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}

func TestRouter_StockInOut(t *testing.T) {
	api := newTestAPI(t)
	id := api.createGoods(t, "G-1")

	status, body := api.call(t, http.MethodPost, "/api/stock-in", "operator", map[string]any{
		"order_no": "IN-1",
		"lines": []map[string]any{
			{"goods_id": id, "quantity": "10", "batch_no": "L1"},
			{"goods_id": id, "quantity": "5", "batch_no": "L2"},
		},
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var in dto.ReceivingOrderResponse
	require.NoError(t, json.Unmarshal(body, &in))
	assert.Len(t, in.Lines, 2)
	assert.Equal(t, testUserID, *in.UserID)

	status, _ = api.call(t, http.MethodGet, "/api/stock-in/"+in.ID, "viewer", nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = api.call(t, http.MethodPost, "/api/stock-out", "operator", map[string]any{
		"order_no": "OUT-1",
		"lines":    []map[string]any{{"goods_id": id, "quantity": "12"}},
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var out dto.ShippingOrderResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "sale", out.OutType)

	status, body = api.call(t, http.MethodGet, "/api/stock/on-hand/"+id, "viewer", nil)
	require.Equal(t, http.StatusOK, status)
	var onHand dto.OnHandResponse
	require.NoError(t, json.Unmarshal(body, &onHand))
	assert.Equal(t, "3", onHand.Quantity.String())
	assert.True(t, onHand.BelowMinimum)

	status, body = api.call(t, http.MethodGet, "/api/stock/movements?from=2000-01-01", "viewer", nil)
	require.Equal(t, http.StatusOK, status)
	var movs []dto.MovementResponse
	require.NoError(t, json.Unmarshal(body, &movs))
	assert.Len(t, movs, 3)

	status, body = api.call(t, http.MethodGet, "/api/stock/consistency", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	var check dto.LedgerConsistencyResponse
	require.NoError(t, json.Unmarshal(body, &check))
	assert.True(t, check.Consistent)

	status, body = api.call(t, http.MethodGet, "/api/stock/replenishment", "viewer", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"total":1`)
}

// shortLotsRunner oculta el último lote disponible para forzar una asignación FIFO incompleta.
type shortLotsRunner struct {
	store *memory.Store
}

func (r shortLotsRunner) Run(ctx context.Context, fn func(
	repository.GoodsRepository,
	repository.LotRepository,
	repository.MovementRepository,
	repository.OrderRepository,
) error) error {
	return r.store.Run(ctx, func(g repository.GoodsRepository, l repository.LotRepository, m repository.MovementRepository, o repository.OrderRepository) error {
		return fn(g, shortLots{l}, m, o)
	})
}

type shortLots struct {
	repository.LotRepository
}

func (l shortLots) ListAvailable(ctx context.Context, goodsID string) ([]*entity.Lot, error) {
	lots, err := l.LotRepository.ListAvailable(ctx, goodsID)
	if err != nil || len(lots) == 0 {
		return lots, err
	}
	return lots[:len(lots)-1], nil
}

func TestRouter_AllocationRaceEsErrorInterno(t *testing.T) {
	api := newTestAPI(t, func(store *memory.Store, deps *apphttp.RouterDeps) {
		deps.LedgerUC = inventory.NewLedgerUseCase(shortLotsRunner{store}, store.Orders(), zerolog.Nop())
	})
	id := api.createGoods(t, "G-1")

	status, body := api.call(t, http.MethodPost, "/api/stock-in", "operator", map[string]any{
		"order_no": "IN-1",
		"lines": []map[string]any{
			{"goods_id": id, "quantity": "4", "batch_no": "L1"},
			{"goods_id": id, "quantity": "4", "batch_no": "L2"},
		},
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = api.call(t, http.MethodPost, "/api/stock-out", "operator", map[string]any{
		"order_no": "OUT-1",
		"lines":    []map[string]any{{"goods_id": id, "quantity": "6"}},
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL", errorCode(t, body))

	status, body = api.call(t, http.MethodGet, "/api/stock/on-hand/"+id, "viewer", nil)
	require.Equal(t, http.StatusOK, status)
	var onHand dto.OnHandResponse
	require.NoError(t, json.Unmarshal(body, &onHand))
	assert.Equal(t, "8", onHand.Quantity.String())
}

func TestRouter_OrderErrors(t *testing.T) {
	api := newTestAPI(t)
	id := api.createGoods(t, "G-1")

	status, body := api.call(t, http.MethodPost, "/api/stock-in", "operator", map[string]any{"order_no": "IN-1"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "EMPTY_ORDER", errorCode(t, body))

	status, body = api.call(t, http.MethodPost, "/api/stock-in", "operator", map[string]any{
		"order_no": "IN-1",
		"lines":    []map[string]any{{"goods_id": "fantasma", "quantity": "1"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "UNKNOWN_GOODS", errorCode(t, body))
	assert.Contains(t, string(body), "fantasma")

	status, body = api.call(t, http.MethodPost, "/api/stock-in", "operator", map[string]any{
		"order_no": "IN-1",
		"lines":    []map[string]any{{"goods_id": id, "quantity": "0"}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	status, _ = api.call(t, http.MethodPost, "/api/stock-in", "operator", map[string]any{
		"order_no": "IN-1",
		"lines":    []map[string]any{{"goods_id": id, "quantity": "2"}},
	})
	require.Equal(t, http.StatusCreated, status)

	status, body = api.call(t, http.MethodPost, "/api/stock-in", "operator", map[string]any{
		"order_no": "IN-1",
		"lines":    []map[string]any{{"goods_id": id, "quantity": "2"}},
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_ORDER_NUMBER", errorCode(t, body))

	status, body = api.call(t, http.MethodPost, "/api/stock-out", "operator", map[string]any{
		"order_no": "OUT-1",
		"lines":    []map[string]any{{"goods_id": id, "quantity": "3"}},
	})
	assert.Equal(t, http.StatusConflict, status)
	var e struct {
		Code    string `json:"code"`
		Details []struct {
			GoodsID   string `json:"goods_id"`
			Requested string `json:"requested"`
			Available string `json:"available"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)
	require.Len(t, e.Details, 1)
	assert.Equal(t, id, e.Details[0].GoodsID)
	assert.Equal(t, "3", e.Details[0].Requested)
	assert.Equal(t, "2", e.Details[0].Available)

	status, _ = api.call(t, http.MethodGet, "/api/stock-out/no-existe", "viewer", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.call(t, http.MethodPost, "/api/stock-in", "operator", "no es un objeto")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_Reports(t *testing.T) {
	api := newTestAPI(t)
	id := api.createGoods(t, "G-1")
	status, _ := api.call(t, http.MethodPost, "/api/stock-in", "operator", map[string]any{
		"order_no": "IN-1",
		"date":     "2024-03-10T10:00:00Z",
		"lines":    []map[string]any{{"goods_id": id, "quantity": "4"}},
	})
	require.Equal(t, http.StatusCreated, status)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/stock-summary?format=xlsx", nil)
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "resumen_stock_")

	status, body := api.call(t, http.MethodGet, "/api/reports/stock-summary?format=csv", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	status, _ = api.call(t, http.MethodGet, "/api/reports/inout-detail?from=2024-03-01&to=2024-03-31", "admin", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = api.call(t, http.MethodGet, "/api/reports/inout-detail?from=2024-03-01", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = api.call(t, http.MethodGet, "/api/reports/movements.xml?from=2000-01-01&to=2100-01-01", "admin", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "<movements")

	status, _ = api.call(t, http.MethodGet, "/api/stock/movements?from=ayer", "viewer", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_Users(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	_, err := api.authUC.CreateUser(ctx, "jefe", "jefe-pass", "admin")
	require.NoError(t, err)

	login, err := api.authUC.Login(ctx, dto.LoginRequest{Username: "jefe", Password: "jefe-pass"})
	require.NoError(t, err)
	bearer := "Bearer " + login.Token

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", bearer)
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	var me dto.UserResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "jefe", me.Username)

	// el token de prueba apunta a un id que no existe en el store
	status, _ := api.call(t, http.MethodGet, "/api/auth/me", "viewer", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := api.call(t, http.MethodPost, "/api/users", "admin", dto.CreateUserRequest{Username: "ana", Password: "x1", Role: "viewer"})
	require.Equal(t, http.StatusCreated, status, string(body))
	var created dto.UserResponse
	require.NoError(t, json.Unmarshal(body, &created))

	status, body = api.call(t, http.MethodPost, "/api/users", "admin", dto.CreateUserRequest{Username: "ana", Password: "x2", Role: "viewer"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "USERNAME_EXISTS", errorCode(t, body))

	status, _ = api.call(t, http.MethodPost, "/api/users", "operator", dto.CreateUserRequest{Username: "b", Password: "x", Role: "viewer"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = api.call(t, http.MethodPut, "/api/users/"+created.ID, "admin", map[string]any{"role": "operator"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), `"role":"operator"`)

	status, _ = api.call(t, http.MethodPut, "/api/users/nada", "admin", map[string]any{"active": false})
	assert.Equal(t, http.StatusNotFound, status)
}
