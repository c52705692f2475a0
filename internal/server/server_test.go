package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/neoledsrlbolivia/neopos/internal/audit"
	auditdomain "github.com/neoledsrlbolivia/neopos/internal/audit/domain"
	authdomain "github.com/neoledsrlbolivia/neopos/internal/auth/domain"
	authservice "github.com/neoledsrlbolivia/neopos/internal/auth/service"
	"github.com/neoledsrlbolivia/neopos/internal/authorization"
	carouseldomain "github.com/neoledsrlbolivia/neopos/internal/carousel/domain"
	carouselservice "github.com/neoledsrlbolivia/neopos/internal/carousel/service"
	cashdomain "github.com/neoledsrlbolivia/neopos/internal/cashdrawer/domain"
	cashservice "github.com/neoledsrlbolivia/neopos/internal/cashdrawer/service"
	catalogdomain "github.com/neoledsrlbolivia/neopos/internal/catalog/domain"
	catalogservice "github.com/neoledsrlbolivia/neopos/internal/catalog/service"
	"github.com/neoledsrlbolivia/neopos/internal/clock"
	"github.com/neoledsrlbolivia/neopos/internal/config"
	"github.com/neoledsrlbolivia/neopos/internal/events"
	quotationdomain "github.com/neoledsrlbolivia/neopos/internal/quotation/domain"
	"github.com/neoledsrlbolivia/neopos/internal/quotation/render"
	quotationservice "github.com/neoledsrlbolivia/neopos/internal/quotation/service"
	saledomain "github.com/neoledsrlbolivia/neopos/internal/sale/domain"
	saleservice "github.com/neoledsrlbolivia/neopos/internal/sale/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testServer struct {
	srv    *Server
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registerValidations()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&catalogdomain.Product{},
		&catalogdomain.Variant{},
		&catalogdomain.Attribute{},
		&quotationdomain.Quotation{},
		&quotationdomain.QuotationItem{},
		&saledomain.Sale{},
		&saledomain.SaleItem{},
		&cashdomain.Session{},
		&cashdomain.Movement{},
		&carouseldomain.Slot{},
		&auditdomain.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(
		`CREATE TABLE IF NOT EXISTS pos_events (
			id INTEGER PRIMARY KEY,
			event_type TEXT NOT NULL,
			payload TEXT,
			dedupe_key TEXT UNIQUE,
			published BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL
		)`,
	).Error; err != nil {
		t.Fatalf("create pos_events: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	log := zap.NewNop()
	clk := clock.SystemClock{}
	outbox := events.NewOutbox(db, node)
	cfg := config.Config{
		Environment: "test",
		RateLimit:   config.RateLimit{LoginLimit: 100, LoginWindow: time.Minute},
		Render:      config.Render{BalancePolicy: config.BalanceByPaymentTerm},
	}

	srv := NewServer(Params{
		Cfg:     cfg,
		Log:     log,
		DB:      db,
		AuthSvc: authservice.NewService(authservice.Params{DB: db, Log: log, GenID: node, Clock: clk}),
		AuthzSvc: authorization.NewService(authorization.Params{
			Log: log,
		}),
		QuotationSvc: quotationservice.NewService(quotationservice.Params{
			DB:       db,
			Log:      log,
			GenID:    node,
			Renderer: render.NewRenderer(),
			Outbox:   outbox,
			Clock:    clk,
			Cfg:      cfg,
		}),
		CatalogSvc:  catalogservice.NewService(catalogservice.Params{DB: db, Log: log, GenID: node, Clock: clk}),
		SaleSvc:     saleservice.NewService(saleservice.Params{DB: db, Log: log, GenID: node, Outbox: outbox, Clock: clk}),
		DrawerSvc:   cashservice.NewService(cashservice.Params{DB: db, Log: log, GenID: node, Outbox: outbox, Clock: clk}),
		CarouselSvc: carouselservice.NewService(carouselservice.Params{DB: db, Log: log, GenID: node, Clock: clk}),
		AuditRec:    audit.NewRecorder(audit.Params{DB: db, Log: log, GenID: node, Clock: clk}),
	})

	engine := gin.New()
	srv.RegisterRoutes(engine)
	return &testServer{srv: srv, engine: engine}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	ts.engine.ServeHTTP(recorder, req)
	return recorder
}

func (ts *testServer) seedUser(t *testing.T, username string, role authdomain.Role) string {
	t.Helper()
	if _, err := ts.srv.authSvc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Username: username,
		Password: "secreto",
		Role:     role,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"username": username, "password": "secreto"})
	resp := ts.do(t, http.MethodPost, "/api/auth/login", "", body)
	if resp.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data loginResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return envelope.Data.Token
}

func TestRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/products", "", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	resp = ts.do(t, http.MethodGet, "/api/products", "no-such-token", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bogus token, got %d", resp.Code)
	}
}

func TestLoginAndProductFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "admin1", authdomain.RoleAdmin)

	createBody, _ := json.Marshal(map[string]any{
		"name": "Foco LED",
		"variants": []map[string]any{
			{"name": "9W", "sale_price": 10.0, "stock": 5},
		},
	})
	resp := ts.do(t, http.MethodPost, "/api/products", token, createBody)
	if resp.Code != http.StatusOK {
		t.Fatalf("create product status %d: %s", resp.Code, resp.Body.String())
	}

	resp = ts.do(t, http.MethodGet, "/api/products", token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list products status %d", resp.Code)
	}
	var list struct {
		Data []catalogdomain.Product `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Data) != 1 || list.Data[0].Name != "Foco LED" {
		t.Fatalf("unexpected product list: %+v", list.Data)
	}
}

func TestAssistantCannotArchiveProduct(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.seedUser(t, "admin1", authdomain.RoleAdmin)
	assistantToken := ts.seedUser(t, "caja1", authdomain.RoleAssistant)

	createBody, _ := json.Marshal(map[string]any{
		"name": "Foco LED",
		"variants": []map[string]any{
			{"name": "9W", "sale_price": 10.0, "stock": 5},
		},
	})
	resp := ts.do(t, http.MethodPost, "/api/products", adminToken, createBody)
	if resp.Code != http.StatusOK {
		t.Fatalf("create product status %d", resp.Code)
	}
	var created struct {
		Data struct {
			Product catalogdomain.Product `json:"product"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create: %v", err)
	}

	resp = ts.do(t, http.MethodDelete, "/api/products/"+created.Data.Product.ID.String(), assistantToken, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for assistant archive, got %d", resp.Code)
	}

	resp = ts.do(t, http.MethodDelete, "/api/products/"+created.Data.Product.ID.String(), adminToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin archive, got %d", resp.Code)
	}
}

func TestCreateQuotationRejectsUnknownPaymentTerm(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedUser(t, "admin1", authdomain.RoleAdmin)

	body, _ := json.Marshal(map[string]any{
		"customer_name":  "Maria",
		"customer_phone": "77912345",
		"payment_term":   "tarjeta",
		"items": []map[string]any{
			{"variant_id": "1", "description": "Foco", "quantity": 1, "unit_price": 10.0},
		},
	})
	resp := ts.do(t, http.MethodPost, "/api/quotations", token, body)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown payment term, got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Error struct {
			Code   string `json:"code"`
			Fields []struct {
				Field string `json:"field"`
				Code  string `json:"code"`
			} `json:"fields"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Code != "validation_failed" {
		t.Fatalf("expected validation_failed, got %q", envelope.Error.Code)
	}
	if len(envelope.Error.Fields) != 1 || envelope.Error.Fields[0].Field != "payment_term" || envelope.Error.Fields[0].Code != "paymentterm" {
		t.Fatalf("expected payment_term field error, got %+v", envelope.Error.Fields)
	}
}

func TestLoginRateLimited(t *testing.T) {
	ts := newTestServer(t)
	ts.srv.loginLimiter = newRateLimiter(2, time.Minute)

	body, _ := json.Marshal(map[string]string{"username": "nadie", "password": "x"})
	for i := 0; i < 2; i++ {
		resp := ts.do(t, http.MethodPost, "/api/auth/login", "", body)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.Code)
		}
	}
	resp := ts.do(t, http.MethodPost, "/api/auth/login", "", body)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", resp.Code)
	}
}
