package controllers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yunshui/materials-api/models"
	"github.com/yunshui/materials-api/repository"
	"github.com/yunshui/materials-api/services"
	"github.com/yunshui/materials-api/tests/testutil"
)

const (
	adminID     = "auth0|admin"
	pmID        = "auth0|pm"
	amID        = "auth0|am"
	warehouseID = "auth0|warehouse"
)

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	svc    *services.Services
	images *services.MockImageService
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	images := services.NewMockImageService()
	svc := services.New(repository.NewMemoryStore(), images, nil, nil)

	router := gin.New()
	NewHandler(svc, t.TempDir()).RegisterRoutes(router.Group("/api/v1"), testutil.HeaderAuthMiddleware())
	return &testAPI{t: t, router: router, svc: svc, images: images}
}

func (a *testAPI) call(method, path string, body interface{}, subject string, role models.Role) (*httptest.ResponseRecorder, testutil.Envelope) {
	a.t.Helper()
	return testutil.Call(a.t, a.router, method, path, body, subject, role)
}

func (a *testAPI) material(name string, typ models.MaterialType, price string) *models.Material {
	a.t.Helper()
	m, err := a.svc.Catalog.Create(a.t.Context(), services.MaterialInput{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: 10,
		Type:     typ,
	})
	require.NoError(a.t, err)
	return m
}

func (a *testAPI) order(role models.Role, materialID uint, quantity int) *models.Order {
	a.t.Helper()
	o, err := a.svc.Orders.CreateOrder(a.t.Context(), services.CreateOrderInput{
		CallerID: "auth0|seed",
		Role:     role,
		Items:    []services.OrderItemInput{{MaterialID: materialID, Quantity: quantity}},
	})
	require.NoError(a.t, err)
	return o
}

func (a *testAPI) uploadImage(path, filename string, content []byte, subject string, role models.Role) *httptest.ResponseRecorder {
	a.t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(a.t, err)
	_, err = part.Write(content)
	require.NoError(a.t, err)
	require.NoError(a.t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Test-User", subject)
	req.Header.Set("X-Test-Role", string(role))

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}
