package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yunshui/materials-api/clock"
	"github.com/yunshui/materials-api/metrics"
	"github.com/yunshui/materials-api/models"
	"github.com/yunshui/materials-api/repository"
)

var testEpoch = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	ctx      context.Context
	store    *repository.Store
	clock    *clock.FakeClock
	registry *prometheus.Registry
	images   *MockImageService
	svc      *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		ctx:      context.Background(),
		store:    repository.NewMemoryStore(),
		clock:    clock.NewFakeClock(testEpoch),
		registry: prometheus.NewRegistry(),
		images:   NewMockImageService(),
	}
	env.svc = New(env.store, env.images, env.clock, metrics.New(env.registry))
	return env
}

func (e *testEnv) material(t *testing.T, name string, typ models.MaterialType, price string) *models.Material {
	t.Helper()
	m, err := e.svc.Catalog.Create(e.ctx, MaterialInput{
		Name:     name,
		Category: "board",
		Price:    decimal.RequireFromString(price),
		Quantity: 100,
		Supplier: "Acme",
		Type:     typ,
	})
	require.NoError(t, err)
	return m
}

func (e *testEnv) order(t *testing.T, role models.Role, items ...OrderItemInput) *models.Order {
	t.Helper()
	o, err := e.svc.Orders.CreateOrder(e.ctx, CreateOrderInput{
		CallerID: "auth0|tester",
		Role:     role,
		Items:    items,
	})
	require.NoError(t, err)
	return o
}

// linkedOrder creates an auxiliary order with a project
func (e *testEnv) linkedOrder(t *testing.T) (*models.Order, *models.Project) {
	t.Helper()
	m := e.material(t, "Plywood", models.MaterialTypeAuxiliary, "10")
	o := e.order(t, models.RolePM, OrderItemInput{MaterialID: m.ID, Quantity: 2})
	p, err := e.svc.Projects.EnsureProjectForOrder(e.ctx, o)
	require.NoError(t, err)
	return o, p
}

// counterValue reads one series of a counter from the test registry
func (e *testEnv) counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := e.registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metric:
		for _, m := range family.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func imageHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}
