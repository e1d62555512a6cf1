package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yunshui/materials-api/models"
	"github.com/yunshui/materials-api/services"
)

func TestCreateOrder(t *testing.T) {
	api := setupAPI(t)
	plywood := api.material("Plywood", models.MaterialTypeAuxiliary, "10")
	door := api.material("Oak door", models.MaterialTypeFinished, "800")

	items := func(materialID uint, qty int) []map[string]interface{} {
		return []map[string]interface{}{{"material_id": materialID, "quantity": qty}}
	}

	tests := []struct {
		name           string
		subject        string
		role           models.Role
		body           map[string]interface{}
		expectedStatus int
		expectedCode   string
		expectedType   models.MaterialType
		expectedTotal  string
	}{
		{
			name:           "PM orders auxiliary by default",
			subject:        pmID,
			role:           models.RolePM,
			body:           map[string]interface{}{"items": items(plywood.ID, 2)},
			expectedStatus: http.StatusCreated,
			expectedType:   models.MaterialTypeAuxiliary,
			expectedTotal:  "20",
		},
		{
			name:           "AM orders finished",
			subject:        amID,
			role:           models.RoleAM,
			body:           map[string]interface{}{"type": "FINISHED", "items": items(door.ID, 1)},
			expectedStatus: http.StatusCreated,
			expectedType:   models.MaterialTypeFinished,
			expectedTotal:  "800",
		},
		{
			name:           "admin orders either type",
			subject:        adminID,
			role:           models.RoleAdmin,
			body:           map[string]interface{}{"items": items(door.ID, 3)},
			expectedStatus: http.StatusCreated,
			expectedType:   models.MaterialTypeFinished,
			expectedTotal:  "2400",
		},
		{
			name:           "PM cannot order finished",
			subject:        pmID,
			role:           models.RolePM,
			body:           map[string]interface{}{"type": "FINISHED", "items": items(door.ID, 1)},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
		{
			name:           "PM with a finished material",
			subject:        pmID,
			role:           models.RolePM,
			body:           map[string]interface{}{"items": items(door.ID, 1)},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "WRONG_MATERIAL_TYPE",
		},
		{
			name:           "warehouse cannot order",
			subject:        warehouseID,
			role:           models.RoleWarehouse,
			body:           map[string]interface{}{"items": items(plywood.ID, 1)},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
		{
			name:           "unknown material",
			subject:        pmID,
			role:           models.RolePM,
			body:           map[string]interface{}{"items": items(999, 1)},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "MATERIAL_NOT_FOUND",
		},
		{
			name:           "empty items",
			subject:        pmID,
			role:           models.RolePM,
			body:           map[string]interface{}{"items": []interface{}{}},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "zero quantity",
			subject:        pmID,
			role:           models.RolePM,
			body:           map[string]interface{}{"items": items(plywood.ID, 0)},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "invalid type",
			subject:        adminID,
			role:           models.RoleAdmin,
			body:           map[string]interface{}{"type": "TOOLS", "items": items(plywood.ID, 1)},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := api.call(http.MethodPost, "/api/v1/orders", tt.body, tt.subject, tt.role)

			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, env.ErrorCode())
				return
			}
			var order models.Order
			env.DecodeData(t, &order)
			assert.Equal(t, tt.expectedType, order.Type)
			assert.Equal(t, models.OrderStatusPending, order.Status)
			assert.Equal(t, tt.subject, order.UserID)
			assert.Equal(t, tt.expectedTotal, order.TotalAmount.String())
			assert.Len(t, order.Items, 1)
		})
	}
}

func TestCreateOrderWithProject(t *testing.T) {
	api := setupAPI(t)
	plywood := api.material("Plywood", models.MaterialTypeAuxiliary, "10")
	body := func(extra map[string]interface{}) map[string]interface{} {
		b := map[string]interface{}{"items": []map[string]interface{}{{"material_id": plywood.ID, "quantity": 1}}}
		for k, v := range extra {
			b[k] = v
		}
		return b
	}

	w, env := api.call(http.MethodPost, "/api/v1/orders", body(map[string]interface{}{"new_project_name": "Taipei Lobby"}), pmID, models.RolePM)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order models.Order
	env.DecodeData(t, &order)
	require.NotNil(t, order.ProjectID)

	w, env = api.call(http.MethodPost, "/api/v1/orders", body(map[string]interface{}{"new_project_name": "taipei lobby"}), pmID, models.RolePM)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_PROJECT_NAME", env.ErrorCode())

	w, env = api.call(http.MethodPost, "/api/v1/orders", body(map[string]interface{}{"project_id": 999}), pmID, models.RolePM)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PROJECT_NOT_FOUND", env.ErrorCode())

	w, env = api.call(http.MethodPost, "/api/v1/orders", body(map[string]interface{}{"project_id": *order.ProjectID}), pmID, models.RolePM)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var second models.Order
	env.DecodeData(t, &second)
	assert.Equal(t, order.ProjectID, second.ProjectID)
}

func TestListOrders(t *testing.T) {
	api := setupAPI(t)
	plywood := api.material("Plywood", models.MaterialTypeAuxiliary, "10")
	door := api.material("Oak door", models.MaterialTypeFinished, "800")
	api.order(models.RolePM, plywood.ID, 1)
	api.order(models.RoleAM, door.ID, 1)
	api.order(models.RoleAM, door.ID, 2)

	tests := []struct {
		name     string
		subject  string
		role     models.Role
		query    string
		expected int
		typ      models.MaterialType
	}{
		{name: "admin sees all", subject: adminID, role: models.RoleAdmin, expected: 3},
		{name: "admin filters by type", subject: adminID, role: models.RoleAdmin, query: "?type=finished", expected: 2, typ: models.MaterialTypeFinished},
		{name: "PM is limited to auxiliary", subject: pmID, role: models.RolePM, query: "?type=FINISHED", expected: 1, typ: models.MaterialTypeAuxiliary},
		{name: "AM is limited to finished", subject: amID, role: models.RoleAM, expected: 2, typ: models.MaterialTypeFinished},
		{name: "warehouse sees all", subject: warehouseID, role: models.RoleWarehouse, expected: 3},
		{name: "status filter", subject: adminID, role: models.RoleAdmin, query: "?status=approved", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := api.call(http.MethodGet, "/api/v1/orders"+tt.query, nil, tt.subject, tt.role)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var orders []services.EnrichedOrder
			env.DecodeData(t, &orders)
			assert.Len(t, orders, tt.expected)
			for _, o := range orders {
				if tt.typ != "" {
					assert.Equal(t, tt.typ, o.Type)
				}
				assert.Equal(t, services.StatusNotSet, o.StatusSummary.Order)
			}
		})
	}

	w, env := api.call(http.MethodGet, "/api/v1/orders?status=LOST", nil, adminID, models.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PARAMETER", env.ErrorCode())
}

func TestGetOrder(t *testing.T) {
	api := setupAPI(t)
	plywood := api.material("Plywood", models.MaterialTypeAuxiliary, "10")
	order := api.order(models.RolePM, plywood.ID, 2)

	w, env := api.call(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", order.ID), nil, pmID, models.RolePM)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var enriched services.EnrichedOrder
	env.DecodeData(t, &enriched)
	assert.Equal(t, order.ID, enriched.ID)
	assert.Nil(t, enriched.Project)
	assert.Equal(t, services.StatusNotSet, enriched.StatusSummary.Check)

	projects, err := api.svc.Projects.ListProjects(t.Context())
	require.NoError(t, err)
	assert.Empty(t, projects, "reading an order must not create a project")

	w, env = api.call(http.MethodGet, "/api/v1/orders/999", nil, pmID, models.RolePM)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ORDER_NOT_FOUND", env.ErrorCode())
}

func TestUpdateOrderStatus(t *testing.T) {
	api := setupAPI(t)
	plywood := api.material("Plywood", models.MaterialTypeAuxiliary, "10")
	order := api.order(models.RolePM, plywood.ID, 1)
	path := fmt.Sprintf("/api/v1/orders/%d/status", order.ID)

	w, _ := api.call(http.MethodPatch, path, map[string]interface{}{"status": "APPROVED"}, pmID, models.RolePM)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := api.call(http.MethodPatch, path, map[string]interface{}{"status": "approved"}, adminID, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Order
	env.DecodeData(t, &updated)
	assert.Equal(t, models.OrderStatusApproved, updated.Status)

	w, env = api.call(http.MethodPatch, path, map[string]interface{}{"status": "SHIPPED"}, adminID, models.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATUS", env.ErrorCode())
}

func TestDeleteOrder(t *testing.T) {
	api := setupAPI(t)
	plywood := api.material("Plywood", models.MaterialTypeAuxiliary, "10")
	order := api.order(models.RolePM, plywood.ID, 1)
	path := fmt.Sprintf("/api/v1/orders/%d", order.ID)

	w, _ := api.call(http.MethodDelete, path, nil, pmID, models.RolePM)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.call(http.MethodDelete, path, nil, adminID, models.RoleAdmin)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := api.call(http.MethodGet, path, nil, adminID, models.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ORDER_NOT_FOUND", env.ErrorCode())
}

func TestEnsureProject(t *testing.T) {
	api := setupAPI(t)
	plywood := api.material("Plywood", models.MaterialTypeAuxiliary, "10")
	order := api.order(models.RolePM, plywood.ID, 1)
	path := fmt.Sprintf("/api/v1/orders/%d/project", order.ID)

	w, env := api.call(http.MethodPost, path, nil, pmID, models.RolePM)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var first models.Project
	env.DecodeData(t, &first)
	assert.Equal(t, services.ProjectName(order), first.ProjectName)
	assert.Equal(t, models.ProjectStatusActive, first.OverallStatus)

	w, env = api.call(http.MethodPost, path, nil, pmID, models.RolePM)
	require.Equal(t, http.StatusOK, w.Code)
	var second models.Project
	env.DecodeData(t, &second)
	assert.Equal(t, first.ID, second.ID)

	w, env = api.call(http.MethodPost, "/api/v1/orders/999/project", nil, pmID, models.RolePM)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ORDER_NOT_FOUND", env.ErrorCode())
}
