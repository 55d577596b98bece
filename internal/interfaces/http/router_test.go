package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/application/notify"
	"github.com/jhoicas/Mantenimiento-api/internal/application/parts"
	"github.com/jhoicas/Mantenimiento-api/internal/application/templates"
	"github.com/jhoicas/Mantenimiento-api/internal/application/workorder"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Mantenimiento-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Mantenimiento-api/pkg/jwt"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// buildAPI arma la API completa sobre el almacenamiento en memoria.
func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	log := logger.Nop()
	dispatcher := notify.NewDispatcher(notify.NewLogNotifier(log), log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		LifecycleUC: workorder.NewLifecycleUseCase(store.WorkOrders(), store.Templates(), nil, dispatcher, log),
		LedgerUC: parts.NewLedgerUseCase(memory.NewTxRunner(store), store.WorkOrders(), store.Stocks(),
			store.LineItems(), store.Movements(), parts.Options{}),
		TemplateUC: templates.NewTemplateUseCase(store.Templates()),
		JWTSecret:  testJWTSecret,
	})
	return app
}

func bearer(t *testing.T, tenantID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, "user-"+role, tenantID, testSiteID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func call(t *testing.T, app *fiber.App, method, path, auth, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func dataField(t *testing.T, env envelope, key string) interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &m))
	return m[key]
}

// ──────────────────────────────────────────────────────────────────────────────
// Órdenes de trabajo
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_AprobacionPendienteRetorna409(t *testing.T) {
	app := buildAPI(t)
	tech := bearer(t, testTenantID, apphttp.RoleTecnico)

	status, env := call(t, app, http.MethodPost, "/api/work-orders", tech,
		`{"title":"Compresor 3","assigned_to":"user-tecnico","approvers":["user-supervisor"]}`)
	require.Equal(t, http.StatusCreated, status, env.Message)
	id := dataField(t, env, "id").(string)

	status, _ = call(t, app, http.MethodPatch, "/api/work-orders/"+id+"/status", tech, `{"status":"in_progress"}`)
	require.Equal(t, http.StatusOK, status)

	status, env = call(t, app, http.MethodPatch, "/api/work-orders/"+id+"/status", tech, `{"status":"completed"}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "APPROVAL_PENDING", env.Code)
	assert.False(t, env.Success)

	// El técnico no puede aprobar; el supervisor sí.
	status, _ = call(t, app, http.MethodPost, "/api/work-orders/"+id+"/approval", tech, `{"approved":true}`)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = call(t, app, http.MethodPost, "/api/work-orders/"+id+"/approval", bearer(t, testTenantID, apphttp.RoleSupervisor), `{"approved":true}`)
	require.Equal(t, http.StatusOK, status)

	status, env = call(t, app, http.MethodPatch, "/api/work-orders/"+id+"/status", tech, `{"status":"completed"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "completed", dataField(t, env, "status"))

	status, env = call(t, app, http.MethodGet, "/api/work-orders/"+id+"/timeline", tech, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, dataField(t, env, "items"), 4)
}

func TestAPI_PermisoFaltanteIndicaTipos(t *testing.T) {
	app := buildAPI(t)
	tech := bearer(t, testTenantID, apphttp.RoleTecnico)
	_, env := call(t, app, http.MethodPost, "/api/work-orders", tech, `{"title":"Soldadura","required_permit_types":["hot_work"]}`)
	id := dataField(t, env, "id").(string)

	status, env := call(t, app, http.MethodPatch, "/api/work-orders/"+id+"/status", tech, `{"status":"in_progress"}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PERMITS_REQUIRED", env.Code)
	assert.Equal(t, []interface{}{"hot_work"}, dataField(t, env, "missing"))
}

func TestAPI_ValidacionDeEntrada(t *testing.T) {
	app := buildAPI(t)
	tech := bearer(t, testTenantID, apphttp.RoleTecnico)

	status, env := call(t, app, http.MethodPost, "/api/work-orders", tech, `{"title":"x","color":"rojo"}`)
	assert.Equal(t, http.StatusBadRequest, status, "campo desconocido")
	assert.Equal(t, "VALIDATION", env.Code)

	status, _ = call(t, app, http.MethodGet, "/api/work-orders/no-es-uuid", tech, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodGet, "/api/work-orders/"+uuid.New().String(), tech, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_OtroTenantNoVeLaOrden(t *testing.T) {
	app := buildAPI(t)
	_, env := call(t, app, http.MethodPost, "/api/work-orders", bearer(t, testTenantID, apphttp.RoleTecnico), `{"title":"Caldera"}`)
	id := dataField(t, env, "id").(string)

	status, _ := call(t, app, http.MethodGet, "/api/work-orders/"+id, bearer(t, uuid.New().String(), apphttp.RoleAdmin), "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_SyncObsoletoRetorna409(t *testing.T) {
	app := buildAPI(t)
	tech := bearer(t, testTenantID, apphttp.RoleTecnico)
	_, env := call(t, app, http.MethodPost, "/api/work-orders", tech, `{"title":"Chiller","priority":"low"}`)
	id := dataField(t, env, "id").(string)
	call(t, app, http.MethodPost, "/api/work-orders/"+id+"/sla-ack", tech, `{"kind":"response"}`)

	status, env := call(t, app, http.MethodPost, "/api/work-orders/"+id+"/sync", tech, `{"version":1,"payload":{"priority":"high"}}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "SYNC_CONFLICT", env.Code)
	assert.Equal(t, []interface{}{"priority"}, dataField(t, env, "conflicts"))
	assert.Equal(t, false, dataField(t, env, "applyChange"))

	status, env = call(t, app, http.MethodPost, "/api/work-orders/"+id+"/sync", tech, `{"version":2,"payload":{"priority":"high"}}`)
	assert.Equal(t, http.StatusOK, status, env.Message)
}

// ──────────────────────────────────────────────────────────────────────────────
// Repuestos y plantillas
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_ReservaYBorradoDeLinea(t *testing.T) {
	app := buildAPI(t)
	sup := bearer(t, testTenantID, apphttp.RoleSupervisor)

	status, env := call(t, app, http.MethodPost, "/api/parts/stock", sup, `{"part_id":"rodamiento-6204","on_hand":10,"unit_cost":5}`)
	require.Equal(t, http.StatusCreated, status, env.Message)
	stockID := dataField(t, env, "id").(string)

	_, env = call(t, app, http.MethodPost, "/api/work-orders", sup, `{"title":"Cambio de rodamiento"}`)
	woID := dataField(t, env, "id").(string)

	status, env = call(t, app, http.MethodPost, "/api/work-orders/"+woID+"/parts/reserve", sup,
		`{"stock_id":"`+stockID+`","quantity":3}`)
	require.Equal(t, http.StatusOK, status, env.Message)
	lineItem := dataField(t, env, "line_item").(map[string]interface{})
	lineID := lineItem["id"].(string)

	status, env = call(t, app, http.MethodPost, "/api/work-orders/"+woID+"/parts/issue", sup,
		`{"stock_id":"`+stockID+`","quantity":5}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "OVER_ISSUE", env.Code)

	status, _ = call(t, app, http.MethodDelete, "/api/work-orders/"+woID+"/parts/"+lineID, sup, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, env = call(t, app, http.MethodGet, "/api/parts/stock/"+stockID, sup, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "10", dataField(t, env, "on_hand"))

	status, env = call(t, app, http.MethodGet, "/api/work-orders/"+woID+"/parts/movements", sup, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, dataField(t, env, "items"), 2)
}

func TestAPI_PlantillasAntesDeID(t *testing.T) {
	app := buildAPI(t)

	status, _ := call(t, app, http.MethodPost, "/api/work-orders/templates", bearer(t, testTenantID, apphttp.RoleTecnico),
		`{"name":"Lubricación","title":"Lubricar","priority":"low"}`)
	assert.Equal(t, http.StatusForbidden, status)

	sup := bearer(t, testTenantID, apphttp.RoleSupervisor)
	status, env := call(t, app, http.MethodPost, "/api/work-orders/templates", sup,
		`{"name":"Lubricación","title":"Lubricar","priority":"low"}`)
	require.Equal(t, http.StatusCreated, status, env.Message)
	tplID := dataField(t, env, "id").(string)

	status, env = call(t, app, http.MethodGet, "/api/work-orders/templates", sup, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, dataField(t, env, "items"), 1)

	status, env = call(t, app, http.MethodPost, "/api/work-orders", sup, `{"template_id":"`+tplID+`"}`)
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.Equal(t, "Lubricar", dataField(t, env, "title"))
}
