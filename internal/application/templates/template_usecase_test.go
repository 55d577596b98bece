package templates_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/templates"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/memory"
)

var (
	siteOne   = domain.Scope{TenantID: "tenant-a", SiteID: "site-1", UserID: "u-1"}
	siteTwo   = domain.Scope{TenantID: "tenant-a", SiteID: "site-2", UserID: "u-2"}
	tenantAll = domain.Scope{TenantID: "tenant-a", UserID: "admin"}
	otherOrg  = domain.Scope{TenantID: "tenant-b", UserID: "x"}
)

func request(name string) dto.CreateTemplateRequest {
	return dto.CreateTemplateRequest{
		Name: name, Title: "Inspección " + name, Priority: entity.PriorityMedium,
		LaborCost: decimal.NewFromInt(25),
	}
}

func TestTemplates_AlcancePorSede(t *testing.T) {
	ctx := context.Background()
	uc := templates.NewTemplateUseCase(memory.NewStore().Templates())

	local, err := uc.Create(ctx, siteOne, request("local"))
	require.NoError(t, err)
	assert.Equal(t, "site-1", local.SiteID)
	assert.Equal(t, []string{}, local.Approvers)

	global, err := uc.Create(ctx, tenantAll, request("global"))
	require.NoError(t, err)
	assert.Empty(t, global.SiteID)

	_, err = uc.GetByID(ctx, siteTwo, local.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.GetByID(ctx, siteTwo, global.ID)
	assert.NoError(t, err, "sin sede es visible en todo el tenant")
	_, err = uc.GetByID(ctx, otherOrg, global.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := uc.List(ctx, siteTwo, 20, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, global.ID, list.Items[0].ID)

	list, err = uc.List(ctx, siteOne, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
}

func TestTemplates_CrearEnOtraSede(t *testing.T) {
	req := request("x")
	req.SiteID = "site-9"
	_, err := templates.NewTemplateUseCase(memory.NewStore().Templates()).Create(context.Background(), siteOne, req)
	assert.ErrorIs(t, err, domain.ErrScopeViolation)
}

func TestTemplates_ActualizarYEliminar(t *testing.T) {
	ctx := context.Background()
	uc := templates.NewTemplateUseCase(memory.NewStore().Templates())
	tpl, err := uc.Create(ctx, siteOne, request("bomba"))
	require.NoError(t, err)

	title := "Inspección trimestral"
	high := entity.PriorityHigh
	got, err := uc.Update(ctx, siteOne, tpl.ID, dto.UpdateTemplateRequest{Title: &title, Priority: &high, Approvers: []string{"mgr-1"}})
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, entity.PriorityHigh, got.Priority)
	assert.Equal(t, []string{"mgr-1"}, got.Approvers)
	assert.Equal(t, "bomba", got.Name)

	bad := "urgentísima"
	_, err = uc.Update(ctx, siteOne, tpl.ID, dto.UpdateTemplateRequest{Priority: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.ErrorIs(t, uc.Delete(ctx, siteTwo, tpl.ID), domain.ErrNotFound)
	require.NoError(t, uc.Delete(ctx, siteOne, tpl.ID))
	_, err = uc.GetByID(ctx, siteOne, tpl.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTemplates_Validacion(t *testing.T) {
	uc := templates.NewTemplateUseCase(memory.NewStore().Templates())
	req := request("")
	_, err := uc.Create(context.Background(), siteOne, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
