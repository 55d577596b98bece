package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Mantenimiento-api/internal/application/parts"
	"github.com/jhoicas/Mantenimiento-api/internal/application/templates"
	"github.com/jhoicas/Mantenimiento-api/internal/application/workorder"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LifecycleUC *workorder.LifecycleUseCase
	LedgerUC    *parts.LedgerUseCase
	TemplateUC  *templates.TemplateUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	managers := RequireRole(RoleAdmin, RoleSupervisor)

	// Plantillas: antes de /:id para que "templates" no se tome como ID.
	tplHandler := NewTemplateHandler(deps.TemplateUC)
	tpl := api.Group("/work-orders/templates")
	tpl.Get("/", tplHandler.List)
	tpl.Get("/:id", tplHandler.GetByID)
	tpl.Post("/", managers, tplHandler.Create)
	tpl.Put("/:id", managers, tplHandler.Update)
	tpl.Delete("/:id", managers, tplHandler.Delete)

	woHandler := NewWorkOrderHandler(deps.LifecycleUC)
	partsHandler := NewPartsHandler(deps.LedgerUC)
	wo := api.Group("/work-orders")
	wo.Post("/", woHandler.Create)
	wo.Get("/:id", woHandler.GetByID)
	wo.Get("/:id/timeline", woHandler.Timeline)
	wo.Patch("/:id/status", woHandler.UpdateStatus)
	wo.Post("/:id/approval", managers, woHandler.Approval)
	wo.Post("/:id/sla-ack", woHandler.SlaAck)
	wo.Post("/:id/permits", woHandler.RecordPermit)
	wo.Post("/:id/loto/:index/verify", woHandler.VerifyLoto)
	wo.Post("/:id/sync", woHandler.Sync)

	wo.Get("/:id/parts", partsHandler.ListLineItems)
	wo.Get("/:id/parts/movements", partsHandler.ListMovements)
	wo.Post("/:id/parts/reserve", partsHandler.Reserve)
	wo.Post("/:id/parts/issue", partsHandler.Issue)
	wo.Post("/:id/parts/return", partsHandler.Return)
	wo.Delete("/:id/parts/:lineItemId", partsHandler.DeleteLineItem)

	stock := api.Group("/parts/stock")
	stock.Post("/", managers, partsHandler.CreateStock)
	stock.Get("/:id", partsHandler.GetStock)
}
