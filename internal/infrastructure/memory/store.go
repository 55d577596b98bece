// Package memory implementa los puertos de persistencia en memoria. Se usa con
// STORE_DRIVER=memory y en los tests de casos de uso.
package memory

import (
	"sync"
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// Store datos compartidos por todos los repositorios en memoria. Un único mutex
// serializa las operaciones; TxRunner lo retiene durante toda la transacción.
type Store struct {
	mu         sync.Mutex
	workOrders map[string]*entity.WorkOrder
	stocks     map[string]*entity.PartStock
	lineItems  map[string]*entity.WorkOrderPartLineItem
	movements  []*entity.InventoryMovement
	templates  map[string]*entity.WorkOrderTemplate
	locks      map[string]time.Time
	clock      func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		workOrders: map[string]*entity.WorkOrder{},
		stocks:     map[string]*entity.PartStock{},
		lineItems:  map[string]*entity.WorkOrderPartLineItem{},
		movements:  []*entity.InventoryMovement{},
		templates:  map[string]*entity.WorkOrderTemplate{},
		locks:      map[string]time.Time{},
		clock:      time.Now,
	}
}

// SetClock reemplaza el reloj usado por el candado de trabajos.
func (s *Store) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// WorkOrders repositorio de órdenes.
func (s *Store) WorkOrders() *WorkOrderRepository { return &WorkOrderRepository{s: s} }

// Stocks repositorio de existencias.
func (s *Store) Stocks() *PartStockRepository { return &PartStockRepository{s: s} }

// LineItems repositorio de líneas de repuestos.
func (s *Store) LineItems() *PartLineItemRepository { return &PartLineItemRepository{s: s} }

// Movements repositorio del libro de movimientos.
func (s *Store) Movements() *InventoryMovementRepository { return &InventoryMovementRepository{s: s} }

// Templates repositorio de plantillas.
func (s *Store) Templates() *TemplateRepository { return &TemplateRepository{s: s} }

// JobLock candado de trabajos con TTL.
func (s *Store) JobLock() *JobLock { return &JobLock{s: s} }

// view ejecuta fn con el mutex tomado, salvo que el repositorio pertenezca a
// una transacción que ya lo retiene.
func (s *Store) view(inTx bool, fn func()) {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn()
}

type snapshot struct {
	workOrders map[string]*entity.WorkOrder
	stocks     map[string]*entity.PartStock
	lineItems  map[string]*entity.WorkOrderPartLineItem
	movements  int
}

// snapshot copia el estado mutable; los movimientos solo crecen, basta su longitud.
func (s *Store) snapshot() snapshot {
	snap := snapshot{
		workOrders: make(map[string]*entity.WorkOrder, len(s.workOrders)),
		stocks:     make(map[string]*entity.PartStock, len(s.stocks)),
		lineItems:  make(map[string]*entity.WorkOrderPartLineItem, len(s.lineItems)),
		movements:  len(s.movements),
	}
	for k, v := range s.workOrders {
		snap.workOrders[k] = v.Clone()
	}
	for k, v := range s.stocks {
		c := *v
		snap.stocks[k] = &c
	}
	for k, v := range s.lineItems {
		c := *v
		snap.lineItems[k] = &c
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.workOrders = snap.workOrders
	s.stocks = snap.stocks
	s.lineItems = snap.lineItems
	s.movements = s.movements[:snap.movements]
}
