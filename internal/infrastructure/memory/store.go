// Package memory implementa los puertos de persistencia en memoria del proceso, con el mismo
// contrato transaccional que PostgreSQL: unidades de trabajo todo-o-nada, lectura de datos
// confirmados fuera de la transacción y bloqueo exclusivo por mercancía.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var (
	_ inventory.TxRunner       = (*Store)(nil)
	_ inventory.SnapshotReader = (*Store)(nil)
)

// Store estado confirmado. mu protege los mapas; las secciones críticas son cortas y nunca
// se mantienen mientras se espera un bloqueo de mercancía.
type Store struct {
	mu           sync.RWMutex
	goods        map[string]entity.Goods
	lots         map[string]entity.Lot
	lotsByGoods  map[string][]string // goods id -> lot ids en orden de creación
	movements    []entity.Movement
	receivings   map[string]entity.ReceivingOrder
	receivingNos map[string]string
	shippings    map[string]entity.ShippingOrder
	shippingNos  map[string]string
	users        map[string]entity.User

	lotSeq atomic.Int64
	locks  *goodsLocks
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		goods:        make(map[string]entity.Goods),
		lots:         make(map[string]entity.Lot),
		lotsByGoods:  make(map[string][]string),
		receivings:   make(map[string]entity.ReceivingOrder),
		receivingNos: make(map[string]string),
		shippings:    make(map[string]entity.ShippingOrder),
		shippingNos:  make(map[string]string),
		users:        make(map[string]entity.User),
		locks:        &goodsLocks{m: make(map[string]chan struct{})},
	}
}

// Repositorios sin transacción (lecturas confirmadas y catálogo).
func (s *Store) Goods() *GoodsRepo { return &GoodsRepo{s: s} }
func (s *Store) Lots() *LotRepo { return &LotRepo{s: s} }
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }
func (s *Store) Reports() *ReportRepo { return &ReportRepo{s: s} }
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Run ejecuta fn dentro de una unidad de trabajo. Los cambios quedan en staging y solo se
// aplican al estado confirmado si fn no falla; los bloqueos de mercancía se liberan siempre.
func (s *Store) Run(ctx context.Context, fn func(
	goodsRepo repository.GoodsRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
	orderRepo repository.OrderRepository,
) error) error {
	tx := &Tx{
		s:    s,
		held: make(map[string]func()),
		lots: make(map[string]*entity.Lot),
	}
	defer tx.release()

	if err := fn(&GoodsRepo{s: s}, &LotRepo{s: s, tx: tx}, &MovementRepo{s: s, tx: tx}, &OrderRepo{s: s, tx: tx}); err != nil {
		return err
	}
	return tx.commit()
}

// ReadSnapshot copia lotes y libro bajo un único RLock y ejecuta fn sobre la copia; los commits
// posteriores no la alteran.
func (s *Store) ReadSnapshot(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := NewStore()
	s.mu.RLock()
	for id, g := range s.goods {
		snap.goods[id] = g
	}
	for id, l := range s.lots {
		snap.lots[id] = l
	}
	for id, ids := range s.lotsByGoods {
		snap.lotsByGoods[id] = append([]string(nil), ids...)
	}
	snap.movements = append([]entity.Movement(nil), s.movements...)
	s.mu.RUnlock()

	return fn(snap.Lots(), snap.Movements())
}

// Tx cambios pendientes de una unidad de trabajo.
type Tx struct {
	s          *Store
	held       map[string]func()
	lots       map[string]*entity.Lot // lotes nuevos o modificados
	newLots    []string
	movements  []entity.Movement
	receivings []entity.ReceivingOrder
	shippings  []entity.ShippingOrder
}

func (tx *Tx) lock(ctx context.Context, goodsIDs []string) error {
	ids := make([]string, 0, len(goodsIDs))
	seen := make(map[string]bool, len(goodsIDs))
	for _, id := range goodsIDs {
		if seen[id] || tx.held[id] != nil {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	// Orden global fijo para evitar interbloqueos entre órdenes con mercancías cruzadas.
	sort.Strings(ids)
	for _, id := range ids {
		release, err := tx.s.locks.acquire(ctx, id)
		if err != nil {
			return err
		}
		tx.held[id] = release
	}
	return nil
}

func (tx *Tx) release() {
	for id, release := range tx.held {
		release()
		delete(tx.held, id)
	}
}

func (tx *Tx) commit() error {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range tx.receivings {
		if _, dup := s.receivingNos[o.OrderNo]; dup {
			return domain.ErrDuplicateOrderNumber
		}
	}
	for _, o := range tx.shippings {
		if _, dup := s.shippingNos[o.OrderNo]; dup {
			return domain.ErrDuplicateOrderNumber
		}
	}

	for _, o := range tx.receivings {
		s.receivings[o.ID] = o
		s.receivingNos[o.OrderNo] = o.ID
	}
	for _, o := range tx.shippings {
		s.shippings[o.ID] = o
		s.shippingNos[o.OrderNo] = o.ID
	}
	for _, id := range tx.newLots {
		l := tx.lots[id]
		s.lotsByGoods[l.GoodsID] = append(s.lotsByGoods[l.GoodsID], id)
	}
	for id, l := range tx.lots {
		s.lots[id] = *l
	}
	s.movements = append(s.movements, tx.movements...)
	return nil
}

// lotsFor devuelve copias de los lotes de la mercancía vistos desde la transacción (staging
// sobre confirmado), en orden de creación.
func (tx *Tx) lotsFor(goodsID string) []*entity.Lot {
	s := tx.s
	s.mu.RLock()
	var out []*entity.Lot
	for _, id := range s.lotsByGoods[goodsID] {
		if staged, ok := tx.lots[id]; ok {
			c := *staged
			out = append(out, &c)
			continue
		}
		c := s.lots[id]
		out = append(out, &c)
	}
	s.mu.RUnlock()
	for _, id := range tx.newLots {
		if l := tx.lots[id]; l.GoodsID == goodsID {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// goodsLocks un semáforo binario por mercancía; la espera respeta la cancelación del contexto.
type goodsLocks struct {
	mu sync.Mutex
	m  map[string]chan struct{}
}

func (l *goodsLocks) acquire(ctx context.Context, goodsID string) (func(), error) {
	l.mu.Lock()
	ch, ok := l.m[goodsID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.m[goodsID] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
