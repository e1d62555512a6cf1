package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yunshui/materials-api/models"
)

// NewMemoryStore builds a process-local Store. The mutex only keeps the maps
// memory-safe; multi-step service operations are not serialized by it.
func NewMemoryStore() *Store {
	m := &memoryStore{
		materials: make(map[uint]models.Material),
		orders:    make(map[uint]models.Order),
		items:     make(map[uint][]models.OrderItem),
		projects:  make(map[uint]models.Project),
	}
	return &Store{
		Driver:        "memory",
		Materials:     (*memoryMaterials)(m),
		Orders:        (*memoryOrders)(m),
		Projects:      (*memoryProjects)(m),
		StatusUpdates: (*memoryStatusUpdates)(m),
	}
}

type memoryStore struct {
	mu sync.RWMutex

	materials      map[uint]models.Material
	nextMaterialID uint

	orders      map[uint]models.Order
	items       map[uint][]models.OrderItem // keyed by order id
	nextOrderID uint
	nextItemID  uint

	projects      map[uint]models.Project
	nextProjectID uint

	updates      []models.StatusUpdate // insertion order
	nextUpdateID uint
}

func stamp(created, updated *time.Time) {
	now := time.Now()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil && updated.IsZero() {
		*updated = now
	}
}

func sortedKeys[V any](m map[uint]V) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

type memoryMaterials memoryStore

func (r *memoryMaterials) Create(ctx context.Context, m *models.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextMaterialID++
	m.ID = r.nextMaterialID
	stamp(&m.CreatedAt, &m.UpdatedAt)
	r.materials[m.ID] = *m
	return nil
}

func (r *memoryMaterials) FindByID(ctx context.Context, id uint) (*models.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.materials[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *memoryMaterials) List(ctx context.Context, f MaterialFilter) ([]models.Material, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name := strings.ToLower(f.Name)
	var matched []models.Material
	for _, id := range sortedKeys(r.materials) {
		m := r.materials[id]
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.Category != "" && m.Category != f.Category {
			continue
		}
		if f.Supplier != "" && m.Supplier != f.Supplier {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(m.Name), name) {
			continue
		}
		matched = append(matched, m)
	}

	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return []models.Material{}, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (r *memoryMaterials) Update(ctx context.Context, m *models.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.UpdatedAt = time.Now()
	r.materials[m.ID] = *m
	return nil
}

func (r *memoryMaterials) UpdateQuantity(ctx context.Context, id uint, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.materials[id]
	if !ok {
		return nil
	}
	m.Quantity = quantity
	m.UpdatedAt = time.Now()
	r.materials[id] = m
	return nil
}

func (r *memoryMaterials) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.materials, id)
	return nil
}

type memoryOrders memoryStore

// withItems returns a copy of the order carrying copies of its items
func (r *memoryOrders) withItems(o models.Order) models.Order {
	items := r.items[o.ID]
	o.Items = make([]models.OrderItem, len(items))
	copy(o.Items, items)
	return o
}

func (r *memoryOrders) Create(ctx context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextOrderID++
	o.ID = r.nextOrderID
	stamp(&o.CreatedAt, &o.UpdatedAt)
	stored := *o
	stored.Items = nil
	r.orders[o.ID] = stored
	return nil
}

func (r *memoryOrders) CreateItem(ctx context.Context, item *models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextItemID++
	item.ID = r.nextItemID
	r.items[item.OrderID] = append(r.items[item.OrderID], *item)
	return nil
}

func (r *memoryOrders) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	o = r.withItems(o)
	return &o, nil
}

func (r *memoryOrders) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := []models.Order{}
	for _, id := range sortedKeys(r.orders) {
		o := r.orders[id]
		if f.Type != "" && o.Type != f.Type {
			continue
		}
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		orders = append(orders, r.withItems(o))
	}
	// newest first, matching the SQL ordering
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *memoryOrders) Update(ctx context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.UpdatedAt = time.Now()
	stored := *o
	stored.Items = nil
	r.orders[o.ID] = stored
	return nil
}

func (r *memoryOrders) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	delete(r.orders, id)
	return nil
}

type memoryProjects memoryStore

func (r *memoryProjects) Create(ctx context.Context, p *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextProjectID++
	p.ID = r.nextProjectID
	stamp(&p.CreatedAt, &p.UpdatedAt)
	r.projects[p.ID] = *p
	return nil
}

func (r *memoryProjects) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memoryProjects) FindByOrderID(ctx context.Context, orderID uint) (*models.Project, error) {
	return r.findFirst(func(p models.Project) bool {
		return p.OrderID != nil && *p.OrderID == orderID
	}), nil
}

func (r *memoryProjects) FindByName(ctx context.Context, name string) (*models.Project, error) {
	return r.findFirst(func(p models.Project) bool {
		return strings.EqualFold(p.ProjectName, name)
	}), nil
}

func (r *memoryProjects) findFirst(match func(models.Project) bool) *models.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range sortedKeys(r.projects) {
		if p := r.projects[id]; match(p) {
			return &p
		}
	}
	return nil
}

func (r *memoryProjects) List(ctx context.Context) ([]models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := sortedKeys(r.projects)
	projects := make([]models.Project, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		projects = append(projects, r.projects[keys[i]])
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (r *memoryProjects) Update(ctx context.Context, p *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	r.projects[p.ID] = *p
	return nil
}

type memoryStatusUpdates memoryStore

func (r *memoryStatusUpdates) Create(ctx context.Context, u *models.StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextUpdateID++
	u.ID = r.nextUpdateID
	stamp(&u.CreatedAt, nil)
	r.updates = append(r.updates, *u)
	return nil
}

func (r *memoryStatusUpdates) ListByProject(ctx context.Context, projectID uint) ([]models.StatusUpdate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	history := []models.StatusUpdate{}
	for _, u := range r.updates {
		if u.ProjectID == projectID {
			history = append(history, u)
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.Before(history[j].CreatedAt)
	})
	return history, nil
}
