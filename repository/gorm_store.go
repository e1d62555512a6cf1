package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yunshui/materials-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewGormStore builds a Store on top of an open gorm connection (postgres or sqlite)
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Driver:        db.Dialector.Name(),
		Materials:     &gormMaterials{db: db},
		Orders:        &gormOrders{db: db},
		Projects:      &gormProjects{db: db},
		StatusUpdates: &gormStatusUpdates{db: db},
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("failed to get database instance: %w", err)
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

// Migrate creates or updates the schema for every persisted model
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func notFoundAsNil(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

type gormMaterials struct {
	db *gorm.DB
}

func (r *gormMaterials) Create(ctx context.Context, m *models.Material) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormMaterials) FindByID(ctx context.Context, id uint) (*models.Material, error) {
	var m models.Material
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &m, nil
}

func (r *gormMaterials) List(ctx context.Context, f MaterialFilter) ([]models.Material, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Material{})
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Supplier != "" {
		query = query.Where("supplier = ?", f.Supplier)
	}
	if f.Name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Name)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Material
	query = query.Order("id ASC").Offset(f.Offset)
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *gormMaterials) Update(ctx context.Context, m *models.Material) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *gormMaterials) UpdateQuantity(ctx context.Context, id uint, quantity int) error {
	return r.db.WithContext(ctx).Model(&models.Material{}).Where("id = ?", id).Update("quantity", quantity).Error
}

func (r *gormMaterials) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Material{}, id).Error
}

type gormOrders struct {
	db *gorm.DB
}

func (r *gormOrders) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error
}

func (r *gormOrders) CreateItem(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gormOrders) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&o, id).Error
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &o, nil
}

func (r *gormOrders) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *gormOrders) Update(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(o).Error
}

func (r *gormOrders) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Order{}, id).Error
}

type gormProjects struct {
	db *gorm.DB
}

func (r *gormProjects) Create(ctx context.Context, p *models.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *gormProjects) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &p, nil
}

func (r *gormProjects) FindByOrderID(ctx context.Context, orderID uint) (*models.Project, error) {
	var p models.Project
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").First(&p).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &p, nil
}

func (r *gormProjects) FindByName(ctx context.Context, name string) (*models.Project, error) {
	var p models.Project
	err := r.db.WithContext(ctx).
		Where("LOWER(project_name) = ?", strings.ToLower(name)).
		Order("id ASC").
		First(&p).Error
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &p, nil
}

func (r *gormProjects) List(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *gormProjects) Update(ctx context.Context, p *models.Project) error {
	return r.db.WithContext(ctx).Save(p).Error
}

type gormStatusUpdates struct {
	db *gorm.DB
}

func (r *gormStatusUpdates) Create(ctx context.Context, u *models.StatusUpdate) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *gormStatusUpdates) ListByProject(ctx context.Context, projectID uint) ([]models.StatusUpdate, error) {
	var updates []models.StatusUpdate
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&updates).Error
	if err != nil {
		return nil, err
	}
	return updates, nil
}
