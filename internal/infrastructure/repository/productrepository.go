package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/infrastructure/persistence/mappers"
	"github.com/devicehub/devicehub/internal/infrastructure/persistence/models"
	"github.com/devicehub/devicehub/internal/shared/db"
	apperrors "github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

// ProductRepositoryImpl implements the product.Repository interface with gorm.
type ProductRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.ProductMapper
	logger logger.Interface
}

// NewProductRepository creates a new product repository instance.
func NewProductRepository(gdb *gorm.DB, logger logger.Interface) product.Repository {
	return &ProductRepositoryImpl{
		db:     gdb,
		mapper: mappers.NewProductMapper(),
		logger: logger,
	}
}

func (r *ProductRepositoryImpl) Create(ctx context.Context, p *product.Product) error {
	model, err := r.mapper.ToModel(p)
	if err != nil {
		return fmt.Errorf("failed to map product entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return product.ErrProductCodeExists
		}
		r.logger.Errorw("failed to create product in database", "error", err)
		return fmt.Errorf("failed to create product: %w", err)
	}

	if err := p.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set product ID: %w", err)
	}

	r.logger.Debugw("product created", "id", model.ID, "code", model.Code)
	return nil
}

// Update writes the product row including the linked device list, guarded by version.
func (r *ProductRepositoryImpl) Update(ctx context.Context, p *product.Product) error {
	model, err := r.mapper.ToModel(p)
	if err != nil {
		return fmt.Errorf("failed to map product entity: %w", err)
	}
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.ProductModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]any{
			"name":           model.Name,
			"code":           model.Code,
			"device_type":    model.DeviceType,
			"description":    model.Description,
			"linked_devices": model.LinkedDevices,
			"updated_at":     model.UpdatedAt,
			"version":        model.Version + 1,
		})

	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return product.ErrProductCodeExists
		}
		r.logger.Errorw("failed to update product", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update product: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.ProductModel{}).Where("id = ?", model.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check product existence: %w", err)
		}
		if count == 0 {
			return product.ErrProductNotFound
		}
		return product.ErrVersionConflict
	}

	p.SetVersion(model.Version + 1)
	return nil
}

func (r *ProductRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.ProductModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete product", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

// GetByID returns nil, nil when the product does not exist.
func (r *ProductRepositoryImpl) GetByID(ctx context.Context, id uint) (*product.Product, error) {
	var model models.ProductModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get product by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *ProductRepositoryImpl) GetByIDs(ctx context.Context, ids []uint) (map[uint]*product.Product, error) {
	out := make(map[uint]*product.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var modelList []*models.ProductModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id IN ?", ids).Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to get products by IDs", "error", err)
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		return nil, fmt.Errorf("failed to map products: %w", err)
	}
	for _, e := range entities {
		out[e.ID()] = e
	}
	return out, nil
}

// List returns products ordered by id ascending, paginated when Page and PageSize are set.
func (r *ProductRepositoryImpl) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.ProductModel{})

	if filter.DeviceType != nil {
		query = query.Where("device_type = ?", filter.DeviceType.String())
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR code LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count products", "error", err)
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var modelList []*models.ProductModel
	if err := query.Scopes(db.OrderByID(), db.Paginate(filter.Page, filter.PageSize)).Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list products", "error", err)
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		r.logger.Errorw("failed to map product models to entities", "error", err)
		return nil, 0, fmt.Errorf("failed to map products: %w", err)
	}
	return entities, total, nil
}

func (r *ProductRepositoryImpl) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).Model(&models.ProductModel{}).
		Where("code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check product code: %w", err)
	}
	return count > 0, nil
}
