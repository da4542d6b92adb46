package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/infrastructure/persistence/mappers"
	"github.com/devicehub/devicehub/internal/infrastructure/persistence/models"
	"github.com/devicehub/devicehub/internal/shared/db"
	apperrors "github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

// DeviceRepositoryImpl implements the device.Repository interface with gorm.
type DeviceRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.DeviceMapper
	logger logger.Interface
}

// NewDeviceRepository creates a new device repository instance.
func NewDeviceRepository(gdb *gorm.DB, logger logger.Interface) device.Repository {
	return &DeviceRepositoryImpl{
		db:     gdb,
		mapper: mappers.NewDeviceMapper(),
		logger: logger,
	}
}

// Create inserts the device and assigns its ID.
func (r *DeviceRepositoryImpl) Create(ctx context.Context, d *device.Device) error {
	model := r.mapper.ToModel(d)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return device.ErrSerialNumberExists
		}
		r.logger.Errorw("failed to create device in database", "error", err)
		return fmt.Errorf("failed to create device: %w", err)
	}

	if err := d.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set device ID: %w", err)
	}

	r.logger.Debugw("device created", "id", model.ID, "serial_number", model.SerialNumber)
	return nil
}

// Update writes every mutable column guarded by the version the entity was loaded with.
func (r *DeviceRepositoryImpl) Update(ctx context.Context, d *device.Device) error {
	model := r.mapper.ToModel(d)
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.DeviceModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]any{
			"name":          model.Name,
			"serial_number": model.SerialNumber,
			"device_type":   model.DeviceType,
			"status":        model.Status,
			"product_id":    model.ProductID,
			"product_name":  model.ProductName,
			"product_code":  model.ProductCode,
			"updated_at":    model.UpdatedAt,
			"version":       model.Version + 1,
		})

	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return device.ErrSerialNumberExists
		}
		r.logger.Errorw("failed to update device", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update device: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.DeviceModel{}).Where("id = ?", model.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check device existence: %w", err)
		}
		if count == 0 {
			return device.ErrDeviceNotFound
		}
		return device.ErrVersionConflict
	}

	d.SetVersion(model.Version + 1)
	return nil
}

// Delete removes the device row.
func (r *DeviceRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.DeviceModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete device", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return device.ErrDeviceNotFound
	}
	return nil
}

// GetByID returns nil, nil when the device does not exist.
func (r *DeviceRepositoryImpl) GetByID(ctx context.Context, id uint) (*device.Device, error) {
	var model models.DeviceModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get device by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *DeviceRepositoryImpl) GetByIDs(ctx context.Context, ids []uint) (map[uint]*device.Device, error) {
	out := make(map[uint]*device.Device, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var modelList []*models.DeviceModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id IN ?", ids).Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to get devices by IDs", "error", err)
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		return nil, fmt.Errorf("failed to map devices: %w", err)
	}
	for _, e := range entities {
		out[e.ID()] = e
	}
	return out, nil
}

func (r *DeviceRepositoryImpl) ListByProductID(ctx context.Context, productID uint) ([]*device.Device, error) {
	var modelList []*models.DeviceModel
	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.OrderByID()).
		Where("product_id = ?", productID).
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to list devices by product", "product_id", productID, "error", err)
		return nil, fmt.Errorf("failed to list devices by product: %w", err)
	}
	return r.mapper.ToEntities(modelList)
}

// List returns devices ordered by id ascending, paginated when Page and PageSize are set.
func (r *DeviceRepositoryImpl) List(ctx context.Context, filter device.ListFilter) ([]*device.Device, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.DeviceModel{})

	if filter.DeviceType != nil {
		query = query.Where("device_type = ?", filter.DeviceType.String())
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR serial_number LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count devices", "error", err)
		return nil, 0, fmt.Errorf("failed to count devices: %w", err)
	}

	var modelList []*models.DeviceModel
	if err := query.Scopes(db.OrderByID(), db.Paginate(filter.Page, filter.PageSize)).Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list devices", "error", err)
		return nil, 0, fmt.Errorf("failed to list devices: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		r.logger.Errorw("failed to map device models to entities", "error", err)
		return nil, 0, fmt.Errorf("failed to map devices: %w", err)
	}
	return entities, total, nil
}

func (r *DeviceRepositoryImpl) ExistsBySerialNumber(ctx context.Context, serialNumber string) (bool, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).Model(&models.DeviceModel{}).
		Where("serial_number = ?", serialNumber).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check serial number: %w", err)
	}
	return count > 0, nil
}
