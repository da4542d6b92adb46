package mappers

import (
	"fmt"

	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/infrastructure/persistence/models"
	"github.com/devicehub/devicehub/internal/shared/mapper"
)

// DeviceMapper converts between device entities and persistence models.
type DeviceMapper interface {
	ToEntity(model *models.DeviceModel) (*device.Device, error)
	ToModel(entity *device.Device) *models.DeviceModel
	ToEntities(models []*models.DeviceModel) ([]*device.Device, error)
}

type deviceMapper struct{}

// NewDeviceMapper creates a new device mapper.
func NewDeviceMapper() DeviceMapper {
	return &deviceMapper{}
}

func (m *deviceMapper) ToEntity(model *models.DeviceModel) (*device.Device, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := device.ReconstructDevice(
		model.ID,
		model.Name,
		model.SerialNumber,
		model.DeviceType,
		model.Status,
		model.ProductID,
		model.ProductName,
		model.ProductCode,
		model.CreatedAt,
		model.UpdatedAt,
		model.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct device entity: %w", err)
	}
	return entity, nil
}

func (m *deviceMapper) ToModel(entity *device.Device) *models.DeviceModel {
	if entity == nil {
		return nil
	}
	return &models.DeviceModel{
		ID:           entity.ID(),
		Name:         entity.Name(),
		SerialNumber: entity.SerialNumber(),
		DeviceType:   entity.DeviceType().String(),
		Status:       entity.Status().String(),
		ProductID:    entity.ProductID(),
		ProductName:  entity.ProductName(),
		ProductCode:  entity.ProductCode(),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
		Version:      entity.Version(),
	}
}

func (m *deviceMapper) ToEntities(modelList []*models.DeviceModel) ([]*device.Device, error) {
	return mapper.MapSliceWithID(modelList, m.ToEntity, func(model *models.DeviceModel) uint { return model.ID })
}
