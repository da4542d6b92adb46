package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/infrastructure/persistence/models"
	"github.com/devicehub/devicehub/internal/shared/mapper"
)

// ProductMapper converts between product entities and persistence models.
type ProductMapper interface {
	ToEntity(model *models.ProductModel) (*product.Product, error)
	ToModel(entity *product.Product) (*models.ProductModel, error)
	ToEntities(models []*models.ProductModel) ([]*product.Product, error)
}

type productMapper struct{}

// NewProductMapper creates a new product mapper.
func NewProductMapper() ProductMapper {
	return &productMapper{}
}

func (m *productMapper) ToEntity(model *models.ProductModel) (*product.Product, error) {
	if model == nil {
		return nil, nil
	}

	var linked []product.DeviceSnapshot
	if len(model.LinkedDevices) > 0 {
		if err := json.Unmarshal(model.LinkedDevices, &linked); err != nil {
			return nil, fmt.Errorf("failed to decode linked devices of product %d: %w", model.ID, err)
		}
	}

	entity, err := product.ReconstructProduct(
		model.ID,
		model.Name,
		model.Code,
		model.DeviceType,
		model.Description,
		linked,
		model.CreatedAt,
		model.UpdatedAt,
		model.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct product entity: %w", err)
	}
	return entity, nil
}

func (m *productMapper) ToModel(entity *product.Product) (*models.ProductModel, error) {
	if entity == nil {
		return nil, nil
	}

	linked, err := json.Marshal(entity.LinkedDevices())
	if err != nil {
		return nil, fmt.Errorf("failed to encode linked devices: %w", err)
	}

	return &models.ProductModel{
		ID:            entity.ID(),
		Name:          entity.Name(),
		Code:          entity.Code(),
		DeviceType:    entity.DeviceType().String(),
		Description:   entity.Description(),
		LinkedDevices: datatypes.JSON(linked),
		CreatedAt:     entity.CreatedAt(),
		UpdatedAt:     entity.UpdatedAt(),
		Version:       entity.Version(),
	}, nil
}

func (m *productMapper) ToEntities(modelList []*models.ProductModel) ([]*product.Product, error) {
	return mapper.MapSliceWithID(modelList, m.ToEntity, func(model *models.ProductModel) uint { return model.ID })
}
