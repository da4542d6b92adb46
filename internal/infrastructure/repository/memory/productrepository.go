package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/shared/utils"
)

// ProductRepository implements product.Repository on a Store
type ProductRepository struct {
	store *Store
}

// NewProductRepository creates a product repository on the store
func NewProductRepository(store *Store) product.Repository {
	return &ProductRepository{store: store}
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	return r.store.write(ctx, func(st *state) error {
		for _, existing := range st.products {
			if existing.Code() == p.Code() {
				return product.ErrProductCodeExists
			}
		}
		if err := p.SetID(st.nextProductID); err != nil {
			return fmt.Errorf("failed to assign product ID: %w", err)
		}
		st.nextProductID++
		st.products[p.ID()] = p.Clone()
		return nil
	})
}

func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	return r.store.write(ctx, func(st *state) error {
		stored, ok := st.products[p.ID()]
		if !ok {
			return product.ErrProductNotFound
		}
		if stored.Version() != p.Version() {
			return product.ErrVersionConflict
		}
		for id, existing := range st.products {
			if id != p.ID() && existing.Code() == p.Code() {
				return product.ErrProductCodeExists
			}
		}
		saved := p.Clone()
		saved.SetVersion(p.Version() + 1)
		st.products[p.ID()] = saved
		p.SetVersion(saved.Version())
		return nil
	})
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return product.ErrProductNotFound
		}
		delete(st.products, id)
		return nil
	})
}

func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*product.Product, error) {
	var out *product.Product
	err := r.store.read(ctx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = p.Clone()
		}
		return nil
	})
	return out, err
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*product.Product, error) {
	out := make(map[uint]*product.Product, len(ids))
	err := r.store.read(ctx, func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				out[id] = p.Clone()
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepository) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, int64, error) {
	var matched []*product.Product
	err := r.store.read(ctx, func(st *state) error {
		for _, p := range st.products {
			if matchProduct(p, filter) {
				matched = append(matched, p.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID() < matched[j].ID() })

	total := int64(len(matched))
	if filter.Page < 1 || filter.PageSize < 1 {
		return matched, total, nil
	}
	start, end := utils.ApplyPagination(len(matched), filter.Page, filter.PageSize)
	return matched[start:end], total, nil
}

func (r *ProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	found := false
	err := r.store.read(ctx, func(st *state) error {
		for _, p := range st.products {
			if p.Code() == code {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func matchProduct(p *product.Product, f product.ListFilter) bool {
	if f.DeviceType != nil && p.DeviceType() != *f.DeviceType {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name()), q) && !strings.Contains(strings.ToLower(p.Code()), q) {
			return false
		}
	}
	return true
}
