package outletrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/outlet"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOutletRepository implements OutletRepository using GORM.
type GormOutletRepository struct {
	db *gorm.DB
}

// NewGormOutletRepository creates a new GORM outlet repository.
func NewGormOutletRepository(db *gorm.DB) *GormOutletRepository {
	return &GormOutletRepository{db: db}
}

// Get retrieves an outlet by ID.
func (r *GormOutletRepository) Get(ctx context.Context, id kernel.UUID) (*outlet.Outlet, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OutletDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("outlet", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListEligible retrieves all active outlets sorted by name.
func (r *GormOutletRepository) ListEligible(ctx context.Context) ([]*outlet.Outlet, error) {
	var dtos []OutletDTO
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("name").Find(&dtos).Error; err != nil {
		return nil, err
	}

	outlets := make([]*outlet.Outlet, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		outlets = append(outlets, o)
	}

	return outlets, nil
}

// CountActiveOrders returns the outlet's load: orders it is fulfilling that
// have not yet been handed to a driver.
func (r *GormOutletRepository) CountActiveOrders(ctx context.Context, outletID kernel.UUID) (int, error) {
	if err := outletID.Validate(); err != nil {
		return 0, err
	}

	preDispatch := []string{
		order.Pending.String(),
		order.Confirmed.String(),
		order.Preparing.String(),
		order.ReadyForPickup.String(),
	}

	var count int64
	err := r.db.WithContext(ctx).
		Table("orders").
		Where("outlet_id = ?", outletID.Bytes()).
		Where("status IN ?", preDispatch).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return int(count), nil
}
