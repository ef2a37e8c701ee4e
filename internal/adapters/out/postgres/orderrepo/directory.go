package orderrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Directory answers lightweight ownership lookups outside a unit of work,
// for authorizing realtime subscriptions without loading full aggregates.
type Directory struct {
	db *gorm.DB
}

// NewDirectory creates an order directory over the main connection.
func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// CustomerOf returns the customer that owns the order.
func (d *Directory) CustomerOf(ctx context.Context, orderID kernel.UUID) (kernel.UUID, error) {
	if err := orderID.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	var customerID uuid.UUID
	err := d.db.WithContext(ctx).
		Table("orders").
		Select("customer_id").
		Where("id = ?", orderID.Bytes()).
		Take(&customerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return kernel.UUID{}, errs.NewObjectNotFoundError("order", orderID.String())
		}
		return kernel.UUID{}, err
	}

	return kernel.UUIDFromBytes(customerID[:])
}
