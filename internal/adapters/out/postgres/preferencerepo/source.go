// Package preferencerepo derives customer preferences from order history.
// The preferred outlet and driver are simply the most frequent ones among
// the customer's delivered orders; customers without history have no
// preference.
package preferencerepo

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPreferenceSource implements ports.PreferenceSource over the orders
// table.
type GormPreferenceSource struct {
	db *gorm.DB
}

// NewGormPreferenceSource creates a history-backed preference source.
func NewGormPreferenceSource(db *gorm.DB) *GormPreferenceSource {
	return &GormPreferenceSource{db: db}
}

// Preferred returns the customer's most frequent outlet and driver across
// their delivered orders. Either is nil when the customer has no delivered
// orders with that dimension recorded.
func (s *GormPreferenceSource) Preferred(
	ctx context.Context,
	customerID kernel.UUID,
) (*kernel.UUID, *kernel.UUID, error) {
	if err := customerID.Validate(); err != nil {
		return nil, nil, err
	}

	outletID, err := s.mostFrequent(ctx, customerID, "outlet_id")
	if err != nil {
		return nil, nil, err
	}

	driverID, err := s.mostFrequent(ctx, customerID, "driver_id")
	if err != nil {
		return nil, nil, err
	}

	return outletID, driverID, nil
}

// mostFrequent returns the modal value of column among the customer's
// delivered orders. Ties break toward the most recent delivery.
func (s *GormPreferenceSource) mostFrequent(
	ctx context.Context,
	customerID kernel.UUID,
	column string,
) (*kernel.UUID, error) {
	// column is one of two fixed identifiers, never user input.
	row := s.db.WithContext(ctx).Raw(`
		SELECT `+column+`
		FROM orders
		WHERE customer_id = ?
		  AND status = ?
		  AND `+column+` IS NOT NULL
		GROUP BY `+column+`
		ORDER BY COUNT(*) DESC, MAX(estimated_arrival) DESC
		LIMIT 1
	`, customerID.Bytes(), order.Delivered.String()).Row()

	var raw uuid.UUID
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}

	return &id, nil
}
