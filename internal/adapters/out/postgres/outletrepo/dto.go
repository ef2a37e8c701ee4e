// Package outletrepo provides data transfer objects and mapping functions
// for outlet persistence, with the per-weekday operating hours stored as a
// jsonb document.
package outletrepo

import (
	"encoding/json"
	"strconv"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/outlet"

	"github.com/google/uuid"
)

// OutletDTO represents the database structure for persisting outlet
// aggregates.
type OutletDTO struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name   string
	Lat    float64
	Lng    float64
	Active bool   `gorm:"index"`
	Hours  []byte `gorm:"type:jsonb"`
}

// TableName specifies the database table name for outlet entities.
func (OutletDTO) TableName() string {
	return "outlets"
}

// dayHoursRecord is the jsonb shape of one weekday's opening window.
type dayHoursRecord struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// fromDomain converts an outlet aggregate to its database representation.
// The hours map is keyed by the numeric weekday (0 = Sunday).
func fromDomain(aggregate *outlet.Outlet) (OutletDTO, error) {
	dto := OutletDTO{
		ID:     aggregate.ID().Bytes(),
		Name:   aggregate.Name(),
		Lat:    aggregate.Location().Lat(),
		Lng:    aggregate.Location().Lng(),
		Active: aggregate.IsActive(),
	}

	if hours := aggregate.Hours(); hours != nil {
		records := make(map[string]dayHoursRecord, len(hours))
		for day, window := range hours {
			records[strconv.Itoa(int(day))] = dayHoursRecord{
				Open:  window.Open,
				Close: window.Close,
			}
		}

		raw, err := json.Marshal(records)
		if err != nil {
			return OutletDTO{}, err
		}
		dto.Hours = raw
	}

	return dto, nil
}

// toDomain converts a database DTO back to an outlet aggregate.
func toDomain(dto OutletDTO) (*outlet.Outlet, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewGeoPoint(dto.Lat, dto.Lng)
	if err != nil {
		return nil, err
	}

	var hours outlet.OperatingHours
	if len(dto.Hours) > 0 {
		var records map[string]dayHoursRecord
		if err = json.Unmarshal(dto.Hours, &records); err != nil {
			return nil, err
		}

		hours = make(outlet.OperatingHours, len(records))
		for key, record := range records {
			day, convErr := strconv.Atoi(key)
			if convErr != nil {
				return nil, convErr
			}
			hours[time.Weekday(day)] = outlet.DayHours{
				Open:  record.Open,
				Close: record.Close,
			}
		}
	}

	return outlet.RestoreOutlet(id, dto.Name, location, dto.Active, hours)
}
