// Package agentrepo provides data transfer objects and mapping functions for
// delivery agent persistence.
package agentrepo

import (
	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AgentDTO represents the database structure for persisting agent aggregates.
// Indexed by home outlet and status for candidate pool queries.
type AgentDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string
	Status       int       `gorm:"index"`
	Lat          float64
	Lng          float64
	HomeOutletID uuid.UUID `gorm:"type:uuid;index"`
	Active       bool      `gorm:"index"`
}

// TableName specifies the database table name for agent entities.
func (AgentDTO) TableName() string {
	return "agents"
}

// fromDomain converts an agent aggregate to its database representation.
func fromDomain(aggregate *agent.Agent) AgentDTO {
	return AgentDTO{
		ID:           aggregate.ID().Bytes(),
		Name:         aggregate.Name(),
		Status:       int(aggregate.Status()),
		Lat:          aggregate.Location().Lat(),
		Lng:          aggregate.Location().Lng(),
		HomeOutletID: aggregate.HomeOutletID().Bytes(),
		Active:       aggregate.IsActive(),
	}
}

// toDomain converts a database DTO back to an agent aggregate.
func toDomain(dto AgentDTO) (*agent.Agent, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	homeOutletID, err := kernel.UUIDFromBytes(dto.HomeOutletID[:])
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewGeoPoint(dto.Lat, dto.Lng)
	if err != nil {
		return nil, err
	}

	return agent.RestoreAgent(id, dto.Name, agent.WorkStatus(dto.Status), location, homeOutletID, dto.Active)
}
