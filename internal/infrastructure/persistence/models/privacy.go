package models

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/privacy"
	"github.com/google/uuid"
)

// DataRequestModel is the persistence model for the DataRequest aggregate root.
type DataRequestModel struct {
	TenantAggregateModel
	UserID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	Type            privacy.RequestType   `gorm:"type:varchar(20);not null"`
	Status          privacy.RequestStatus `gorm:"type:varchar(20);not null;index"`
	RequestedAt     time.Time             `gorm:"not null"`
	StartedAt       *time.Time
	CompletedAt     *time.Time
	ResultKey       string `gorm:"type:varchar(500)"`
	RejectionReason string `gorm:"type:text"`
	FailureReason   string `gorm:"type:text"`
	Attempts        int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DataRequestModel) TableName() string {
	return "data_requests"
}

// ToDomain converts the persistence model to a domain DataRequest
func (m *DataRequestModel) ToDomain() *privacy.DataRequest {
	return &privacy.DataRequest{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		UserID:              m.UserID,
		Type:                m.Type,
		Status:              m.Status,
		RequestedAt:         m.RequestedAt,
		StartedAt:           m.StartedAt,
		CompletedAt:         m.CompletedAt,
		ResultKey:           m.ResultKey,
		RejectionReason:     m.RejectionReason,
		FailureReason:       m.FailureReason,
		Attempts:            m.Attempts,
	}
}

// FromDomain populates the persistence model from a domain DataRequest
func (m *DataRequestModel) FromDomain(r *privacy.DataRequest) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.UserID = r.UserID
	m.Type = r.Type
	m.Status = r.Status
	m.RequestedAt = r.RequestedAt
	m.StartedAt = r.StartedAt
	m.CompletedAt = r.CompletedAt
	m.ResultKey = r.ResultKey
	m.RejectionReason = r.RejectionReason
	m.FailureReason = r.FailureReason
	m.Attempts = r.Attempts
}

// DataRequestModelFromDomain creates a new persistence model from a domain DataRequest
func DataRequestModelFromDomain(r *privacy.DataRequest) *DataRequestModel {
	m := &DataRequestModel{}
	m.FromDomain(r)
	return m
}
