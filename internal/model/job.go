package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Job struct {
	ID          uuid.UUID
	ContractID  uuid.UUID
	Description string
	Price       decimal.Decimal
	Paid        bool
	PaymentDate *time.Time
	CreatedAt   time.Time
}

// JobWithContract is the flattened joined read the payment engine works on:
// the job plus the ownership and status fields of its contract.
type JobWithContract struct {
	Job
	ContractStatus ContractStatus
	ClientID       uuid.UUID
	ContractorID   uuid.UUID
}
