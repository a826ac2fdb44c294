package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProfessionEarnings is one row of the best-profession aggregation.
type ProfessionEarnings struct {
	Profession string
	Total      decimal.Decimal
}

// ClientEarnings is one row of the best-clients aggregation.
type ClientEarnings struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Total     decimal.Decimal
}

func (c ClientEarnings) FullName() string {
	return c.FirstName + " " + c.LastName
}

// PeriodReport is the assembled read-side report rendered by the
// excel and pdf exporters.
type PeriodReport struct {
	PeriodStart    time.Time
	PeriodEnd      time.Time
	TotalPaid      decimal.Decimal
	BestProfession *ProfessionEarnings
	Clients        []ClientEarnings
}
