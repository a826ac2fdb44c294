package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/abzalbek/gigdesk-ledger/internal/model"
)

// ReportRepository runs the read-side aggregations over paid jobs.
// Snapshot consistency is enough here, so queries take no locks.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ProfessionEarnings groups paid jobs in [from, to) by the contractor's
// profession. Ordered by total descending, profession ascending on ties.
func (r *ReportRepository) ProfessionEarnings(ctx context.Context, from, to time.Time) ([]model.ProfessionEarnings, error) {
	var rows []model.ProfessionEarnings
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.profession,
			SUM(j.price) AS total
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.contractor_id
		WHERE j.paid
			AND j.payment_date >= ?
			AND j.payment_date < ?
		GROUP BY p.profession
		ORDER BY total DESC, p.profession ASC
	`, from, to).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ClientEarnings groups paid jobs in [from, to) by client, top spenders
// first, capped at limit.
func (r *ReportRepository) ClientEarnings(ctx context.Context, from, to time.Time, limit int) ([]model.ClientEarnings, error) {
	var rows []model.ClientEarnings
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.id,
			p.first_name,
			p.last_name,
			SUM(j.price) AS total
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE j.paid
			AND j.payment_date >= ?
			AND j.payment_date < ?
		GROUP BY p.id, p.first_name, p.last_name
		ORDER BY total DESC, p.id ASC
		LIMIT ?
	`, from, to, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
