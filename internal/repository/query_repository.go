package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/abzalbek/gigdesk-ledger/internal/model"
)

// QueryRepository serves the read-only lookups: contract visibility,
// contract lists and the unpaid-jobs list. No locking.
type QueryRepository struct {
	db *gorm.DB
}

func NewQueryRepository(db *gorm.DB) *QueryRepository {
	return &QueryRepository{db: db}
}

func (r *QueryRepository) ProfileByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, first_name, last_name, profession, type, balance, created_at
		FROM profiles
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}

// ContractForParty returns the contract only when the party is its client
// or its contractor.
func (r *QueryRepository) ContractForParty(ctx context.Context, contractID, partyID uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, client_id, contractor_id, terms, status, created_at, updated_at
		FROM contracts
		WHERE id = ?
			AND (client_id = ? OR contractor_id = ?)
		LIMIT 1
	`, contractID, partyID, partyID).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

func (r *QueryRepository) ContractsForParty(ctx context.Context, partyID uuid.UUID) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, client_id, contractor_id, terms, status, created_at, updated_at
		FROM contracts
		WHERE (client_id = ? OR contractor_id = ?)
			AND status <> 'terminated'
		ORDER BY created_at ASC
	`, partyID, partyID).Scan(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

// UnpaidJobsForParty lists unpaid jobs on the party's in_progress contracts,
// whether the party is the client or the contractor.
func (r *QueryRepository) UnpaidJobsForParty(ctx context.Context, partyID uuid.UUID) ([]model.Job, error) {
	var rows []struct {
		ID          uuid.UUID
		ContractID  uuid.UUID
		Description string
		Price       decimal.Decimal
		PaymentDate *time.Time
		CreatedAt   time.Time
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT j.id, j.contract_id, j.description, j.price, j.payment_date, j.created_at
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE NOT j.paid
			AND (c.client_id = ? OR c.contractor_id = ?)
			AND c.status = 'in_progress'
		ORDER BY j.created_at ASC
	`, partyID, partyID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	jobs := make([]model.Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, model.Job{
			ID:          row.ID,
			ContractID:  row.ContractID,
			Description: row.Description,
			Price:       row.Price,
			Paid:        false,
			PaymentDate: row.PaymentDate,
			CreatedAt:   row.CreatedAt,
		})
	}
	return jobs, nil
}
