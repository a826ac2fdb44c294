package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/abzalbek/gigdesk-ledger/internal/model"
)

// Tx is the transaction scope handed to the payment engine. Every read
// acquires row locks, so a check made through it stays valid until commit.
type Tx interface {
	JobForUpdate(id uuid.UUID) (*model.JobWithContract, error)
	ProfilesForUpdate(ids ...uuid.UUID) (map[uuid.UUID]*model.Profile, error)
	UnpaidTotalForClient(clientID uuid.UUID) (decimal.Decimal, error)
	SetBalance(profileID uuid.UUID, balance decimal.Decimal) error
	MarkJobPaid(jobID uuid.UUID, paidAt time.Time) error
}

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// InTransaction runs fn inside a single database transaction; any error
// rolls back every write made through the Tx.
func (r *LedgerRepository) InTransaction(ctx context.Context, fn func(Tx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerTx{tx: tx})
	})
}

type ledgerTx struct {
	tx *gorm.DB
}

func (t *ledgerTx) JobForUpdate(id uuid.UUID) (*model.JobWithContract, error) {
	var row struct {
		ID             uuid.UUID
		ContractID     uuid.UUID
		Description    string
		Price          decimal.Decimal
		Paid           bool
		PaymentDate    *time.Time
		CreatedAt      time.Time
		ContractStatus string
		ClientID       uuid.UUID
		ContractorID   uuid.UUID
	}

	err := t.tx.Raw(`
		SELECT
			j.id,
			j.contract_id,
			j.description,
			j.price,
			j.paid,
			j.payment_date,
			j.created_at,
			c.status AS contract_status,
			c.client_id,
			c.contractor_id
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE j.id = ?
		FOR UPDATE OF j
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	return &model.JobWithContract{
		Job: model.Job{
			ID:          row.ID,
			ContractID:  row.ContractID,
			Description: row.Description,
			Price:       row.Price,
			Paid:        row.Paid,
			PaymentDate: row.PaymentDate,
			CreatedAt:   row.CreatedAt,
		},
		ContractStatus: model.ContractStatus(row.ContractStatus),
		ClientID:       row.ClientID,
		ContractorID:   row.ContractorID,
	}, nil
}

// ProfilesForUpdate locks the requested profile rows. The ORDER BY keeps
// lock acquisition order deterministic across concurrent transactions.
func (t *ledgerTx) ProfilesForUpdate(ids ...uuid.UUID) (map[uuid.UUID]*model.Profile, error) {
	var rows []model.Profile
	err := t.tx.Raw(`
		SELECT id, first_name, last_name, profession, type, balance, created_at
		FROM profiles
		WHERE id = ANY(?)
		ORDER BY id
		FOR UPDATE
	`, ids).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	profiles := make(map[uuid.UUID]*model.Profile, len(rows))
	for i := range rows {
		profiles[rows[i].ID] = &rows[i]
	}
	return profiles, nil
}

// UnpaidTotalForClient sums the prices of unpaid jobs on the client's
// in_progress contracts. The contributing job rows are locked so a
// concurrent payment cannot shrink the total before this transaction
// commits.
func (t *ledgerTx) UnpaidTotalForClient(clientID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := t.tx.Raw(`
		SELECT COALESCE(SUM(price), 0) FROM (
			SELECT j.price
			FROM jobs j
			JOIN contracts c ON c.id = j.contract_id
			WHERE NOT j.paid
				AND c.client_id = ?
				AND c.status = 'in_progress'
			FOR UPDATE OF j
		) unpaid
	`, clientID).Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (t *ledgerTx) SetBalance(profileID uuid.UUID, balance decimal.Decimal) error {
	return t.tx.Exec(`
		UPDATE profiles SET balance = ? WHERE id = ?
	`, balance, profileID).Error
}

func (t *ledgerTx) MarkJobPaid(jobID uuid.UUID, paidAt time.Time) error {
	return t.tx.Exec(`
		UPDATE jobs SET paid = TRUE, payment_date = ? WHERE id = ?
	`, paidAt, jobID).Error
}
