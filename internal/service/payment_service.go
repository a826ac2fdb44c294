package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/abzalbek/gigdesk-ledger/internal/config"
	"github.com/abzalbek/gigdesk-ledger/internal/model"
	"github.com/abzalbek/gigdesk-ledger/internal/repository"
)

// LedgerStore opens a transaction scope for the payment engine.
type LedgerStore interface {
	InTransaction(ctx context.Context, fn func(repository.Tx) error) error
}

// PaymentService is the payment engine: the pay-job transfer and the
// capped deposit, each executed in a single locked transaction.
type PaymentService struct {
	store    LedgerStore
	capRatio decimal.Decimal
	now      func() time.Time
}

func NewPaymentService(store LedgerStore, cfg *config.Config) *PaymentService {
	return &PaymentService{
		store:    store,
		capRatio: cfg.Ledger.DepositCapRatio,
		now:      time.Now,
	}
}

// PayJob transfers the job's price from the client's balance to the
// contractor's and marks the job paid. Preconditions are checked in order
// under row locks; the first failure rolls everything back.
func (s *PaymentService) PayJob(ctx context.Context, principal model.Principal, jobID uuid.UUID) error {
	if !principal.IsClient() {
		return fmt.Errorf("%w: only clients can pay for jobs", ErrPermissionDenied)
	}

	return s.store.InTransaction(ctx, func(tx repository.Tx) error {
		job, err := tx.JobForUpdate(jobID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: job not found", ErrNotFound)
			}
			return err
		}
		if job.ClientID != principal.ID {
			return fmt.Errorf("%w: job not found", ErrNotFound)
		}
		if job.Paid {
			return fmt.Errorf("%w: this job has already been paid", ErrAlreadyPaid)
		}
		if job.ContractStatus != model.ContractStatusInProgress {
			return fmt.Errorf("%w: payments are accepted on active contracts only", ErrContractNotActive)
		}

		profiles, err := tx.ProfilesForUpdate(job.ClientID, job.ContractorID)
		if err != nil {
			return err
		}
		client, ok := profiles[job.ClientID]
		if !ok {
			return fmt.Errorf("client profile %s missing", job.ClientID)
		}
		contractor, ok := profiles[job.ContractorID]
		if !ok {
			return fmt.Errorf("contractor profile %s missing", job.ContractorID)
		}

		if client.Balance.LessThan(job.Price) {
			return fmt.Errorf("%w: balance is not sufficient to pay this job", ErrInsufficientFunds)
		}

		if err := tx.SetBalance(client.ID, client.Balance.Sub(job.Price)); err != nil {
			return err
		}
		if err := tx.SetBalance(contractor.ID, contractor.Balance.Add(job.Price)); err != nil {
			return err
		}
		return tx.MarkJobPaid(job.ID, s.now())
	})
}

// Deposit adds amount to the client's own balance. A single deposit may
// not exceed the cap ratio of the client's outstanding unpaid job total;
// the cap is read under the same locks as the balance write.
func (s *PaymentService) Deposit(ctx context.Context, principal model.Principal, targetID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if !principal.IsClient() {
		return decimal.Zero, fmt.Errorf("%w: only clients can deposit", ErrPermissionDenied)
	}
	if targetID != principal.ID {
		return decimal.Zero, fmt.Errorf("%w: deposits are allowed into your own account only", ErrPermissionDenied)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: deposit amount must be greater than 0", ErrInvalidInput)
	}

	var newBalance decimal.Decimal
	err := s.store.InTransaction(ctx, func(tx repository.Tx) error {
		profiles, err := tx.ProfilesForUpdate(targetID)
		if err != nil {
			return err
		}
		client, ok := profiles[targetID]
		if !ok {
			return fmt.Errorf("%w: client not found", ErrNotFound)
		}

		unpaidTotal, err := tx.UnpaidTotalForClient(targetID)
		if err != nil {
			return err
		}
		maxDeposit := unpaidTotal.Mul(s.capRatio)
		if amount.GreaterThan(maxDeposit) {
			return fmt.Errorf("%w: deposit exceeds the allowed limit of %s",
				ErrDepositLimit, maxDeposit.StringFixed(2))
		}

		newBalance = client.Balance.Add(amount)
		return tx.SetBalance(client.ID, newBalance)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}
