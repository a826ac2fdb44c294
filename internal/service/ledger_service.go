package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abzalbek/gigdesk-ledger/internal/model"
)

// QueryStore is the read-side data access the lookup operations need.
type QueryStore interface {
	ProfileByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	ContractForParty(ctx context.Context, contractID, partyID uuid.UUID) (*model.Contract, error)
	ContractsForParty(ctx context.Context, partyID uuid.UUID) ([]model.Contract, error)
	UnpaidJobsForParty(ctx context.Context, partyID uuid.UUID) ([]model.Job, error)
}

// LedgerService serves the contract and job lookups.
type LedgerService struct {
	store QueryStore
}

func NewLedgerService(store QueryStore) *LedgerService {
	return &LedgerService{store: store}
}

// GetContract returns the contract only if the principal is its client or
// its contractor; anything else looks like a missing contract.
func (s *LedgerService) GetContract(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*model.Contract, error) {
	contract, err := s.store.ContractForParty(ctx, contractID, principal.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract not found", ErrNotFound)
		}
		return nil, err
	}
	return contract, nil
}

// ListContracts returns the principal's non-terminated contracts.
func (s *LedgerService) ListContracts(ctx context.Context, principal model.Principal) ([]model.Contract, error) {
	return s.store.ContractsForParty(ctx, principal.ID)
}

// ListUnpaidJobs returns unpaid jobs on the principal's active contracts.
func (s *LedgerService) ListUnpaidJobs(ctx context.Context, principal model.Principal) ([]model.Job, error) {
	return s.store.UnpaidJobsForParty(ctx, principal.ID)
}

func (s *LedgerService) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	profile, err := s.store.ProfileByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, err
	}
	return profile, nil
}
