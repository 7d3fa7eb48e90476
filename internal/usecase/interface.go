package usecase

import (
	"context"

	"commission-reconciliation/internal/domain"
)

// TransactionRepository defines the interface for fetching transactions and rulebooks.
// The usecase layer depends on this interface, not on a concrete implementation.
//
//go:generate mockgen -destination=mocks/mock_repository.go -source=interface.go TransactionRepository
type TransactionRepository interface {
	GetTransactions(ctx context.Context, path string) (*domain.TransactionBatch, error)
	GetRules(ctx context.Context, path string) (*domain.RuleBatch, error)
}
