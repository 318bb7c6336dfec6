package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"fintrack/internal/dto"
	"fintrack/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrFieldsRequired      = errors.New("type, category, and amount are required")
	ErrAmountNotPositive   = errors.New("amount must be greater than 0")
	ErrInvalidType         = errors.New("type must be income or expense")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrNotOwner            = errors.New("not authorized to access this transaction")
)

// TransactionRepo is the storage surface the service depends on.
type TransactionRepo interface {
	Insert(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Transaction, error)
	Save(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type TransactionService struct {
	txRepo TransactionRepo
	logger *zap.Logger
}

func NewTransactionService(txRepo TransactionRepo, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		txRepo: txRepo,
		logger: logger,
	}
}

// Create validates the input and persists a new transaction owned by ownerID.
// The owner always comes from the authenticated user, never from the request.
func (s *TransactionService) Create(ctx context.Context, ownerID uuid.UUID, req *dto.CreateTransactionRequest) (*models.Transaction, error) {
	if req.Type == "" || strings.TrimSpace(req.Category) == "" || req.Amount == 0 {
		return nil, ErrFieldsRequired
	}
	if req.Amount <= 0 {
		return nil, ErrAmountNotPositive
	}

	txType := models.TransactionType(req.Type)
	if !txType.Valid() {
		return nil, ErrInvalidType
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}

	tx := &models.Transaction{
		UserID:      ownerID,
		Type:        txType,
		Category:    strings.TrimSpace(req.Category),
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		Date:        date,
	}

	created, err := s.txRepo.Insert(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transaction created",
		zap.String("id", created.ID.String()),
		zap.String("user_id", ownerID.String()),
		zap.String("type", string(created.Type)),
	)

	return created, nil
}

// Get returns a single transaction after the existence and ownership checks.
func (s *TransactionService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Transaction, error) {
	return s.loadOwned(ctx, ownerID, id)
}

// List returns all of the owner's transactions, most recent date first. An
// owner with no transactions gets an empty slice, not an error.
func (s *TransactionService) List(ctx context.Context, ownerID uuid.UUID) ([]*models.Transaction, error) {
	transactions, err := s.txRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []*models.Transaction{}
	}
	return transactions, nil
}

// Update applies a partial update to an owned transaction. A field is only
// overwritten when the supplied value is non-zero; amount 0 or an empty
// string leaves the stored value untouched. Values that do overwrite are not
// re-validated.
func (s *TransactionService) Update(ctx context.Context, ownerID, id uuid.UUID, req *dto.UpdateTransactionRequest) (*models.Transaction, error) {
	tx, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Type != "" {
		tx.Type = models.TransactionType(req.Type)
	}
	if req.Category != "" {
		tx.Category = req.Category
	}
	if req.Amount != 0 {
		tx.Amount = req.Amount
	}
	if req.Description != "" {
		tx.Description = req.Description
	}
	if req.Date != nil && !req.Date.IsZero() {
		tx.Date = *req.Date
	}

	return s.txRepo.Save(ctx, tx)
}

// Delete removes an owned transaction.
func (s *TransactionService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.loadOwned(ctx, ownerID, id); err != nil {
		return err
	}
	return s.txRepo.DeleteByID(ctx, id)
}

// Stats computes the owner's aggregate snapshot fresh from all their records.
func (s *TransactionService) Stats(ctx context.Context, ownerID uuid.UUID) (*dto.StatsResponse, error) {
	transactions, err := s.txRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stats := &dto.StatsResponse{
		TransactionCount: len(transactions),
	}
	for _, tx := range transactions {
		switch tx.Type {
		case models.TypeIncome:
			stats.TotalIncome += tx.Amount
		case models.TypeExpense:
			stats.TotalExpense += tx.Amount
		}
	}
	stats.Balance = stats.TotalIncome - stats.TotalExpense

	return stats, nil
}

// loadOwned fetches a transaction and authorizes the requester. Existence is
// checked before ownership, so a missing record is always reported as not
// found rather than as an authorization failure.
func (s *TransactionService) loadOwned(ctx context.Context, ownerID, id uuid.UUID) (*models.Transaction, error) {
	tx, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	if tx.UserID != ownerID {
		return nil, ErrNotOwner
	}
	return tx, nil
}
