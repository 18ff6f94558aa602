package usecases

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"powsearch/internal/domain"
)

const receiptIDLength = 16

// ReceiptUsecase hands out receipts for accepted solutions.
type ReceiptUsecase interface {
	Issue(sol *domain.Solution) (*domain.Receipt, error)
}

type receiptUsecaseImpl struct{}

func NewReceiptUsecase() ReceiptUsecase {
	return &receiptUsecaseImpl{}
}

func (r *receiptUsecaseImpl) Issue(sol *domain.Solution) (*domain.Receipt, error) {
	id := make([]byte, receiptIDLength)
	if _, err := rand.Read(id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerateRandom, err)
	}
	return &domain.Receipt{
		ID:           hex.EncodeToString(id),
		Digest:       sol.Digest,
		LeadingZeros: sol.LeadingZeros,
	}, nil
}
