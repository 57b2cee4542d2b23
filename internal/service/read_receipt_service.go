package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noteduco342/om-receipts/internal/metrics"
	"github.com/noteduco342/om-receipts/internal/models"
	"github.com/noteduco342/om-receipts/internal/repository"
)

// MessageAccessor resolves a message id for a user, failing with
// ErrInvalidMessage when the user may not see it.
type MessageAccessor interface {
	AccessMessage(ctx context.Context, userID, messageID uint) (*models.Message, error)
}

type ReadReceiptService struct {
	messages  MessageAccessor
	readMarks repository.ReadMarkRepositoryInterface
}

func NewReadReceiptService(messages MessageAccessor, readMarks repository.ReadMarkRepositoryInterface) *ReadReceiptService {
	return &ReadReceiptService{
		messages:  messages,
		readMarks: readMarks,
	}
}

// GetReadReceipts returns the ids of users who have read the message.
// Only active users who share read receipts are listed, and the sender
// never is. The result is never nil.
func (s *ReadReceiptService) GetReadReceipts(ctx context.Context, requesterID, messageID uint) ([]uint, error) {
	start := time.Now()
	defer func() {
		metrics.ReadReceiptQueryDuration.Observe(time.Since(start).Seconds())
	}()

	message, err := s.messages.AccessMessage(ctx, requesterID, messageID)
	if err != nil {
		if errors.Is(err, ErrInvalidMessage) {
			metrics.ReadReceiptQueries.WithLabelValues(metrics.OutcomeInvalidMessage).Inc()
			return nil, ErrInvalidMessage
		}
		metrics.ReadReceiptQueries.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	userIDs, err := s.readMarks.ListReaderIDs(ctx, message.ID, message.SenderID)
	if err != nil {
		metrics.ReadReceiptQueries.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("list read receipts for message %d: %w", message.ID, err)
	}
	if userIDs == nil {
		userIDs = []uint{}
	}

	metrics.ReadReceiptQueries.WithLabelValues(metrics.OutcomeOK).Inc()
	return userIDs, nil
}
