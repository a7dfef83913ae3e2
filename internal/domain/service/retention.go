package service

import (
	"context"
	"fmt"

	"github.com/jooksuklubid/runclubs/internal/domain/utils/clock"
	"github.com/jooksuklubid/runclubs/pkg/logger/types"
)

// RetentionDays is how long events stay after their date.
const RetentionDays = 14

type expiredEventStorage interface {
	DeleteBefore(ctx context.Context, cutoff string) (int64, error)
}

// RetentionService removes events that ended more than RetentionDays ago.
type RetentionService struct {
	storage expiredEventStorage
	clock   clock.Clock
	logger  *types.Logger
}

func NewRetentionService(storage expiredEventStorage, clk clock.Clock, logger *types.Logger) *RetentionService {
	return &RetentionService{
		storage: storage,
		clock:   clk,
		logger:  logger,
	}
}

// Cutoff is the first calendar day that is kept.
func (s *RetentionService) Cutoff() string {
	return clock.DaysAgo(s.clock, RetentionDays)
}

// Run deletes every event dated strictly before Cutoff and returns how many were deleted.
func (s *RetentionService) Run(ctx context.Context) (int64, error) {
	cutoff := s.Cutoff()

	deleted, err := s.storage.DeleteBefore(ctx, cutoff)
	if err != nil {
		s.logger.Errorf("failed to delete events before %s: %v", cutoff, err)
		return 0, fmt.Errorf("delete events before %s: %w", cutoff, err)
	}

	if deleted == 0 {
		s.logger.Infof("No events older than %s found", cutoff)
	} else {
		s.logger.Infof("Deleted %d events older than %s", deleted, cutoff)
	}
	return deleted, nil
}
