package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/chaman08/buildhub-sub001/databases"
)

// Scheduler handles periodic background jobs
type Scheduler struct {
	cron *cron.Cron
	PVDB databases.PendingVerificationDatabase
}

// NewScheduler creates a new scheduler instance
func NewScheduler(pvDB databases.PendingVerificationDatabase) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		PVDB: pvDB,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Purge expired email verification codes daily at 3 AM UTC
	_, err := s.cron.AddFunc("0 3 * * *", s.purgeExpiredVerifications)
	if err != nil {
		zap.S().Errorw("failed to register verification purge job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Verification purge scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Verification purge scheduler stopped")
}

// purgeExpiredVerifications removes verification codes older than 24 hours
func (s *Scheduler) purgeExpiredVerifications() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-24 * time.Hour)
	deleted, err := s.PVDB.DeleteMany(ctx, bson.M{
		"createdAt": bson.M{"$lt": primitive.NewDateTimeFromTime(cutoff)},
	})
	if err != nil {
		zap.S().Errorw("failed to purge expired verifications", "error", err)
		return
	}

	zap.S().Infow("Expired verification purge complete", "deleted", deleted)
}
