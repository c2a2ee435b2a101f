package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClaimStore keeps submission claims in SQL so every bot process sees the
// same (date, username) reservations.
type ClaimStore struct {
	conn *gorm.DB
}

func NewClaimStore(conn *gorm.DB) *ClaimStore {
	return &ClaimStore{conn: conn}
}

func (s *ClaimStore) Claim(ctx context.Context, date, username string) (bool, error) {
	res := s.conn.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&SubmissionClaim{Date: date, Username: username, CreatedAt: time.Now().UTC()})
	if res.Error != nil {
		return false, fmt.Errorf("Claim: failed to insert claim for %s/%s: %w", date, username, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *ClaimStore) Release(ctx context.Context, date, username string) error {
	err := s.conn.WithContext(ctx).
		Where("date = ? AND username = ?", date, username).
		Delete(&SubmissionClaim{}).Error
	if err != nil {
		return fmt.Errorf("Release: failed to delete claim for %s/%s: %w", date, username, err)
	}
	return nil
}
