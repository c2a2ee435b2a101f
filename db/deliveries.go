package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type DeliveryLog struct {
	conn *gorm.DB
}

func NewDeliveryLog(conn *gorm.DB) *DeliveryLog {
	return &DeliveryLog{conn: conn}
}

func (l *DeliveryLog) Save(ctx context.Context, deliveries []PromptDelivery) error {
	if len(deliveries) == 0 {
		return nil
	}
	if err := l.conn.WithContext(ctx).Create(&deliveries).Error; err != nil {
		return fmt.Errorf("Save: failed to store %d deliveries: %w", len(deliveries), err)
	}
	return nil
}

func (l *DeliveryLog) ForRun(ctx context.Context, runID string) ([]PromptDelivery, error) {
	var out []PromptDelivery
	err := l.conn.WithContext(ctx).Where("run_id = ?", runID).Order("id").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("ForRun: failed to load deliveries for %s: %w", runID, err)
	}
	return out, nil
}
