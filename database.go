package main

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

func initDB(path string) (*gorm.DB, error) {
	newLogger := gormlogger.New(
		zap.NewStdLog(logger.Desugar()),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &ProcessingRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return nil
}

// touchUser creates the user on first contact and refreshes username and
// last-seen time afterwards.
func (b *Bot) touchUser(telegramID int64, username string) error {
	now := b.clock.Now()
	user := User{TelegramID: telegramID, Username: username, LastSeen: now}
	user.CreatedAt = now
	user.UpdatedAt = now
	return b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"username": username, "last_seen": now, "updated_at": now}),
	}).Create(&user).Error
}

// recordJob stores the outcome of a job and bumps the user's counter on success.
func (b *Bot) recordJob(rec ProcessingRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = b.clock.Now()
	}
	return b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to store processing record: %w", err)
		}
		if rec.Status != statusSuccess {
			return nil
		}
		res := tx.Model(&User{}).
			Where("telegram_id = ?", rec.UserID).
			UpdateColumn("images_processed", gorm.Expr("images_processed + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("failed to update user counter: %w", res.Error)
		}
		return nil
	})
}

// getStats retrieves user and job totals from the database.
func (b *Bot) getStats() (Stats, error) {
	var s Stats
	if err := b.db.Model(&User{}).Count(&s.TotalUsers).Error; err != nil {
		return Stats{}, err
	}

	var rows []struct {
		Status string
		Total  int64
	}
	err := b.db.Model(&ProcessingRecord{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return Stats{}, err
	}
	for _, r := range rows {
		switch r.Status {
		case statusSuccess:
			s.Succeeded = r.Total
		case statusFailed:
			s.Failed = r.Total
		case statusRejected:
			s.Rejected = r.Total
		}
	}
	return s, nil
}

// purgeRecords hard-deletes processing records older than retention.
func (b *Bot) purgeRecords(retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, errors.New("retention must be positive")
	}
	cutoff := b.clock.Now().Add(-retention)
	res := b.db.Unscoped().Where("created_at < ?", cutoff).Delete(&ProcessingRecord{})
	return res.RowsAffected, res.Error
}
