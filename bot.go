package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/segmentio/ksuid"
	"gorm.io/gorm"
)

type Bot struct {
	tgBot          TelegramClient
	db             *gorm.DB
	relay          *Relay
	pool           *WorkerPool
	metrics        *Metrics
	config         Config
	userLimiters   map[int64]*userLimiter
	userLimitersMu sync.Mutex
	clock          Clock
	httpClient     *http.Client
	jobs           sync.WaitGroup

	downloadRetryWindow time.Duration
	newJobID            func() string
}

// bot.go
func NewBot(db *gorm.DB, config Config, clock Clock, tgClient TelegramClient, remover Remover) (*Bot, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if remover == nil {
		return nil, errors.New("remover is required")
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}

	b := &Bot{
		tgBot:               tgClient,
		db:                  db,
		relay:               NewRelay(remover, config.MaxDimension, config.ProcessTimeout),
		pool:                NewWorkerPool(config.Workers),
		metrics:             NewMetrics(),
		config:              config,
		userLimiters:        make(map[int64]*userLimiter),
		clock:               clock,
		httpClient:          &http.Client{Timeout: time.Minute},
		downloadRetryWindow: 15 * time.Second,
		newJobID:            func() string { return ksuid.New().String() },
	}
	return b, nil
}

// Start polls for updates until ctx is cancelled, then waits for running jobs.
func (b *Bot) Start(ctx context.Context) {
	b.tgBot.Start(ctx)
	b.Wait()
}

// Wait blocks until every image job started by handleUpdate has replied.
func (b *Bot) Wait() {
	b.jobs.Wait()
}

func initTelegramBot(token string, handleUpdate func(ctx context.Context, tgBot *bot.Bot, update *models.Update)) (TelegramClient, error) {
	opts := []bot.Option{
		bot.WithDefaultHandler(handleUpdate),
	}

	tgBot, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return tgBot, nil
}

func (b *Bot) sendResponse(ctx context.Context, chatID int64, text string) error {
	_, err := b.tgBot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Errorw("Error sending message", "chat_id", chatID, "error", err)
		return err
	}
	return nil
}

func (b *Bot) isOwner(userID int64) bool {
	return b.config.OwnerTelegramID != 0 && userID == b.config.OwnerTelegramID
}
