package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-telegram/bot"
)

// downloadFile resolves fileID through getFile and downloads at most maxBytes.
// Transient failures are retried with exponential backoff.
func (b *Bot) downloadFile(ctx context.Context, fileID string, maxBytes int64) ([]byte, error) {
	var data []byte
	op := func() error {
		f, err := b.tgBot.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
		if err != nil {
			return fmt.Errorf("getFile: %w", err)
		}
		if int64(f.FileSize) > maxBytes {
			return backoff.Permanent(fmt.Errorf("%w: %d bytes", ErrImageTooLarge, f.FileSize))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.tgBot.FileDownloadLink(f), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := b.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("file download responded with status %d", resp.StatusCode)
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return err
			}
			return backoff.Permanent(err)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
		if err != nil {
			return err
		}
		if int64(len(body)) > maxBytes {
			return backoff.Permanent(fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, maxBytes))
		}
		data = body
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 250 * time.Millisecond
	eb.MaxInterval = 2 * time.Second
	eb.MaxElapsedTime = b.downloadRetryWindow

	if err := backoff.Retry(op, backoff.WithContext(eb, ctx)); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	return data, nil
}
