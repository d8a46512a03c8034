package service

import "context"

// NotifierInterface defines the contract for chat notifications
type NotifierInterface interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, path, caption string) error
}
