package service

import (
	"context"

	"egais-writeoff/models"
)

// RunPublisherInterface defines the contract for publishing write-off run events
type RunPublisherInterface interface {
	PublishRun(ctx context.Context, run models.WriteoffRun) error
}
