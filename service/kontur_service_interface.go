package service

import (
	"context"
	"net/http"

	"egais-writeoff/models"
)

// KonturServiceInterface defines the contract for Kontur.Market EGAIS catalog operations
type KonturServiceInterface interface {
	Login(ctx context.Context) error
	FetchAssortment(ctx context.Context) ([]models.EgaisProduct, error)
}

// KonturBrowserInterface logs in through a real browser and returns the session cookies
type KonturBrowserInterface interface {
	Login(ctx context.Context, login, password string) ([]*http.Cookie, error)
}
