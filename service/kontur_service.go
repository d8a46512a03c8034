package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/google/uuid"

	"egais-writeoff/models"
)

// KonturService reads the EGAIS catalog of the shop from Kontur.Market.
// The session lives in the cookie jar of its HTTP client.
type KonturService struct {
	authURL       string
	assortmentURL string
	login         string
	password      string
	httpClient    *http.Client
	browser       KonturBrowserInterface // optional fallback
}

// NewKonturService creates a new KonturService. browser may be nil.
func NewKonturService(authURL, assortmentURL, login, password string, browser KonturBrowserInterface) (*KonturService, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &KonturService{
		authURL:       authURL,
		assortmentURL: assortmentURL,
		login:         login,
		password:      password,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		browser: browser,
	}, nil
}

// Ensure KonturService implements KonturServiceInterface
var _ KonturServiceInterface = (*KonturService)(nil)

// Login authenticates with login and password.
// When the password endpoint refuses and a browser is configured, the session
// cookies are taken from a browser login instead.
func (s *KonturService) Login(ctx context.Context) error {
	err := s.loginHTTP(ctx)
	if err == nil {
		log.Printf("🔑 Kontur.Market login succeeded")
		return nil
	}
	if s.browser == nil {
		return err
	}

	log.Printf("⚠️ Kontur.Market HTTP login failed, trying browser login: %v", err)
	cookies, berr := s.browser.Login(ctx, s.login, s.password)
	if berr != nil {
		return fmt.Errorf("kontur login failed: http: %v; browser: %w", err, berr)
	}

	u, perr := url.Parse(s.assortmentURL)
	if perr != nil {
		return fmt.Errorf("invalid assortment url: %w", perr)
	}
	s.httpClient.Jar.SetCookies(u, cookies)
	log.Printf("🔑 Kontur.Market browser login succeeded (%d cookies)", len(cookies))
	return nil
}

func (s *KonturService) loginHTTP(ctx context.Context) error {
	body, err := json.Marshal(map[string]interface{}{
		"Login":    s.login,
		"Password": s.password,
		"Remember": false,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.authURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}

	// The endpoint only checks that the header and the cookie carry the same token
	csrf := uuid.NewString()
	req.Header.Set("Content-Type", "application/json;charset=utf-8")
	req.Header.Set("X-CSRF-Token", csrf)
	req.AddCookie(&http.Cookie{Name: "AntiForgery", Value: csrf})

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("login returned status %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}
	return nil
}

type restsListResponse struct {
	List []struct {
		ProductInfo models.EgaisProduct `json:"productInfo"`
	} `json:"list"`
}

// FetchAssortment returns the EGAIS products on the shop's balance
func (s *KonturService) FetchAssortment(ctx context.Context) ([]models.EgaisProduct, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.assortmentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create assortment request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assortment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("assortment returned status %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}

	var body restsListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode assortment: %w", err)
	}

	products := make([]models.EgaisProduct, 0, len(body.List))
	for _, item := range body.List {
		if item.ProductInfo.FullName == "" {
			continue
		}
		products = append(products, item.ProductInfo)
	}

	log.Printf("📦 Fetched %d EGAIS products from Kontur.Market", len(products))
	return products, nil
}
