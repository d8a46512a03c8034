package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"egais-writeoff/metrics"
	"egais-writeoff/models"
)

const (
	// MoySklad returns retail demands in pages of at most 100 documents when positions are expanded
	retailDemandPageSize = 100
	moySkladMomentLayout = "2006-01-02 15:04:05"
)

// MoySkladService handles MoySklad JSON API 1.2 operations
type MoySkladService struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics.Registry
}

// NewMoySkladService creates a new MoySkladService.
// token must already be obtained by the caller (see ObtainMoySkladToken).
func NewMoySkladService(baseURL, token string, rateLimit time.Duration, m *metrics.Registry) *MoySkladService {
	return &MoySkladService{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(rateLimit), 1),
		metrics: m,
	}
}

// Ensure MoySkladService implements MoySkladServiceInterface
var _ MoySkladServiceInterface = (*MoySkladService)(nil)

// ObtainMoySkladToken exchanges login and password for an access token
func ObtainMoySkladToken(ctx context.Context, httpClient *http.Client, baseURL, login, password string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/security/token", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(login+":"+password)))

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("token request returned status %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("token response has no access_token")
	}
	return body.AccessToken, nil
}

type retailDemandPage struct {
	Meta struct {
		Size int `json:"size"`
	} `json:"meta"`
	Rows []struct {
		Positions struct {
			Rows []retailDemandPosition `json:"rows"`
		} `json:"positions"`
	} `json:"rows"`
}

type retailDemandPosition struct {
	Quantity float64 `json:"quantity"`
	// Price is in kopecks
	Price      float64 `json:"price"`
	Assortment struct {
		Name       string             `json:"name"`
		Attributes []models.Attribute `json:"attributes"`
	} `json:"assortment"`
}

// FetchSales returns every retail demand position of the organization in [start, end].
// Pages are requested until a page shorter than the page size is returned.
func (s *MoySkladService) FetchSales(ctx context.Context, organizationID string, start, end time.Time) ([]models.SaleLineItem, error) {
	log.Printf("📥 FetchSales: organization=%s period=%s..%s", organizationID, start.Format(moySkladMomentLayout), end.Format(moySkladMomentLayout))

	var items []models.SaleLineItem
	for offset := 0; ; offset += retailDemandPageSize {
		page, err := s.fetchRetailDemandPage(ctx, organizationID, start, end, offset)
		if err != nil {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.SalesPages.Inc()
		}
		if page.Meta.Size == 0 {
			break
		}

		for _, demand := range page.Rows {
			for _, p := range demand.Positions.Rows {
				items = append(items, models.SaleLineItem{
					ProductName: p.Assortment.Name,
					Quantity:    decimal.NewFromFloat(p.Quantity),
					UnitPrice:   decimal.NewFromFloat(p.Price).Shift(-2),
					Attributes:  p.Assortment.Attributes,
				})
			}
		}

		if len(page.Rows) < retailDemandPageSize {
			break
		}
	}

	log.Printf("✅ FetchSales: %d positions", len(items))
	return items, nil
}

func (s *MoySkladService) fetchRetailDemandPage(ctx context.Context, organizationID string, start, end time.Time, offset int) (*retailDemandPage, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	filter := fmt.Sprintf("organization=%s/entity/organization/%s;moment>=%s;moment<=%s",
		s.baseURL, organizationID, start.Format(moySkladMomentLayout), end.Format(moySkladMomentLayout))
	params := url.Values{}
	params.Set("filter", filter)
	params.Set("expand", "positions,positions.assortment")
	params.Set("limit", fmt.Sprintf("%d", retailDemandPageSize))
	params.Set("offset", fmt.Sprintf("%d", offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/entity/retaildemand?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retaildemand request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("retaildemand returned status %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}

	var page retailDemandPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode retaildemand page: %w", err)
	}
	return &page, nil
}

// readSnippet returns the beginning of an error response body for logging
func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return string(b)
}
