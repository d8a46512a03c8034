package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"egais-writeoff/metrics"
	"egais-writeoff/models"
	"egais-writeoff/reconcile"
)

func retailDemand(name string, qty, priceKopecks float64, attrs ...map[string]interface{}) map[string]interface{} {
	if attrs == nil {
		attrs = []map[string]interface{}{}
	}
	return map[string]interface{}{
		"positions": map[string]interface{}{
			"rows": []interface{}{
				map[string]interface{}{
					"quantity": qty,
					"price":    priceKopecks,
					"assortment": map[string]interface{}{
						"name":       name,
						"attributes": attrs,
					},
				},
			},
		},
	}
}

func TestMoySkladService_FetchSales_Paginates(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "/entity/retaildemand", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "positions,positions.assortment", r.URL.Query().Get("expand"))

		filter := r.URL.Query().Get("filter")
		assert.Contains(t, filter, "/entity/organization/org-1")
		assert.Contains(t, filter, "moment>=2026-01-04 00:00:00")
		assert.Contains(t, filter, "moment<=2026-01-04 23:59:59")

		var rows []interface{}
		switch r.URL.Query().Get("offset") {
		case "0":
			for i := 0; i < 100; i++ {
				rows = append(rows, retailDemand("X Beer (0,5)", 1, 25000, map[string]interface{}{"name": "Алкоголь", "value": true}))
			}
		case "100":
			rows = append(rows, retailDemand("Chips", 2.4, 9950))
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"meta": map[string]interface{}{"size": 101},
			"rows": rows,
		})
	}))
	defer srv.Close()

	reg := metrics.NewRegistry()
	svc := NewMoySkladService(srv.URL, "secret", time.Millisecond, reg)

	start := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 4, 23, 59, 59, 0, time.UTC)
	items, err := svc.FetchSales(context.Background(), "org-1", start, end)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	require.Len(t, items, 101)

	first := items[0]
	assert.Equal(t, "X Beer (0,5)", first.ProductName)
	assert.True(t, decimal.NewFromInt(1).Equal(first.Quantity))
	assert.Equal(t, "250", first.UnitPrice.String())
	require.Len(t, first.Attributes, 1)
	assert.Equal(t, true, first.Attributes[0].Value)

	last := items[100]
	assert.Equal(t, "Chips", last.ProductName)
	assert.Equal(t, "2.4", last.Quantity.String())
	assert.Equal(t, "99.5", last.UnitPrice.String())
	assert.Empty(t, last.Attributes)
}

func TestMoySkladService_FetchSales_WeighedGoodsKeepFractions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rows := []interface{}{
			retailDemand("Вобла (вес)", 0.4, 50000),
			retailDemand("Вобла (вес)", 0.4, 50000),
			retailDemand("Вобла (вес)", 0.4, 50000),
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"meta": map[string]interface{}{"size": len(rows)},
			"rows": rows,
		})
	}))
	defer srv.Close()

	svc := NewMoySkladService(srv.URL, "secret", time.Millisecond, nil)
	items, err := svc.FetchSales(context.Background(), "org-1", time.Now(), time.Now())
	require.NoError(t, err)
	require.Len(t, items, 3)

	goods := reconcile.Aggregate(models.ProductTypeSnack, items)
	require.Len(t, goods, 1)
	assert.Equal(t, "Вобла", goods[0].CommercialName)
	assert.Equal(t, "1.2", goods[0].Sold().String())
	assert.Equal(t, int64(1), goods[0].Quantity)
}

func TestMoySkladService_FetchSales_EmptyPeriod(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meta":{"size":0},"rows":[]}`))
	}))
	defer srv.Close()

	svc := NewMoySkladService(srv.URL, "secret", time.Millisecond, nil)
	items, err := svc.FetchSales(context.Background(), "org-1", time.Now(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMoySkladService_FetchSales_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"error":"Ошибка аутентификации"}]}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := NewMoySkladService(srv.URL, "bad", time.Millisecond, nil)
	_, err := svc.FetchSales(context.Background(), "org-1", time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestObtainMoySkladToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/security/token", r.URL.Path)
		login, password, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin@shop", login)
		assert.Equal(t, "pass", password)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"access_token":"tok-123"}`))
	}))
	defer srv.Close()

	token, err := ObtainMoySkladToken(context.Background(), srv.Client(), srv.URL, "admin@shop", "pass")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestObtainMoySkladToken_MissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := ObtainMoySkladToken(context.Background(), srv.Client(), srv.URL, "a", "b")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "access_token"))
}
