package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grosz/internal/log"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:  srv.URL,
		Username: "admin",
		Password: "secret",
	}, log.New(log.DefaultConfig()))
}

func TestClient_BasicAuthOnEveryRequest(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "missing basic auth")
		assert.Equal(t, "admin", user)
		assert.Equal(t, "secret", pass)
		io.WriteString(w, `[]`)
	})

	_, err := c.ListCategories(context.Background())
	require.NoError(t, err)
}

func TestClient_ListTransactions_QueryEncoding(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/transactions", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Alior", q.Get("account"))
		assert.Equal(t, "3", q.Get("category_id"))
		assert.Equal(t, "2024-01-01", q.Get("date_from"))
		assert.Equal(t, "biedronka", q.Get("search"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "50", q.Get("per_page"))
		assert.False(t, q.Has("date_to"), "empty fields must be omitted")
		io.WriteString(w, `{"data":[{"id":1,"hash":"h","account_id":1,"transaction_date":"2024-01-05","description":"x","amount":"-12.30","currency":"PLN"}],"total":101,"page":2,"per_page":50}`)
	})

	page, err := c.ListTransactions(context.Background(), ListQuery{
		Account:    "Alior",
		CategoryID: "3",
		DateFrom:   "2024-01-01",
		Search:     "biedronka",
		Page:       2,
		PerPage:    50,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(101), page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Data, 1)
	assert.True(t, page.Data[0].Amount.Equal(decimal.RequireFromString("-12.30")))
}

func TestClient_GetTransaction(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/transactions/42", r.URL.Path)
		io.WriteString(w, `{"id":42,"hash":"h","account_id":1,"transaction_date":"2024-02-01","description":"czynsz","amount":"-2100.00","currency":"PLN","bank_reference":"REF-1"}`)
	})

	tx, err := c.GetTransaction(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), tx.ID)
	require.NotNil(t, tx.BankReference)
	assert.Equal(t, "REF-1", *tx.BankReference)
}

func TestClient_UpdateCategory(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/transactions/7/category", r.URL.Path)

		var body map[string]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(3), body["category_id"])

		io.WriteString(w, `{"id":7,"hash":"h","account_id":1,"transaction_date":"2024-01-05","description":"x","amount":"-12.30","currency":"PLN","category_id":3,"category_source":"manual"}`)
	})

	tx, err := c.UpdateCategory(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), tx.ID)
	require.NotNil(t, tx.CategorySource)
	assert.Equal(t, "manual", *tx.CategorySource)
}

func TestClient_ErrorFromJSONBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":"unknown bank format"}`)
	})

	_, err := c.ListTransactions(context.Background(), ListQuery{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "unknown bank format", apiErr.Message)
}

func TestClient_ErrorFallsBackToStatusText(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no body", ""},
		{"unparsable body", "<html>boom</html>"},
		{"json without error field", `{"detail":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				io.WriteString(w, tt.body)
			})

			_, err := c.MonthlyStats(context.Background(), StatsQuery{})
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "Bad Gateway", apiErr.Message)
		})
	}
}

func TestClient_ReferenceDataCached(t *testing.T) {
	var hits atomic.Int64
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.WriteString(w, `[{"id":1,"name":"Food","name_pl":null}]`)
	})

	ctx := context.Background()
	first, err := c.ListCategories(ctx)
	require.NoError(t, err)
	second, err := c.ListCategories(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), hits.Load(), "second lookup must come from cache")
}

func TestClient_StatsQueryOmitsEmpty(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/stats/categories", r.URL.Path)
		assert.Equal(t, "2024", r.URL.Query().Get("year"))
		assert.False(t, r.URL.Query().Has("account"))
		io.WriteString(w, `[{"category":null,"total":"-10.00","count":1}]`)
	})

	stats, err := c.CategoryStats(context.Background(), StatsQuery{Year: "2024"})
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Nil(t, stats[0].Category)
}

func TestClient_ImportCSV(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/import", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "Historia_Operacji_2024.csv", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "date;amount\n2024-01-01;-10,00\n", string(content))

		io.WriteString(w, `{"total_rows":100,"imported":80,"skipped":20}`)
	})

	result, err := c.ImportCSV(context.Background(), "Historia_Operacji_2024.csv",
		strings.NewReader("date;amount\n2024-01-01;-10,00\n"))
	require.NoError(t, err)
	assert.Equal(t, 100, result.TotalRows)
	assert.Equal(t, 80, result.Imported)
	assert.Equal(t, 20, result.Skipped)
}

func TestClient_Categorize(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/categorize", r.URL.Path)
		io.WriteString(w, `{"categorized":42}`)
	})

	n, err := c.Categorize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}
