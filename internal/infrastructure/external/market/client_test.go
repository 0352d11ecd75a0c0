package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	cfg := DefaultClientConfig()
	cfg.BaseURL = srv.URL
	return NewClient(cfg)
}

func TestClient_GetCryptoPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Write([]byte(`{"bitcoin":{"usd":64250.12,"usd_24h_change":-2.345}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	quote, err := client.GetCryptoPrice(context.Background(), "BTC")

	require.NoError(t, err)
	assert.Equal(t, "bitcoin", quote.CoinID)
	assert.InDelta(t, 64250.12, quote.PriceUSD, 1e-9)
	assert.InDelta(t, -2.345, quote.Change24h, 1e-9)
}

func TestClient_GetCryptoPrice_UnknownCoin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	_, err := client.GetCryptoPrice(context.Background(), "notacoin")

	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestCoinID_Aliases(t *testing.T) {
	assert.Equal(t, "bitcoin", CoinID(" BTC "))
	assert.Equal(t, "ethereum", CoinID("eth"))
	assert.Equal(t, "solana", CoinID("solana"))
	assert.Equal(t, "pepe", CoinID("PEPE"))
}

func TestQuote_Format(t *testing.T) {
	up := Quote{Symbol: "btc", PriceUSD: 64250.1, Change24h: 3.21}
	assert.Equal(t, "`BTC`: $64,250.10 🟢 3.21%", up.Format())

	down := Quote{Symbol: "eth", PriceUSD: 1999999.999, Change24h: -0.5}
	assert.Equal(t, "`ETH`: $2,000,000.00 🔴 -0.50%", down.Format())
}
