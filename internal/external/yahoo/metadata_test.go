package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/finance/quoteSummary/RELIANCE.NS", r.URL.Path)
		fmt.Fprint(w, `{"quoteSummary":{"result":[{"price":{"marketCap":{"raw":19500000000000}}}],"error":null}}`)
	}))

	meta, err := client.Metadata(context.Background(), "RELIANCE")
	require.NoError(t, err)

	assert.Equal(t, "RELIANCE", meta.Symbol)
	require.NotNil(t, meta.MarketCap)
	assert.Equal(t, 19500000000000.0, *meta.MarketCap)
}

func TestMetadata_ZeroCapStaysNil(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[{"price":{"marketCap":{}}}],"error":null}}`)
	}))

	meta, err := client.Metadata(context.Background(), "NOVAL")
	require.NoError(t, err)
	assert.Nil(t, meta.MarketCap)
}

func TestParseAbbreviatedNumber(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"1.23T", 1.23e12, false},
		{"456.7B", 456.7e9, false},
		{"89M", 89e6, false},
		{"12.5K", 12500, false},
		{"89,120,000", 89120000, false},
		{" 100 ", 100, false},
		{"N/A", 0, true},
		{"--", 0, true},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAbbreviatedNumber(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}
