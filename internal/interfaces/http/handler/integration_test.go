package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prapazar/backend/internal/domain/integration"
)

func TestIntegrationHandler_Register(t *testing.T) {
	f := newFixture(t)

	t.Run("creates an inactive integration", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/integrations",
			`{"channel_code":"TRENDYOL","credentials":{"api_key":"k","api_secret":"s"}}`)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				ID          string `json:"id"`
				ChannelCode string `json:"channel_code"`
				Status      string `json:"status"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "TRENDYOL", resp.Data.ChannelCode)
		assert.Equal(t, string(integration.StatusInactive), resp.Data.Status)
	})

	t.Run("rejects a duplicate channel registration", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/integrations",
			`{"channel_code":"TRENDYOL","credentials":{"api_key":"k"}}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_ALREADY_EXISTS")
	})

	t.Run("rejects an unknown channel", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/integrations",
			`{"channel_code":"AMAZON","credentials":{"api_key":"k"}}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_CHANNEL_NOT_SUPPORTED")
	})

	t.Run("rejects missing credentials", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/integrations", `{"channel_code":"HEPSIBURADA"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestIntegrationHandler_Lifecycle(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/v1/integrations",
		`{"channel_code":"TRENDYOL","credentials":{"api_key":"k"}}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.ID

	t.Run("activate brings the integration live", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/integrations/"+id+"/activate", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), string(integration.StatusActive))
	})

	t.Run("status reports live protection state", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/integrations/"+id+"/status", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data struct {
				Live         bool   `json:"live"`
				BreakerState string `json:"breaker_state"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Data.Live)
		assert.NotEmpty(t, resp.Data.BreakerState)
	})

	t.Run("deactivate takes it out of the live set", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/integrations/"+id+"/deactivate", "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = f.do(http.MethodGet, "/api/v1/integrations/"+id+"/status", "")
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data struct {
				Live bool `json:"live"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Data.Live)
	})

	t.Run("remove frees the channel slot", func(t *testing.T) {
		w := f.do(http.MethodDelete, "/api/v1/integrations/"+id, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = f.do(http.MethodPost, "/api/v1/integrations",
			`{"channel_code":"TRENDYOL","credentials":{"api_key":"k2"}}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestIntegrationHandler_List(t *testing.T) {
	f := newFixture(t)
	f.registerAndActivate(t, integration.ChannelCodeTrendyol)
	f.registerAndActivate(t, integration.ChannelCodeHepsiburada)

	t.Run("lists all integrations", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/integrations", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data []json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, 2)
	})

	t.Run("rejects an unknown category filter", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/integrations?category=warehouse", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestIntegrationHandler_Overview(t *testing.T) {
	f := newFixture(t)
	f.registerAndActivate(t, integration.ChannelCodeTrendyol)

	w := f.do(http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			Live bool `json:"live"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.True(t, resp.Data[0].Live)
}

func TestIntegrationHandler_Metrics(t *testing.T) {
	f := newFixture(t)
	f.registerAndActivate(t, integration.ChannelCodeTrendyol)

	// A sync cycle populates the per-channel stats
	w := f.do(http.MethodPost, "/api/v1/sync/products", `{"page":0,"page_size":50}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/v1/metrics/sync", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Global struct {
				Requests  int64 `json:"requests"`
				Successes int64 `json:"successes"`
			} `json:"global"`
			Channels map[string]struct {
				Requests int64 `json:"requests"`
			} `json:"channels"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Data.Global.Requests)
	assert.Contains(t, resp.Data.Channels, "TRENDYOL")
}

func TestIntegrationHandler_Unauthenticated(t *testing.T) {
	f := newFixture(t)

	req := f.do(http.MethodGet, "/api/v1/integrations", "")
	require.Equal(t, http.StatusOK, req.Code)

	// Without the user header the handler rejects the request
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/integrations", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIntegrationHandler_InvalidID(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/v1/integrations/not-a-uuid/activate", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodGet, fmt.Sprintf("/api/v1/integrations/%s/status", "00000000-0000-0000-0000-000000000009"), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
