package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, routes map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.EscapedPath()]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", WithTimeout(time.Second))
}

func TestClient_Products(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"ordered list", `{"products":["wow","wow_classic","wowt"]}`, []string{"wow", "wow_classic", "wowt"}},
		{"missing field", `{}`, []string{}},
		{"null field", `{"products":null}`, []string{}},
		{"malformed field", `{"products":"wow"}`, []string{}},
		{"mixed types", `{"products":["wow",3]}`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newBackend(t, map[string]string{"/api/v1/products": tt.body})
			got, err := c.Products(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_ProductsFailures(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		c := newBackend(t, map[string]string{})
		_, err := c.Products(context.Background())
		assert.ErrorIs(t, err, ErrStatus)
	})
	t.Run("not json", func(t *testing.T) {
		c := newBackend(t, map[string]string{"/api/v1/products": `<html>`})
		_, err := c.Products(context.Background())
		assert.Error(t, err)
	})
	t.Run("unreachable", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", WithTimeout(200*time.Millisecond))
		_, err := c.Products(context.Background())
		assert.Error(t, err)
	})
}

func TestClient_VersionsGroupsFlatRows(t *testing.T) {
	body := `[
		{"Region":"us","VersionsName":"11.0.2.56819","BuildId":"56819","BuildConfig":"aabbccddeeff0011"},
		{"Region":"eu","VersionsName":"11.0.2.56819","BuildId":"56819","BuildConfig":"1122334455667788"},
		{"Region":"us","VersionsName":"11.0.2.56647","BuildId":"56647","BuildConfig":"ffeeddccbbaa9988"},
		{"Region":"","VersionsName":"0.0.0","BuildId":"0","BuildConfig":""}
	]`
	c := newBackend(t, map[string]string{"/api/v1/versions/wow_classic": body})

	h, err := c.Versions(context.Background(), "wow_classic")
	require.NoError(t, err)

	assert.Equal(t, []string{"us", "eu"}, h.Regions)
	require.Len(t, h.History("us"), 2)
	assert.Equal(t, "11.0.2.56819", h.History("us")[0].VersionName)
	assert.Equal(t, "56647", h.History("us")[1].BuildID)
	assert.Equal(t, "aabbccdd", h.History("us")[0].ShortConfig())
	assert.Len(t, h.History("eu"), 1)
	assert.Nil(t, h.History("kr"))
}

func TestClient_VersionsEscapesProduct(t *testing.T) {
	c := newBackend(t, map[string]string{"/api/v1/versions/a%2Fb": `[]`})
	h, err := c.Versions(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Empty(t, h.Regions)
}

func TestClient_VersionsFailure(t *testing.T) {
	c := newBackend(t, map[string]string{"/api/v1/versions/wow": `{"detail":"nope"}`})
	_, err := c.Versions(context.Background(), "wow")
	assert.Error(t, err)
}

func TestBuildRecord_ShortConfig(t *testing.T) {
	assert.Equal(t, "abc", BuildRecord{BuildConfigHash: "abc"}.ShortConfig())
	assert.Equal(t, "01234567", BuildRecord{BuildConfigHash: "0123456789"}.ShortConfig())
}
