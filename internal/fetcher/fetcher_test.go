package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html>
<head><title>Guard statement</title><script>var x = "hidden";</script></head>
<body>
<nav>Home | About</nav>
<p>Exit early with guard.</p>
<p>Keep the happy path unindented.</p>
<footer>copyright</footer>
</body>
</html>`

func TestPreview(t *testing.T) {
	t.Run("extracts readable text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(page))
		}))
		defer srv.Close()

		text, err := NewClient(srv.Client()).Preview(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Contains(t, text, "Exit early with guard.")
		assert.NotContains(t, text, "hidden", "script content is skipped")
		assert.NotContains(t, text, "Home | About", "nav content is skipped")
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		_, err := NewClient(srv.Client()).Preview(context.Background(), srv.URL)
		assert.ErrorContains(t, err, "HTTP 404")
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := NewClient(nil).Preview(context.Background(), "ftp://example.com/tips")
		assert.ErrorContains(t, err, "unsupported scheme")
	})

	t.Run("empty page is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html><body><script>x()</script></body></html>"))
		}))
		defer srv.Close()

		_, err := NewClient(srv.Client()).Preview(context.Background(), srv.URL)
		assert.ErrorContains(t, err, "no text content")
	})
}
