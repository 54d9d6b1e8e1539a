package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCodec_NilIsNoop(t *testing.T) {
	var c *Codec
	c.Encoded()
	c.Decoded()
	c.DecodeFailed("x")
}

func TestCodec_RegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewCodec(reg)
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	b, err := NewCodec(reg)
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	a.Encoded()
	b.Encoded()
	b.DecodeFailed("unknown_cause")

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	if !strings.Contains(body, "telephony_parcel_encoded_total 2") {
		t.Fatalf("expected shared encoded counter, got:\n%s", body)
	}
	if !strings.Contains(body, `telephony_parcel_decode_failures_total{reason="unknown_cause"} 1`) {
		t.Fatalf("expected failure counter, got:\n%s", body)
	}
}
