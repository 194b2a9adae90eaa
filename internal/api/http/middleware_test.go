package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driverent-backend/internal/domain"
)

func TestClientIP(t *testing.T) {
	resolver, err := NewClientIPResolver([]string{"10.0.0.0/8", " 192.0.2.10 ", "2001:db8::1"})
	require.NoError(t, err)

	cases := []struct {
		name       string
		resolver   *ClientIPResolver
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"forwarded by trusted proxy", resolver, "203.0.113.9, 10.0.0.1", "10.0.0.2:5555", "203.0.113.9"},
		{"single forwarded hop", resolver, " 198.51.100.4 ", "10.0.0.2:5555", "198.51.100.4"},
		{"spoofed leftmost hop", resolver, "8.8.8.8, 203.0.113.9", "10.0.0.2:5555", "203.0.113.9"},
		{"untrusted peer", resolver, "8.8.8.8", "203.0.113.7:5555", "203.0.113.7"},
		{"no proxies configured", nil, "8.8.8.8", "203.0.113.7:5555", "203.0.113.7"},
		{"garbage hop", resolver, "not-an-ip", "10.0.0.2:5555", "10.0.0.2"},
		{"chain of trusted hops", resolver, "10.1.1.1, 10.0.0.1", "10.0.0.2:5555", "10.1.1.1"},
		{"trusted peer without header", resolver, "", "192.0.2.10:41000", "192.0.2.10"},
		{"ipv6 peer", nil, "", "[2001:db8::1]:443", "2001:db8::1"},
		{"trusted ipv6 peer", resolver, "198.51.100.4", "[2001:db8::1]:443", "198.51.100.4"},
		{"peer without port", nil, "", "192.0.2.10", "192.0.2.10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/contratos/1/assinar", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			assert.Equal(t, tc.want, tc.resolver.ClientIP(r))
		})
	}
}

func TestNewClientIPResolver_Invalid(t *testing.T) {
	for _, proxy := range []string{"proxy.internal", "10.0.0.0/33"} {
		_, err := NewClientIPResolver([]string{proxy})
		assert.Error(t, err, proxy)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&domain.ErrValidation{Field: "data_fim"}, http.StatusBadRequest, "invalid_request"},
		{&domain.ErrUnprocessable{Message: "dados legais incompletos"}, http.StatusUnprocessableEntity, "unprocessable"},
		{&domain.ErrUnauthorized{}, http.StatusUnauthorized, "unauthorized"},
		{&domain.ErrForbidden{Action: "assinar"}, http.StatusForbidden, "forbidden"},
		{&domain.ErrNotFound{Resource: "contrato", ID: 1}, http.StatusNotFound, "not_found"},
		{fmt.Errorf("approve: %w", &domain.ErrConflict{Message: "ja aprovada"}), http.StatusConflict, "conflict"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		status, code := classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := extractToken(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "bearer abc.def.ghi")
	tok, err := extractToken(r)
	assert.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	r.Header.Set("Authorization", "abc.def.ghi")
	tok, err = extractToken(r)
	assert.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)
}

func TestErrorWriter_HidesDetailsInProduction(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/contratos/1", nil)
	err := errors.New("pq: relation \"contratos\" does not exist")

	rec := httptest.NewRecorder()
	errorWriter{production: true}.write(rec, r, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation")

	rec = httptest.NewRecorder()
	errorWriter{production: false}.write(rec, r, err)
	assert.Contains(t, rec.Body.String(), "relation")
}
