package registration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retroconnect/idverify/internal/domain"
)

func TestHTTPVerifier_Verify(t *testing.T) {
	var got domain.VerificationRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, VerifyFacePath, r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"match":true,"details":"Face verification successful.","similarity":97.5}`))
	}))
	defer server.Close()

	v := NewHTTPVerifier(server.URL+"/", "tok")
	result, err := v.Verify(context.Background(), &domain.VerificationRequest{
		SelfieImageURL: "https://cdn/s.jpg",
		IDFrontURL:     "https://cdn/f.jpg",
		UserID:         "temp-1",
		UserData:       &domain.UserData{FirstName: "Juan", LastName: "Dela Cruz", DateOfBirth: "1990-05-17", Gender: "male"},
		IDType:         "Passport",
	})

	require.NoError(t, err)
	assert.True(t, result.Match)
	assert.Equal(t, 97.5, result.Similarity)
	assert.Equal(t, "https://cdn/s.jpg", got.SelfieImageURL)
	assert.Equal(t, "Juan", got.UserData.FirstName)
}

func TestHTTPVerifier_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Missing required parameters."}`))
	}))
	defer server.Close()

	_, err := NewHTTPVerifier(server.URL, "").Verify(context.Background(), &domain.VerificationRequest{})
	require.Error(t, err)
	assert.Equal(t, "Missing required parameters.", err.Error())
}

func TestHTTPVerifier_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	}))
	defer server.Close()

	_, err := NewHTTPVerifier(server.URL, "").Verify(context.Background(), &domain.VerificationRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}
