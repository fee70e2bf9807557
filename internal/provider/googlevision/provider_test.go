package googlevision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retroconnect/idverify/internal/provider"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewProvider(Config{BaseURL: server.URL, APIKey: "test-key", Timeout: 5 * time.Second})
}

func face(confidence float64, x, y, w, h float64) FaceAnnotation {
	return FaceAnnotation{
		BoundingPoly: BoundingPoly{Vertices: []Vertex{
			{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h},
		}},
		DetectionConfidence: confidence,
	}
}

func TestProvider_Annotate(t *testing.T) {
	selfie := []byte("selfie-bytes")
	idFront := []byte("id-front-bytes")

	tests := []struct {
		name           string
		status         int
		response       interface{}
		wantErr        bool
		wantErrMessage string
		validate       func(*testing.T, *provider.Annotation)
	}{
		{
			name:   "faces on both images and text on id",
			status: http.StatusOK,
			response: BatchAnnotateResponse{Responses: []AnnotateImageResponse{
				{FaceAnnotations: []FaceAnnotation{face(0.95, 10, 20, 100, 120)}},
				{
					FaceAnnotations:    []FaceAnnotation{face(0.93, 5, 5, 40, 50)},
					FullTextAnnotation: &TextAnnotation{Text: "REPUBLIC OF THE PHILIPPINES\nPASSPORT"},
				},
			}},
			validate: func(t *testing.T, a *provider.Annotation) {
				assert.Equal(t, 0.95, a.SelfieConfidence())
				assert.Equal(t, 0.93, a.IDConfidence())
				assert.Equal(t, provider.BoundingBox{X: 10, Y: 20, Width: 100, Height: 120}, a.SelfieFace.BoundingBox)
				assert.Contains(t, a.IDText, "PASSPORT")
			},
		},
		{
			name:   "no face on id and text only in text annotations",
			status: http.StatusOK,
			response: BatchAnnotateResponse{Responses: []AnnotateImageResponse{
				{FaceAnnotations: []FaceAnnotation{face(0.97, 0, 0, 10, 10)}},
				{TextAnnotations: []EntityAnnotation{{Description: "JUAN DELA CRUZ"}, {Description: "JUAN"}}},
			}},
			validate: func(t *testing.T, a *provider.Annotation) {
				assert.Nil(t, a.IDFace)
				assert.Zero(t, a.IDConfidence())
				assert.Equal(t, "JUAN DELA CRUZ", a.IDText)
			},
		},
		{
			name:   "nothing detected",
			status: http.StatusOK,
			response: BatchAnnotateResponse{Responses: []AnnotateImageResponse{
				{}, {},
			}},
			validate: func(t *testing.T, a *provider.Annotation) {
				assert.Nil(t, a.SelfieFace)
				assert.Nil(t, a.IDFace)
				assert.False(t, a.HasText())
			},
		},
		{
			name:   "api error relays message",
			status: http.StatusBadRequest,
			response: map[string]interface{}{
				"error": map[string]interface{}{
					"code":    400,
					"message": "API key not valid. Please pass a valid API key.",
					"status":  "INVALID_ARGUMENT",
				},
			},
			wantErr:        true,
			wantErrMessage: "API key not valid. Please pass a valid API key.",
		},
		{
			name:           "server error without envelope",
			status:         http.StatusInternalServerError,
			response:       "boom",
			wantErr:        true,
			wantErrMessage: "google vision returned status 500",
		},
		{
			name:   "per image error",
			status: http.StatusOK,
			response: BatchAnnotateResponse{Responses: []AnnotateImageResponse{
				{},
				{Error: &Status{Code: 3, Message: "Bad image data.", Status: "INVALID_ARGUMENT"}},
			}},
			wantErr:        true,
			wantErrMessage: "Bad image data.",
		},
		{
			name:     "wrong number of responses",
			status:   http.StatusOK,
			response: BatchAnnotateResponse{Responses: []AnnotateImageResponse{{}}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/images:annotate", r.URL.Path)
				assert.Equal(t, "test-key", r.URL.Query().Get("key"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.response)
			})

			got, err := p.Annotate(context.Background(), provider.AnnotateRequest{Selfie: selfie, IDFront: idFront})

			if tt.wantErr {
				require.Error(t, err)
				if tt.wantErrMessage != "" {
					var svcErr *provider.ServiceError
					require.True(t, errors.As(err, &svcErr))
					assert.Equal(t, tt.wantErrMessage, svcErr.Message)
				}
				return
			}

			require.NoError(t, err)
			tt.validate(t, got)
		})
	}
}

func TestProvider_Annotate_RequestShape(t *testing.T) {
	var captured BatchAnnotateRequest

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(BatchAnnotateResponse{Responses: []AnnotateImageResponse{{}, {}}})
	})

	_, err := p.Annotate(context.Background(), provider.AnnotateRequest{
		Selfie:  []byte("selfie"),
		IDFront: []byte("front"),
	})
	require.NoError(t, err)

	require.Len(t, captured.Requests, 2)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("selfie")), captured.Requests[0].Image.Content)
	assert.Equal(t, []Feature{{Type: FeatureFaceDetection, MaxResults: 1}}, captured.Requests[0].Features)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("front")), captured.Requests[1].Image.Content)
	assert.Equal(t, []Feature{
		{Type: FeatureFaceDetection, MaxResults: 1},
		{Type: FeatureTextDetection},
	}, captured.Requests[1].Features)
}

func TestProvider_Annotate_RejectsEmptyImages(t *testing.T) {
	called := false
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := p.Annotate(context.Background(), provider.AnnotateRequest{Selfie: nil, IDFront: []byte("x")})

	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrInvalidImage)
	assert.False(t, called)
}

func TestProvider_DetectFaces(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req BatchAnnotateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Requests, 1)
		assert.Equal(t, maxDetectedFaces, req.Requests[0].Features[0].MaxResults)

		_ = json.NewEncoder(w).Encode(BatchAnnotateResponse{Responses: []AnnotateImageResponse{{
			FaceAnnotations: []FaceAnnotation{face(0.9, 100, 80, 200, 220), face(0.6, 10, 10, 20, 20)},
		}}})
	})

	faces, err := p.DetectFaces(context.Background(), []byte("frame"))

	require.NoError(t, err)
	require.Len(t, faces, 2)
	assert.Equal(t, provider.BoundingBox{X: 100, Y: 80, Width: 200, Height: 220}, faces[0].BoundingBox)
	assert.Equal(t, 0.9, faces[0].Confidence)
}

func TestPolyToBox_MissingVertexCoordinates(t *testing.T) {
	// zero coordinates are omitted on the wire and decode as 0
	var poly BoundingPoly
	require.NoError(t, json.Unmarshal([]byte(`{"vertices":[{},{"x":50},{"x":50,"y":60},{"y":60}]}`), &poly))

	assert.Equal(t, provider.BoundingBox{X: 0, Y: 0, Width: 50, Height: 60}, polyToBox(poly))
	assert.Equal(t, provider.BoundingBox{}, polyToBox(BoundingPoly{}))
}

func TestProvider_Name(t *testing.T) {
	assert.Equal(t, "google", NewProvider(DefaultConfig()).Name())
}
