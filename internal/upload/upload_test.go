package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retroconnect/idverify/internal/storage"
	"github.com/retroconnect/idverify/internal/storage/memory"
)

func dataURI(payload string) *string {
	s := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
	return &s
}

func fixedNow() time.Time {
	return time.UnixMilli(1700000000123)
}

func newTestCoordinator(store storage.Storage) *Coordinator {
	c := NewCoordinator(store, "admin", slog.Default())
	c.now = fixedNow
	return c
}

func TestDecodeDataURI(t *testing.T) {
	tests := []struct {
		name            string
		uri             string
		wantPayload     string
		wantContentType string
		wantErr         bool
	}{
		{
			name:            "jpeg",
			uri:             *dataURI("abc"),
			wantPayload:     "abc",
			wantContentType: "image/jpeg",
		},
		{
			name:            "missing content type",
			uri:             "data:;base64," + base64.StdEncoding.EncodeToString([]byte("x")),
			wantPayload:     "x",
			wantContentType: "application/octet-stream",
		},
		{name: "not a data uri", uri: "https://example.com/a.jpg", wantErr: true},
		{name: "no comma", uri: "data:image/jpeg;base64", wantErr: true},
		{name: "not base64 encoded", uri: "data:image/jpeg,raw", wantErr: true},
		{name: "bad base64", uri: "data:image/jpeg;base64,***", wantErr: true},
		{name: "empty payload", uri: "data:image/jpeg;base64,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, contentType, err := DecodeDataURI(tt.uri)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDataURI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPayload, string(payload))
			assert.Equal(t, tt.wantContentType, contentType)
		})
	}
}

func TestObjectPath(t *testing.T) {
	assert.Equal(t, "temp-1/selfie-1700000000123.jpg", ObjectPath("temp-1", NameSelfie, fixedNow()))
}

func TestCoordinator_Upload(t *testing.T) {
	store := memory.New("https://cdn.test")
	c := newTestCoordinator(store)

	url, err := c.Upload(context.Background(), dataURI("selfie"), NameSelfie, "temp-9")
	require.NoError(t, err)
	require.NotNil(t, url)
	assert.Equal(t, "https://cdn.test/admin/temp-9/selfie-1700000000123.jpg", *url)

	got, err := store.Download(context.Background(), "admin", "temp-9/selfie-1700000000123.jpg")
	require.NoError(t, err)
	assert.Equal(t, "selfie", string(got))
}

func TestCoordinator_UploadNil(t *testing.T) {
	store := memory.New("https://cdn.test")
	c := newTestCoordinator(store)

	url, err := c.Upload(context.Background(), nil, NameIDBack, "temp-9")

	require.NoError(t, err)
	assert.Nil(t, url)
	assert.Equal(t, 0, store.Len())
}

func TestCoordinator_UploadSet(t *testing.T) {
	store := memory.New("https://cdn.test")
	c := newTestCoordinator(store)

	urls, err := c.UploadSet(context.Background(), "temp-1", Set{
		Selfie:  dataURI("s"),
		IDFront: dataURI("f"),
	})
	require.NoError(t, err)

	require.NotNil(t, urls.Selfie)
	require.NotNil(t, urls.IDFront)
	assert.Nil(t, urls.IDBack)
	assert.Equal(t, "https://cdn.test/admin/temp-1/id-front-1700000000123.jpg", *urls.IDFront)
	assert.Equal(t, 2, store.Len())
}

type failingStore struct {
	storage.Storage
}

func (failingStore) Put(context.Context, string, string, []byte, string) error {
	return errors.New("bucket unavailable")
}

func TestCoordinator_UploadSetFailure(t *testing.T) {
	c := newTestCoordinator(failingStore{Storage: memory.New("https://cdn.test")})

	urls, err := c.UploadSet(context.Background(), "temp-1", Set{
		Selfie:  dataURI("s"),
		IDFront: dataURI("f"),
		IDBack:  dataURI("b"),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unavailable")
	assert.Nil(t, urls.Selfie)
}

func TestCoordinator_UploadSetInvalidImage(t *testing.T) {
	c := newTestCoordinator(memory.New("https://cdn.test"))
	bad := "not-an-image"

	_, err := c.UploadSet(context.Background(), "temp-1", Set{Selfie: &bad, IDFront: dataURI("f")})

	assert.ErrorIs(t, err, ErrInvalidDataURI)
}
