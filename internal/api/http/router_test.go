package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/events"
	"alugaai-backend/internal/metrics"
	"alugaai-backend/internal/repository/memory"
	"alugaai-backend/internal/security"
	"alugaai-backend/internal/service"
	"alugaai-backend/internal/storage"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

var (
	owner     = domain.Identity{UserID: "owner-1", Name: "Ana", Provider: security.ProviderLocal}
	requester = domain.Identity{UserID: "req-1", Name: "Bruno", Provider: security.ProviderLocal}
)

type testEnv struct {
	server  *httptest.Server
	catalog service.CatalogService
	rentals service.RentalService
	tokens  security.TokenManager
	item    *domain.Item
}

func newTestEnv(t *testing.T, ready func(context.Context) error) *testEnv {
	t.Helper()

	store := memory.NewStore(false)
	broker := events.NewBroker(16)
	tm := security.NewTokenManager("test-secret", time.Hour, 24*time.Hour)

	env := &testEnv{tokens: tm}
	mux := http.NewServeMux()
	env.server = httptest.NewServer(mux)
	t.Cleanup(env.server.Close)

	files, err := storage.NewLocalStorage(env.server.URL, t.TempDir())
	require.NoError(t, err)

	env.catalog = service.NewCatalogService(store.Items, files, broker, service.ImagePolicy{
		AllowedTypes: []string{"image/png", "image/jpeg"},
		MaxBytes:     1024,
	})
	env.rentals = service.NewRentalService(store.Rentals, store.Items,
		service.NewEmailNotifier(service.NewLogMailer(), store.Users), broker)

	router := NewRouter(RouterConfig{
		Catalog:        env.catalog,
		Rentals:        env.rentals,
		Feed:           broker,
		Verifier:       security.NewLocalVerifier(tm),
		Metrics:        metrics.New(),
		Files:          files,
		MaxUploadBytes: 1024,
		Ready:          ready,
	})
	mux.Handle("/", router)

	env.item, err = env.catalog.AddItem(context.Background(), owner, service.ItemInput{
		Title: "Bike", Description: "Bicicleta urbana aro 29", Category: "Esportes", Price: "R$ 25/dia",
	})
	require.NoError(t, err)
	return env
}

func (e *testEnv) token(t *testing.T, id domain.Identity) string {
	t.Helper()
	tok, err := e.tokens.GenerateAccessToken(id.UserID, id.Name, id.Email)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token, contentType string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, nil)
	resp := env.do(t, http.MethodGet, "/healthz", "", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := newTestEnv(t, func(context.Context) error { return errors.New("db down") })
	resp = down.do(t, http.MethodGet, "/healthz", "", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/metrics", "", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUploadItemImage_RawBody(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodPut, "/api/v1/items/"+env.item.ID+"/image?filename=bike.png",
		env.token(t, owner), "image/png", bytes.NewReader(pngBytes))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		ID       string `json:"id"`
		ImageURL string `json:"image_url"`
		Price    string `json:"price"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, env.item.ID, body.ID)
	assert.Equal(t, "R$ 25,00/dia", body.Price)
	require.True(t, strings.HasPrefix(body.ImageURL, env.server.URL+"/api/v1/files/items/"+env.item.ID+"/"))

	file := env.do(t, http.MethodGet, strings.TrimPrefix(body.ImageURL, env.server.URL), "", "", nil)
	require.Equal(t, http.StatusOK, file.StatusCode)
	assert.Equal(t, "image/png", file.Header.Get("Content-Type"))
	got, err := io.ReadAll(file.Body)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, got)
}

func TestUploadItemImage_Multipart(t *testing.T) {
	env := newTestEnv(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="image"; filename="foto.png"`},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp := env.do(t, http.MethodPut, "/api/v1/items/"+env.item.ID+"/image", env.token(t, owner), mw.FormDataContentType(), &buf)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	item, err := env.catalog.GetItem(context.Background(), env.item.ID)
	require.NoError(t, err)
	require.NotNil(t, item.ImageURL)
	assert.True(t, strings.HasSuffix(*item.ImageURL, ".png"))
}

func TestUploadItemImage_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	path := "/api/v1/items/" + env.item.ID + "/image"

	tests := []struct {
		name        string
		token       string
		contentType string
		body        []byte
		status      int
		code        string
	}{
		{"No token", "", "image/png", pngBytes, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"Not the owner", env.token(t, requester), "image/png", pngBytes, http.StatusForbidden, "FORBIDDEN"},
		{"Unsupported type", env.token(t, owner), "text/plain", []byte("hello"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"Too large", env.token(t, owner), "image/png", bytes.Repeat([]byte{1}, 2048), http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPut, path, tt.token, tt.contentType, bytes.NewReader(tt.body))
			assert.Equal(t, tt.status, resp.StatusCode)
			var body errorBody
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.code, string(body.Error.Code))
		})
	}

	t.Run("Missing item", func(t *testing.T) {
		resp := env.do(t, http.MethodPut, "/api/v1/items/nope/image", env.token(t, owner), "image/png", bytes.NewReader(pngBytes))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Missing file", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/v1/files/items/x/none.png", "", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestRentalFeed_WebSocket(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	existing, err := env.rentals.CreateRental(ctx, requester, service.CreateRentalInput{ItemID: env.item.ID, TotalDays: 4})
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/api/v1/ws/rentals?token=" + env.token(t, owner)
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var snapshot feedMessage
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, "snapshot", snapshot.Type)
	require.Len(t, snapshot.Rentals, 1)
	assert.Equal(t, existing.ID, snapshot.Rentals[0].ID)
	assert.Equal(t, "100.00", snapshot.Rentals[0].TotalPrice.StringFixed(2))

	_, err = env.rentals.Approve(ctx, owner, existing.ID)
	require.NoError(t, err)

	var update feedMessage
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, string(domain.EventRentalUpdated), update.Type)
	require.NotNil(t, update.Rental)
	assert.Equal(t, domain.RentalStatusApproved, update.Rental.Status)
}

func TestRentalFeed_RequiresToken(t *testing.T) {
	env := newTestEnv(t, nil)
	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/api/v1/ws/rentals"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
