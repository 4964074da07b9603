package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"realtyhub/internal/config"
	"realtyhub/internal/domain"
	"realtyhub/internal/notify"
	"realtyhub/internal/services"
	"realtyhub/internal/storage"
	"realtyhub/internal/storage/memory"
	"realtyhub/internal/upload"
	"realtyhub/internal/util"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

type testServer struct {
	*httptest.Server
	store     storage.Storage
	hub       *notify.Hub
	uploadDir string
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		App:  config.AppConfig{Name: "realtyhub-test", Version: "test", Debug: true},
		Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost, AllowRegistration: true},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         300,
		},
		WhatsApp: config.WhatsAppConfig{Provider: config.ProviderConsole},
		Upload: config.UploadConfig{
			Dir:        filepath.Join(t.TempDir(), "uploads"),
			PublicPath: "/uploads",
			MaxBytes:   1 << 16,
			MaxFiles:   2,
		},
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := testConfig(t)
	store := memory.New()

	for _, u := range []struct {
		name  string
		admin bool
	}{{"admin", true}, {"agent", false}} {
		hash, err := util.HashPassword("secret123", bcrypt.MinCost)
		require.NoError(t, err)
		_, err = store.CreateUser(context.Background(), domain.NewUser{Username: u.name, PasswordHash: hash, IsAdmin: u.admin})
		require.NoError(t, err)
	}

	uploads, err := upload.NewLocalStore(&cfg.Upload)
	require.NoError(t, err)

	hub := notify.NewHub(cfg.CORS.AllowedOrigins)
	whatsapp := notify.NewWhatsAppService(&cfg.WhatsApp)
	hub.OnConnect(func() []notify.Event { return []notify.Event{whatsapp.StatusEvent()} })
	whatsapp.OnStateChange(func(evt notify.Event) { hub.Broadcast(evt) })

	srv := httptest.NewServer(NewRouter(Deps{
		Config:     cfg,
		Auth:       services.NewAuthService(store, &cfg.Auth),
		Properties: services.NewPropertyService(store),
		Slider:     services.NewSliderService(store),
		Settings:   services.NewSettingsService(store),
		Contact:    services.NewContactService(store, whatsapp, hub, nil),
		Health:     services.NewHealthService(store, cfg.App.Name),
		Uploads:    uploads,
		Hub:        hub,
	}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return &testServer{Server: srv, store: store, hub: hub, uploadDir: cfg.Upload.Dir}
}

func adminAuth() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:secret123"))
}

func (s *testServer) do(t *testing.T, method, path, auth string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeJSON(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, v), string(data))
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodGet, "/api/admin/contact/messages", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Authentication required"}`, string(body))

	agent := "Basic " + base64.StdEncoding.EncodeToString([]byte("agent:secret123"))
	resp, body = srv.do(t, http.MethodGet, "/api/admin/contact/messages", agent, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Admin access required"}`, string(body))

	wrong := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:nope-nope"))
	resp, _ = srv.do(t, http.MethodGet, "/api/admin/contact/messages", wrong, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = srv.do(t, http.MethodGet, "/api/admin/contact/messages", adminAuth(), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
}

func TestLoginAndRegister(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodPost, "/api/admin/login", "", domain.Credentials{Username: "admin", Password: "secret123"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var login struct {
		Message string       `json:"message"`
		User    *domain.User `json:"user"`
	}
	decodeJSON(t, body, &login)
	assert.Equal(t, "admin", login.User.Username)
	assert.True(t, login.User.IsAdmin)
	assert.NotContains(t, string(body), "secret123")

	resp, _ = srv.do(t, http.MethodPost, "/api/admin/login", "", domain.Credentials{Username: "admin", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = srv.do(t, http.MethodPost, "/api/admin/register", "", domain.Credentials{Username: "broker", Password: "longenough"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, _ = srv.do(t, http.MethodPost, "/api/admin/register", "", domain.Credentials{Username: "broker", Password: "longenough"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	broker := "Basic " + base64.StdEncoding.EncodeToString([]byte("broker:longenough"))
	resp, _ = srv.do(t, http.MethodGet, "/api/admin/slider", broker, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestContactSubmitIsStoredAndListed(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodPost, "/api/contact/submit", "", map[string]string{
		"name":    "Abel",
		"email":   "a@b.com",
		"phone":   "+251911000000",
		"message": "Interested in Bole apartment",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var result services.SubmitResult
	decodeJSON(t, body, &result)
	assert.True(t, result.Success)
	assert.True(t, result.WhatsAppSent)
	assert.NotEmpty(t, result.Message)

	resp, body = srv.do(t, http.MethodGet, "/api/admin/contact/messages", adminAuth(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var messages []domain.ContactMessage
	decodeJSON(t, body, &messages)
	require.Len(t, messages, 1)
	assert.Equal(t, "Abel", messages[0].Name)
	assert.False(t, messages[0].IsRead)

	resp, _ = srv.do(t, http.MethodPut, "/api/admin/contact/messages/"+messages[0].ID+"/read", adminAuth(), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, body = srv.do(t, http.MethodGet, "/api/admin/contact/messages", adminAuth(), nil)
	decodeJSON(t, body, &messages)
	assert.True(t, messages[0].IsRead)
}

func TestContactSubmitErrorsKeepResultShape(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodPost, "/api/contact/submit", "", map[string]string{"name": "A"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out map[string]interface{}
	decodeJSON(t, body, &out)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, false, out["whatsappSent"])
	assert.NotEmpty(t, out["message"])
	assert.NotContains(t, out, "error")
}

func TestCreatePropertyAppliesDefaults(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodPost, "/api/admin/properties", adminAuth(), map[string]interface{}{
		"title":        "T",
		"description":  "D",
		"location":     "L",
		"propertyType": "apartment",
		"size":         100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var p domain.Property
	decodeJSON(t, body, &p)
	assert.Equal(t, 0, p.Bedrooms)
	assert.Equal(t, 0, p.Bathrooms)
	assert.Equal(t, []string{domain.StatusForSale}, p.Status)
	assert.Equal(t, []string{}, p.ImageURLs)
	assert.True(t, p.IsActive)
	assert.Contains(t, string(body), `"imageUrls":[]`)
}

func TestUpdatePropertyChangesOnlyGivenFields(t *testing.T) {
	srv := newTestServer(t)

	_, body := srv.do(t, http.MethodPost, "/api/admin/properties", adminAuth(), map[string]interface{}{
		"title": "Villa", "description": "Garden", "location": "Bole", "propertyType": "villa",
		"size": 320, "bedrooms": 3, "bathrooms": 2, "status": []string{"New Offer"},
	})
	var before domain.Property
	decodeJSON(t, body, &before)

	time.Sleep(5 * time.Millisecond)
	resp, body := srv.do(t, http.MethodPut, "/api/admin/properties/"+before.ID, adminAuth(), map[string]int{"bedrooms": 4})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var after domain.Property
	decodeJSON(t, body, &after)
	assert.Equal(t, 4, after.Bedrooms)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))

	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.Size, after.Size)
	assert.Equal(t, before.Bathrooms, after.Bathrooms)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
}

func TestDeletedPropertyLeavesPublicList(t *testing.T) {
	srv := newTestServer(t)

	_, body := srv.do(t, http.MethodPost, "/api/admin/properties", adminAuth(), map[string]interface{}{
		"title": "T", "description": "D", "location": "L", "propertyType": "apartment", "size": 80,
	})
	var p domain.Property
	decodeJSON(t, body, &p)

	resp, body := srv.do(t, http.MethodGet, "/api/properties/"+p.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"images":[]`)

	resp, _ = srv.do(t, http.MethodDelete, "/api/admin/properties/"+p.ID, adminAuth(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = srv.do(t, http.MethodGet, "/api/properties", "", nil)
	assert.JSONEq(t, `[]`, string(body))
	resp, _ = srv.do(t, http.MethodGet, "/api/properties/"+p.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	stored, err := srv.store.GetProperty(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.IsActive)
}

func TestPropertyImagesMainFlag(t *testing.T) {
	srv := newTestServer(t)

	_, body := srv.do(t, http.MethodPost, "/api/admin/properties", adminAuth(), map[string]interface{}{
		"title": "T", "description": "D", "location": "L", "propertyType": "apartment", "size": 80,
	})
	var p domain.Property
	decodeJSON(t, body, &p)

	var ids []string
	for _, url := range []string{"/uploads/a.png", "/uploads/b.png"} {
		resp, body := srv.do(t, http.MethodPost, "/api/admin/properties/"+p.ID+"/images", adminAuth(), map[string]interface{}{"imageUrl": url, "isMain": len(ids) == 0})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
		var img domain.PropertyImage
		decodeJSON(t, body, &img)
		ids = append(ids, img.ID)
	}

	resp, body := srv.do(t, http.MethodPut, "/api/admin/images/"+ids[1]+"/main", adminAuth(), map[string]string{"propertyId": p.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	_, body = srv.do(t, http.MethodGet, "/api/admin/properties/"+p.ID+"/images", adminAuth(), nil)
	var images []domain.PropertyImage
	decodeJSON(t, body, &images)
	require.Len(t, images, 2)
	for _, img := range images {
		assert.Equal(t, img.ID == ids[1], img.IsMain, img.ID)
	}

	resp, _ = srv.do(t, http.MethodDelete, "/api/admin/images/"+ids[0], adminAuth(), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = srv.do(t, http.MethodDelete, "/api/admin/images/"+ids[0], adminAuth(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSliderPublicListHidesInactive(t *testing.T) {
	srv := newTestServer(t)

	_, body := srv.do(t, http.MethodPost, "/api/admin/slider", adminAuth(), map[string]interface{}{"imageUrl": "/uploads/s1.png", "title": "One"})
	var first domain.SliderImage
	decodeJSON(t, body, &first)
	srv.do(t, http.MethodPost, "/api/admin/slider", adminAuth(), map[string]interface{}{"imageUrl": "/uploads/s2.png", "title": "Two"})

	resp, _ := srv.do(t, http.MethodPut, "/api/admin/slider/"+first.ID, adminAuth(), map[string]bool{"isActive": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var public, all []domain.SliderImage
	_, body = srv.do(t, http.MethodGet, "/api/slider", "", nil)
	decodeJSON(t, body, &public)
	_, body = srv.do(t, http.MethodGet, "/api/admin/slider", adminAuth(), nil)
	decodeJSON(t, body, &all)
	assert.Len(t, public, 1)
	assert.Len(t, all, 2)

	resp, _ = srv.do(t, http.MethodDelete, "/api/admin/slider/missing", adminAuth(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWhatsAppSettingsAndLink(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodGet, "/api/whatsapp/settings", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var settings domain.WhatsAppSettings
	decodeJSON(t, body, &settings)
	assert.True(t, settings.IsActive)
	assert.Equal(t, "Real Estate", settings.BusinessName)

	resp, _ = srv.do(t, http.MethodGet, "/api/whatsapp/link", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = srv.do(t, http.MethodPut, "/api/admin/whatsapp/settings", adminAuth(), map[string]string{"phoneNumber": "+251 911 000000"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	decodeJSON(t, body, &settings)
	assert.Equal(t, "+251 911 000000", settings.PhoneNumber)
	assert.Equal(t, "Real Estate", settings.BusinessName)

	resp, body = srv.do(t, http.MethodGet, "/api/whatsapp/link", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var link services.WhatsAppLink
	decodeJSON(t, body, &link)
	assert.True(t, strings.HasPrefix(link.URL, "https://wa.me/251911000000?text="))
	assert.Equal(t, settings.GeneralInquiryTemplate, link.Message)
}

func TestContactSettingsPartialUpdate(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodPut, "/api/admin/contact/settings", adminAuth(), map[string]string{"email": "office@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	resp, _ = srv.do(t, http.MethodPut, "/api/admin/contact/settings", adminAuth(), map[string]string{"phone": "+251911"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = srv.do(t, http.MethodGet, "/api/contact/settings", "", nil)
	var settings domain.ContactSettings
	decodeJSON(t, body, &settings)
	assert.Equal(t, "office@example.com", settings.Email)
	assert.Equal(t, "+251911", settings.Phone)

	resp, _ = srv.do(t, http.MethodPut, "/api/admin/contact/settings", adminAuth(), map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func multipartBody(t *testing.T, field string, files ...[]byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for i, content := range files {
		part, err := mw.CreateFormFile(field, "photo"+string(rune('a'+i))+".png")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func (s *testServer) upload(t *testing.T, path, field string, files ...[]byte) (*http.Response, []byte) {
	t.Helper()
	body, contentType := multipartBody(t, field, files...)
	req, err := http.NewRequest(http.MethodPost, s.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", adminAuth())
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestUploadAndServe(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.upload(t, "/api/admin/upload/property", "image", pngBytes)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var file upload.File
	decodeJSON(t, body, &file)
	assert.True(t, strings.HasPrefix(file.URL, "/uploads/"))

	served, err := srv.Client().Get(srv.URL + file.URL)
	require.NoError(t, err)
	defer served.Body.Close()
	content, err := io.ReadAll(served.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, served.StatusCode)
	assert.Equal(t, pngBytes, content)

	resp, _ = srv.upload(t, "/api/admin/upload/slider", "image", []byte("plain text, not an image"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = srv.upload(t, "/api/admin/upload/property", "wrong-field", pngBytes)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadMultipleRespectsFileLimit(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.upload(t, "/api/admin/upload/multiple", "images", pngBytes, pngBytes)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out struct {
		Files []upload.File `json:"files"`
	}
	decodeJSON(t, body, &out)
	require.Len(t, out.Files, 2)
	assert.NotEqual(t, out.Files[0].Filename, out.Files[1].Filename)

	resp, _ = srv.upload(t, "/api/admin/upload/multiple", "images", pngBytes, pngBytes, pngBytes)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRejectedBatchLeavesNoFiles(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := srv.upload(t, "/api/admin/upload/multiple", "images", pngBytes, []byte("plain text, not an image"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	entries, err := os.ReadDir(srv.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health services.HealthResult
	decodeJSON(t, body, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp, body = srv.do(t, http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Route not found"}`, string(body))
}

func dialWS(t *testing.T, srv *testServer) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var evt map[string]interface{}
	decodeJSON(t, data, &evt)
	return evt
}

func TestContactSubmitNotifiesConnectedClients(t *testing.T) {
	srv := newTestServer(t)

	clients := []*websocket.Conn{dialWS(t, srv), dialWS(t, srv)}
	for _, conn := range clients {
		assert.Equal(t, notify.EventConnectionEstablished, readWS(t, conn)["type"])
		status := readWS(t, conn)
		assert.Equal(t, notify.EventWhatsAppStatus, status["type"])
		assert.Equal(t, true, status["ready"])
	}
	require.Equal(t, 2, srv.hub.Count())

	resp, body := srv.do(t, http.MethodPost, "/api/contact/submit", "", map[string]string{
		"name":    "Abel",
		"email":   "a@b.com",
		"phone":   "+251911000000",
		"message": "Interested in Bole apartment",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	messages, err := srv.store.ListContactMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 1)

	for _, conn := range clients {
		evt := readWS(t, conn)
		assert.Equal(t, notify.EventContactMessageSent, evt["type"])
		assert.Equal(t, messages[0].ID, evt["contactMessageId"])
		assert.Equal(t, "Abel", evt["name"])
	}
}
