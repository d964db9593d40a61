package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-service/internal/handlers"
	"scene-service/internal/middleware"
	"scene-service/internal/mocks"
	"scene-service/internal/services"
	"scene-service/internal/upload"
)

const testUserHeader = "X-Test-User"

// newTestApp wires the handler against in-memory fakes, with a stub identity
// middleware that trusts the X-Test-User header.
func newTestApp() (*fiber.App, *mocks.FakeSceneRepository, *mocks.FakeAssetStore) {
	repo := mocks.NewFakeSceneRepository()
	assets := mocks.NewFakeAssetStore()
	svc := services.NewSceneService(repo, assets, nil)
	h := handlers.NewSceneHandler(svc, upload.NewIntake(50<<20))

	app := fiber.New()
	api := app.Group("/api/scene", func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDKey, c.Get(testUserHeader))
		return c.Next()
	})
	api.Post("/upload", h.UploadModel)
	api.Get("/", h.ListScenes)
	api.Get("/:id", h.GetScene)
	api.Get("/:id/model", h.DownloadModel)
	api.Delete("/:id", h.DeleteScene)
	api.Put("/:id/save-state", h.SaveCameraState)
	return app, repo, assets
}

func uploadRequest(t *testing.T, user, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="model"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/scene/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set(testUserHeader, user)
	return req
}

func jsonRequest(t *testing.T, user, method, path, body string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(testUserHeader, user)
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestUploadModel_NoFileYields400(t *testing.T) {
	app, repo, _ := newTestApp()

	req := jsonRequest(t, "alice", "POST", "/api/scene/upload", "")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No file uploaded", decodeBody(t, resp)["message"])
	assert.Equal(t, 0, repo.Len())
}

func TestUploadModel_TextFileRejectedAtIntake(t *testing.T) {
	app, repo, assets := newTestApp()

	resp, err := app.Test(uploadRequest(t, "alice", "notes.txt", "text/plain", []byte("nope")), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, repo.Len())
	assert.Empty(t, assets.Retracted())
}

func TestUploadModel_PublishFailureYields500(t *testing.T) {
	app, repo, assets := newTestApp()
	assets.PublishErr = fmt.Errorf("remote store unreachable")

	resp, err := app.Test(uploadRequest(t, "alice", "chair.glb", "model/gltf-binary", []byte("glb")), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Error uploading model", body["message"])
	assert.NotEmpty(t, body["error"])
	assert.Equal(t, 0, repo.Len())
}

func TestSceneLifecycle_UploadGetSaveStateDelete(t *testing.T) {
	app, _, _ := newTestApp()

	// Upload a valid .glb
	resp, err := app.Test(uploadRequest(t, "alice", "chair.glb", "model/gltf-binary", []byte("glb bytes")), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	sceneID, _ := created["id"].(string)
	require.NotEmpty(t, sceneID)
	assert.Equal(t, "chair.glb", created["name"])
	assert.Contains(t, created["modelUrl"], "https://assets.test/")
	assert.NotEmpty(t, created["createdAt"])

	// Get-one returns camera defaults
	resp, err = app.Test(jsonRequest(t, "alice", "GET", "/api/scene/"+sceneID, ""), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	scene := decodeBody(t, resp)
	position := scene["cameraPosition"].(map[string]interface{})
	rotation := scene["cameraRotation"].(map[string]interface{})
	assert.Equal(t, 5.0, position["z"])
	assert.Equal(t, 0.0, position["x"])
	assert.Equal(t, 0.0, rotation["x"])

	// Save camera state
	resp, err = app.Test(jsonRequest(t, "alice", "PUT", "/api/scene/"+sceneID+"/save-state",
		`{"cameraPosition":{"x":1,"y":2,"z":3},"cameraRotation":{"x":0,"y":0,"z":0}}`), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decodeBody(t, resp)
	newPosition := updated["cameraPosition"].(map[string]interface{})
	assert.Equal(t, 1.0, newPosition["x"])
	assert.Equal(t, 2.0, newPosition["y"])
	assert.Equal(t, 3.0, newPosition["z"])

	// Get-one reflects the saved state
	resp, err = app.Test(jsonRequest(t, "alice", "GET", "/api/scene/"+sceneID, ""), -1)
	require.NoError(t, err)
	scene = decodeBody(t, resp)
	position = scene["cameraPosition"].(map[string]interface{})
	assert.Equal(t, 1.0, position["x"])

	// Delete, then the scene is gone
	resp, err = app.Test(jsonRequest(t, "alice", "DELETE", "/api/scene/"+sceneID, ""), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Scene removed", decodeBody(t, resp)["message"])

	resp, err = app.Test(jsonRequest(t, "alice", "GET", "/api/scene/"+sceneID, ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListScenes_OwnerScopedNewestFirst(t *testing.T) {
	app, _, _ := newTestApp()

	for _, tc := range []struct{ user, name string }{
		{"alice", "a.glb"}, {"alice", "b.glb"}, {"bob", "c.glb"},
	} {
		resp, err := app.Test(uploadRequest(t, tc.user, tc.name, "model/gltf-binary", []byte("x")), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp, err := app.Test(jsonRequest(t, "alice", "GET", "/api/scene/", ""), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var scenes []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&scenes))
	require.Len(t, scenes, 2)
	assert.Equal(t, "b.glb", scenes[0]["name"])
	assert.Equal(t, "a.glb", scenes[1]["name"])
}

func TestGetScene_ForeignOwnerYields404(t *testing.T) {
	app, _, _ := newTestApp()

	resp, err := app.Test(uploadRequest(t, "alice", "a.glb", "model/gltf-binary", []byte("x")), -1)
	require.NoError(t, err)
	sceneID := decodeBody(t, resp)["id"].(string)

	resp, err = app.Test(jsonRequest(t, "bob", "GET", "/api/scene/"+sceneID, ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteScene_ForeignOwnerYields401(t *testing.T) {
	app, repo, _ := newTestApp()

	resp, err := app.Test(uploadRequest(t, "alice", "a.glb", "model/gltf-binary", []byte("x")), -1)
	require.NoError(t, err)
	sceneID := decodeBody(t, resp)["id"].(string)

	resp, err = app.Test(jsonRequest(t, "bob", "DELETE", "/api/scene/"+sceneID, ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Not authorized to delete this scene", decodeBody(t, resp)["message"])
	assert.Equal(t, 1, repo.Len())
}

func TestSaveCameraState_MissingRotationYields400(t *testing.T) {
	app, _, _ := newTestApp()

	resp, err := app.Test(uploadRequest(t, "alice", "a.glb", "model/gltf-binary", []byte("x")), -1)
	require.NoError(t, err)
	sceneID := decodeBody(t, resp)["id"].(string)

	resp, err = app.Test(jsonRequest(t, "alice", "PUT", "/api/scene/"+sceneID+"/save-state",
		`{"cameraPosition":{"x":1,"y":2,"z":3}}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Camera position and rotation are required", decodeBody(t, resp)["message"])

	// Stored record is unchanged
	resp, err = app.Test(jsonRequest(t, "alice", "GET", "/api/scene/"+sceneID, ""), -1)
	require.NoError(t, err)
	scene := decodeBody(t, resp)
	position := scene["cameraPosition"].(map[string]interface{})
	assert.Equal(t, 5.0, position["z"])
}

func TestSaveCameraState_ForeignOwnerYields401(t *testing.T) {
	app, _, _ := newTestApp()

	resp, err := app.Test(uploadRequest(t, "alice", "a.glb", "model/gltf-binary", []byte("x")), -1)
	require.NoError(t, err)
	sceneID := decodeBody(t, resp)["id"].(string)

	resp, err = app.Test(jsonRequest(t, "bob", "PUT", "/api/scene/"+sceneID+"/save-state",
		`{"cameraPosition":{"x":1,"y":2,"z":3},"cameraRotation":{"x":0,"y":0,"z":0}}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Not authorized to update this scene", decodeBody(t, resp)["message"])
}

func TestSaveCameraState_UnknownSceneYields404(t *testing.T) {
	app, _, _ := newTestApp()

	resp, err := app.Test(jsonRequest(t, "alice", "PUT",
		"/api/scene/6fa459ea-ee8a-3ca4-894e-db77e160355e/save-state",
		`{"cameraPosition":{"x":1,"y":2,"z":3},"cameraRotation":{"x":0,"y":0,"z":0}}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetScene_MalformedIDYields400(t *testing.T) {
	app, _, _ := newTestApp()

	resp, err := app.Test(jsonRequest(t, "alice", "GET", "/api/scene/not-a-uuid", ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDownloadModel_StreamsUploadedBytes(t *testing.T) {
	app, _, _ := newTestApp()

	content := []byte("glb binary content")
	resp, err := app.Test(uploadRequest(t, "alice", "chair.glb", "model/gltf-binary", content), -1)
	require.NoError(t, err)
	sceneID := decodeBody(t, resp)["id"].(string)

	resp, err = app.Test(jsonRequest(t, "alice", "GET", "/api/scene/"+sceneID+"/model", ""), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "model/gltf-binary", resp.Header.Get(fiber.HeaderContentType))

	downloaded, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, content, downloaded)
}

func TestDownloadModel_ForeignOwnerYields404(t *testing.T) {
	app, _, _ := newTestApp()

	resp, err := app.Test(uploadRequest(t, "alice", "a.glb", "model/gltf-binary", []byte("x")), -1)
	require.NoError(t, err)
	sceneID := decodeBody(t, resp)["id"].(string)

	resp, err = app.Test(jsonRequest(t, "bob", "GET", "/api/scene/"+sceneID+"/model", ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
