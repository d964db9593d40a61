package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"scene-service/internal/middleware"
	"scene-service/internal/models"
	"scene-service/internal/repository"
	"scene-service/internal/services"
	"scene-service/internal/upload"
)

const InvalidSceneIDError = "invalid scene id"
const SceneNotFoundError = "Scene not found"

// SceneHandler defines handlers for the scene CRUD surface.
type SceneHandler struct {
	Service *services.SceneService
	Intake  *upload.Intake
}

// NewSceneHandler creates a new SceneHandler with the given service and upload intake.
func NewSceneHandler(service *services.SceneService, intake *upload.Intake) *SceneHandler {
	return &SceneHandler{Service: service, Intake: intake}
}

// SaveStateRequest carries the full replacement camera state. Both fields are
// required; pointers distinguish absent fields from zero vectors.
type SaveStateRequest struct {
	CameraPosition *models.Vec3 `json:"cameraPosition"`
	CameraRotation *models.Vec3 `json:"cameraRotation"`
}

// UploadModel handles POST /upload to create a scene from a model file.
// @Summary Upload a 3D model
// @Description Upload a GLB, GLTF or OBJ file and create a scene for it
// @Tags scenes
// @Accept multipart/form-data
// @Produce json
// @Param model formData file true "Model file (.glb, .gltf or .obj)"
// @Success 201 {object} map[string]interface{} "Scene created"
// @Failure 400 {object} map[string]interface{} "No file or unsupported type"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /upload [post]
func (h *SceneHandler) UploadModel(c *fiber.Ctx) error {
	ownerID := middleware.UserID(c)

	fileHeader, err := c.FormFile("model")
	if err != nil {
		log.Printf("Upload with no file attached: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No file uploaded",
		})
	}

	staged, err := h.Intake.Stage(fileHeader)
	if err != nil {
		if errors.Is(err, upload.ErrUnsupportedType) || errors.Is(err, upload.ErrFileTooLarge) {
			log.Printf("Rejected upload %s: %v", fileHeader.Filename, err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		log.Printf("Failed to stage upload %s: %v", fileHeader.Filename, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error uploading model", "error": err.Error(),
		})
	}
	defer staged.Discard()

	scene, err := h.Service.UploadModel(c.Context(), ownerID, staged)
	if err != nil {
		log.Printf("Error uploading model for user %s: %v", ownerID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error uploading model", "error": err.Error(),
		})
	}

	log.Printf("Created scene %s for user %s (%s, %d bytes)", scene.ID, ownerID, scene.Name, staged.Size)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":        scene.ID,
		"modelUrl":  scene.ModelURL,
		"name":      scene.Name,
		"createdAt": scene.CreatedAt,
	})
}

// ListScenes handles GET / to list the caller's scenes, newest first.
// @Summary List scenes
// @Description List all scenes owned by the authenticated user
// @Tags scenes
// @Produce json
// @Success 200 {array} models.Scene "Scenes, newest first"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router / [get]
func (h *SceneHandler) ListScenes(c *fiber.Ctx) error {
	ownerID := middleware.UserID(c)

	scenes, err := h.Service.ListScenes(ownerID)
	if err != nil {
		log.Printf("Error fetching scenes for user %s: %v", ownerID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching scenes",
		})
	}
	if scenes == nil {
		scenes = []models.Scene{}
	}
	return c.JSON(scenes)
}

// GetScene handles GET /:id. The lookup is owner-scoped in the query itself,
// so another user's scene yields 404 rather than 401.
// @Summary Get a scene by ID
// @Description Get a single scene owned by the authenticated user
// @Tags scenes
// @Produce json
// @Param id path string true "Scene ID"
// @Success 200 {object} models.Scene "Scene found"
// @Failure 400 {object} map[string]interface{} "Invalid scene id"
// @Failure 404 {object} map[string]interface{} "Scene not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /{id} [get]
func (h *SceneHandler) GetScene(c *fiber.Ctx) error {
	ownerID := middleware.UserID(c)

	sceneID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": InvalidSceneIDError,
		})
	}

	scene, err := h.Service.GetScene(sceneID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrSceneNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": SceneNotFoundError,
			})
		}
		log.Printf("Error fetching scene %s: %v", sceneID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching scene",
		})
	}
	return c.JSON(scene)
}

// DeleteScene handles DELETE /:id. The scene is fetched by id alone and
// ownership compared afterwards, so a foreign scene yields 401.
// @Summary Delete a scene
// @Description Delete a scene and retract its remote model asset
// @Tags scenes
// @Produce json
// @Param id path string true "Scene ID"
// @Success 200 {object} map[string]interface{} "Scene removed"
// @Failure 400 {object} map[string]interface{} "Invalid scene id"
// @Failure 401 {object} map[string]interface{} "Not the owner"
// @Failure 404 {object} map[string]interface{} "Scene not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /{id} [delete]
func (h *SceneHandler) DeleteScene(c *fiber.Ctx) error {
	ownerID := middleware.UserID(c)

	sceneID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": InvalidSceneIDError,
		})
	}

	if err := h.Service.DeleteScene(c.Context(), sceneID, ownerID); err != nil {
		switch {
		case errors.Is(err, repository.ErrSceneNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": SceneNotFoundError,
			})
		case errors.Is(err, services.ErrNotOwner):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized to delete this scene",
			})
		}
		log.Printf("Error deleting scene %s: %v", sceneID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error deleting scene", "error": err.Error(),
		})
	}

	log.Printf("Deleted scene %s for user %s", sceneID, ownerID)
	return c.JSON(fiber.Map{"message": "Scene removed"})
}

// SaveCameraState handles PUT /:id/save-state, replacing both camera
// sub-objects together. Ownership semantics match DeleteScene.
// @Summary Save camera state
// @Description Replace the scene's camera position and rotation
// @Tags scenes
// @Accept json
// @Produce json
// @Param id path string true "Scene ID"
// @Param state body SaveStateRequest true "Camera position and rotation"
// @Success 200 {object} map[string]interface{} "Updated camera state"
// @Failure 400 {object} map[string]interface{} "Missing field or invalid id"
// @Failure 401 {object} map[string]interface{} "Not the owner"
// @Failure 404 {object} map[string]interface{} "Scene not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /{id}/save-state [put]
func (h *SceneHandler) SaveCameraState(c *fiber.Ctx) error {
	ownerID := middleware.UserID(c)

	sceneID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": InvalidSceneIDError,
		})
	}

	var req SaveStateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request format", "error": err.Error(),
		})
	}
	if req.CameraPosition == nil || req.CameraRotation == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Camera position and rotation are required",
		})
	}

	scene, err := h.Service.SaveCameraState(sceneID, ownerID, *req.CameraPosition, *req.CameraRotation)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSceneNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": SceneNotFoundError,
			})
		case errors.Is(err, services.ErrNotOwner):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized to update this scene",
			})
		}
		log.Printf("Error updating camera state for scene %s: %v", sceneID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error updating camera state", "error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"id":             scene.ID,
		"cameraPosition": scene.CameraPosition,
		"cameraRotation": scene.CameraRotation,
	})
}

// DownloadModel handles GET /:id/model to stream the stored model through the
// service. Owner scoping follows GetScene.
// @Summary Download a scene's model file
// @Description Stream the stored model asset for a scene
// @Tags scenes
// @Produce application/octet-stream
// @Param id path string true "Scene ID"
// @Success 200 {file} binary "Model file"
// @Failure 400 {object} map[string]interface{} "Invalid scene id"
// @Failure 404 {object} map[string]interface{} "Scene not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /{id}/model [get]
func (h *SceneHandler) DownloadModel(c *fiber.Ctx) error {
	ownerID := middleware.UserID(c)

	sceneID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": InvalidSceneIDError,
		})
	}

	rc, scene, err := h.Service.OpenModel(c.Context(), sceneID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrSceneNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": SceneNotFoundError,
			})
		}
		log.Printf("Error opening model for scene %s: %v", sceneID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching model", "error": err.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, upload.ContentTypeFor(scene.Name))
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=\""+scene.Name+"\"")
	return c.SendStream(rc)
}
