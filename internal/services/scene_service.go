package services

import (
	"context"
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"scene-service/internal/assetstore"
	"scene-service/internal/metrics"
	"scene-service/internal/models"
	"scene-service/internal/repository"
	"scene-service/internal/upload"
)

// SceneService coordinates the asset store and the scene repository for each
// request. It holds no cross-request state.
type SceneService struct {
	Repo    repository.SceneRepository
	Assets  assetstore.Store
	Metrics *metrics.Metrics
}

// NewSceneService creates a new SceneService with the given repository and asset store.
func NewSceneService(repo repository.SceneRepository, assets assetstore.Store, m *metrics.Metrics) *SceneService {
	return &SceneService{
		Repo:    repo,
		Assets:  assets,
		Metrics: m,
	}
}

// UploadModel publishes a staged model file to the asset store and creates
// the scene record pointing at it. If the record insert fails the published
// asset is retracted so no orphan remains in the store.
func (s *SceneService) UploadModel(ctx context.Context, ownerID string, staged *upload.StagedFile) (*models.Scene, error) {
	published, err := s.Assets.Publish(ctx, staged.Path, staged.Filename, staged.ContentType)
	if err != nil {
		s.Metrics.RecordSceneOp("upload", "error")
		return nil, errors.Wrap(err, "publishing model failed")
	}

	name := staged.Filename
	if name == "" {
		name = models.DefaultSceneName
	}
	scene := &models.Scene{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		ModelURL:       published.URL,
		AssetID:        published.AssetID,
		Name:           name,
		CameraPosition: models.DefaultCameraPosition(),
		CameraRotation: models.DefaultCameraRotation(),
	}
	if err := s.Repo.Create(scene); err != nil {
		if retractErr := s.Assets.Retract(ctx, published.AssetID); retractErr != nil {
			log.Printf("Failed to retract asset %s after create failure: %v", published.AssetID, retractErr)
		}
		s.Metrics.RecordSceneOp("upload", "error")
		return nil, errors.Wrap(err, "failed to save scene record")
	}

	s.Metrics.RecordUpload(published.Size)
	s.Metrics.RecordSceneOp("upload", "ok")
	return scene, nil
}

// ListScenes returns all scenes owned by the given user, newest first.
func (s *SceneService) ListScenes(ownerID string) ([]models.Scene, error) {
	scenes, err := s.Repo.ListByOwner(ownerID)
	if err != nil {
		s.Metrics.RecordSceneOp("list", "error")
		return nil, err
	}
	s.Metrics.RecordSceneOp("list", "ok")
	return scenes, nil
}

// GetScene retrieves a single scene with the owner baked into the lookup, so
// another user's scene is reported as not found rather than unauthorized.
func (s *SceneService) GetScene(id uuid.UUID, ownerID string) (*models.Scene, error) {
	scene, err := s.Repo.GetByIDForOwner(id, ownerID)
	if err != nil {
		if !errors.Is(err, repository.ErrSceneNotFound) {
			s.Metrics.RecordSceneOp("get", "error")
		}
		return nil, err
	}
	s.Metrics.RecordSceneOp("get", "ok")
	return scene, nil
}

// DeleteScene removes a scene and its remote asset. The scene is fetched by
// id alone and ownership compared explicitly, so a foreign scene yields
// ErrNotOwner. The remote asset is retracted first; the database record is
// removed even when retraction fails, and the retraction error is then
// surfaced to the caller. The orphaned-asset risk is accepted here.
func (s *SceneService) DeleteScene(ctx context.Context, id uuid.UUID, ownerID string) error {
	scene, err := s.Repo.GetByID(id)
	if err != nil {
		return err
	}
	if scene.OwnerID != ownerID {
		return ErrNotOwner
	}

	retractErr := s.Assets.Retract(ctx, scene.AssetID)
	if retractErr != nil {
		log.Printf("Failed to retract asset %s for scene %s: %v", scene.AssetID, id, retractErr)
	}
	if err := s.Repo.Delete(id); err != nil {
		s.Metrics.RecordSceneOp("delete", "error")
		return errors.Wrap(err, "failed to delete scene record")
	}
	if retractErr != nil {
		s.Metrics.RecordSceneOp("delete", "error")
		return retractErr
	}
	s.Metrics.RecordSceneOp("delete", "ok")
	return nil
}

// SaveCameraState replaces both camera sub-objects together and persists the
// scene. Ownership is checked after an unscoped fetch, mirroring DeleteScene.
func (s *SceneService) SaveCameraState(id uuid.UUID, ownerID string, position, rotation models.Vec3) (*models.Scene, error) {
	scene, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if scene.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	scene.CameraPosition = position
	scene.CameraRotation = rotation
	if err := s.Repo.Save(scene); err != nil {
		s.Metrics.RecordSceneOp("save-state", "error")
		return nil, errors.Wrap(err, "failed to persist camera state")
	}
	s.Metrics.RecordSceneOp("save-state", "ok")
	return scene, nil
}

// OpenModel streams the stored model asset for an owner-scoped scene lookup.
func (s *SceneService) OpenModel(ctx context.Context, id uuid.UUID, ownerID string) (io.ReadCloser, *models.Scene, error) {
	scene, err := s.Repo.GetByIDForOwner(id, ownerID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.Assets.Fetch(ctx, scene.AssetID)
	if err != nil {
		s.Metrics.RecordSceneOp("download", "error")
		return nil, nil, err
	}
	s.Metrics.RecordSceneOp("download", "ok")
	return rc, scene, nil
}
