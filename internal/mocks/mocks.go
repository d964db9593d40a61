// Package mocks provides in-memory stand-ins for the scene repository and
// the asset store, used by package tests.
package mocks

import (
	"bytes"
	"context"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"scene-service/internal/assetstore"
	"scene-service/internal/models"
	"scene-service/internal/repository"
)

// FakeSceneRepository keeps scenes in a map and honors the repository
// contract, including the owner-scoped lookup and newest-first listing.
type FakeSceneRepository struct {
	mu     sync.Mutex
	scenes map[uuid.UUID]models.Scene
	seq    int

	CreateErr error
	SaveErr   error
	DeleteErr error
	ListErr   error
}

func NewFakeSceneRepository() *FakeSceneRepository {
	return &FakeSceneRepository{scenes: make(map[uuid.UUID]models.Scene)}
}

func (r *FakeSceneRepository) Create(scene *models.Scene) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if scene.CreatedAt.IsZero() {
		// Strictly increasing timestamps so ordering assertions are stable.
		scene.CreatedAt = time.Unix(0, 0).Add(time.Duration(r.seq) * time.Second)
	}
	scene.UpdatedAt = scene.CreatedAt
	r.scenes[scene.ID] = *scene
	return nil
}

func (r *FakeSceneRepository) GetByID(id uuid.UUID) (*models.Scene, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	scene, ok := r.scenes[id]
	if !ok {
		return nil, repository.ErrSceneNotFound
	}
	return &scene, nil
}

func (r *FakeSceneRepository) GetByIDForOwner(id uuid.UUID, ownerID string) (*models.Scene, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	scene, ok := r.scenes[id]
	if !ok || scene.OwnerID != ownerID {
		return nil, repository.ErrSceneNotFound
	}
	return &scene, nil
}

func (r *FakeSceneRepository) ListByOwner(ownerID string) ([]models.Scene, error) {
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var scenes []models.Scene
	for _, scene := range r.scenes {
		if scene.OwnerID == ownerID {
			scenes = append(scenes, scene)
		}
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].CreatedAt.After(scenes[j].CreatedAt)
	})
	return scenes, nil
}

func (r *FakeSceneRepository) Save(scene *models.Scene) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.scenes[scene.ID]; !ok {
		return repository.ErrSceneNotFound
	}
	scene.UpdatedAt = time.Now()
	r.scenes[scene.ID] = *scene
	return nil
}

func (r *FakeSceneRepository) Delete(id uuid.UUID) error {
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scenes, id)
	return nil
}

// Len reports the number of stored scenes.
func (r *FakeSceneRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scenes)
}

// FakeAssetStore records published content in memory.
type FakeAssetStore struct {
	mu        sync.Mutex
	published map[string][]byte
	retracted []string

	PublishErr error
	RetractErr error
	FetchErr   error
}

func NewFakeAssetStore() *FakeAssetStore {
	return &FakeAssetStore{published: make(map[string][]byte)}
}

func (s *FakeAssetStore) Publish(_ context.Context, localPath, filename, contentType string) (*assetstore.PublishedAsset, error) {
	if s.PublishErr != nil {
		return nil, s.PublishErr
	}
	content, err := os.ReadFile(localPath)
	if err != nil {
		return nil, err
	}
	assetID := "models/" + uuid.New().String()
	s.mu.Lock()
	s.published[assetID] = content
	s.mu.Unlock()
	return &assetstore.PublishedAsset{
		URL:     "https://assets.test/scene-models/" + assetID,
		AssetID: assetID,
		Size:    int64(len(content)),
	}, nil
}

func (s *FakeAssetStore) Retract(_ context.Context, assetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retracted = append(s.retracted, assetID)
	if s.RetractErr != nil {
		return s.RetractErr
	}
	delete(s.published, assetID)
	return nil
}

func (s *FakeAssetStore) Fetch(_ context.Context, assetID string) (io.ReadCloser, error) {
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.published[assetID]
	if !ok {
		return nil, errors.New("asset not found")
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// Stored reports whether an asset is currently held by the store.
func (s *FakeAssetStore) Stored(assetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.published[assetID]
	return ok
}

// Retracted returns the asset ids retraction was requested for, in order.
func (s *FakeAssetStore) Retracted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.retracted...)
}
