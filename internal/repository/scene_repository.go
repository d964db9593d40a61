package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"scene-service/internal/models"
)

// SceneRepository defines persistence operations over the Scene model.
type SceneRepository interface {
	Create(scene *models.Scene) error
	GetByID(id uuid.UUID) (*models.Scene, error)
	GetByIDForOwner(id uuid.UUID, ownerID string) (*models.Scene, error)
	ListByOwner(ownerID string) ([]models.Scene, error)
	Save(scene *models.Scene) error
	Delete(id uuid.UUID) error
}

// SceneRepositoryImpl provides methods to interact with the Scene model in the database.
type SceneRepositoryImpl struct {
	db *gorm.DB
}

// NewSceneRepository creates a new SceneRepositoryImpl instance with the provided GORM database connection.
func NewSceneRepository(db *gorm.DB) *SceneRepositoryImpl {
	return &SceneRepositoryImpl{db: db}
}

// Create inserts a new Scene in the database.
func (r *SceneRepositoryImpl) Create(scene *models.Scene) error {
	return r.db.Create(scene).Error
}

// GetByID retrieves a Scene by its ID regardless of owner.
func (r *SceneRepositoryImpl) GetByID(id uuid.UUID) (*models.Scene, error) {
	var scene models.Scene
	err := r.db.First(&scene, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSceneNotFound
	}
	if err != nil {
		return nil, err
	}
	return &scene, nil
}

// GetByIDForOwner retrieves a Scene by ID with the owner baked into the query
// predicate, so a foreign scene is indistinguishable from an absent one.
func (r *SceneRepositoryImpl) GetByIDForOwner(id uuid.UUID, ownerID string) (*models.Scene, error) {
	var scene models.Scene
	err := r.db.First(&scene, "id = ? AND owner_id = ?", id, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSceneNotFound
	}
	if err != nil {
		return nil, err
	}
	return &scene, nil
}

// ListByOwner retrieves all Scenes belonging to an owner, newest first.
func (r *SceneRepositoryImpl) ListByOwner(ownerID string) ([]models.Scene, error) {
	var scenes []models.Scene
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&scenes).Error
	return scenes, err
}

// Save persists in-place mutation of an existing Scene.
func (r *SceneRepositoryImpl) Save(scene *models.Scene) error {
	return r.db.Save(scene).Error
}

// Delete removes a Scene by its ID from the database.
func (r *SceneRepositoryImpl) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Scene{}, "id = ?", id).Error
}
