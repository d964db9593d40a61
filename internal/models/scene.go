package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSceneName is used when the uploaded file carries no usable filename.
const DefaultSceneName = "Untitled Scene"

// Vec3 is a camera-space coordinate triple.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DefaultCameraPosition places the camera slightly back from the origin so a
// freshly uploaded model is in view.
func DefaultCameraPosition() Vec3 { return Vec3{X: 0, Y: 0, Z: 5} }

// DefaultCameraRotation is the identity orientation.
func DefaultCameraRotation() Vec3 { return Vec3{} }

// Scene pairs an externally hosted 3D model with per-user camera state.
type Scene struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID        string    `gorm:"index;not null" json:"owner"`
	ModelURL       string    `gorm:"not null" json:"modelUrl"`
	AssetID        string    `gorm:"not null" json:"assetId"`
	Name           string    `json:"name"`
	CameraPosition Vec3      `gorm:"embedded;embeddedPrefix:cam_pos_" json:"cameraPosition"`
	CameraRotation Vec3      `gorm:"embedded;embeddedPrefix:cam_rot_" json:"cameraRotation"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
