package upload

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Intake validation errors, surfaced to the handler as 400s.
var (
	ErrUnsupportedType = errors.New("invalid file type, only GLB, GLTF and OBJ files are allowed")
	ErrFileTooLarge    = errors.New("file exceeds the maximum upload size")
)

// StagedFile is an accepted upload parked on local disk, ready for handoff
// to the asset store.
type StagedFile struct {
	Path        string
	Filename    string
	ContentType string
	Size        int64
}

// Intake accepts inbound model files, validates type and size, and stages
// them in the local temp directory. It never inspects file content.
type Intake struct {
	MaxBytes int64
}

// NewIntake creates an Intake enforcing the given size cap in bytes.
func NewIntake(maxBytes int64) *Intake {
	return &Intake{MaxBytes: maxBytes}
}

// contentTypeForExt maps model file extensions to their canonical media type.
var contentTypeForExt = map[string]string{
	".glb":  "model/gltf-binary",
	".gltf": "model/gltf+json",
	".obj":  "model/obj",
}

// ContentTypeFor returns the canonical media type for a model filename, or
// application/octet-stream when the extension is unknown.
func ContentTypeFor(filename string) string {
	if ct := contentTypeForExt[strings.ToLower(filepath.Ext(filename))]; ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// accepted reports whether the declared media type and filename extension
// identify a supported model file. String matching only; this is an input
// filter, not a security boundary.
func accepted(filename, declaredType string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	switch declaredType {
	case "model/gltf+json", "model/gltf-binary":
		return true
	case "application/octet-stream":
		return ext == ".glb" || ext == ".gltf"
	}
	return ext == ".obj"
}

// Stage validates the uploaded file and copies it to a temporary location.
// The caller owns the staged file and must Discard it when done.
func (i *Intake) Stage(fileHeader *multipart.FileHeader) (*StagedFile, error) {
	declaredType := fileHeader.Header.Get("Content-Type")
	if !accepted(fileHeader.Filename, declaredType) {
		return nil, ErrUnsupportedType
	}
	if i.MaxBytes > 0 && fileHeader.Size > i.MaxBytes {
		return nil, ErrFileTooLarge
	}

	srcFile, err := fileHeader.Open()
	if err != nil {
		return nil, errors.Wrap(err, "could not open uploaded file")
	}
	defer srcFile.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	tempFile, err := os.CreateTemp(os.TempDir(), "upload-*"+ext)
	if err != nil {
		return nil, errors.Wrap(err, "could not create temporary file")
	}
	tempPath := tempFile.Name()
	written, err := io.Copy(tempFile, srcFile)
	tempFile.Close()
	if err != nil {
		os.Remove(tempPath)
		return nil, errors.Wrap(err, "failed to write uploaded file")
	}

	contentType := contentTypeForExt[ext]
	if contentType == "" {
		contentType = declaredType
	}
	return &StagedFile{
		Path:        tempPath,
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Size:        written,
	}, nil
}

// Discard removes the staged file from local disk.
func (f *StagedFile) Discard() {
	if f != nil && f.Path != "" {
		os.Remove(f.Path)
	}
}
