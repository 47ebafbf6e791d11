// Package files stores uploaded profile images and certificate documents.
package files

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

type Kind string

const (
	KindProfile     Kind = "profile"
	KindCertificate Kind = "certificate"
)

// MaxUploadSize caps a single uploaded file.
const MaxUploadSize = 10 << 20

var (
	ErrTooLarge        = errors.New("file exceeds the upload limit")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrUnknownKind     = errors.New("unknown upload kind")
)

// File is an uploaded file held in memory.
type File struct {
	Name string
	Data []byte
}

// MIME returns the detected content type, e.g. "application/pdf".
func (f *File) MIME() string {
	return mimetype.Detect(f.Data).String()
}

func (f *File) IsPDF() bool {
	return mimetype.Detect(f.Data).Is("application/pdf")
}

func (f *File) IsImage() bool {
	return strings.HasPrefix(f.MIME(), "image/")
}

// ReadUpload loads a multipart file into memory.
func ReadUpload(fh *multipart.FileHeader) (*File, error) {
	if fh.Size > MaxUploadSize {
		return nil, ErrTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxUploadSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxUploadSize {
		return nil, ErrTooLarge
	}
	return &File{Name: filepath.Base(fh.Filename), Data: data}, nil
}

// Storage writes files below a root directory served at URLPrefix.
type Storage struct {
	root      string
	urlPrefix string
}

func NewStorage(root string) *Storage {
	return &Storage{root: root, urlPrefix: "/uploads"}
}

func (s *Storage) Root() string { return s.root }

// Upload saves f under the kind's directory and returns its public URL path.
func (s *Storage) Upload(f *File, kind Kind) (string, error) {
	switch kind {
	case KindProfile:
		if !f.IsImage() {
			return "", fmt.Errorf("profile image: %w (%s)", ErrUnsupportedType, f.MIME())
		}
	case KindCertificate:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	destDir := filepath.Join(s.root, string(kind))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	ext := filepath.Ext(f.Name)
	if ext == "" {
		ext = mimetype.Detect(f.Data).Extension()
	}
	newFilename := time.Now().Format("20060102150405") + "-" + uuid.NewString()[:8] + strings.ToLower(ext)
	if err := os.WriteFile(filepath.Join(destDir, newFilename), f.Data, 0644); err != nil {
		return "", err
	}

	return s.urlPrefix + "/" + string(kind) + "/" + newFilename, nil
}
