package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papermill/portal/internal/domain/printing"
	"github.com/papermill/portal/internal/infrastructure/storage"
)

// ErrPDFNotFound is returned when a stored PDF no longer exists
var ErrPDFNotFound = errors.New("stored PDF not found")

// PDFStorage stores and retrieves generated PDFs
type PDFStorage interface {
	// Store saves a PDF and returns its storage path
	Store(ctx context.Context, req *StoreRequest) (*StoreResult, error)
	// Get opens a stored PDF
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes a PDF; a missing file is not an error
	Delete(ctx context.Context, path string) error
	// CleanupOlderThan removes PDFs older than age
	CleanupOlderThan(ctx context.Context, age time.Duration) (int, error)
}

// URLSigner is implemented by storages that can hand out direct download
// links instead of streaming through the portal
type URLSigner interface {
	DownloadURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// StoreRequest contains the parameters for storing a PDF
type StoreRequest struct {
	DocType printing.DocType
	JobID   uuid.UUID
	PDFData []byte
	// At decides the year/month folder; zero means now
	At time.Time
}

// StoreResult contains the result of storing a PDF
type StoreResult struct {
	Path string
	Size int64
}

// ObjectPath is the storage-relative path of a PDF:
// {doc prefix}/{year}/{month}/{job id}.pdf
func ObjectPath(req *StoreRequest) string {
	at := req.At
	if at.IsZero() {
		at = time.Now()
	}
	return path.Join(
		req.DocType.FilePrefix(),
		fmt.Sprintf("%d", at.Year()),
		fmt.Sprintf("%02d", at.Month()),
		req.JobID.String()+".pdf",
	)
}

func validateStoreRequest(ctx context.Context, req *StoreRequest) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	if req == nil {
		return NewRenderError(ErrCodeStorageFailed, "store request is nil", nil)
	}
	if !req.DocType.IsValid() {
		return NewRenderError(ErrCodeStorageFailed, "document type is required", nil)
	}
	if req.JobID == uuid.Nil {
		return NewRenderError(ErrCodeStorageFailed, "job ID is required", nil)
	}
	if len(req.PDFData) == 0 {
		return NewRenderError(ErrCodeStorageFailed, "PDF data is empty", nil)
	}
	return nil
}

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the root directory for PDF storage
	BasePath string
	Logger   *zap.Logger
}

// FileSystemStorage stores PDFs on the local file system
type FileSystemStorage struct {
	basePath string
	logger   *zap.Logger
}

// NewFileSystemStorage creates the base directory and returns the storage
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config == nil {
		config = &FileSystemStorageConfig{}
	}
	basePath := config.BasePath
	if basePath == "" {
		basePath = "./documents"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create storage directory: %s", basePath), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSystemStorage{basePath: basePath, logger: logger}, nil
}

// Store writes the PDF under the base path
func (s *FileSystemStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if err := validateStoreRequest(ctx, req); err != nil {
		return nil, err
	}

	rel := ObjectPath(req)
	full := filepath.Join(s.basePath, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create directory", err)
	}
	if err := os.WriteFile(full, req.PDFData, 0o644); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}

	s.logger.Info("PDF stored", zap.String("path", rel), zap.Int("size", len(req.PDFData)))
	return &StoreResult{Path: rel, Size: int64(len(req.PDFData))}, nil
}

// Get opens a PDF by its relative path
func (s *FileSystemStorage) Get(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	full, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPDFNotFound
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to open PDF file", err)
	}
	return file, nil
}

// Delete removes a PDF file
func (s *FileSystemStorage) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return NewRenderError(ErrCodeStorageFailed, "failed to delete PDF file", err)
	}
	s.logger.Info("PDF deleted", zap.String("path", p))
	return nil
}

// CleanupOlderThan removes PDF files whose modification time is older than age
func (s *FileSystemStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	deleted := 0

	err := filepath.Walk(s.basePath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(p) != ".pdf" {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(p); err == nil {
				deleted++
				s.logger.Debug("deleted old PDF", zap.String("path", p))
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return deleted, NewRenderError(ErrCodeStorageFailed, "cleanup walk failed", err)
	}

	s.logger.Info("cleanup completed", zap.Int("deleted", deleted), zap.Duration("age", age))
	return deleted, nil
}

// resolve maps a relative path to a file under the base path, rejecting
// absolute paths and anything that escapes the base
func (s *FileSystemStorage) resolve(p string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(p))
	if p == "" || filepath.IsAbs(clean) || containsDotDot(p) {
		s.logger.Warn("blocked potentially malicious path", zap.String("path", p))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve base path", err)
	}
	absPath, err := filepath.Abs(filepath.Join(s.basePath, clean))
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve file path", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		s.logger.Warn("path escape attempt blocked", zap.String("path", p))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}
	return absPath, nil
}

// containsDotDot checks the raw path for ".." components
func containsDotDot(p string) bool {
	parts := strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == '\\' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

// ObjectStore is the slice of object storage the S3 PDF storage needs
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// S3PDFStorage keeps PDFs in an S3-compatible bucket under a key prefix
type S3PDFStorage struct {
	store  ObjectStore
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// NewS3PDFStorage wraps an object store. prefix may be empty.
func NewS3PDFStorage(store ObjectStore, prefix string, logger *zap.Logger) *S3PDFStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix = strings.Trim(prefix, "/")
	return &S3PDFStorage{store: store, prefix: prefix, logger: logger, now: time.Now}
}

func (s *S3PDFStorage) key(p string) string {
	if s.prefix == "" {
		return p
	}
	return s.prefix + "/" + p
}

// Store uploads the PDF
func (s *S3PDFStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if err := validateStoreRequest(ctx, req); err != nil {
		return nil, err
	}
	rel := ObjectPath(req)
	if err := s.store.Upload(ctx, s.key(rel), req.PDFData, "application/pdf"); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to upload PDF", err)
	}
	s.logger.Info("PDF uploaded", zap.String("path", rel), zap.Int("size", len(req.PDFData)))
	return &StoreResult{Path: rel, Size: int64(len(req.PDFData))}, nil
}

// Get downloads a PDF
func (s *S3PDFStorage) Get(ctx context.Context, p string) (io.ReadCloser, error) {
	if p == "" || containsDotDot(p) {
		return nil, NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}
	rc, err := s.store.Download(ctx, s.key(p))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, ErrPDFNotFound
	}
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to download PDF", err)
	}
	return rc, nil
}

// Delete removes a PDF
func (s *S3PDFStorage) Delete(ctx context.Context, p string) error {
	if p == "" || containsDotDot(p) {
		return NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}
	if err := s.store.DeleteObject(ctx, s.key(p)); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "failed to delete PDF", err)
	}
	return nil
}

// CleanupOlderThan deletes objects under the prefix last modified before now-age
func (s *S3PDFStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	listPrefix := ""
	if s.prefix != "" {
		listPrefix = s.prefix + "/"
	}
	objects, err := s.store.List(ctx, listPrefix)
	if err != nil {
		return 0, NewRenderError(ErrCodeStorageFailed, "failed to list PDFs", err)
	}

	cutoff := s.now().Add(-age)
	deleted := 0
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, ".pdf") || !obj.LastModified.Before(cutoff) {
			continue
		}
		if err := s.store.DeleteObject(ctx, obj.Key); err != nil {
			s.logger.Warn("failed to delete old PDF", zap.String("key", obj.Key), zap.Error(err))
			continue
		}
		deleted++
	}
	s.logger.Info("cleanup completed", zap.Int("deleted", deleted), zap.Duration("age", age))
	return deleted, nil
}

// DownloadURL returns a presigned link to the PDF
func (s *S3PDFStorage) DownloadURL(ctx context.Context, p string, ttl time.Duration) (string, error) {
	u, _, err := s.store.GenerateDownloadURL(ctx, s.key(p), ttl)
	return u, err
}

// MemoryObjectStore is an in-process ObjectStore, used when no bucket is
// configured in tests and local runs of the S3 code path
type MemoryObjectStore struct {
	mu      sync.Mutex
	objects map[string]memoryObject
	now     func() time.Time
}

type memoryObject struct {
	data     []byte
	modified time.Time
}

// NewMemoryObjectStore creates an empty store
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{objects: map[string]memoryObject{}, now: time.Now}
}

// Upload stores a copy of data
func (m *MemoryObjectStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: bytes.Clone(data), modified: m.now()}
	return nil
}

// Download returns the object's bytes
func (m *MemoryObjectStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// DeleteObject removes the object
func (m *MemoryObjectStore) DeleteObject(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// List returns objects whose key starts with prefix, sorted by key
func (m *MemoryObjectStore) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.ObjectInfo
	for k, obj := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, storage.ObjectInfo{Key: k, Size: int64(len(obj.data)), LastModified: obj.modified})
		}
	}
	slices.SortFunc(out, func(a, b storage.ObjectInfo) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}

// GenerateDownloadURL returns a memory:// link
func (m *MemoryObjectStore) GenerateDownloadURL(_ context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	return "memory://" + key, m.now().Add(ttl), nil
}

var (
	_ PDFStorage  = (*FileSystemStorage)(nil)
	_ PDFStorage  = (*S3PDFStorage)(nil)
	_ URLSigner   = (*S3PDFStorage)(nil)
	_ ObjectStore = (*storage.S3ObjectStorage)(nil)
	_ ObjectStore = (*MemoryObjectStore)(nil)
)
