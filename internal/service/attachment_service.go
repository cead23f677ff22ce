package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salmaanit26/Query-Management-System/internal/models"
	appErrors "github.com/salmaanit26/Query-Management-System/pkg/errors"
	"github.com/salmaanit26/Query-Management-System/pkg/jobs"
)

// JobTypeAttachmentCleanup identifies queue jobs that delete orphaned attachments.
const JobTypeAttachmentCleanup = "attachment.cleanup"

// Attachment directories relative to the uploads root.
const (
	AttachmentKindQuery      = "queries"
	AttachmentKindCompletion = "completions"
)

// AttachmentUpload is an in-memory image received from a client.
type AttachmentUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttachmentLink is a time-limited download URL for a stored image.
type AttachmentLink struct {
	Kind      string    `json:"kind"`
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type attachmentStore interface {
	Save(ref string, data []byte) (string, error)
	Open(ref string) (*os.File, error)
	Delete(ref string) error
}

type attachmentSigner interface {
	Generate(subject, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (subject, relPath string, expiresAt time.Time, err error)
}

type cleanupQueue interface {
	Enqueue(job jobs.Job) error
}

// AttachmentConfig bounds accepted uploads and shapes download URLs.
type AttachmentConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
	DownloadBasePath string
}

// AttachmentService validates, stores and serves query images.
type AttachmentService struct {
	store   attachmentStore
	signer  attachmentSigner
	queue   cleanupQueue
	metrics *MetricsService
	logger  *zap.Logger
	cfg     AttachmentConfig
	allowed map[string]struct{}
}

// AttachmentOption customises the service.
type AttachmentOption func(*AttachmentService)

// WithCleanupQueue routes orphan deletions through a background queue.
func WithCleanupQueue(queue cleanupQueue) AttachmentOption {
	return func(s *AttachmentService) { s.queue = queue }
}

// WithAttachmentMetrics records cleanup outcomes.
func WithAttachmentMetrics(metrics *MetricsService) AttachmentOption {
	return func(s *AttachmentService) { s.metrics = metrics }
}

// WithAttachmentLogger sets the logger.
func WithAttachmentLogger(logger *zap.Logger) AttachmentOption {
	return func(s *AttachmentService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewAttachmentService constructs the service.
func NewAttachmentService(store attachmentStore, signer attachmentSigner, cfg AttachmentConfig, opts ...AttachmentOption) *AttachmentService {
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 5 * 1024 * 1024
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, m := range cfg.AllowedMIMEs {
		allowed[strings.ToLower(strings.TrimSpace(m))] = struct{}{}
	}
	svc := &AttachmentService{
		store:   store,
		signer:  signer,
		logger:  zap.NewNop(),
		cfg:     cfg,
		allowed: allowed,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// MaxFileSize reports the upload size limit in bytes.
func (s *AttachmentService) MaxFileSize() int64 {
	return s.cfg.MaxFileSizeBytes
}

// Validate checks size and content type without touching storage.
func (s *AttachmentService) Validate(upload *AttachmentUpload) error {
	if upload == nil || len(upload.Data) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "image is empty")
	}
	if int64(len(upload.Data)) > s.cfg.MaxFileSizeBytes {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image exceeds %d bytes", s.cfg.MaxFileSizeBytes))
	}
	if len(s.allowed) == 0 {
		return nil
	}
	sniffed := detectContentType(upload)
	if _, ok := s.allowed[sniffed]; !ok {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image type %s not allowed", sniffed))
	}
	return nil
}

// Store validates the upload and saves it under kind with a fresh unique name.
// It returns the stable relative reference recorded on queries and history.
func (s *AttachmentService) Store(ctx context.Context, kind string, upload *AttachmentUpload) (string, error) {
	if err := s.Validate(upload); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrAttachmentIO.Code, appErrors.ErrAttachmentIO.Status, "attachment upload cancelled")
	}
	ref := path.Join(kind, uuid.NewString()+extensionFor(detectContentType(upload)))
	stored, err := s.store.Save(ref, upload.Data)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrAttachmentIO.Code, appErrors.ErrAttachmentIO.Status, "failed to store attachment")
	}
	s.logger.Debug("attachment stored", zap.String("ref", stored), zap.Int("bytes", len(upload.Data)))
	return stored, nil
}

// ScheduleCleanup removes an attachment whose owning write never committed.
// Without a queue the file is deleted inline.
func (s *AttachmentService) ScheduleCleanup(ref string) {
	if ref == "" {
		return
	}
	if s.queue != nil {
		err := s.queue.Enqueue(jobs.Job{Type: JobTypeAttachmentCleanup, Payload: ref})
		if err == nil {
			return
		}
		s.logger.Warn("cleanup queue rejected job, deleting inline", zap.String("ref", ref), zap.Error(err))
	}
	if err := s.deleteOrphan(ref); err != nil {
		s.logger.Error("failed to delete orphaned attachment", zap.String("ref", ref), zap.Error(err))
	}
}

// HandleCleanupJob is the jobs.Handler for JobTypeAttachmentCleanup.
func (s *AttachmentService) HandleCleanupJob(_ context.Context, job jobs.Job) error {
	if job.Type != JobTypeAttachmentCleanup {
		return fmt.Errorf("unexpected job type %q", job.Type)
	}
	ref, ok := job.Payload.(string)
	if !ok || ref == "" {
		s.logger.Warn("dropping cleanup job without reference", zap.String("job_id", job.ID))
		return nil
	}
	return s.deleteOrphan(ref)
}

func (s *AttachmentService) deleteOrphan(ref string) error {
	err := s.store.Delete(ref)
	s.metrics.RecordCleanup(err == nil)
	if err != nil {
		return err
	}
	s.logger.Info("orphaned attachment deleted", zap.String("ref", ref))
	return nil
}

// Links returns signed download URLs for every image recorded on the query.
func (s *AttachmentService) Links(q *models.Query) ([]AttachmentLink, error) {
	links := make([]AttachmentLink, 0, 2)
	if q == nil {
		return links, nil
	}
	refs := []struct {
		kind string
		ref  *string
	}{
		{"image", q.ImagePath},
		{"completionImage", q.CompletionImagePath},
	}
	for _, r := range refs {
		if r.ref == nil || *r.ref == "" {
			continue
		}
		token, expiresAt, err := s.signer.Generate(q.ID, *r.ref)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign attachment url")
		}
		links = append(links, AttachmentLink{
			Kind:      r.kind,
			Path:      *r.ref,
			URL:       s.cfg.DownloadBasePath + "?token=" + url.QueryEscape(token),
			ExpiresAt: expiresAt,
		})
	}
	return links, nil
}

// AttachmentDownload is an open attachment ready for streaming.
type AttachmentDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	Size        int64
}

// Open resolves a signed token to an open file. Callers must close File.
func (s *AttachmentService) Open(token string) (*AttachmentDownload, error) {
	if strings.TrimSpace(token) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "token is required")
	}
	_, ref, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired attachment link")
	}
	file, err := s.store.Open(ref)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrAttachmentIO.Code, appErrors.ErrAttachmentIO.Status, "failed to open attachment")
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrAttachmentIO.Code, appErrors.ErrAttachmentIO.Status, "failed to stat attachment")
	}
	name := path.Base(ref)
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &AttachmentDownload{File: file, Filename: name, ContentType: contentType, Size: info.Size()}, nil
}

// imageExtensions pins the stored extension for common image types so it does
// not depend on the host mime table ordering.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// detectContentType sniffs the payload. The client-declared type and filename
// are never trusted.
func detectContentType(upload *AttachmentUpload) string {
	sniffed := http.DetectContentType(upload.Data)
	if i := strings.Index(sniffed, ";"); i >= 0 {
		sniffed = sniffed[:i]
	}
	return strings.TrimSpace(sniffed)
}

func extensionFor(contentType string) string {
	if ext, ok := imageExtensions[contentType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
