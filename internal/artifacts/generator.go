// Package artifacts renders form submissions to PDF and archives documents in object storage.
package artifacts

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/candidate-tracker/internal/rendering"
	"github.com/jonathan/candidate-tracker/internal/storage"
)

// ContentTypePDF is the content type of every generated artifact.
const ContentTypePDF = "application/pdf"

// ObjectStore is the subset of the object-storage client the generator needs.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key, contentType string, body []byte) error
	PublicURL(bucket, key string) string
}

// UploadError means the document could not be persisted; no reference to it may be stored.
type UploadError struct {
	Bucket string
	Key    string
	Cause  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %s/%s failed: %v", e.Bucket, e.Key, e.Cause)
}

func (e *UploadError) Unwrap() error {
	return e.Cause
}

// Generator produces artifact URLs. Rendering and upload happen synchronously.
type Generator struct {
	renderer rendering.Renderer
	store    ObjectStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewGenerator creates a generator writing to store.
func NewGenerator(renderer rendering.Renderer, store ObjectStore, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		renderer: renderer,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// Generate renders doc with the layout for kind, uploads the PDF and returns its public URL.
func (g *Generator) Generate(ctx context.Context, kind rendering.Kind, doc rendering.Document) (string, error) {
	now := g.now()
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = now
	}

	html, err := rendering.RenderHTML(kind, doc)
	if err != nil {
		return "", err
	}

	pdf, err := g.renderer.RenderHTMLToPDF(ctx, html)
	if err != nil {
		return "", err
	}

	key := ArtifactKey(kind, doc.CandidateID, now)
	return g.put(ctx, storage.BucketQualified, key, ContentTypePDF, pdf)
}

// StoreReport archives an uploaded internship report for a candidate.
func (g *Generator) StoreReport(ctx context.Context, candidateID, filename, contentType string, body []byte) (string, error) {
	key := fmt.Sprintf("rapport-%s-%d%s", candidateID, g.now().UnixMilli(), strings.ToLower(filepath.Ext(filename)))
	return g.put(ctx, storage.BucketRapports, key, contentType, body)
}

// StoreCV archives the source CV of an extraction and returns the object key.
func (g *Generator) StoreCV(ctx context.Context, filename string, body []byte) (string, error) {
	key := fmt.Sprintf("%d-%s", g.now().UnixMilli(), sanitizeFilename(filename))
	if _, err := g.put(ctx, storage.BucketCVs, key, ContentTypePDF, body); err != nil {
		return "", err
	}
	return key, nil
}

// ArtifactKey is collision resistant per candidate: id plus millisecond timestamp.
func ArtifactKey(kind rendering.Kind, candidateID string, at time.Time) string {
	prefix := "form"
	if kind == rendering.KindEvaluation {
		prefix = "eval"
	}
	return fmt.Sprintf("%s-%s-%d.pdf", prefix, candidateID, at.UnixMilli())
}

func (g *Generator) put(ctx context.Context, bucket, key, contentType string, body []byte) (string, error) {
	if err := g.store.Put(ctx, bucket, key, contentType, body); err != nil {
		return "", &UploadError{Bucket: bucket, Key: key, Cause: err}
	}
	url := g.store.PublicURL(bucket, key)
	g.logger.Info("artifact stored",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int("bytes", len(body)))
	return url, nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "cv.pdf"
	}
	return name
}
