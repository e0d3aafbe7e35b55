package workers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickassako/triomphe-immobilier/models"
	"github.com/patrickassako/triomphe-immobilier/storage"
)

const maxDownloadAttempts = 3

// MirrorStore is the slice of the Postgres store the mirror worker needs.
type MirrorStore interface {
	GetPendingImages(ctx context.Context, limit int) ([]models.PropertyImage, error)
	UpdateImageMirror(ctx context.Context, id uuid.UUID, status string, mirrorURL *string, attempts int) error
}

// Uploader pushes one object to S3-compatible storage and reports the public
// URL it will be served from.
type Uploader interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error
	PublicURL(key string) string
}

// MirrorWorker copies admin-supplied image URLs into our own bucket so the
// site never hotlinks a host we do not control.
type MirrorWorker struct {
	store      MirrorStore
	httpClient *http.Client
	uploader   Uploader
}

func NewMirrorWorker(store MirrorStore, uploader Uploader) *MirrorWorker {
	return &MirrorWorker{
		store: store,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		uploader: uploader,
	}
}

// Run polls for pending images until the context ends.
func (w *MirrorWorker) Run(ctx context.Context, batchSize int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Mirror worker stopping")
			return
		case <-ticker.C:
			w.processBatch(ctx, batchSize)
		}
	}
}

func (w *MirrorWorker) processBatch(ctx context.Context, batchSize int) {
	images, err := w.store.GetPendingImages(ctx, batchSize)
	if err != nil {
		log.Printf("Mirror worker: query error: %v", err)
		return
	}
	if len(images) == 0 {
		return
	}

	log.Printf("Mirror worker: processing %d images", len(images))

	var mirrored, failed int
	for i := range images {
		img := &images[i]

		key, err := w.mirror(ctx, img)
		attempts := img.MirrorAttempts + 1

		if err != nil {
			log.Printf("Mirror worker: failed %s: %v", img.URL, err)
			failed++

			status := models.MirrorStatusPending
			if attempts >= maxDownloadAttempts {
				status = models.MirrorStatusFailed
			}
			if uerr := w.store.UpdateImageMirror(ctx, img.ID, status, nil, attempts); uerr != nil {
				log.Printf("Mirror worker: update error: %v", uerr)
			}
			continue
		}

		url := w.uploader.PublicURL(key)
		if uerr := w.store.UpdateImageMirror(ctx, img.ID, models.MirrorStatusUploaded, &url, attempts); uerr != nil {
			log.Printf("Mirror worker: update error: %v", uerr)
			continue
		}
		mirrored++
	}

	log.Printf("Mirror worker: batch done, %d mirrored, %d failed", mirrored, failed)
}

// mirror downloads one image, hashes it and uploads it under a
// content-addressed key. The hash key deduplicates re-submitted images for
// free.
func (w *MirrorWorker) mirror(ctx context.Context, img *models.PropertyImage) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, img.URL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "image/*,*/*")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 25*1024*1024))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	hash := sha256.Sum256(data)
	digest := hex.EncodeToString(hash[:])

	contentType := resp.Header.Get("Content-Type")
	key := fmt.Sprintf("properties/%s/%s%s", digest[:2], digest, guessExtension(img.URL, contentType))

	if contentType == "" {
		contentType = "image/jpeg"
	}
	if err := w.uploader.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	return key, nil
}

// guessExtension determines the file extension from the URL, then the
// content type.
func guessExtension(url, contentType string) string {
	ext := strings.ToLower(path.Ext(url))
	if idx := strings.IndexAny(ext, "?#"); idx >= 0 {
		ext = ext[:idx]
	}
	if isImageExt(ext) {
		return ext
	}

	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func isImageExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}

// NoOpUploader satisfies Uploader when no bucket is configured. Images keep
// their original URLs and the mirror columns record the skip.
type NoOpUploader struct{}

func (NoOpUploader) Upload(ctx context.Context, key string, data io.Reader, contentType string) error {
	return nil
}

func (NoOpUploader) PublicURL(key string) string { return "" }

var _ Uploader = (*storage.S3Uploader)(nil)
