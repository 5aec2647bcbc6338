// Package backup snapshots the full ledger state to Google Cloud Storage as
// a single JSON object per run, so any sync state can be restored or
// inspected later.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
)

// Snapshot is the full ledger state at one point in time.
type Snapshot struct {
	TakenAt      time.Time            `json:"taken_at"`
	Accounts     []domain.Account     `json:"accounts"`
	Tags         []domain.Tag         `json:"tags"`
	Instruments  []domain.Instrument  `json:"instruments"`
	Merchants    []domain.Merchant    `json:"merchants"`
	Budgets      []domain.Budget      `json:"budgets"`
	Reminders    []domain.Reminder    `json:"reminders"`
	Transactions []domain.Transaction `json:"transactions"`
}

// ObjectName returns the backup object path for the snapshot timestamp,
// e.g. "backups/2024/03/15/snapshot-20240315T120000Z.json".
func ObjectName(takenAt time.Time) string {
	t := takenAt.UTC()
	return fmt.Sprintf("backups/%s/snapshot-%s.json",
		t.Format("2006/01/02"), t.Format("20060102T150405Z"))
}

// Upload writes the snapshot as JSON to the bucket and returns its GCS URI.
// It assumes Application Default Credentials are configured.
func Upload(ctx context.Context, bucketName string, snap *Snapshot) (string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("Upload: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	objectName := ObjectName(snap.TakenAt)
	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/json"

	if err := json.NewEncoder(w).Encode(snap); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("Upload: encode snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Upload: finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", bucketName, objectName), nil
}

// Fetch downloads and decodes a snapshot from the given GCS URI.
func Fetch(ctx context.Context, gcsURI string) (*Snapshot, error) {
	bucketName, objectPath, err := parseGCSURI(gcsURI)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: create storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("Fetch: decode snapshot: %w", err)
	}
	return &snap, nil
}

// parseGCSURI splits "gs://bucket/path/to/object" into bucket and object path.
func parseGCSURI(gcsURI string) (bucket, object string, err error) {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}

	trimmed := strings.TrimPrefix(gcsURI, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}

	return parts[0], parts[1], nil
}
