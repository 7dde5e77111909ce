package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"scholarsync/internal/models"
)

// FirestoreActivityLog stores one document per entry, keyed by entry id.
type FirestoreActivityLog struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreActivityLog(ctx context.Context, projectID, collection string) (*FirestoreActivityLog, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	if collection == "" {
		collection = "activity_logs"
	}
	return &FirestoreActivityLog{client: client, collection: collection}, nil
}

func (l *FirestoreActivityLog) Close() error {
	return l.client.Close()
}

func (l *FirestoreActivityLog) Append(ctx context.Context, e models.ActivityLogEntry) error {
	if _, err := l.client.Collection(l.collection).Doc(e.ID).Set(ctx, e); err != nil {
		return fmt.Errorf("firestore set %s: %w", e.ID, err)
	}
	return nil
}

func (l *FirestoreActivityLog) List(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	q := l.client.Collection(l.collection).OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore list: %w", err)
	}
	out := make([]models.ActivityLogEntry, 0, len(docs))
	for _, d := range docs {
		var e models.ActivityLogEntry
		if err := d.DataTo(&e); err != nil {
			return nil, fmt.Errorf("firestore decode %s: %w", d.Ref.ID, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (l *FirestoreActivityLog) Clear(ctx context.Context) error {
	refs, err := l.client.Collection(l.collection).DocumentRefs(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("firestore list refs: %w", err)
	}
	if len(refs) == 0 {
		return nil
	}
	bw := l.client.BulkWriter(ctx)
	for _, ref := range refs {
		if _, err := bw.Delete(ref); err != nil {
			bw.End()
			return fmt.Errorf("firestore delete %s: %w", ref.ID, err)
		}
	}
	bw.End()
	return nil
}
