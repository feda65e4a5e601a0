package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/transaction-tracker/internal/errs"
	"github.com/GregMSThompson/transaction-tracker/internal/models"
)

type linkStore struct {
	client *firestore.Client
}

func NewLinkStore(client *firestore.Client) *linkStore {
	return &linkStore{client: client}
}

// One active link per user, kept at users/{uid}/plaid/link.
func (s *linkStore) doc(uid string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(uid).Collection("plaid").Doc("link")
}

func (s *linkStore) Save(ctx context.Context, uid string, link *models.Link) error {
	now := time.Now()
	if link.CreatedAt.IsZero() {
		link.CreatedAt = now
	}
	link.UpdatedAt = now
	_, err := s.doc(uid).Set(ctx, link)
	if err != nil {
		return errs.NewDatabaseError("create", "failed to save link", err)
	}
	return nil
}

func (s *linkStore) Get(ctx context.Context, uid string) (*models.Link, error) {
	snap, err := s.doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("link not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get link", err)
	}
	var l models.Link
	if err := snap.DataTo(&l); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse link data", err)
	}
	return &l, nil
}

func (s *linkStore) Delete(ctx context.Context, uid string) error {
	_, err := s.doc(uid).Delete(ctx)
	if err != nil {
		return errs.NewDatabaseError("delete", "failed to delete link", err)
	}
	return nil
}
