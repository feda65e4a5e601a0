package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/transaction-tracker/internal/errs"
	"github.com/GregMSThompson/transaction-tracker/internal/models"
)

func TestLinkStoreWithEmulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("firestore client error: %v", err)
	}
	defer client.Close()

	store := NewLinkStore(client)
	uid := "link-user"

	_, err = store.Get(ctx, uid)
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError before save, got %v", err)
	}

	link := &models.Link{ItemID: "item-1", InstitutionID: "ins_109508", CredentialRef: "cipher", Vault: "kms"}
	if err := store.Save(ctx, uid, link); err != nil {
		t.Fatalf("save error: %v", err)
	}

	got, err := store.Get(ctx, uid)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.ItemID != "item-1" || got.InstitutionID != "ins_109508" || got.CredentialRef != "cipher" {
		t.Fatalf("unexpected link: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected createdAt to be set")
	}

	if err := store.Delete(ctx, uid); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if _, err := store.Get(ctx, uid); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError after delete, got %v", err)
	}
}
