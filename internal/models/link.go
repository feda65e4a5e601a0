package models

import (
	"time"
)

// Link is a user's connection to one aggregator item. CredentialRef is
// whatever the configured vault returned when sealing the access token:
// KMS ciphertext, or a Secret Manager secret name.
type Link struct {
	ItemID        string    `firestore:"itemId" json:"itemId"`
	InstitutionID string    `firestore:"institutionId" json:"institutionId,omitempty"`
	CredentialRef string    `firestore:"credentialRef" json:"-"`
	Vault         string    `firestore:"vault" json:"vault"` // "kms" or "secretmanager"
	CreatedAt     time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt" json:"updatedAt"`
}
