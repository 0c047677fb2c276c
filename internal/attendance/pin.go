package attendance

import (
	"context"
	"database/sql"
	"log/slog"

	"git.home.luguber.info/inful/timeclock/internal/logfields"
	"git.home.luguber.info/inful/timeclock/internal/store"
)

// PinVerifier compares a submitted secret against the secret on file for a
// user. Implementations must fail closed: any lookup failure, missing user,
// or unset PIN yields false, never true.
type PinVerifier interface {
	Verify(ctx context.Context, userID int64, pin string) bool
}

// StorePinVerifier reads the stored PIN from the identity table in the
// shared store. This is the subsystem's single read into identity data.
type StorePinVerifier struct {
	mgr *store.Manager
}

// NewStorePinVerifier creates a verifier backed by the shared store.
func NewStorePinVerifier(mgr *store.Manager) *StorePinVerifier {
	return &StorePinVerifier{mgr: mgr}
}

// Verify reports whether the submitted PIN matches the one on file.
func (v *StorePinVerifier) Verify(ctx context.Context, userID int64, pin string) bool {
	var stored sql.NullString
	err := v.mgr.With(ctx, func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			"SELECT attendance_pin FROM users WHERE id = ?", userID).Scan(&stored)
	})
	if err != nil {
		// Includes sql.ErrNoRows for unknown users: fail closed.
		slog.Warn("PIN lookup failed", logfields.UserID(userID), logfields.Error(err))
		return false
	}
	if !stored.Valid || stored.String == "" {
		slog.Warn("User has no attendance PIN configured", logfields.UserID(userID))
		return false
	}
	return stored.String == pin
}
