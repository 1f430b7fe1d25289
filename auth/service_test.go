package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/user/jobbee-go/apperror"
)

// fakeResetStore keeps the reset-token lifecycle in memory with the same
// contract as the pgx-backed store: a redeem succeeds only while the token is
// armed, the hash matches and the expiry has not elapsed, and it disarms the
// token as part of succeeding.
type fakeResetStore struct {
	user     *User
	hash     string
	expire   time.Time
	armed    bool
	clearErr error
}

func (f *fakeResetStore) saveResetToken(_ context.Context, userID int64, hashedToken string, expire time.Time) error {
	f.hash = hashedToken
	f.expire = expire
	f.armed = true
	return nil
}

func (f *fakeResetStore) clearResetToken(_ context.Context, _ int64) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.armed = false
	return nil
}

func (f *fakeResetStore) redeemResetToken(_ context.Context, hashedToken, hashedPassword string) (*User, error) {
	if !f.armed || f.hash != hashedToken || !f.expire.After(time.Now()) {
		return nil, apperror.NewNotFoundError("no redeemable reset token", nil)
	}
	f.armed = false
	f.user.HashedPassword = hashedPassword
	return f.user, nil
}

// fakeMailer records sent bodies or fails every send.
type fakeMailer struct {
	err  error
	sent []string
}

func (f *fakeMailer) Send(_, _, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, body)
	return nil
}

func TestResetPassword_RoundTripIsSingleUse(t *testing.T) {
	raw, hashed, err := newResetToken()
	if err != nil {
		t.Fatalf("newResetToken: %v", err)
	}
	store := &fakeResetStore{
		user:   &User{ID: 5, Name: "Alice", Email: "alice@example.com", Role: RoleUser},
		hash:   hashed,
		expire: time.Now().Add(30 * time.Minute),
		armed:  true,
	}
	svc := &Service{authCfg: testAuthConfig(), resetTokens: store}

	user, token, err := svc.ResetPassword(context.Background(), raw, "brand-new-password")
	if err != nil {
		t.Fatalf("first presentation must succeed: %v", err)
	}
	if user.ID != 5 || token == "" {
		t.Errorf("reset returned user %+v and token %q, want principal 5 with a fresh credential", user, token)
	}

	// The token is consumed on first use; presenting it again must fail.
	_, _, err = svc.ResetPassword(context.Background(), raw, "another-password")
	if err == nil {
		t.Fatal("second presentation of the same token must fail")
	}
	if !apperror.IsValidationError(err) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestResetPassword_ExpiredTokenRejectedDespiteHashMatch(t *testing.T) {
	raw, hashed, err := newResetToken()
	if err != nil {
		t.Fatalf("newResetToken: %v", err)
	}
	store := &fakeResetStore{
		user:   &User{ID: 5, Role: RoleUser},
		hash:   hashed,
		expire: time.Now().Add(-time.Minute),
		armed:  true,
	}
	svc := &Service{authCfg: testAuthConfig(), resetTokens: store}

	if _, _, err := svc.ResetPassword(context.Background(), raw, "brand-new-password"); err == nil {
		t.Fatal("an expired token must be rejected even when the hash matches")
	} else if !apperror.IsValidationError(err) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestResetPassword_UnknownTokenRejected(t *testing.T) {
	store := &fakeResetStore{user: &User{ID: 5}}
	svc := &Service{authCfg: testAuthConfig(), resetTokens: store}

	if _, _, err := svc.ResetPassword(context.Background(), "deadbeef", "brand-new-password"); err == nil {
		t.Fatal("a token that was never issued must be rejected")
	} else if !apperror.IsValidationError(err) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestIssueResetToken_MailsTheRawTokenForTheStoredHash(t *testing.T) {
	store := &fakeResetStore{user: &User{ID: 5}}
	mail := &fakeMailer{}
	svc := &Service{authCfg: testAuthConfig(), mail: mail, resetTokens: store}

	var mailedRaw string
	buildResetURL := func(rawToken string) string {
		mailedRaw = rawToken
		return "https://example.com/reset/" + rawToken
	}

	if err := svc.issueResetToken(context.Background(), &User{ID: 5, Email: "alice@example.com"}, buildResetURL); err != nil {
		t.Fatalf("issueResetToken: %v", err)
	}

	if !store.armed {
		t.Error("the lifecycle must be armed after a successful issue")
	}
	// Only the hash is persisted; the raw value in the mailed link must map
	// back onto it.
	if hashResetToken(mailedRaw) != store.hash {
		t.Errorf("mailed token does not hash to the stored value")
	}
	if len(mail.sent) != 1 || !strings.Contains(mail.sent[0], mailedRaw) {
		t.Errorf("mail body must carry the reset link, got %q", mail.sent)
	}
}

func TestIssueResetToken_ClearsOnSendFailure(t *testing.T) {
	store := &fakeResetStore{user: &User{ID: 5}}
	svc := &Service{
		authCfg:     testAuthConfig(),
		mail:        &fakeMailer{err: errors.New("smtp down")},
		resetTokens: store,
	}

	err := svc.issueResetToken(context.Background(), &User{ID: 5, Email: "alice@example.com"},
		func(rawToken string) string { return "https://example.com/reset/" + rawToken })
	if err == nil {
		t.Fatal("a failed send must surface as an error")
	}
	if store.armed {
		t.Error("the token must not stay armed after the send failed")
	}
}

func TestIssueResetToken_ClearFailureKeepsSendError(t *testing.T) {
	store := &fakeResetStore{
		user:     &User{ID: 5},
		clearErr: apperror.NewDatabaseError("connection lost", nil),
	}
	svc := &Service{
		authCfg:     testAuthConfig(),
		mail:        &fakeMailer{err: errors.New("smtp down")},
		resetTokens: store,
	}

	err := svc.issueResetToken(context.Background(), &User{ID: 5, Email: "alice@example.com"},
		func(rawToken string) string { return "https://example.com/reset/" + rawToken })
	if err == nil {
		t.Fatal("expected an error when both the send and the compensation fail")
	}
	// The root cause (the send failure) must survive into the surfaced error.
	if !strings.Contains(err.Error(), "smtp down") {
		t.Errorf("error %q does not mention the send failure", err)
	}
}
