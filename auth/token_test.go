package auth

import (
	"testing"
	"time"
)

func TestSignAndVerifyToken(t *testing.T) {
	cfg := testAuthConfig()

	token, err := signToken(7, cfg)
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}

	claims, err := verifyToken(token, cfg)
	if err != nil {
		t.Fatalf("verifyToken: %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("UserID = %d, want 7", claims.UserID)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > cfg.TokenDuration {
		t.Errorf("expiry %v not within configured duration %v", claims.ExpiresAt, cfg.TokenDuration)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	cfg := testAuthConfig()
	token, err := signToken(7, cfg)
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}

	otherCfg := testAuthConfig()
	otherCfg.JWTSecret = "different"
	if _, err := verifyToken(token, otherCfg); err == nil {
		t.Error("expected verification failure with a different secret")
	}
}

func TestTokenCookie(t *testing.T) {
	cfg := testAuthConfig()
	cookie := tokenCookie("abc", cfg, true)

	if cookie.Name != tokenCookieName {
		t.Errorf("cookie name = %q, want %q", cookie.Name, tokenCookieName)
	}
	if cookie.Value != "abc" {
		t.Errorf("cookie value = %q, want the issued token", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("token cookie must be httpOnly")
	}
	if !cookie.Secure {
		t.Error("token cookie must be secure when requested")
	}
	wantExpiry := time.Now().Add(time.Duration(cfg.CookieExpireDays) * 24 * time.Hour)
	if diff := cookie.Expires.Sub(wantExpiry); diff < -time.Minute || diff > time.Minute {
		t.Errorf("cookie expiry = %v, want about %v", cookie.Expires, wantExpiry)
	}
}

func TestExpiredTokenCookie(t *testing.T) {
	cookie := ExpiredTokenCookie(false)
	if cookie.Value != "none" {
		t.Errorf("logout cookie value = %q, want \"none\"", cookie.Value)
	}
	if cookie.Expires.After(time.Now()) {
		t.Error("logout cookie must expire immediately")
	}
	if cookie.Secure {
		t.Error("logout cookie must not be secure outside production")
	}
}

func TestResetTokenHashing(t *testing.T) {
	raw, hashed, err := newResetToken()
	if err != nil {
		t.Fatalf("newResetToken: %v", err)
	}
	if raw == "" || hashed == "" {
		t.Fatal("expected non-empty raw and hashed tokens")
	}
	if raw == hashed {
		t.Error("the raw token must never equal its stored hash")
	}
	if got := hashResetToken(raw); got != hashed {
		t.Errorf("hashResetToken(raw) = %q, want %q", got, hashed)
	}
	// 20 random bytes, hex encoded.
	if len(raw) != 40 {
		t.Errorf("raw token length = %d, want 40 hex chars", len(raw))
	}

	other, _, err := newResetToken()
	if err != nil {
		t.Fatalf("newResetToken: %v", err)
	}
	if other == raw {
		t.Error("two generated reset tokens must differ")
	}
}
