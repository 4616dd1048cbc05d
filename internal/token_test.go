package internal

import "testing"

func TestRefreshTokenRoundTrip(t *testing.T) {
	sid, err := NewSessionID()
	if err != nil {
		t.Fatalf("NewSessionID: %v", err)
	}
	secret, err := NewRefreshSecret()
	if err != nil {
		t.Fatalf("NewRefreshSecret: %v", err)
	}

	token, err := EncodeRefreshToken(sid.String(), secret)
	if err != nil {
		t.Fatalf("EncodeRefreshToken: %v", err)
	}

	gotSID, gotSecret, err := DecodeRefreshToken(token)
	if err != nil {
		t.Fatalf("DecodeRefreshToken: %v", err)
	}
	if gotSID != sid.String() {
		t.Errorf("session id = %q, want %q", gotSID, sid.String())
	}
	if gotSecret != secret {
		t.Error("secret did not round trip")
	}
	if HashRefreshSecret(gotSecret) != HashRefreshSecret(secret) {
		t.Error("hash mismatch after round trip")
	}
}

func TestDecodeRefreshTokenRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "notbase64!!", "dG9vc2hvcnQ"} {
		if _, _, err := DecodeRefreshToken(in); err == nil {
			t.Errorf("DecodeRefreshToken(%q) succeeded", in)
		}
	}
}

func TestDeviceTokensAreUnique(t *testing.T) {
	if NewDeviceToken() == NewDeviceToken() {
		t.Fatal("device tokens collide")
	}
}
