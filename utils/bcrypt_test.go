package utils

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if string(hashed) == "s3cret-pass" {
		t.Fatal("hash must not equal the plaintext")
	}
	if err := ComparePassword(string(hashed), "s3cret-pass"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := ComparePassword(string(hashed), "wrong-pass"); err == nil {
		t.Error("wrong password accepted")
	}
}
