package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
)

// withFlags sets the path flags for one test.
func withFlags(t *testing.T, data, key string) {
	t.Helper()
	prevData, prevKey, prevServer := dataDir, keyPath, serverURL
	dataDir, keyPath, serverURL = data, key, ""
	t.Cleanup(func() {
		dataDir, keyPath, serverURL = prevData, prevKey, prevServer
	})
}

func TestGetDataDir(t *testing.T) {
	withFlags(t, "/custom/data", "")
	if got := getDataDir(); got != "/custom/data" {
		t.Errorf("getDataDir() = %s, want /custom/data", got)
	}

	dataDir = ""
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := getDataDir(); got != filepath.Join(home, ".avault") {
		t.Errorf("getDataDir() = %s, want %s", got, filepath.Join(home, ".avault"))
	}
}

func TestGetKeyPath(t *testing.T) {
	withFlags(t, "/custom/data", "")
	if got := getKeyPath(); got != filepath.Join("/custom/data", "key.json") {
		t.Errorf("getKeyPath() = %s, want key.json under the data dir", got)
	}

	keyPath = "/keys/ci.json"
	if got := getKeyPath(); got != "/keys/ci.json" {
		t.Errorf("getKeyPath() = %s, want /keys/ci.json", got)
	}
}

func TestLoadSigner(t *testing.T) {
	dir := t.TempDir()
	withFlags(t, dir, "")

	if _, err := loadSigner(); err == nil {
		t.Fatal("loadSigner() without a keyfile should fail")
	}

	kp, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	if err := crypto.SaveKeypair(getKeyPath(), kp, []byte("correct horse")); err != nil {
		t.Fatalf("SaveKeypair: %v", err)
	}

	t.Setenv(passphraseEnv, "correct horse")
	got, err := loadSigner()
	if err != nil {
		t.Fatalf("loadSigner: %v", err)
	}
	if got.Identity() != kp.Identity() {
		t.Errorf("loaded identity = %s, want %s", got.Identity(), kp.Identity())
	}

	id, err := currentIdentity()
	if err != nil {
		t.Fatalf("currentIdentity: %v", err)
	}
	if id != kp.Identity() {
		t.Errorf("currentIdentity() = %s, want %s", id, kp.Identity())
	}

	t.Setenv(passphraseEnv, "wrong")
	if _, err := loadSigner(); err == nil || err.Error() != "wrong passphrase" {
		t.Errorf("loadSigner() with wrong passphrase error = %v", err)
	}
}

func TestIdentityOrSelf(t *testing.T) {
	withFlags(t, t.TempDir(), "")

	if _, err := identityOrSelf(""); err == nil {
		t.Error("identityOrSelf(\"\") without a keyfile should fail")
	}

	want, err := crypto.NewRandomAddress()
	if err != nil {
		t.Fatalf("NewRandomAddress: %v", err)
	}
	got, err := identityOrSelf(want.String())
	if err != nil {
		t.Fatalf("identityOrSelf: %v", err)
	}
	if got != want {
		t.Errorf("identityOrSelf() = %s, want %s", got, want)
	}

	if _, err := identityOrSelf("not-base58-0OIl"); err == nil {
		t.Error("identityOrSelf() should reject malformed identities")
	}
}
