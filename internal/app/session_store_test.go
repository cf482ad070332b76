package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsAuthenticatedDerivedFromUserPresence(t *testing.T) {
	store := NewSessionStore(nil)
	if store.IsAuthenticated() {
		t.Fatalf("fresh store must not be authenticated")
	}

	store.SetUser(&User{ID: "u1", Email: "a@b.c"})
	if !store.IsAuthenticated() {
		t.Fatalf("store with user must be authenticated")
	}

	store.SetUser(nil)
	if store.IsAuthenticated() {
		t.Fatalf("nil user must clear the authenticated flag")
	}
}

func TestUpdateUserOnNilUserStaysNil(t *testing.T) {
	store := NewSessionStore(nil)
	store.UpdateUser(func(u *User) { u.Username = "x" })
	if store.User() != nil {
		t.Fatalf("update on nil user created one")
	}

	store.Login(&User{ID: "u1"}, "tok")
	store.UpdateUser(func(u *User) { u.Username = "renamed" })
	if got := store.User().Username; got != "renamed" {
		t.Fatalf("username = %q, want renamed", got)
	}
}

func TestLogoutWipesPersistedCredentials(t *testing.T) {
	dir := t.TempDir()
	creds := NewCredentialStore(dir)
	store := NewSessionStore(creds)

	if err := creds.Save(Credentials{AccessToken: "tok", User: &User{ID: "u1"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	store.Login(&User{ID: "u1"}, "tok")

	store.Logout()
	if store.IsAuthenticated() || store.Token() != "" {
		t.Fatalf("logout left identity in memory")
	}
	if _, err := os.Stat(filepath.Join(dir, "credentials.json")); !os.IsNotExist(err) {
		t.Fatalf("credential file survived logout")
	}

	loaded, err := creds.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != nil {
		t.Fatalf("stale identity resurrected: %+v", loaded)
	}
}

func TestCredentialStoreRoundTrip(t *testing.T) {
	creds := NewCredentialStore(t.TempDir())

	loaded, err := creds.Load()
	if err != nil || loaded != nil {
		t.Fatalf("empty store: got %+v, %v", loaded, err)
	}

	want := Credentials{AccessToken: "at", RefreshToken: "rt", User: &User{ID: "u1", Email: "a@b.c"}}
	if err := creds.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err = creds.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.AccessToken != "at" || loaded.User == nil || loaded.User.ID != "u1" {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestUserSnapshotIsACopy(t *testing.T) {
	store := NewSessionStore(nil)
	store.Login(&User{ID: "u1", Username: "orig"}, "tok")

	snap := store.User()
	snap.Username = "mutated"
	if got := store.User().Username; got != "orig" {
		t.Fatalf("external mutation leaked into store: %q", got)
	}
}
