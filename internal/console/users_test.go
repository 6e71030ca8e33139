package console

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/podserver/console/internal/core/domain"
	"github.com/podserver/console/internal/infrastructure/db/memory"
)

var dependentStores = []string{
	memory.StoreEpisodeHistory,
	memory.StoreDevices,
	memory.StoreEpisodes,
	memory.StoreFavorites,
	memory.StoreSessions,
	memory.StoreSubscriptions,
}

func TestUsers_AddThenList(t *testing.T) {
	f := newFixture()

	code, out := f.run("alice\nsecret\nroot\nuploader\ny\n", "users", "add")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "Role not recognized") {
		t.Fatalf("expected role rejection, got:\n%s", out)
	}
	if !strings.Contains(out, "Account alice created") {
		t.Fatalf("expected creation message, got:\n%s", out)
	}
	if strings.Contains(out, "secret") {
		t.Fatalf("password must not be printed:\n%s", out)
	}

	code, out = f.run("", "users", "list")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got:\n%s", out)
	}
	fields := strings.Fields(lines[1])
	if len(fields) < 4 || fields[0] != "alice" || fields[1] != "uploader" || fields[2] != "false" {
		t.Fatalf("unexpected row: %q", lines[1])
	}

	u := f.account(t, "alice")
	if len(u.APIKey) != 32 {
		t.Fatalf("expected 32 char api key, got %q", u.APIKey)
	}
	if !u.HasPassword() || u.PasswordHash == "secret" {
		t.Fatalf("expected hashed password, got %q", u.PasswordHash)
	}
}

func TestUsers_Add_Declined(t *testing.T) {
	f := newFixture()

	code, out := f.run("alice\nsecret\nadmin\nn\n", "users", "add")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "Account not created") {
		t.Fatalf("expected abandon message, got:\n%s", out)
	}
	users, _ := f.store.Accounts().FindAll(context.Background())
	if len(users) != 0 {
		t.Fatalf("expected no accounts, got %d", len(users))
	}
}

func TestUsers_Add_DuplicateWarnsAndFails(t *testing.T) {
	f := newFixture()
	f.seedAccount(t, "alice", domain.RoleUser)

	code, out := f.run("alice\nsecret\nadmin\nyes\n", "users", "add")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, `an account named "alice" already exists`) {
		t.Fatalf("expected warning, got:\n%s", out)
	}
	if !strings.Contains(out, "An account with this username already exists") {
		t.Fatalf("expected insert rejection, got:\n%s", out)
	}
	if u := f.account(t, "alice"); u.Role != domain.RoleUser {
		t.Fatalf("existing account must be untouched, got role %q", u.Role)
	}
}

func TestUsers_GenerateAPIKey(t *testing.T) {
	f := newFixture()
	before := map[string]string{
		"alice": f.seedAccount(t, "alice", domain.RoleUser).APIKey,
		"bob":   f.seedAccount(t, "bob", domain.RoleAdmin).APIKey,
	}

	code, out := f.run("", "users", "generate", "apiKey")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "for 2 accounts") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	for name, old := range before {
		if got := f.account(t, name).APIKey; got == old || len(got) != 32 {
			t.Fatalf("%s: expected new 32 char key, old %q new %q", name, old, got)
		}
	}
}

func TestUsers_Remove_Cascades(t *testing.T) {
	f := newFixture()
	f.seedAccount(t, "alice", domain.RoleUser)
	f.seedAccount(t, "bob", domain.RoleUser)
	for _, s := range dependentStores {
		f.store.AddDependentRows(s, "alice", 2)
		f.store.AddDependentRows(s, "bob", 1)
	}

	code, out := f.run("alice\n", "users", "remove")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "Account alice deleted") {
		t.Fatalf("expected deletion message, got:\n%s", out)
	}
	for _, s := range dependentStores {
		if n := f.store.DependentRows(s, "alice"); n != 0 {
			t.Fatalf("%s: expected no rows for alice, got %d", s, n)
		}
		if n := f.store.DependentRows(s, "bob"); n != 1 {
			t.Fatalf("%s: bob's rows must survive, got %d", s, n)
		}
	}
	if _, err := f.store.Accounts().FindByUsername(context.Background(), "alice"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected alice to be gone, got %v", err)
	}
}

func TestUsers_Remove_UnknownUsername(t *testing.T) {
	f := newFixture()
	f.seedAccount(t, "alice", domain.RoleUser)

	code, out := f.run("bob\n", "users", "remove")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "Username not found") {
		t.Fatalf("expected not found message, got:\n%s", out)
	}
	f.account(t, "alice")
}

func TestUsers_Remove_StorageFailureRollsBack(t *testing.T) {
	f := newFixture()
	f.seedAccount(t, "alice", domain.RoleUser)
	for _, s := range dependentStores {
		f.store.AddDependentRows(s, "alice", 3)
	}
	f.store.InjectFault("delete:favorites", errors.New("connection reset"))

	code, out := f.run("alice\n", "users", "remove")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "Storage error, the operation was rolled back") {
		t.Fatalf("expected storage error message, got:\n%s", out)
	}
	for _, s := range dependentStores {
		if n := f.store.DependentRows(s, "alice"); n != 3 {
			t.Fatalf("%s: expected rows restored, got %d", s, n)
		}
	}
	f.account(t, "alice")
}

func TestUsers_Update_Password(t *testing.T) {
	f := newFixture()
	before := f.seedAccount(t, "alice", domain.RoleUploader)

	code, out := f.run("alice\npassword\nnew-secret\n", "users", "update")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "Password updated") {
		t.Fatalf("expected confirmation, got:\n%s", out)
	}

	after := f.account(t, "alice")
	if after.PasswordHash == before.PasswordHash || after.PasswordHash == "new-secret" {
		t.Fatalf("expected a new digest, got %q", after.PasswordHash)
	}
	after.PasswordHash = before.PasswordHash
	if after != before {
		t.Fatalf("only the password may change:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestUsers_Update_Role(t *testing.T) {
	f := newFixture()
	f.seedAccount(t, "alice", domain.RoleUser)

	code, _ := f.run("alice\nrole\nowner\nadmin\n", "users", "update")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if got := f.account(t, "alice").Role; got != domain.RoleAdmin {
		t.Fatalf("expected admin, got %q", got)
	}
}

func TestUsers_Update_Consent(t *testing.T) {
	f := newFixture()
	f.seedAccount(t, "alice", domain.RoleUser)

	_, out := f.run("alice\nconsent\n", "users", "update")
	if !strings.Contains(out, "Consent preference switched to true") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !f.account(t, "alice").ExplicitConsent {
		t.Fatalf("expected consent to be set")
	}
}

func TestUsers_Update_UnknownField(t *testing.T) {
	f := newFixture()
	before := f.seedAccount(t, "alice", domain.RoleUser)

	code, out := f.run("alice\nemail\n", "users", "update")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "Field not recognized") {
		t.Fatalf("expected rejection, got:\n%s", out)
	}
	if after := f.account(t, "alice"); after != before {
		t.Fatalf("account must be unchanged:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestUsers_Update_UnknownUsername(t *testing.T) {
	f := newFixture()

	_, out := f.run("ghost\n", "users", "update")
	if !strings.Contains(out, "Username not found") {
		t.Fatalf("expected not found message, got:\n%s", out)
	}
}

func TestUsers_Add_RepromptsOverlongPassword(t *testing.T) {
	f := newFixture()
	long := strings.Repeat("x", domain.MaxPasswordBytes+1)

	code, out := f.run("alice\n"+long+"\nshort-enough\nuser\ny\n", "users", "add")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	rejected := strings.Index(out, "Password too long")
	confirm := strings.Index(out, "Create this account?")
	if rejected < 0 || confirm < 0 || rejected > confirm {
		t.Fatalf("expected the password to be rejected before confirmation, got:\n%s", out)
	}
	if !strings.Contains(out, "Account alice created") {
		t.Fatalf("expected creation after re-entry, got:\n%s", out)
	}
	f.account(t, "alice")
}

func TestUsers_Update_RepromptsOverlongPassword(t *testing.T) {
	f := newFixture()
	before := f.seedAccount(t, "alice", domain.RoleUser)
	long := strings.Repeat("x", domain.MaxPasswordBytes+1)

	_, out := f.run("alice\npassword\n"+long+"\nreplacement\n", "users", "update")
	if !strings.Contains(out, "Password too long") || !strings.Contains(out, "Password updated") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if f.account(t, "alice").PasswordHash == before.PasswordHash {
		t.Fatalf("expected the password to change")
	}
}
