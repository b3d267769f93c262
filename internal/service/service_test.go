package service_test

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/1mdazam/OfflinePasswordManager/internal/audit"
	"github.com/1mdazam/OfflinePasswordManager/internal/service"
	"github.com/1mdazam/OfflinePasswordManager/internal/vault"
	"github.com/1mdazam/OfflinePasswordManager/krypto"
)

func newService(t *testing.T) *service.Service {
	t.Helper()
	return service.New(filepath.Join(t.TempDir(), "passwordstore.dat"), audit.Nop())
}

func TestSaveLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passwordstore.dat")

	first := service.New(path, audit.Nop())
	first.SetMaster([]byte("hunter2"))
	first.Add(vault.Record{Site: "A", Username: "u1", Secret: "p1"})
	first.Add(vault.Record{Site: "B", Username: "u2", Secret: "p2", Notes: "n2"})
	if err := first.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	second := service.New(path, audit.Nop())
	second.SetMaster([]byte("hunter2"))
	if err := second.Load(); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	refs := second.List()
	wantRefs := []service.SiteRef{{Index: 1, Site: "A"}, {Index: 2, Site: "B"}}
	if !slices.Equal(refs, wantRefs) {
		t.Fatalf("expected list %v, got %v", wantRefs, refs)
	}

	found := second.Search("b")
	if len(found) != 1 {
		t.Fatalf("expected exactly one match for %q, got %d", "b", len(found))
	}
	want := vault.Record{Site: "B", Username: "u2", Secret: "p2", Notes: "n2"}
	if found[0] != want {
		t.Fatalf("expected %#v, got %#v", want, found[0])
	}
}

func TestLoadWrongSecretLeavesCollectionUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passwordstore.dat")

	writer := service.New(path, audit.Nop())
	writer.SetMaster([]byte("hunter2"))
	writer.Add(vault.Record{Site: "saved", Username: "u", Secret: "p"})
	if err := writer.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	reader := service.New(path, audit.Nop())
	reader.SetMaster([]byte("not-hunter2"))
	reader.Add(vault.Record{Site: "unsaved"})

	err := reader.Load()
	if err == nil {
		t.Fatal("expected error for wrong secret")
	}
	if !errors.Is(err, krypto.ErrDecrypt) && !errors.Is(err, vault.ErrCorruptPayload) {
		t.Fatalf("expected a decryption or payload error, got: %v", err)
	}
	if reader.Count() != 1 {
		t.Fatalf("failed load changed the collection size to %d", reader.Count())
	}
	if refs := reader.List(); refs[0].Site != "unsaved" {
		t.Fatalf("failed load replaced the collection contents: %v", refs)
	}
}

func TestLoadBeforeSetMaster(t *testing.T) {
	svc := newService(t)
	if err := svc.Load(); !errors.Is(err, service.ErrNoMasterSecret) {
		t.Fatalf("expected ErrNoMasterSecret, got: %v", err)
	}
	if err := svc.Save(); !errors.Is(err, service.ErrNoMasterSecret) {
		t.Fatalf("expected ErrNoMasterSecret, got: %v", err)
	}
}

func TestEmptyMasterSecretRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passwordstore.dat")

	first := service.New(path, audit.Nop())
	first.SetMaster(nil)
	first.Add(vault.Record{Site: "open"})
	if err := first.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	second := service.New(path, audit.Nop())
	second.SetMaster([]byte{})
	if err := second.Load(); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if second.Count() != 1 {
		t.Fatalf("expected 1 record, got %d", second.Count())
	}
}

func TestRemoveBounds(t *testing.T) {
	svc := newService(t)
	svc.Add(vault.Record{Site: "one"})
	svc.Add(vault.Record{Site: "two"})
	svc.Add(vault.Record{Site: "three"})

	if err := svc.Remove(0); !errors.Is(err, service.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange for index 0, got: %v", err)
	}
	if err := svc.Remove(4); !errors.Is(err, service.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange for index 4, got: %v", err)
	}
	if svc.Count() != 3 {
		t.Fatalf("failed removes changed the collection size to %d", svc.Count())
	}

	if err := svc.Remove(1); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	refs := svc.List()
	wantRefs := []service.SiteRef{{Index: 1, Site: "two"}, {Index: 2, Site: "three"}}
	if !slices.Equal(refs, wantRefs) {
		t.Fatalf("expected %v after removal, got %v", wantRefs, refs)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	svc := newService(t)
	svc.Add(vault.Record{Site: "GitHub"})
	svc.Add(vault.Record{Site: "gitlab.com"})
	svc.Add(vault.Record{Site: "bitbucket"})

	for _, query := range []string{"git", "GIT", "Git"} {
		found := svc.Search(query)
		if len(found) != 2 {
			t.Fatalf("query %q: expected 2 matches, got %d", query, len(found))
		}
		if found[0].Site != "GitHub" || found[1].Site != "gitlab.com" {
			t.Fatalf("query %q returned wrong order: %v", query, found)
		}
	}

	all := svc.Search("")
	if len(all) != 3 {
		t.Fatalf("empty query: expected every record, got %d", len(all))
	}
	if all[0].Site != "GitHub" || all[1].Site != "gitlab.com" || all[2].Site != "bitbucket" {
		t.Fatalf("empty query returned wrong order: %v", all)
	}

	if found := svc.Search("sourcehut"); len(found) != 0 {
		t.Fatalf("expected no matches, got %v", found)
	}
}

func TestListEmptyCollection(t *testing.T) {
	svc := newService(t)
	if refs := svc.List(); len(refs) != 0 {
		t.Fatalf("expected no refs for empty collection, got %v", refs)
	}
}
