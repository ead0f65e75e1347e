package folio

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func setupProfileStore(t *testing.T) (*ProfileStore, *AssetDir, func()) {
	t.Helper()
	root := t.TempDir()
	uploads := newUploadsDir(filepath.Join(root, "uploads"), 0, -1)
	s := NewProfileStore(filepath.Join(root, "profile.json"), uploads, func() time.Time { return fixedNow })
	return s, uploads, s.Close
}

func TestProfileDefault(t *testing.T) {
	s, _, cleanup := setupProfileStore(t)
	defer cleanup()

	p, err := s.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !reflect.DeepEqual(p, DefaultProfile()) {
		t.Errorf("Get = %+v, want default", p)
	}
	if len(p.Skills) != 4 {
		t.Errorf("default skills = %v", p.Skills)
	}
}

func TestProfileDefaultIsACopy(t *testing.T) {
	p := DefaultProfile()
	p.Skills[0] = "changed"
	if DefaultProfile().Skills[0] == "changed" {
		t.Error("DefaultProfile shares its skills slice")
	}
}

func TestProfileCorruptFallsBack(t *testing.T) {
	s, _, cleanup := setupProfileStore(t)
	defer cleanup()

	if err := os.WriteFile(s.dataFile, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := s.Get()
	if err == nil {
		t.Fatal("expected error for corrupt profile")
	}
	if !reflect.DeepEqual(p, DefaultProfile()) {
		t.Errorf("Get = %+v, want default alongside the error", p)
	}
}

func TestProfilePartialUpdate(t *testing.T) {
	s, _, cleanup := setupProfileStore(t)
	defer cleanup()
	ctx := context.Background()

	socials := Socials{GitHub: "https://github.com/me", X: "@me"}
	if _, err := s.Update(ctx, ProfileUpdate{Socials: &socials}); err != nil {
		t.Fatalf("Update socials failed: %v", err)
	}

	skills := []string{"go"}
	got, err := s.Update(ctx, ProfileUpdate{Skills: &skills})
	if err != nil {
		t.Fatalf("Update skills failed: %v", err)
	}
	if !reflect.DeepEqual(got.Skills, skills) {
		t.Errorf("Skills = %v, want %v", got.Skills, skills)
	}
	if got.Socials == nil || *got.Socials != socials {
		t.Errorf("Socials = %+v, want %+v", got.Socials, socials)
	}

	stored, err := s.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !reflect.DeepEqual(stored, got) {
		t.Errorf("stored = %+v, returned = %+v", stored, got)
	}
}

func TestProfileFirstUpdateStartsFromDefault(t *testing.T) {
	s, _, cleanup := setupProfileStore(t)
	defer cleanup()

	works := []Work{{Title: "Site", Link: "https://example.com", Tech: []string{"go"}}}
	got, err := s.Update(context.Background(), ProfileUpdate{Works: &works})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !reflect.DeepEqual(got.Skills, DefaultProfile().Skills) {
		t.Errorf("Skills = %v, want defaults", got.Skills)
	}
	if len(got.Works) != 1 || got.Works[0].Title != "Site" {
		t.Errorf("Works = %+v", got.Works)
	}
}

func TestProfileEmptyListsReplace(t *testing.T) {
	s, _, cleanup := setupProfileStore(t)
	defer cleanup()

	empty := []string{}
	got, err := s.Update(context.Background(), ProfileUpdate{Skills: &empty})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(got.Skills) != 0 {
		t.Errorf("Skills = %v, want empty", got.Skills)
	}
}

func TestProfileAvatar(t *testing.T) {
	s, uploads, cleanup := setupProfileStore(t)
	defer cleanup()

	got, err := s.Update(context.Background(), ProfileUpdate{
		Avatar: &FileBlob{Name: "me.png", Reader: strings.NewReader("png")},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Avatar != "/uploads/avatar_1700000000000_me.png" {
		t.Errorf("Avatar = %q", got.Avatar)
	}
	name, _ := uploads.NameFromURL(got.Avatar)
	if _, err := os.Stat(filepath.Join(uploads.Base, name)); err != nil {
		t.Errorf("avatar file missing: %v", err)
	}
}
