package folio

import (
	"context"
	"time"
)

// defaultSkills seeds the profile until one has been saved.
var defaultSkills = []string{"✨ 创意设计", "🎵 音乐鉴赏", "📝 写作", "🐱 撸猫高手"}

// DefaultProfile is served while no profile document exists.
func DefaultProfile() Profile {
	return Profile{Skills: append([]string(nil), defaultSkills...)}
}

// ProfileStore keeps the profile as a single JSON object. Avatars are written
// to the shared uploads directory.
type ProfileStore struct {
	dataFile string
	uploads  *AssetDir
	writer   *serialWriter
	now      func() time.Time
}

// NewProfileStore returns a store over the profile document.
func NewProfileStore(dataFile string, uploads *AssetDir, now func() time.Time) *ProfileStore {
	if now == nil {
		now = time.Now
	}
	return &ProfileStore{
		dataFile: dataFile,
		uploads:  uploads,
		writer:   newSerialWriter(),
		now:      now,
	}
}

// Close stops the store's write queue.
func (s *ProfileStore) Close() {
	s.writer.Close()
}

// Get returns the stored profile, or DefaultProfile when none exists yet.
// The error is non-nil only when the document exists but cannot be read.
func (s *ProfileStore) Get() (Profile, error) {
	var p Profile
	found, err := readJSON(s.dataFile, &p)
	if err != nil {
		return DefaultProfile(), err
	}
	if !found {
		return DefaultProfile(), nil
	}
	return p, nil
}

// Update merges the fields present in u into the current profile, persists
// it and returns the result. A new avatar is stored under a timestamped name.
func (s *ProfileStore) Update(ctx context.Context, u ProfileUpdate) (Profile, error) {
	var avatar string
	if u.Avatar != nil {
		name, _, err := s.uploads.Save("avatar_", u.Avatar, s.now())
		if err != nil {
			return Profile{}, err
		}
		avatar = s.uploads.URL(name)
	}

	var merged Profile
	err := s.writer.Do(ctx, func() error {
		current, err := s.Get()
		if err != nil {
			return err
		}
		if avatar != "" {
			current.Avatar = avatar
		}
		if u.Skills != nil {
			current.Skills = *u.Skills
		}
		if u.Socials != nil {
			socials := *u.Socials
			current.Socials = &socials
		}
		if u.Works != nil {
			current.Works = *u.Works
		}
		if err := writeJSON(s.dataFile, current); err != nil {
			return err
		}
		merged = current
		return nil
	})
	if err != nil {
		if name, ok := s.uploads.NameFromURL(avatar); ok {
			s.uploads.RemoveBestEffort(name)
		}
		return Profile{}, err
	}
	return merged, nil
}
