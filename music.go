package folio

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"
)

const unknownArtist = "Unknown Artist"

// MusicStore keeps the track list in one JSON array. Audio files live in one
// asset directory, cover images in the shared uploads directory.
type MusicStore struct {
	dataFile string
	audio    *AssetDir
	covers   *AssetDir
	writer   *serialWriter
	now      func() time.Time
}

// NewMusicStore returns a store over the metadata file and asset directories.
func NewMusicStore(dataFile string, audio, covers *AssetDir, now func() time.Time) *MusicStore {
	if now == nil {
		now = time.Now
	}
	return &MusicStore{
		dataFile: dataFile,
		audio:    audio,
		covers:   covers,
		writer:   newSerialWriter(),
		now:      now,
	}
}

// Close stops the store's write queue.
func (s *MusicStore) Close() {
	s.writer.Close()
}

// List returns the tracks in upload order. A missing metadata file is an
// empty library.
func (s *MusicStore) List() ([]MusicTrack, error) {
	tracks := []MusicTrack{}
	if _, err := readJSON(s.dataFile, &tracks); err != nil {
		return nil, err
	}
	if tracks == nil {
		tracks = []MusicTrack{}
	}
	return tracks, nil
}

// Upload stores the audio file and optional cover, then appends the track to
// the metadata array. Blank titles fall back to the audio file name without
// its extension, blank artists to "Unknown Artist".
func (s *MusicStore) Upload(ctx context.Context, in MusicUpload) (MusicTrack, error) {
	if in.Audio == nil || in.Audio.Reader == nil || in.Audio.Name == "" {
		return MusicTrack{}, ErrMissingFile
	}
	now := s.now()

	filename, _, err := s.audio.Save("", in.Audio, now)
	if err != nil {
		return MusicTrack{}, err
	}

	var coverName string
	if in.Cover != nil && in.Cover.Reader != nil {
		coverName, _, err = s.covers.Save("cover_", in.Cover, now)
		if err != nil && !errors.Is(err, ErrMissingFile) {
			s.audio.RemoveBestEffort(filename)
			return MusicTrack{}, err
		}
	}

	track := MusicTrack{
		Filename: filename,
		Title:    strings.TrimSpace(in.Title),
		Artist:   strings.TrimSpace(in.Artist),
	}
	if track.Title == "" {
		track.Title = strings.TrimSuffix(in.Audio.Name, filepath.Ext(in.Audio.Name))
	}
	if track.Artist == "" {
		track.Artist = unknownArtist
	}
	if coverName != "" {
		track.CoverImage = s.covers.URL(coverName)
	}

	err = s.writer.Do(ctx, func() error {
		tracks, err := s.List()
		if err != nil {
			return err
		}
		return writeJSON(s.dataFile, append(tracks, track))
	})
	if err != nil {
		s.audio.RemoveBestEffort(filename)
		if coverName != "" {
			s.covers.RemoveBestEffort(coverName)
		}
		return MusicTrack{}, err
	}
	return track, nil
}

// Delete removes the track's metadata. Its audio file and, when it lives in
// the uploads namespace, its cover are deleted on a best-effort basis; the
// metadata entry is removed even when those deletions fail. Deleting an
// unknown filename succeeds.
func (s *MusicStore) Delete(ctx context.Context, filename string) error {
	if filename == "" {
		return ErrMissingParameter
	}
	if _, err := s.audio.Path(filename); err != nil {
		return err
	}
	return s.writer.Do(ctx, func() error {
		tracks, err := s.List()
		if err != nil {
			return err
		}
		kept := make([]MusicTrack, 0, len(tracks))
		for _, t := range tracks {
			if t.Filename != filename {
				kept = append(kept, t)
				continue
			}
			s.audio.RemoveBestEffort(t.Filename)
			if name, ok := s.covers.NameFromURL(t.CoverImage); ok {
				s.covers.RemoveBestEffort(name)
			}
		}
		return writeJSON(s.dataFile, kept)
	})
}
