package folio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eringen/folio/logger"
	"github.com/eringen/folio/safepath"
)

// AssetDir is a flat directory of uploaded binaries that are served back
// under URLPrefix.
type AssetDir struct {
	Kind      string // "music" or "uploads"
	Base      string
	URLPrefix string // public path stored in metadata, e.g. "/uploads/"

	types       map[string]string
	defaultType string
	// transform rewrites an upload before it is written, e.g. to downscale images.
	transform func(name string, data []byte) []byte
	maxBytes  int64
}

var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".opus": "audio/opus",
	".webm": "audio/webm",
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".avif": "image/avif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

func newMusicDir(base string, maxBytes int64) *AssetDir {
	return &AssetDir{
		Kind:        "music",
		Base:        base,
		URLPrefix:   "/music/",
		types:       audioTypes,
		defaultType: "audio/mpeg",
		maxBytes:    maxBytes,
	}
}

func newUploadsDir(base string, maxBytes int64, maxImageWidth int) *AssetDir {
	d := &AssetDir{
		Kind:        "uploads",
		Base:        base,
		URLPrefix:   "/uploads/",
		types:       imageTypes,
		defaultType: "image/jpeg",
		maxBytes:    maxBytes,
	}
	if maxImageWidth > 0 {
		d.transform = func(name string, data []byte) []byte {
			return fitImage(name, data, maxImageWidth)
		}
	}
	return d
}

// ContentType looks the file extension up in the directory's table.
func (d *AssetDir) ContentType(name string) string {
	if t, ok := d.types[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	return d.defaultType
}

// Path resolves a stored file name, rejecting anything that is not a plain
// whitelisted name inside the directory.
func (d *AssetDir) Path(name string) (string, error) {
	return safepath.Join(d.Base, name)
}

// URL is the public path recorded in metadata for a stored file.
func (d *AssetDir) URL(name string) string {
	return d.URLPrefix + name
}

// NameFromURL reverses URL. It reports false for paths outside the directory's
// namespace, such as external links.
func (d *AssetDir) NameFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, d.URLPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(url, d.URLPrefix)
	return name, name != ""
}

// Save writes blob under a timestamped name derived from prefix and the
// client's file name and returns the stored name. An existing file is never
// overwritten; a numeric suffix is added instead.
func (d *AssetDir) Save(prefix string, blob *FileBlob, now time.Time) (string, int64, error) {
	if blob == nil || blob.Reader == nil {
		return "", 0, ErrMissingFile
	}
	data, err := readLimited(blob.Reader, d.maxBytes)
	if err != nil {
		return "", 0, err
	}
	if len(data) == 0 {
		return "", 0, ErrMissingFile
	}
	if d.transform != nil {
		data = d.transform(blob.Name, data)
	}
	if err := os.MkdirAll(d.Base, 0o755); err != nil {
		return "", 0, persistErr("mkdir", d.Base, err)
	}

	name := safepath.StoredName(prefix, blob.Name, now)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate := name
		if n > 1 {
			candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
		}
		err := d.create(candidate, data)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", 0, err
		}
		return candidate, int64(len(data)), nil
	}
}

func (d *AssetDir) create(name string, data []byte) error {
	path, err := d.Path(name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return err
	}
	if err != nil {
		return persistErr("create", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(path)
		return persistErr("write", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return persistErr("close", path, err)
	}
	return nil
}

// Open returns the stored file for reading. Directories and missing files
// are reported as ErrNotFound.
func (d *AssetDir) Open(name string) (*os.File, fs.FileInfo, error) {
	path, err := d.Path(name)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, persistErr("open", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, persistErr("stat", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, ErrNotFound
	}
	return f, info, nil
}

// RemoveBestEffort deletes a stored file. Failures are logged and swallowed.
func (d *AssetDir) RemoveBestEffort(name string) {
	path, err := d.Path(name)
	if err != nil {
		logger.Warn("refusing to delete asset", logger.String("kind", d.Kind), logger.String("name", name), logger.ErrorField(err))
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("delete asset failed", logger.String("path", path), logger.ErrorField(err))
	}
}

// readLimited buffers r, failing when it holds more than max bytes.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		data, err := io.ReadAll(r)
		return data, persistErr("read upload", "", err)
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, max+1))
	if err != nil {
		return nil, persistErr("read upload", "", err)
	}
	if n > max {
		return nil, fmt.Errorf("%w: upload exceeds %d bytes", ErrInvalidField, max)
	}
	return buf.Bytes(), nil
}
