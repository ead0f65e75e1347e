package folio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// requestValidator plugs go-playground/validator into echo's c.Validate.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{v: v}
}

func (rv *requestValidator) Validate(i any) error {
	return invalidField(rv.v.Struct(i))
}

func (rv *requestValidator) Var(field any, tag string) error {
	return invalidField(rv.v.Var(field, tag))
}

// invalidField turns validator output into an ErrInvalidField naming the
// offending fields.
func invalidField(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, fe.Namespace()+" "+fe.Tag())
	}
	return fmt.Errorf("%w: %s", ErrInvalidField, strings.Join(names, ", "))
}

// postRequest is the JSON body of POST /api/posts.
type postRequest struct {
	Slug       string `json:"slug" validate:"max=128"`
	Title      string `json:"title" validate:"max=300"`
	Date       string `json:"date" validate:"max=64"`
	Excerpt    string `json:"excerpt"`
	CoverImage string `json:"coverImage" validate:"max=512"`
	Content    string `json:"content"`
}

func (a *App) bindPost(c echo.Context) (Post, error) {
	var req postRequest
	if err := c.Bind(&req); err != nil {
		return Post{}, fmt.Errorf("%w: body", ErrInvalidField)
	}
	if err := c.Validate(&req); err != nil {
		return Post{}, err
	}
	p := Post{
		Slug:       strings.TrimSpace(req.Slug),
		Title:      req.Title,
		Date:       strings.TrimSpace(req.Date),
		Excerpt:    req.Excerpt,
		CoverImage: req.CoverImage,
		Content:    req.Content,
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if p.Slug == "" {
		return Post{}, ErrMissingParameter
	}
	if p.Date == "" {
		p.Date = a.now().UTC().Format(postDateLayout)
	}
	return p, nil
}

// postDateLayout is the ISO-8601 form that keeps string order equal to time order.
const postDateLayout = "2006-01-02T15:04:05.000Z"

// formBlob opens the multipart file under field. A missing field yields a nil
// blob and no error; the returned closer is always safe to call.
func formBlob(c echo.Context, field string) (*FileBlob, io.Closer, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, io.NopCloser(nil), nil
		}
		return nil, io.NopCloser(nil), fmt.Errorf("%w: %s", ErrInvalidField, field)
	}
	return openBlob(fh)
}

func openBlob(fh *multipart.FileHeader) (*FileBlob, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, io.NopCloser(nil), err
	}
	return &FileBlob{Name: fh.Filename, Size: fh.Size, Reader: f}, f, nil
}

type closers []io.Closer

func (cs closers) Close() error {
	for _, c := range cs {
		c.Close()
	}
	return nil
}

func (a *App) bindMusicUpload(c echo.Context) (MusicUpload, io.Closer, error) {
	audio, ac, err := formBlob(c, "audio")
	if err != nil {
		return MusicUpload{}, ac, err
	}
	if audio == nil {
		return MusicUpload{}, ac, ErrMissingFile
	}
	cover, cc, err := formBlob(c, "cover")
	if err != nil {
		return MusicUpload{}, closers{ac, cc}, err
	}
	in := MusicUpload{
		Audio:  audio,
		Cover:  cover,
		Title:  c.FormValue("title"),
		Artist: c.FormValue("artist"),
	}
	if err := a.validator.Var(in.Title, "max=300"); err != nil {
		return MusicUpload{}, closers{ac, cc}, err
	}
	if err := a.validator.Var(in.Artist, "max=300"); err != nil {
		return MusicUpload{}, closers{ac, cc}, err
	}
	return in, closers{ac, cc}, nil
}

// decodeField strictly decodes one JSON-encoded form field. Unknown object
// keys and trailing data are rejected.
func decodeField(field, raw string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidField, field, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: %s: trailing data", ErrInvalidField, field)
	}
	return nil
}

// bindProfileUpdate reads the optional avatar file and the JSON-encoded
// skills, socials and works fields. Absent or empty fields stay nil.
func (a *App) bindProfileUpdate(c echo.Context) (ProfileUpdate, io.Closer, error) {
	var u ProfileUpdate
	avatar, closer, err := formBlob(c, "avatar")
	if err != nil {
		return u, closer, err
	}
	u.Avatar = avatar

	if raw := c.FormValue("skills"); raw != "" {
		var skills []string
		if err := decodeField("skills", raw, &skills); err != nil {
			return u, closer, err
		}
		if skills == nil {
			skills = []string{}
		}
		if err := a.validator.Var(skills, "max=50,dive,max=80"); err != nil {
			return u, closer, err
		}
		u.Skills = &skills
	}
	if raw := c.FormValue("socials"); raw != "" {
		var socials Socials
		if err := decodeField("socials", raw, &socials); err != nil {
			return u, closer, err
		}
		if err := a.validator.Validate(&socials); err != nil {
			return u, closer, err
		}
		u.Socials = &socials
	}
	if raw := c.FormValue("works"); raw != "" {
		var works []Work
		if err := decodeField("works", raw, &works); err != nil {
			return u, closer, err
		}
		if works == nil {
			works = []Work{}
		}
		if err := a.validator.Var(works, "max=100"); err != nil {
			return u, closer, err
		}
		for i := range works {
			if err := a.validator.Validate(&works[i]); err != nil {
				return u, closer, err
			}
		}
		u.Works = &works
	}
	return u, closer, nil
}
