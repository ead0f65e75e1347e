package folio

import "io"

// Post is a markdown document in the posts directory. Slug is the file name
// without ".md"; the remaining metadata lives in the YAML front matter.
type Post struct {
	Slug       string `json:"slug" yaml:"-"`
	Title      string `json:"title" yaml:"title"`
	Date       string `json:"date" yaml:"date"`
	Excerpt    string `json:"excerpt" yaml:"excerpt"`
	CoverImage string `json:"coverImage,omitempty" yaml:"coverImage,omitempty"`
	Content    string `json:"content" yaml:"-"`
}

// Link returns the server-rendered page for the post.
func (p Post) Link() string {
	return "/blog/" + p.Slug + "/"
}

// MusicTrack is one entry of the music metadata array. Filename is the
// server-generated name of the audio file and identifies the track.
type MusicTrack struct {
	Filename   string `json:"filename"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	CoverImage string `json:"coverImage,omitempty"`
}

// Profile is the singleton document behind the about page.
type Profile struct {
	Avatar  string   `json:"avatar,omitempty"`
	Skills  []string `json:"skills,omitempty"`
	Socials *Socials `json:"socials,omitempty"`
	Works   []Work   `json:"works,omitempty"`
}

// Socials maps each supported platform to a URL or handle.
type Socials struct {
	QQ       string `json:"qq,omitempty"`
	WeChat   string `json:"wechat,omitempty"`
	Telegram string `json:"telegram,omitempty"`
	X        string `json:"x,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// Work is a portfolio entry.
type Work struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Link        string   `json:"link"`
	Tech        []string `json:"tech,omitempty" validate:"max=20,dive,required,max=40"`
}

// FileBlob is an uploaded file on its way to disk. Name is the client's
// original file name and is never used as a path without cleaning.
type FileBlob struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// MusicUpload carries the fields of a music upload request.
type MusicUpload struct {
	Audio  *FileBlob
	Cover  *FileBlob
	Title  string
	Artist string
}

// ProfileUpdate is a partial profile. Nil fields are left untouched.
type ProfileUpdate struct {
	Avatar  *FileBlob
	Skills  *[]string
	Socials *Socials
	Works   *[]Work
}
