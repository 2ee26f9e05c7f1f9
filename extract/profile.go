package extract

// Profile maps a markup page's DOM structure onto payload fields. Selectors
// use the simple CSS subset of this package's matcher; *Attr fields name DOM
// attributes read off the matched element.
//
// The defaults fit the stock markup page layout; review tools with custom
// themes override them in the YAML config.
type Profile struct {
	ProjectNameSelector string `yaml:"project_name_selector"`

	ThreadSelector    string `yaml:"thread_selector"`
	ThreadNameAttr    string `yaml:"thread_name_attr"`
	ImageIndexAttr    string `yaml:"image_index_attr"`
	ImagePathAttr     string `yaml:"image_path_attr"`
	ImageFilenameAttr string `yaml:"image_filename_attr"`

	CommentSelector  string `yaml:"comment_selector"`
	CommentIndexAttr string `yaml:"comment_index_attr"`
	PinNumberAttr    string `yaml:"pin_number_attr"`
	ContentSelector  string `yaml:"content_selector"`
	UserSelector     string `yaml:"user_selector"`

	AttachmentSelector string `yaml:"attachment_selector"`
}

// Defaults fills unset fields with the stock markup page selectors.
func (p *Profile) Defaults() {
	if p.ProjectNameSelector == "" {
		p.ProjectNameSelector = ".project-name"
	}
	if p.ThreadSelector == "" {
		p.ThreadSelector = "div.thread"
	}
	if p.ThreadNameAttr == "" {
		p.ThreadNameAttr = "data-thread-name"
	}
	if p.ImageIndexAttr == "" {
		p.ImageIndexAttr = "data-image-index"
	}
	if p.ImagePathAttr == "" {
		p.ImagePathAttr = "data-image-path"
	}
	if p.ImageFilenameAttr == "" {
		p.ImageFilenameAttr = "data-image-filename"
	}
	if p.CommentSelector == "" {
		p.CommentSelector = "div.comment"
	}
	if p.CommentIndexAttr == "" {
		p.CommentIndexAttr = "data-index"
	}
	if p.PinNumberAttr == "" {
		p.PinNumberAttr = "data-pin"
	}
	if p.ContentSelector == "" {
		p.ContentSelector = ".comment-body"
	}
	if p.UserSelector == "" {
		p.UserSelector = ".comment-author"
	}
	if p.AttachmentSelector == "" {
		p.AttachmentSelector = ".comment-attachments img"
	}
}
