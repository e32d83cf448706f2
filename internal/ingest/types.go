package ingest

// Role is the structural role assigned to one spine document.
type Role string

const (
	RoleCover       Role = "cover"
	RoleTOC         Role = "toc"
	RoleFrontmatter Role = "frontmatter"
	RoleTestimonial Role = "testimonial"
	RoleSkip        Role = "skip"
	RoleChapter     Role = "chapter"
)

// ClassifiedDocument is the pipeline's view of one spine document after
// image rewriting and classification. It lives only for the duration of an
// import.
type ClassifiedDocument struct {
	Href     string // OPF-relative document href
	Text     string // plain text, whitespace-normalized
	Heading  string // first h1-h6 (or <title>) text, may be empty
	HasImage bool
	Role     Role
	Title    string // classifier-detected title, may be empty
	HTML     string // body HTML with image references already rewritten
}

// ManifestImage tracks one extracted image: where it came from in the
// archive, where it now lives in the store, and every path form under which
// documents may reference it.
type ManifestImage struct {
	ManifestID string
	Href       string   // OPF-relative href as declared in the manifest
	Path       string   // zip-internal path
	Properties string   // manifest properties attribute, may be empty
	ObjectName string   // storage object name: <book_id>/<token>_<basename>
	URL        string   // URL returned by the store
	Aliases    []string // href, basename, ../href, ./href
}
