// Package site defines the declarative site file: the metadata rendered into
// page templates and the ordered plugin list that selects build stages.
//
// A site file is authored once, read once per build and never mutated by the
// program. It can be written as YAML or JSON and re-emitted in either format
// without changing its structure.
package site

// Entry is a titled item shown in one of the portfolio sections.
type Entry struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Link        string `yaml:"link,omitempty" json:"link,omitempty"`
}

type (
	Project    = Entry
	Education  = Entry
	Experience = Entry
)

// Skill is a named group of skills. Skills carry no link.
type Skill struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Metadata is the descriptive data injected into every template.
type Metadata struct {
	SiteURL     string `yaml:"siteUrl" json:"siteUrl"`
	Name        string `yaml:"name" json:"name"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Author is the Twitter handle, if any.
	Author   string `yaml:"author,omitempty" json:"author,omitempty"`
	GitHub   string `yaml:"github,omitempty" json:"github,omitempty"`
	LinkedIn string `yaml:"linkedin,omitempty" json:"linkedin,omitempty"`
	About    string `yaml:"about,omitempty" json:"about,omitempty"`

	Projects   []Project    `yaml:"projects,omitempty" json:"projects,omitempty"`
	Education  []Education  `yaml:"education,omitempty" json:"education,omitempty"`
	Experience []Experience `yaml:"experience,omitempty" json:"experience,omitempty"`
	Skills     []Skill      `yaml:"skills,omitempty" json:"skills,omitempty"`
}

// Config is the whole site file.
type Config struct {
	SiteMetadata Metadata `yaml:"siteMetadata" json:"siteMetadata"`
	Plugins      []Plugin `yaml:"plugins,omitempty" json:"plugins,omitempty"`
}
