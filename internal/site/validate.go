package site

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
)

// FieldError is one failed check, addressed by its path in the site file.
type FieldError struct {
	Field   string
	Value   any
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError bundles every failed check of a site file.
type ValidationError struct {
	errors []FieldError
}

// Errors returns the individual failures in the order they were found.
func (e ValidationError) Errors() []FieldError {
	return e.errors
}

func (e ValidationError) Error() string {
	if len(e.errors) == 1 {
		return "invalid site file: " + e.errors[0].Error()
	}
	parts := make([]string, len(e.errors))
	for i, fe := range e.errors {
		parts[i] = fe.Error()
	}
	return fmt.Sprintf("invalid site file (%d problems): %s", len(e.errors), strings.Join(parts, "; "))
}

type validator struct {
	errors []FieldError
}

func (v *validator) add(field, message string, value any) {
	v.errors = append(v.errors, FieldError{Field: field, Value: value, Message: message})
}

func (v *validator) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "must not be empty", value)
	}
}

// optionalURL accepts an empty value or an absolute URL.
func (v *validator) optionalURL(field, value string) {
	if value == "" {
		return
	}
	if !isAbsoluteURL(value) {
		v.add(field, "must be an absolute URL", value)
	}
}

func (v *validator) err() error {
	if len(v.errors) == 0 {
		return nil
	}
	return ValidationError{errors: append([]FieldError(nil), v.errors...)}
}

// Validate checks the structural properties every site file must hold. All
// failures are reported together as a ValidationError.
func (c *Config) Validate() error {
	v := &validator{}
	m := c.SiteMetadata

	v.required("siteMetadata.siteUrl", m.SiteURL)
	v.optionalURL("siteMetadata.siteUrl", strings.TrimSpace(m.SiteURL))
	v.required("siteMetadata.name", m.Name)
	v.required("siteMetadata.title", m.Title)
	v.optionalURL("siteMetadata.github", m.GitHub)
	v.optionalURL("siteMetadata.linkedin", m.LinkedIn)

	validateEntries(v, "siteMetadata.projects", m.Projects)
	validateEntries(v, "siteMetadata.education", m.Education)
	validateEntries(v, "siteMetadata.experience", m.Experience)
	for i, s := range m.Skills {
		prefix := fmt.Sprintf("siteMetadata.skills[%d]", i)
		v.required(prefix+".name", s.Name)
		v.required(prefix+".description", s.Description)
	}

	validatePlugins(v, "plugins", c.Plugins)
	return v.err()
}

func validateEntries(v *validator, section string, entries []Entry) {
	for i, e := range entries {
		prefix := fmt.Sprintf("%s[%d]", section, i)
		v.required(prefix+".name", e.Name)
		v.required(prefix+".description", e.Description)
		v.optionalURL(prefix+".link", e.Link)
	}
}

func validatePlugins(v *validator, section string, plugins []Plugin) {
	for i, p := range plugins {
		field := fmt.Sprintf("%s[%d]", section, i)
		if strings.TrimSpace(p.Resolve) == "" {
			resolveField := field
			if len(p.Options) > 0 {
				resolveField += ".resolve"
			}
			v.add(resolveField, "plugin identifier must not be empty", p.Resolve)
		}
		checkFinite(v, field+".options", p.Options)
		subs, err := p.SubPlugins()
		if err != nil {
			v.add(field+".options.plugins", err.Error(), p.Options["plugins"])
			continue
		}
		validatePlugins(v, field+".options.plugins", subs)
	}
}

// checkFinite reports NaN and infinite option values, which YAML accepts but
// JSON cannot encode. The nested plugin list is checked per plugin instead.
func checkFinite(v *validator, field string, value any) {
	switch t := value.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			v.add(field, "must be a finite number", t)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			if k == "plugins" && strings.HasSuffix(field, ".options") {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			checkFinite(v, field+"."+k, t[k])
		}
	case []any:
		for i, item := range t {
			checkFinite(v, fmt.Sprintf("%s[%d]", field, i), item)
		}
	}
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
