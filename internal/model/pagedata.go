package model

// PageData is the value every layout executes against. Item is nil on the
// home page and list pages.
type PageData struct {
	Site *SiteData
	Item *ContentItem
}

// Title is the document title for the page.
func (p PageData) Title() string {
	if p.Item == nil || p.Item.Title == "" {
		return p.Site.Metadata.Title
	}
	return p.Item.Title + " | " + p.Site.Metadata.Title
}

// Description is the page summary, falling back to the site description.
func (p PageData) Description() string {
	if p.Item != nil && p.Item.Summary != "" {
		return p.Item.Summary
	}
	return p.Site.Metadata.Description
}
