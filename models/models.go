package models

// PageCreate is the payload for creating a new Confluence page.
type PageCreate struct {
	SpaceKey string `json:"space_key"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	ParentID string `json:"parent_id,omitempty"`
}

// PageUpdate is the payload for updating an existing page. Version is the
// current version number of the page being updated; the written version is
// Version+1 (Confluence optimistic concurrency).
type PageUpdate struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Version int    `json:"version,omitempty"`
}

// Page mirrors the subset of the Confluence content representation the
// middleware cares about.
type Page struct {
	ID      string      `json:"id"`
	Type    string      `json:"type,omitempty"`
	Title   string      `json:"title"`
	Space   *PageSpace  `json:"space,omitempty"`
	Version PageVersion `json:"version"`
	Body    PageBody    `json:"body"`
}

type PageSpace struct {
	Key string `json:"key"`
}

type PageVersion struct {
	Number int `json:"number"`
}

type PageBody struct {
	Storage PageStorage `json:"storage"`
}

type PageStorage struct {
	Value          string `json:"value"`
	Representation string `json:"representation,omitempty"`
}

// SearchResult is the envelope Confluence returns for content searches.
type SearchResult struct {
	Results []Page `json:"results"`
	Size    int    `json:"size"`
}

// Draft is an unpersisted report candidate awaiting human review. Publishing
// it is a separate, explicit create-page call.
type Draft struct {
	Title    string `json:"title"`
	SpaceKey string `json:"space_key"`
	Content  string `json:"content"`
}
