package models

import (
	"encoding/json"
)

// MaxListSize caps every bestseller list returned to clients.
const MaxListSize = 20

type BookSummary struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher,omitempty"`
	Image     string `json:"image"`
	Link      string `json:"link"`
}

// BookDetail holds the fields scraped from a product page. An empty string
// means the field was not found. Extra carries provider specific fields
// (characteristics, dimensions, pages, isbn) and is flattened into the JSON
// object.
type BookDetail struct {
	Description string
	Plot        string
	AuthorInfo  string
	Publisher   string
	PublishDate string
	Extra       map[string]string
}

func (d *BookDetail) Set(key, value string) {
	if value == "" {
		return
	}
	if d.Extra == nil {
		d.Extra = make(map[string]string)
	}
	d.Extra[key] = value
}

func (d *BookDetail) Get(key string) string {
	return d.Extra[key]
}

func (d BookDetail) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, 5+len(d.Extra))
	for k, v := range d.Extra {
		out[k] = v
	}

	// Base fields win over extras with the same key
	out["description"] = d.Description
	out["plot"] = d.Plot
	out["authorInfo"] = d.AuthorInfo
	out["publisher"] = d.Publisher
	out["publishDate"] = d.PublishDate

	return json.Marshal(out)
}

func (d *BookDetail) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = BookDetail{
		Description: raw["description"],
		Plot:        raw["plot"],
		AuthorInfo:  raw["authorInfo"],
		Publisher:   raw["publisher"],
		PublishDate: raw["publishDate"],
	}
	for k, v := range raw {
		switch k {
		case "description", "plot", "authorInfo", "publisher", "publishDate":
		default:
			d.Set(k, v)
		}
	}

	return nil
}

type ListResponse struct {
	Books []BookSummary `json:"books"`
}
