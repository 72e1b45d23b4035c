// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Record is a bibliographic item as stored by the Zotero library. The JSON
// tags match the Zotero API "data" object. Key and Version are copied from
// the item envelope by the client; Version is the optimistic-concurrency
// token captured at fetch time and required for writes.
type Record struct {
	Key          string    `json:"key,omitempty"`
	Version      int       `json:"version,omitempty"`
	ItemType     string    `json:"itemType"`
	Title        string    `json:"title,omitempty"`
	Creators     []Creator `json:"creators,omitempty"`
	Date         string    `json:"date,omitempty"`
	AbstractNote string    `json:"abstractNote,omitempty"`
	DOI          string    `json:"DOI,omitempty"`
	URL          string    `json:"url,omitempty"`

	// Attachment fields, present only when ItemType is "attachment".
	ParentItem  string `json:"parentItem,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Filename    string `json:"filename,omitempty"`
}

// Creator is one entry in a record's creator list. Zotero uses either a
// single Name or a FirstName/LastName pair.
type Creator struct {
	CreatorType string `json:"creatorType"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Name        string `json:"name,omitempty"`
}

// IsAttachment reports whether the record is a file attachment rather than
// a citation item.
func (r Record) IsAttachment() bool {
	return r.ItemType == "attachment"
}

// IsCitation reports whether the record is a citation item that can carry
// an abstract. Attachments, notes, and annotations cannot.
func (r Record) IsCitation() bool {
	switch r.ItemType {
	case "attachment", "note", "annotation":
		return false
	}
	return true
}
