package domain

import "time"

// Item types and authors are closed sets; the site belongs to two people.
const (
	TypeNotebook = "notebook"
	TypeIdea     = "idea"
	TypeDrawing  = "drawing"
)

// Item is one published (or private) piece of content.
// PK: item_id (ULID).
type Item struct {
	ItemID    string    `json:"id" dynamodbav:"item_id"`
	Type      string    `json:"type" dynamodbav:"type"` // "notebook" | "idea" | "drawing"
	Title     string    `json:"title" dynamodbav:"title"`
	Author    string    `json:"author" dynamodbav:"author"`
	IsPublic  bool      `json:"isPublic" dynamodbav:"is_public"`
	BodyHTML  string    `json:"bodyHtml,omitempty" dynamodbav:"body_html"`
	ImageURL  string    `json:"imageUrl,omitempty" dynamodbav:"image_url"`
	Text      string    `json:"text,omitempty" dynamodbav:"text"`
	Likes     int       `json:"likes" dynamodbav:"likes"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

type CreateItemRequest struct {
	Type     string `json:"type" validate:"required,oneof=notebook idea drawing"`
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author" validate:"required,oneof=lakhdar amar"`
	IsPublic bool   `json:"isPublic"`
	BodyHTML string `json:"bodyHtml"`
	ImageURL string `json:"imageUrl"`
	// ImageBase64 carries raw drawing data; when set it is uploaded to object
	// storage and ImageURL is replaced by the stored object's URL.
	ImageBase64 string `json:"imageBase64"`
	Text        string `json:"text"`
}

type UpdateItemRequest struct {
	Title    *string `json:"title"`
	Author   *string `json:"author" validate:"omitempty,oneof=lakhdar amar"`
	IsPublic *bool   `json:"isPublic"`
	BodyHTML *string `json:"bodyHtml"`
	ImageURL *string `json:"imageUrl"`
	Text     *string `json:"text"`
}

// ItemFilter narrows the public item listing.
type ItemFilter struct {
	Type   string
	Author string
	Query  string // case-insensitive substring over title/type/text/bodyHtml
}
