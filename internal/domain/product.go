// Package domain holds the types shared by the gateway, the screen
// controllers and the front ends: products, the session and the error
// taxonomy.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ProductID is the server-assigned product identifier. The API may send it
// as a JSON string or a JSON number; the client always handles it as text.
type ProductID string

func (id *ProductID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string { return string(id) }

// Product is one inventory record as returned by the API.
type Product struct {
	ID          ProductID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Quantity    int64     `json:"quantity"`
	ImageURL    *string   `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductDraft is the create payload. ImageURL is always serialized, as
// null when unset; UserID is omitted when the session has none.
type ProductDraft struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	ImageURL    *string `json:"imageUrl"`
	UserID      *string `json:"userId,omitempty"`
}

// ProductPatch is the update payload. All four editable fields are sent on
// every update.
type ProductPatch struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	UserID      *string `json:"userId,omitempty"`
}

// Token is the bearer token returned by a successful login.
type Token struct {
	AccessToken string `json:"access_token"`
}

// OptionalString returns nil for "" and a pointer to s otherwise.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
