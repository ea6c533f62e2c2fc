package collection

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Collection is both a container and an item: items share their container's schema and owner
// and carry non-empty data.
type Collection struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	OwnerID   uuid.UUID       `db:"owner" json:"owner"`
	SchemaID  uuid.UUID       `db:"schema_id" json:"schema_id"`
	Data      json.RawMessage `db:"data" json:"data"`
	Published bool            `db:"published" json:"published"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

var emptyObject = json.RawMessage(`{}`)

func EmptyData() json.RawMessage {
	return append(json.RawMessage(nil), emptyObject...)
}

// HasData reports whether the collection carries item data.
func (c *Collection) HasData() bool {
	trimmed := bytes.TrimSpace(c.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, emptyObject) && !bytes.Equal(trimmed, []byte("null"))
}

type ListFilter struct {
	OwnerID   uuid.UUID
	SchemaID  *uuid.UUID
	Published *bool
	ExcludeID *uuid.UUID
	// ItemsOnly drops rows whose data is the empty object, i.e. containers.
	ItemsOnly bool
}

// Update carries mutable fields; nil means unchanged.
type Update struct {
	Data      json.RawMessage
	Published *bool
}
