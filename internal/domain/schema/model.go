package schema

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldRichText FieldType = "richtext"
	FieldNumber   FieldType = "number"
	FieldBoolean  FieldType = "boolean"
	FieldDate     FieldType = "date"
	FieldImage    FieldType = "image"
	FieldSelect   FieldType = "select"
	FieldURL      FieldType = "url"
	FieldEmail    FieldType = "email"
)

type Field struct {
	Name     string    `json:"name" binding:"required"`
	Type     FieldType `json:"type" binding:"required,oneof=text textarea richtext number boolean date image select url email"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
}

type Schema struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OwnerID     uuid.UUID       `db:"owner" json:"owner"`
	Slug        string          `db:"slug" json:"slug"`
	Title       string          `db:"title" json:"title"`
	Description *string         `db:"description" json:"description,omitempty"`
	Definition  json.RawMessage `db:"definition" json:"definition"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Fields decodes the stored definition.
func (s *Schema) Fields() ([]Field, error) {
	if len(s.Definition) == 0 {
		return nil, nil
	}
	var fields []Field
	if err := json.Unmarshal(s.Definition, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (s *Schema) SetFields(fields []Field) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	s.Definition = data
	return nil
}
