package event

import (
	"fmt"
	"strconv"
)

// Object metadata keys attached at upload time and read by the pipeline.
const (
	MetaOwnerID      = "owner-id"
	MetaDisplayEmail = "display-email"
	MetaDocumentID   = "document-id"
	MetaDocumentType = "document-type"
	MetaHasPassword  = "has-password"
	MetaFilename     = "filename"
)

// DefaultDocumentType scopes credentials when the uploader did not tag one.
const DefaultDocumentType = "default"

// ObjectMetadata is the upload-time metadata that identifies a document and
// tells the pipeline how to treat it.
type ObjectMetadata struct {
	OwnerID      string
	DisplayEmail string
	DocumentID   string
	DocumentType string
	HasPassword  bool
	Filename     string
}

// ParseMetadata extracts pipeline metadata from object attributes. OwnerID
// and DocumentID are mandatory: without them there is no status record to
// write to.
func ParseMetadata(attrs map[string]string) (ObjectMetadata, error) {
	m := ObjectMetadata{
		OwnerID:      attrs[MetaOwnerID],
		DisplayEmail: attrs[MetaDisplayEmail],
		DocumentID:   attrs[MetaDocumentID],
		DocumentType: attrs[MetaDocumentType],
		Filename:     attrs[MetaFilename],
	}
	if m.OwnerID == "" {
		return ObjectMetadata{}, fmt.Errorf("object metadata missing %s", MetaOwnerID)
	}
	if m.DocumentID == "" {
		return ObjectMetadata{}, fmt.Errorf("object metadata missing %s", MetaDocumentID)
	}
	if m.DocumentType == "" {
		m.DocumentType = DefaultDocumentType
	}
	if v := attrs[MetaHasPassword]; v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			m.HasPassword = b
		}
	}
	return m, nil
}

// ToAttrs is the inverse of ParseMetadata, used by the local-mode uploader.
func (m ObjectMetadata) ToAttrs() map[string]string {
	attrs := map[string]string{
		MetaOwnerID:      m.OwnerID,
		MetaDocumentID:   m.DocumentID,
		MetaDocumentType: m.DocumentType,
		MetaHasPassword:  strconv.FormatBool(m.HasPassword),
		MetaFilename:     m.Filename,
	}
	if m.DisplayEmail != "" {
		attrs[MetaDisplayEmail] = m.DisplayEmail
	}
	return attrs
}
