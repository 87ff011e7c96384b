package http

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// FormData is a multipart/form-data body. Passing one as a request body
// suppresses the JSON Content-Type; the boundary header is derived from the
// encoded body instead.
type FormData struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

// NewFormData creates an empty form.
func NewFormData() *FormData {
	return &FormData{}
}

// AddField appends a text field.
func (f *FormData) AddField(name, value string) *FormData {
	f.fields = append(f.fields, formField{name: name, value: value})

	return f
}

// AddFile appends a file part. The reader is consumed immediately so the
// form can be re-sent on retries.
func (f *FormData) AddFile(field, filename, contentType string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("reading form file %s: %w", filename, err)
	}

	f.files = append(f.files, formFile{
		field:       field,
		filename:    filename,
		contentType: contentType,
		data:        data,
	})

	return nil
}

// Len returns the number of parts.
func (f *FormData) Len() int {
	return len(f.fields) + len(f.files)
}

// encode renders the form and returns the body with its Content-Type.
func (f *FormData) encode() ([]byte, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	for _, field := range f.fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("writing form field %s: %w", field.name, err)
		}
	}

	for _, file := range f.files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(file.field), escapeQuotes(file.filename)))
		header.Set("Content-Type", file.contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("creating form file: %w", err)
		}

		if _, err := part.Write(file.data); err != nil {
			return nil, "", fmt.Errorf("writing file to form: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
