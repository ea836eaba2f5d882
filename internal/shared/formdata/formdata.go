// Package formdata decodes multipart/form-data request bodies into text fields
// and a single binary file while preserving every byte of the file part.
package formdata

import (
	"bytes"
	"errors"
	"strings"
)

// ErrMalformedRequest signals a multipart content type without a usable boundary.
var ErrMalformedRequest = errors.New("malformed multipart request")

const (
	// FallbackFilename is used when a file part carries an empty filename attribute.
	FallbackFilename = "upload.bin"
	// DefaultMimeType is recorded when a file part has no Content-Type header.
	DefaultMimeType = "application/octet-stream"
)

var (
	crlf          = []byte("\r\n")
	lf            = []byte("\n")
	headerEndCRLF = []byte("\r\n\r\n")
	headerEndLF   = []byte("\n\n")
)

// File is the decoded file-bearing part.
type File struct {
	Bytes        []byte
	OriginalName string
	MimeType     string
	Size         int
}

// Form is the result of decoding a multipart body.
type Form struct {
	Fields map[string]string
	File   *File
}

// Field returns the named text field, or an empty string.
func (f *Form) Field(name string) string {
	if f == nil {
		return ""
	}
	return f.Fields[name]
}

// Parse decodes body according to contentType. A missing or non-multipart
// content type yields an empty form. Only the last file-bearing part is kept.
func Parse(contentType string, body []byte) (*Form, error) {
	form := &Form{Fields: map[string]string{}}
	mediaType, params := splitHeaderValue(contentType)
	if !strings.EqualFold(mediaType, "multipart/form-data") {
		return form, nil
	}
	boundary := params["boundary"]
	if boundary == "" {
		return nil, ErrMalformedRequest
	}
	delimiter := []byte("--" + boundary)
	segments := bytes.Split(body, delimiter)
	// segments[0] is the preamble before the first delimiter.
	for _, segment := range segments[1:] {
		if bytes.HasPrefix(segment, []byte("--")) {
			break
		}
		segment = trimLeadingNewline(segment)
		if len(segment) == 0 {
			continue
		}
		header, content, newline, ok := splitPart(segment)
		if !ok {
			continue
		}
		content = bytes.TrimSuffix(content, newline)
		applyPart(form, parsePartHeader(header), content)
	}
	return form, nil
}

type partHeader struct {
	name        string
	filename    string
	hasFilename bool
	contentType string
}

func applyPart(form *Form, header partHeader, content []byte) {
	if header.hasFilename {
		name := header.filename
		if name == "" {
			name = FallbackFilename
		}
		mimeType := header.contentType
		if mimeType == "" {
			mimeType = DefaultMimeType
		}
		data := bytes.Clone(content)
		if data == nil {
			data = []byte{}
		}
		form.File = &File{
			Bytes:        data,
			OriginalName: name,
			MimeType:     mimeType,
			Size:         len(data),
		}
		return
	}
	if header.name == "" {
		return
	}
	form.Fields[header.name] = string(content)
}

// splitPart cuts a part at the first blank line. The framing of that blank
// line decides which newline precedes the next delimiter.
func splitPart(segment []byte) (header, content, newline []byte, ok bool) {
	crlfAt := bytes.Index(segment, headerEndCRLF)
	lfAt := bytes.Index(segment, headerEndLF)
	switch {
	case crlfAt >= 0 && (lfAt < 0 || crlfAt < lfAt):
		return segment[:crlfAt], segment[crlfAt+len(headerEndCRLF):], crlf, true
	case lfAt >= 0:
		return segment[:lfAt], segment[lfAt+len(headerEndLF):], lf, true
	}
	return nil, nil, nil, false
}

func parsePartHeader(raw []byte) partHeader {
	var header partHeader
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "content-disposition":
			_, params := splitHeaderValue(value)
			header.name = params["name"]
			header.filename, header.hasFilename = params["filename"]
		case "content-type":
			header.contentType = strings.TrimSpace(value)
		}
	}
	return header
}

func trimLeadingNewline(segment []byte) []byte {
	if bytes.HasPrefix(segment, crlf) {
		return segment[len(crlf):]
	}
	if len(segment) > 0 && segment[0] == '\n' {
		return segment[1:]
	}
	return segment
}

// splitHeaderValue splits `value; key=val; key2="quoted; val"` into the leading
// value and a lower-cased parameter map. Quoted values may contain semicolons.
func splitHeaderValue(raw string) (string, map[string]string) {
	params := map[string]string{}
	parts := splitOutsideQuotes(raw, ';')
	if len(parts) == 0 {
		return "", params
	}
	value := strings.TrimSpace(parts[0])
	for _, part := range parts[1:] {
		key, val, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		params[key] = unquote(strings.TrimSpace(val))
	}
	return value, params
}

func splitOutsideQuotes(s string, sep byte) []string {
	var (
		parts   []string
		start   int
		inQuote bool
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && inQuote && i+1 < len(s):
			i++
		case c == '"':
			inQuote = !inQuote
		case c == sep && !inQuote:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	inner := s[1 : len(s)-1]
	if !strings.Contains(inner, `\`) {
		return inner
	}
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}
