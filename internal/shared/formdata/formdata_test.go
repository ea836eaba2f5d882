package formdata

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPart struct {
	name        string
	filename    *string
	contentType string
	body        []byte
}

func buildBody(boundary string, parts ...testPart) []byte {
	var buf bytes.Buffer
	buf.WriteString("preamble ignored\r\n")
	for _, p := range parts {
		buf.WriteString("--" + boundary + "\r\n")
		buf.WriteString(`Content-Disposition: form-data; name="` + p.name + `"`)
		if p.filename != nil {
			buf.WriteString(`; filename="` + *p.filename + `"`)
		}
		buf.WriteString("\r\n")
		if p.contentType != "" {
			buf.WriteString("Content-Type: " + p.contentType + "\r\n")
		}
		buf.WriteString("\r\n")
		buf.Write(p.body)
		buf.WriteString("\r\n")
	}
	buf.WriteString("--" + boundary + "--\r\n")
	return buf.Bytes()
}

func strPtr(s string) *string { return &s }

func TestParse_BinaryRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, n := range []int{0, 1, 255, 4096, 65537} {
		payload := make([]byte, n)
		_, _ = rng.Read(payload)
		// make sure CR/LF and NUL bytes appear in the payload
		if n > 4 {
			copy(payload, []byte{'\r', '\n', 0x00, 0xff})
		}
		boundary := "----shipmentboundary7MA4YWxkTrZu0gW"
		body := buildBody(boundary,
			testPart{name: "recipientSignatureName", body: []byte("John Doe")},
			testPart{name: "file", filename: strPtr("proof.jpg"), contentType: "image/jpeg", body: payload},
		)

		form, err := Parse("multipart/form-data; boundary="+boundary, body)
		require.NoError(t, err)
		assert.Equal(t, "John Doe", form.Field("recipientSignatureName"))
		require.NotNil(t, form.File)
		assert.Equal(t, n, form.File.Size)
		assert.True(t, bytes.Equal(payload, form.File.Bytes), "payload of %d bytes differs", n)
		assert.Equal(t, "proof.jpg", form.File.OriginalName)
		assert.Equal(t, "image/jpeg", form.File.MimeType)
	}
}

func TestParse_LFFramedBinaryKeepsEmbeddedCRLF(t *testing.T) {
	payload := []byte("PNG\r\n\r\nbinary-tail")
	body := []byte("--b\n" +
		"Content-Disposition: form-data; name=\"recipientSignatureName\"\n\n" +
		"John Doe\n" +
		"--b\n" +
		"Content-Disposition: form-data; name=\"file\"; filename=\"proof.png\"\n" +
		"Content-Type: image/png\n\n" +
		string(payload) + "\n" +
		"--b--\n")

	form, err := Parse("multipart/form-data; boundary=b", body)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", form.Field("recipientSignatureName"))
	require.NotNil(t, form.File)
	assert.Equal(t, payload, form.File.Bytes)
	assert.Equal(t, len(payload), form.File.Size)
	assert.Equal(t, "image/png", form.File.MimeType)
}

func TestParse_QuotedBoundary(t *testing.T) {
	boundary := "abc;def"
	body := buildBody(boundary, testPart{name: "note", body: []byte("hello")})

	form, err := Parse(`multipart/form-data; charset=utf-8; boundary="abc;def"`, body)
	require.NoError(t, err)
	assert.Equal(t, "hello", form.Field("note"))
	assert.Nil(t, form.File)
}

func TestParse_MissingBoundary(t *testing.T) {
	_, err := Parse("multipart/form-data", []byte("anything"))
	require.ErrorIs(t, err, ErrMalformedRequest)

	_, err = Parse(`multipart/form-data; boundary=""`, []byte("anything"))
	require.ErrorIs(t, err, ErrMalformedRequest)
}

func TestParse_NonMultipartIsEmpty(t *testing.T) {
	for _, ct := range []string{"", "application/json", "text/plain; boundary=x"} {
		form, err := Parse(ct, []byte(`{"a":1}`))
		require.NoError(t, err)
		assert.Empty(t, form.Fields)
		assert.Nil(t, form.File)
	}
}

func TestParse_LastFileWins(t *testing.T) {
	boundary := "b0undary"
	body := buildBody(boundary,
		testPart{name: "file", filename: strPtr("first.png"), body: []byte("first")},
		testPart{name: "file", filename: strPtr("second.png"), body: []byte("second")},
	)
	form, err := Parse("multipart/form-data; boundary="+boundary, body)
	require.NoError(t, err)
	require.NotNil(t, form.File)
	assert.Equal(t, "second.png", form.File.OriginalName)
	assert.Equal(t, []byte("second"), form.File.Bytes)
}

func TestParse_EmptyFilenameFallsBack(t *testing.T) {
	boundary := "b0undary"
	body := buildBody(boundary, testPart{name: "file", filename: strPtr(""), body: []byte{1, 2, 3}})
	form, err := Parse("multipart/form-data; boundary="+boundary, body)
	require.NoError(t, err)
	require.NotNil(t, form.File)
	assert.Equal(t, FallbackFilename, form.File.OriginalName)
	assert.Equal(t, DefaultMimeType, form.File.MimeType)
	assert.Equal(t, 3, form.File.Size)
}

func TestParse_CaseInsensitiveHeaders(t *testing.T) {
	body := []byte("--xyz\r\ncontent-disposition: form-data; NAME=\"city\"\r\n\r\nOslo\r\n--xyz--")
	form, err := Parse("Multipart/Form-Data; Boundary=xyz", body)
	require.NoError(t, err)
	assert.Equal(t, "Oslo", form.Field("city"))
}
