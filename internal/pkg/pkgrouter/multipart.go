package pkgrouter

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

const maxFormValueBytes = 64 * 1024

// ErrNotMultipart is returned by ReadMultipart for any other content type.
var ErrNotMultipart = errors.New("request is not multipart/form-data")

// FormFile is one uploaded file part, fully read.
type FormFile struct {
	// Filename is the name exactly as the client sent it. Unlike
	// multipart.Part.FileName it is not reduced to its base name, so callers
	// can reject unsafe names instead of silently rewriting them.
	Filename string
	Content  []byte
}

// MultipartForm holds the text fields and file parts of a request.
type MultipartForm struct {
	Values map[string]string
	Files  map[string]FormFile
}

// Value returns the trimmed text field key.
func (f MultipartForm) Value(key string) string {
	return strings.TrimSpace(f.Values[key])
}

// File returns the file part key and whether it was sent.
func (f MultipartForm) File(key string) (FormFile, bool) {
	file, ok := f.Files[key]
	return file, ok
}

// ReadMultipart reads a whole multipart/form-data body of at most maxBytes.
// An oversized body yields an error wrapping *http.MaxBytesError.
func ReadMultipart(r *http.Request, maxBytes int64) (MultipartForm, error) {
	form := MultipartForm{
		Values: make(map[string]string),
		Files:  make(map[string]FormFile),
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || !strings.EqualFold(mediaType, "multipart/form-data") {
		return form, ErrNotMultipart
	}

	if maxBytes > 0 {
		if r.ContentLength > maxBytes {
			return form, fmt.Errorf("read multipart: %w", &http.MaxBytesError{Limit: maxBytes})
		}
		r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	}

	reader, err := r.MultipartReader()
	if err != nil {
		return form, fmt.Errorf("read multipart: %w", err)
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return form, nil
		}
		if err != nil {
			return form, fmt.Errorf("read multipart: %w", err)
		}

		name := part.FormName()
		filename, isFile := rawFilename(part.Header.Get("Content-Disposition"))

		var data []byte
		if isFile {
			data, err = io.ReadAll(part)
		} else {
			data, err = io.ReadAll(io.LimitReader(part, maxFormValueBytes))
		}
		_ = part.Close()
		if err != nil {
			return form, fmt.Errorf("read part %q: %w", name, err)
		}

		if name == "" {
			continue
		}
		if isFile {
			form.Files[name] = FormFile{Filename: filename, Content: data}
			continue
		}
		form.Values[name] = string(data)
	}
}

func rawFilename(disposition string) (string, bool) {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return "", false
	}
	filename, ok := params["filename"]
	return filename, ok
}
