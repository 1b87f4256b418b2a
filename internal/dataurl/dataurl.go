package dataurl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const defaultMediaType = "application/octet-stream"

// FileReadError reports that the bytes of an attachment could not be read.
type FileReadError struct {
	Name string
	Err  error
}

func (e *FileReadError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("read file %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("read file: %v", e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// Encode reads r to the end and returns a base64 data URL of its contents.
// name is only used to pick the media type.
func Encode(name string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", &FileReadError{Name: name, Err: err}
	}
	return EncodeBytes(name, b), nil
}

// EncodeFile reads the file at path and returns it as a data URL.
func EncodeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &FileReadError{Name: filepath.Base(path), Err: err}
	}
	defer f.Close()
	return Encode(filepath.Base(path), f)
}

// EncodeBytes returns data as "data:<media type>;base64,<payload>".
func EncodeBytes(name string, data []byte) string {
	var sb strings.Builder
	sb.WriteString("data:")
	sb.WriteString(MediaType(name, data))
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(data))
	return sb.String()
}

// MediaType guesses a media type from the file extension, then from the
// content itself. Parameters such as charset are dropped.
func MediaType(name string, data []byte) string {
	if ext := filepath.Ext(name); ext != "" {
		if t := bareType(mime.TypeByExtension(ext)); t != "" {
			return t
		}
	}
	if len(data) > 0 {
		if t := bareType(mimetype.Detect(data).String()); t != "" {
			return t
		}
	}
	return defaultMediaType
}

func bareType(v string) string {
	if v == "" {
		return ""
	}
	t, _, err := mime.ParseMediaType(v)
	if err != nil {
		return ""
	}
	return t
}

// StripHeader returns the payload part of a data URL (everything after the
// first comma). Input without a header is returned as is.
func StripHeader(payload string) string {
	if i := strings.IndexByte(payload, ','); i >= 0 {
		return payload[i+1:]
	}
	return payload
}

// Decode parses a data URL and returns its media type and raw bytes.
func Decode(payload string) (string, []byte, error) {
	if !strings.HasPrefix(payload, "data:") {
		return "", nil, errors.New("not a data URL")
	}
	i := strings.IndexByte(payload, ',')
	if i < 0 {
		return "", nil, errors.New("data URL has no payload separator")
	}
	header, body := payload[len("data:"):i], payload[i+1:]
	isBase64 := false
	if strings.HasSuffix(header, ";base64") {
		isBase64 = true
		header = strings.TrimSuffix(header, ";base64")
	}
	mediaType := bareType(header)
	if mediaType == "" {
		mediaType = "text/plain"
	}
	if isBase64 {
		b, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return "", nil, fmt.Errorf("decode base64: %w", err)
		}
		return mediaType, b, nil
	}
	s, err := url.PathUnescape(body)
	if err != nil {
		return "", nil, fmt.Errorf("unescape payload: %w", err)
	}
	return mediaType, []byte(s), nil
}
