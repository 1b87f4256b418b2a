package dataurl_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/KaramelBytes/folio-cli/internal/dataurl"
)

func TestEncodeBytesUsesExtensionMediaType(t *testing.T) {
	got := dataurl.EncodeBytes("notes.txt", []byte("hello"))
	if got != "data:text/plain;base64,aGVsbG8=" {
		t.Fatalf("unexpected data URL: %q", got)
	}
}

func TestEncodeBytesSniffsContentWithoutExtension(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	got := dataurl.EncodeBytes("image", png)
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Fatalf("expected image/png header, got %q", got)
	}
}

func TestEncodeBytesEmptyFallsBackToOctetStream(t *testing.T) {
	got := dataurl.EncodeBytes("blob", nil)
	if got != "data:application/octet-stream;base64," {
		t.Fatalf("unexpected data URL: %q", got)
	}
}

func TestEncodeReadFailure(t *testing.T) {
	boom := errors.New("disk gone")
	_, err := dataurl.Encode("a.bin", iotest.ErrReader(boom))
	var fre *dataurl.FileReadError
	if !errors.As(err, &fre) {
		t.Fatalf("expected FileReadError, got %v", err)
	}
	if fre.Name != "a.bin" || !errors.Is(err, boom) {
		t.Fatalf("unexpected error contents: %+v", fre)
	}
}

func TestEncodeFileMissing(t *testing.T) {
	_, err := dataurl.EncodeFile(filepath.Join(t.TempDir(), "nope.txt"))
	var fre *dataurl.FileReadError
	if !errors.As(err, &fre) {
		t.Fatalf("expected FileReadError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist cause, got %v", err)
	}
}

func TestStripHeader(t *testing.T) {
	cases := map[string]string{
		"data:text/plain;base64,aGVsbG8=": "aGVsbG8=",
		"aGVsbG8=":                        "aGVsbG8=",
		"data:;base64,":                   "",
	}
	for in, want := range cases {
		if got := dataurl.StripHeader(in); got != want {
			t.Errorf("StripHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte("# Title\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	payload, err := dataurl.EncodeFile(path)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	mt, data, err := dataurl.Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(data) != "# Title\n" {
		t.Fatalf("unexpected bytes: %q", data)
	}
	if mt == "" {
		t.Fatalf("expected a media type")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, _, err := dataurl.Decode("hello"); err == nil {
		t.Fatalf("expected error for non data URL")
	}
	if _, _, err := dataurl.Decode("data:text/plain;base64,@@@"); err == nil {
		t.Fatalf("expected base64 error")
	}
}

func TestDecodePlainPayload(t *testing.T) {
	mt, data, err := dataurl.Decode("data:,hello%20world")
	if err != nil {
		t.Fatal(err)
	}
	if mt != "text/plain" || string(data) != "hello world" {
		t.Fatalf("got %q %q", mt, data)
	}
}
