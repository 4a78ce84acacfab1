package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names reported by Detect.
const (
	UTF8        = "UTF-8"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1251 = "windows-1251"
	Windows1252 = "windows-1252"
	KOI8R       = "KOI8-R"
	ISO88595    = "ISO-8859-5"
)

const peekSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

var decoders = map[string]encoding.Encoding{
	Windows1251: charmap.Windows1251,
	Windows1252: charmap.Windows1252,
	KOI8R:       charmap.KOI8R,
	ISO88595:    charmap.ISO8859_5,
	UTF16LE:     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	UTF16BE:     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
}

// NewDecodingReader detects the encoding of the input and returns a reader
// that decodes the content to UTF-8, along with the detected charset.
//
// Detection order:
//  1. BOM (UTF-8 BOM is stripped; UTF-16 LE/BE is decoded)
//  2. Valid UTF-8 is returned as-is
//  3. Mostly high-byte letters are treated as a Cyrillic single-byte export
//  4. Heuristic detection via chardet
//  5. Fallback to Windows-1252
func NewDecodingReader(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, peekSize)

	buf, err := br.Peek(peekSize)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	if bytes.HasPrefix(buf, bomUTF8) {
		_, _ = br.Discard(len(bomUTF8))
		return br, UTF8, nil
	}

	sample := buf
	if len(sample) == peekSize {
		sample = trimPartialRune(sample)
	}

	charset := Detect(sample)
	if charset == UTF8 {
		return br, UTF8, nil
	}

	return transform.NewReader(br, decoders[charset].NewDecoder()), charset, nil
}

// Detect guesses the charset of a sample. It never fails; unknown input is
// reported as Windows-1252.
func Detect(sample []byte) string {
	switch {
	case bytes.HasPrefix(sample, bomUTF8):
		return UTF8
	case bytes.HasPrefix(sample, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(sample, bomUTF16BE):
		return UTF16BE
	case utf8.Valid(sample):
		return UTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)

	if looksCyrillic(sample) {
		if err == nil && result.Charset == KOI8R && result.Confidence >= 50 {
			return KOI8R
		}

		return Windows1251
	}

	if err == nil {
		switch result.Charset {
		case "UTF-8":
			return UTF8
		case Windows1251, KOI8R, ISO88595:
			return result.Charset
		case "ISO-8859-1", Windows1252:
			return Windows1252
		}
	}

	return Windows1252
}

// trimPartialRune drops a multi-byte sequence cut off at the end of b.
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		start := len(b) - i
		if !utf8.RuneStart(b[start]) {
			continue
		}

		if !utf8.FullRune(b[start:]) {
			return b[:start]
		}

		return b
	}

	return b
}

// looksCyrillic reports whether most letters in sample are single high
// bytes. Accented Latin text stays mostly ASCII; Cyrillic text does not.
func looksCyrillic(sample []byte) bool {
	var ascii, high int

	for _, b := range sample {
		switch {
		case b >= 0xC0:
			high++
		case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z':
			ascii++
		}
	}

	return high > 0 && high >= ascii
}
