package services

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/m3ux/internal/shared"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultEncoding is assumed for text that is not valid UTF-8.
const DefaultEncoding = "windows-1252"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var charmaps = map[string]*charmap.Charmap{
	"windows1250": charmap.Windows1250,
	"windows1251": charmap.Windows1251,
	"windows1252": charmap.Windows1252,
	"windows1253": charmap.Windows1253,
	"windows1254": charmap.Windows1254,
	"windows1255": charmap.Windows1255,
	"windows1256": charmap.Windows1256,
	"windows1257": charmap.Windows1257,
	"windows1258": charmap.Windows1258,
	"iso88591":    charmap.ISO8859_1,
	"latin1":      charmap.ISO8859_1,
	"iso88592":    charmap.ISO8859_2,
	"iso88595":    charmap.ISO8859_5,
	"iso88597":    charmap.ISO8859_7,
	"iso88599":    charmap.ISO8859_9,
	"iso885915":   charmap.ISO8859_15,
	"koi8r":       charmap.KOI8R,
	"koi8u":       charmap.KOI8U,
	"cp437":       charmap.CodePage437,
	"cp850":       charmap.CodePage850,
	"macintosh":   charmap.Macintosh,
}

// LookupCharmap resolves a charset name such as "windows-1252", "ISO_8859-1"
// or "latin1". An empty name selects [DefaultEncoding].
func LookupCharmap(name string) (*charmap.Charmap, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultEncoding
	}

	key := strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		}
		return r
	}, strings.ToLower(name))

	cm, ok := charmaps[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownEncoding, name)
	}
	return cm, nil
}

// Decode turns raw playlist bytes into NFC-normalized UTF-8 text.
//
// A UTF-8 byte order mark is dropped. Bytes that are not valid UTF-8 are
// decoded with the named single-byte charset.
func Decode(data []byte, encoding string) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		cm, err := LookupCharmap(encoding)
		if err != nil {
			return "", err
		}

		decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), cm.NewDecoder()))
		if err != nil {
			return "", fmt.Errorf("failed to decode %s text: %w", encoding, err)
		}
		data = decoded
	}

	return norm.NFC.String(string(data)), nil
}
