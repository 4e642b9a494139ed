// Package ingest turns raw upload bytes into parsed feedback rows:
// encoding detection, CSV parsing and column-role inference.
package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"feedback-service/internal/models"

	"golang.org/x/text/encoding/simplifiedchinese"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText decodes upload bytes by trying candidate encodings in order:
// UTF-8 (with or without BOM) first, then GB18030, which is a superset of
// GBK and GB2312 and covers the legacy exports we see. The first
// candidate that decodes cleanly wins; if none does, models.ErrEncoding.
func DecodeText(raw []byte) (string, error) {
	trimmed := bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(trimmed) {
		return string(trimmed), nil
	}

	decoded, err := simplifiedchinese.GB18030.NewDecoder().Bytes(raw)
	// The decoder substitutes U+FFFD for undecodable bytes instead of
	// failing, so a replacement rune in the output means the candidate
	// did not actually fit.
	if err == nil && !strings.ContainsRune(string(decoded), utf8.RuneError) {
		return string(decoded), nil
	}

	return "", fmt.Errorf("%w (tried UTF-8, GB18030)", models.ErrEncoding)
}
