// Package euckr decodes EUC-KR payloads served by KRX and Naver.
package euckr

import (
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// NewReader wraps r with an EUC-KR to UTF-8 decoder
func NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, korean.EUCKR.NewDecoder())
}

// Decode converts an EUC-KR body to UTF-8.
// Bodies that are already valid UTF-8 with non-ASCII text are returned as is.
func Decode(b []byte) (string, error) {
	if utf8.Valid(b) && hasMultibyte(b) {
		return string(b), nil
	}
	out, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Encode converts UTF-8 text to EUC-KR
func Encode(s string) ([]byte, error) {
	out, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	return out, err
}

func hasMultibyte(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return true
		}
	}
	return false
}
