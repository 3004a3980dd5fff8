package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// sourceLine is one physical line of a delimited file.
type sourceLine struct {
	Number     int    // 1-indexed
	Text       string // without terminator
	Terminator string // "\n", "\r\n", "\r" or "" for an unterminated last line
}

// blank reports whether the line holds nothing but whitespace.
func (l sourceLine) blank() bool {
	return strings.TrimSpace(l.Text) == ""
}

// eachLine calls fn for every line of r, stopping at the first error fn
// returns. Lines end at "\n", "\r\n" or a lone "\r".
func eachLine(r io.Reader, fn func(sourceLine) error) error {
	br := bufio.NewReader(r)
	for n := 1; ; n++ {
		l, err := readLine(br, n)
		if l.Text != "" || l.Terminator != "" {
			if ferr := fn(l); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read line %d: %w", n, err)
		}
	}
}

// readLine reads up to and including the next terminator.
func readLine(br *bufio.Reader, n int) (sourceLine, error) {
	var text strings.Builder
	for {
		c, err := br.ReadByte()
		if err != nil {
			return sourceLine{Number: n, Text: text.String()}, err
		}
		switch c {
		case '\n':
			return sourceLine{Number: n, Text: text.String(), Terminator: "\n"}, nil
		case '\r':
			next, err := br.Peek(1)
			if err == nil && next[0] == '\n' {
				br.Discard(1) //nolint:errcheck
				return sourceLine{Number: n, Text: text.String(), Terminator: "\r\n"}, nil
			}
			if err != nil && !errors.Is(err, io.EOF) {
				return sourceLine{Number: n, Text: text.String(), Terminator: "\r"}, err
			}
			return sourceLine{Number: n, Text: text.String(), Terminator: "\r"}, nil
		default:
			text.WriteByte(c)
		}
	}
}

// ReadFirstDataLine returns the first line of the file at path with any BOM
// and line terminator removed and invalid UTF-8 bytes replaced by '?'. An
// empty file yields "".
func ReadFirstDataLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &FileError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	var first string
	errStop := errors.New("stop")
	err = eachLine(NewStreamingUTF8Sanitizer(NewBOMSkippingReader(f)), func(l sourceLine) error {
		first = l.Text
		return errStop
	})
	if err != nil && !errors.Is(err, errStop) {
		return "", &FileError{Op: "read", Path: path, Err: err}
	}
	return first, nil
}

// MarkColumns suffixes each field of line with its 1-based position, so a
// user can pick column numbers for the mapping: "a;b" with sep ";" becomes
// "a(1),b(2)". Marked fields are always joined with a comma.
func MarkColumns(line, sep string) string {
	if sep == "" {
		sep = ","
	}
	fields := strings.Split(line, sep)
	for i, f := range fields {
		fields[i] = fmt.Sprintf("%s(%d)", f, i+1)
	}
	return strings.Join(fields, ",")
}
