package core

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("R1,10k")...),
			expected: "R1,10k",
		},
		{
			name:     "file without BOM",
			input:    []byte("R1,10k"),
			expected: "R1,10k",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM kept",
			input:    []byte{0xEF, 0xBB, 'a'},
			expected: string([]byte{0xEF, 0xBB, 'a'}),
		},
		{
			name:     "BOM only stripped at start",
			input:    append([]byte("a"), 0xEF, 0xBB, 0xBF),
			expected: string(append([]byte("a"), 0xEF, 0xBB, 0xBF)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(NewBOMSkippingReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestStreamingUTF8Sanitizer(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "valid ASCII",
			input:    []byte("C12,100nF"),
			expected: "C12,100nF",
		},
		{
			name:     "valid multibyte",
			input:    []byte("R1,4.7kΩ,±5%"),
			expected: "R1,4.7kΩ,±5%",
		},
		{
			name:     "invalid byte replaced",
			input:    []byte{'1', '0', 0xB5, 'F'},
			expected: "10?F",
		},
		{
			name:     "truncated sequence at EOF",
			input:    []byte{'a', 0xCE},
			expected: "a?",
		},
		{
			name:     "empty input",
			input:    []byte{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(NewStreamingUTF8Sanitizer(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestStreamingUTF8Sanitizer_SplitReads(t *testing.T) {
	input := "Ω±µ,ok"

	// One byte per read splits every multibyte rune across calls.
	got, err := io.ReadAll(NewStreamingUTF8Sanitizer(iotest.OneByteReader(bytes.NewReader([]byte(input)))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != input {
		t.Errorf("got %q, want %q", got, input)
	}
}

func TestCountingReader(t *testing.T) {
	data := []byte("R1,10k\nR2,22k\n")
	cr := NewCountingReader(bytes.NewReader(data))

	if _, err := io.ReadAll(cr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cr.BytesRead != int64(len(data)) {
		t.Errorf("BytesRead = %d, want %d", cr.BytesRead, len(data))
	}
}

func TestWrapForImport(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte{'R', '1', ',', 0xFF, '\n'}...)

	r := wrapForImport(bytes.NewReader(input))
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only the BOM is removed; invalid bytes reach the line parser as is.
	if want := "R1,\xff\n"; string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if r.BytesRead != int64(len(got)) {
		t.Errorf("BytesRead = %d, want %d", r.BytesRead, len(got))
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10k", "10k"},
		{"Ω", "Ω"},
		{"res\xff", "res?"},
		{"\xfe\xff", "??"},
		{"a\xe2\x82", "a??"},
	}

	for _, tt := range tests {
		if got := sanitizeText(tt.in); got != tt.want {
			t.Errorf("sanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
