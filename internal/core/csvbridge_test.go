package core

import (
	"errors"
	"strings"
	"testing"
)

func TestEachLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []sourceLine
	}{
		{
			name:  "mixed terminators",
			input: "a\r\nb\nc",
			want: []sourceLine{
				{Number: 1, Text: "a", Terminator: "\r\n"},
				{Number: 2, Text: "b", Terminator: "\n"},
				{Number: 3, Text: "c", Terminator: ""},
			},
		},
		{
			name:  "classic mac",
			input: "R1,a,b\rR2,c,d\r",
			want: []sourceLine{
				{Number: 1, Text: "R1,a,b", Terminator: "\r"},
				{Number: 2, Text: "R2,c,d", Terminator: "\r"},
			},
		},
		{
			name:  "blank line between carriage returns",
			input: "a\r\rb\n",
			want: []sourceLine{
				{Number: 1, Text: "a", Terminator: "\r"},
				{Number: 2, Text: "", Terminator: "\r"},
				{Number: 3, Text: "b", Terminator: "\n"},
			},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []sourceLine
			err := eachLine(strings.NewReader(tt.input), func(l sourceLine) error {
				got = append(got, l)
				return nil
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("got %d lines %+v, want %d", len(got), got, len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEachLine_StopsOnError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := eachLine(strings.NewReader("a\nb\nc\n"), func(sourceLine) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("err = %v, want stop", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestReadFirstDataLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"crlf", "Ref,Part,Type\r\nR1,10k\r\n", "Ref,Part,Type"},
		{"bom", "\xEF\xBB\xBFRef,Part\n", "Ref,Part"},
		{"single unterminated", "only", "only"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestFile(t, t.TempDir(), "f.csv", tt.content)

			got, err := ReadFirstDataLine(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadFirstDataLine_Missing(t *testing.T) {
	_, err := ReadFirstDataLine("/nonexistent/f.csv")

	var fe *FileError
	if !errors.As(err, &fe) {
		t.Errorf("err = %v, want *FileError", err)
	}
}

func TestMarkColumns(t *testing.T) {
	tests := []struct {
		line string
		sep  string
		want string
	}{
		{"a,b,c", ",", "a(1),b(2),c(3)"},
		{"a;b", ";", "a(1),b(2)"},
		{"a\tb", "\t", "a(1),b(2)"},
		{"", ",", "(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := MarkColumns(tt.line, tt.sep); got != tt.want {
				t.Errorf("MarkColumns(%q, %q) = %q, want %q", tt.line, tt.sep, got, tt.want)
			}
		})
	}
}
