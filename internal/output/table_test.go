package output

import (
	"strings"
	"testing"
)

func TestVisualLen_PlainText(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"scanner", 7},
		{"", 0},
		{"my project", 10},
	}

	for _, tc := range tests {
		got := visualLen(tc.input)
		if got != tc.want {
			t.Errorf("visualLen(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestVisualLen_StripsANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{
			name:  "bold",
			input: "\x1b[1mmain\x1b[0m",
			want:  4,
		},
		{
			name:  "color",
			input: "\x1b[31mdirty\x1b[0m",
			want:  5,
		},
		{
			name:  "multiple sequences",
			input: "\x1b[1m\x1b[34mno remote\x1b[0m",
			want:  9,
		},
		{
			name:  "no ansi",
			input: "plain text",
			want:  10,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := visualLen(tc.input)
			if got != tc.want {
				t.Errorf("visualLen() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  int // expected length of output
	}{
		{"needs padding", "hi", 10, 10},
		{"exact width", "hello", 5, 5},
		{"over width", "toolong", 3, 7}, // no truncation
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := pad(tc.input, tc.width)
			if len(got) != tc.want {
				t.Errorf("pad(%q, %d) len = %d, want %d", tc.input, tc.width, len(got), tc.want)
			}
		})
	}
}

func TestTable_Render(t *testing.T) {
	// Disable color so we get predictable output.
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Project", "Branch")
	tbl.AddRow("webapp", "main")
	tbl.AddRow("data-pipeline", "develop")

	output := tbl.Render()

	if !strings.Contains(output, "Project") {
		t.Error("expected header 'Project' in output")
	}
	if !strings.Contains(output, "Branch") {
		t.Error("expected header 'Branch' in output")
	}

	if !strings.Contains(output, "webapp") {
		t.Error("expected 'webapp' in output")
	}
	if !strings.Contains(output, "data-pipeline") {
		t.Error("expected 'data-pipeline' in output")
	}

	if !strings.Contains(output, "─") {
		t.Error("expected separator character in output")
	}

	// Header + separator + 2 data rows = 4 lines.
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("expected 4 lines, got %d", len(lines))
	}
}

func TestTable_EmptyHeaders(t *testing.T) {
	tbl := NewTable()
	output := tbl.Render()
	if output != "" {
		t.Errorf("expected empty output for empty table, got %q", output)
	}
}

func TestTable_ColumnWidths(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("N", "LongHeader")
	tbl.AddRow("VeryLongProjectName", "X")

	output := tbl.Render()
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	// The first column must be wide enough for the longest cell, so the
	// second header should start after it on every line.
	idx := strings.Index(lines[0], "LongHeader")
	if idx < len("VeryLongProjectName") {
		t.Errorf("second column starts at %d, want >= %d", idx, len("VeryLongProjectName"))
	}
}

func TestTable_ShortRow(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("A", "B", "C")
	tbl.AddRow("only")

	output := tbl.Render()
	if !strings.Contains(output, "only") {
		t.Error("expected short row value in output")
	}
}
