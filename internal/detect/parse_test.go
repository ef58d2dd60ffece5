package detect

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			name: "bare object",
			in:   `{"faces":[]}`,
			want: `{"faces":[]}`,
			ok:   true,
		},
		{
			name: "wrapped in prose",
			in:   "Here is the result:\n{\"faces\":[{\"description\":\"a man\",\"position\":\"left\"}]}\nHope that helps!",
			want: `{"faces":[{"description":"a man","position":"left"}]}`,
			ok:   true,
		},
		{
			name: "markdown fence",
			in:   "```json\n{\"faces\": []}\n```",
			want: `{"faces": []}`,
			ok:   true,
		},
		{
			name: "braces inside strings",
			in:   `{"description":"wearing a {hooded} jacket"}`,
			want: `{"description":"wearing a {hooded} jacket"}`,
			ok:   true,
		},
		{
			name: "escaped quote inside string",
			in:   `{"description":"scar shaped like \"}\" on cheek"}`,
			want: `{"description":"scar shaped like \"}\" on cheek"}`,
			ok:   true,
		},
		{
			name: "nested objects",
			in:   `prefix {"a":{"b":{"c":1}}} suffix`,
			want: `{"a":{"b":{"c":1}}}`,
			ok:   true,
		},
		{
			name: "no object",
			in:   "I could not detect any faces in this image.",
			ok:   false,
		},
		{
			name: "unterminated object",
			in:   `{"faces":[`,
			ok:   false,
		},
		{
			name: "empty input",
			in:   "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFirstInt(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"bare number", "85", 85},
		{"number with prose", "The match probability is 72 out of 100.", 72},
		{"leading whitespace", "  \n 40", 40},
		{"zero", "0", 0},
		{"hundred", "100", 100},
		{"above hundred clamps", "250", 100},
		{"huge digit run clamps", "99999", 100},
		{"no digits", "I cannot determine a match.", 0},
		{"empty", "", 0},
		{"percent suffix", "85%", 85},
		{"first of several", "between 60 and 70", 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstInt(tt.in); got != tt.want {
				t.Fatalf("FirstInt(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
