package format

import (
	"strings"
	"testing"
)

func TestWrite_JSON(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	if err := Write(&b, map[string]any{"data": []int{1, 2}}, "json", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := b.String(); got != `{"data":[1,2]}`+"\n" {
		t.Fatalf("got %q", got)
	}
}

func TestWrite_PrettyJSON(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	if err := Write(&b, map[string]any{"a": 1}, "", true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(b.String(), "\n  \"a\": 1") {
		t.Fatalf("expected indented output; got %q", b.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	if err := Write(&b, nil, "edn", false); err == nil {
		t.Fatalf("expected an error for an unknown format")
	}
}
