package remap

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRemap_TargetIsIdentity(t *testing.T) {
	inputs := []string{
		"",
		"hello world",
		"aÁz",
		"árvíztűrő tükörfúrógép",
		"line one\nline two\ttab",
		strings.Repeat("ő", 1000),
	}

	for _, in := range inputs {
		if got := Hungarian.Remap(in, Target); got != in {
			t.Errorf("Remap(%q, Target) = %q, want unchanged", in, got)
		}
	}
}

func TestRemap_Secondary(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "example scenario", in: "aÁz", want: `a"y`},
		{name: "y z swap", in: "zY", want: "yZ"},
		{name: "accented lowercase", in: "öüóőúéáű", want: `0-=[];'\`},
		{name: "accented uppercase", in: "ÖÜÓŐÚÉÁŰ", want: `)_+{}:"|`},
		{name: "shifted number row", in: `§'"+!%/=()`, want: "~!@#$%^&*("},
		{name: "punctuation", in: "-?:_,.", want: "/<>?,."},
		{name: "zero", in: "0", want: "`"},
		{name: "plain word", in: "pizza", want: "piyya"},
		{name: "whitespace passes through", in: "a b\nc\td", want: "a b\nc\td"},
		{name: "unmapped letters pass through", in: "íÍ€ß", want: "íÍ€ß"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Hungarian.Remap(tt.in, Secondary); got != tt.want {
				t.Errorf("Remap(%q, Secondary) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHungarian_TotalCoverage(t *testing.T) {
	for _, e := range Hungarian.Entries() {
		got := Hungarian.Remap(string(e.From), Secondary)
		if utf8.RuneCountInString(got) < 1 {
			t.Errorf("Remap(%q) produced empty output", e.From)
		}
		if got != e.To {
			t.Errorf("Remap(%q) = %q, want %q", e.From, got, e.To)
		}
	}
}

func TestHungarian_ZIsSwapped(t *testing.T) {
	to, ok := Hungarian.Lookup('z')
	if !ok {
		t.Fatal("z missing from table")
	}
	if to != "y" {
		t.Errorf("z maps to %q, want %q", to, "y")
	}
}

func TestRemap_UnmappedPassthrough(t *testing.T) {
	for _, r := range "íÍ€ßøæ@#[]{}\\|~^&*<>;" {
		if _, ok := Hungarian.Lookup(r); ok {
			continue
		}
		in := "a" + string(r) + "b"
		got := Hungarian.Remap(in, Secondary)
		if !strings.ContainsRune(got, r) {
			t.Errorf("Remap(%q) = %q, unmapped %q was dropped", in, got, r)
		}
	}
}

func TestNewTable_RejectsDuplicateKeys(t *testing.T) {
	_, err := NewTable([]Entry{
		{From: 'z', To: "y"},
		{From: 'a', To: "a"},
		{From: 'z', To: "z"},
	})
	if err == nil {
		t.Fatal("NewTable() should reject duplicate keys")
	}

	var dup *DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("NewTable() error = %T, want *DuplicateKeyError", err)
	}
	if dup.Key != 'z' || dup.First != "y" || dup.Second != "z" {
		t.Errorf("DuplicateKeyError = %+v", dup)
	}
}

func TestNewTable_RejectsEmptyValue(t *testing.T) {
	if _, err := NewTable([]Entry{{From: 'a', To: ""}}); err == nil {
		t.Error("NewTable() should reject empty values")
	}
}

func TestMustTable_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustTable() should panic on duplicate keys")
		}
	}()
	MustTable([]Entry{{From: 'x', To: "1"}, {From: 'x', To: "2"}})
}

func TestTable_MultiCharacterValues(t *testing.T) {
	table := MustTable([]Entry{
		{From: 'ß', To: "ss"},
		{From: '→', To: "->"},
	})

	got := table.Remap("aß→b", Secondary)
	if got != "ass->b" {
		t.Errorf("Remap() = %q, want %q", got, "ass->b")
	}
}

func TestTable_Entries_Sorted(t *testing.T) {
	entries := Hungarian.Entries()
	if len(entries) != Hungarian.Len() {
		t.Fatalf("Entries() len = %d, want %d", len(entries), Hungarian.Len())
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].From >= entries[i].From {
			t.Fatalf("Entries() not sorted at %d: %q >= %q", i, entries[i-1].From, entries[i].From)
		}
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		in      string
		want    Source
		wantErr bool
	}{
		{in: "secondary", want: Secondary},
		{in: "target", want: Target},
		{in: " Secondary ", want: Secondary},
		{in: "hu", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseSource(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSource(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSource(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
