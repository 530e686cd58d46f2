// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"reflect"
	"testing"
)

// TestStringSourceMultiline snippets of text from a multiline source.
func TestStringSourceMultiline(t *testing.T) {
	source := NewStringSource("hello\nworld\nmy\nbub\n", "four-line-test")
	if str, found := source.Snippet(1); !found || str != "hello" {
		t.Errorf(`got "%v", wanted "hello"`, str)
	}
	if str2, found := source.Snippet(2); !found || str2 != "world" {
		t.Errorf(`got "%v", wanted "world"`, str2)
	}
	if str3, found := source.Snippet(3); !found || str3 != "my" {
		t.Errorf(`got "%v", wanted "my"`, str3)
	}
	if str4, found := source.Snippet(4); !found || str4 != "bub" {
		t.Errorf(`got "%v", wanted "bub"`, str4)
	}
	if str5, found := source.Snippet(5); !found || str5 != "" {
		t.Errorf(`got "%v", wanted ""`, str5)
	}
}

// TestStringSourceSingleline snippet from a single line source.
func TestStringSourceSingleline(t *testing.T) {
	source := NewStringSource("hello, world", "one-line-test")
	if str, found := source.Snippet(1); !found || str != "hello, world" {
		t.Errorf(`got "%v", wanted "hello, world"`, str)
	}
	if str2, found := source.Snippet(2); found || str2 != "" {
		t.Error("found line 2 in a one-line source")
	}
}

// TestStringSourceEmptyline snippet of text from an empty source.
func TestStringSourceEmptyline(t *testing.T) {
	source := NewTextSource("")
	if offsets := source.LineOffsets(); !reflect.DeepEqual(offsets, []int32{1}) {
		t.Errorf("got offsets %v, wanted [1]", offsets)
	}
	if str, found := source.Snippet(1); found || str != "" {
		t.Errorf(`got "%v", wanted ""`, str)
	}
}

// TestStringSourceLocationConversion between offsets and line/column values.
func TestStringSourceLocationConversion(t *testing.T) {
	contents := "c.d &&\n\t b.c.arg(10) &&\n\t test(10)"
	source := NewStringSource(contents, "offset-test")
	tests := []struct {
		loc    Location
		offset int32
	}{
		{loc: NewLocation(1, 2), offset: 2},
		{loc: NewLocation(2, 4), offset: 11},
		{loc: NewLocation(3, 2), offset: 26},
	}
	for _, tst := range tests {
		tc := tst
		offset, found := source.LocationOffset(tc.loc)
		if !found {
			t.Fatalf("LocationOffset(%v) not found", tc.loc)
		}
		if offset != tc.offset {
			t.Errorf("LocationOffset(%v) got %d, wanted %d", tc.loc, offset, tc.offset)
		}
		loc, found := source.OffsetLocation(tc.offset)
		if !found {
			t.Fatalf("OffsetLocation(%d) not found", tc.offset)
		}
		if loc.Line() != tc.loc.Line() || loc.Column() != tc.loc.Column() {
			t.Errorf("OffsetLocation(%d) got %d:%d, wanted %d:%d",
				tc.offset, loc.Line(), loc.Column(), tc.loc.Line(), tc.loc.Column())
		}
	}
}

// TestStringSourceUnknownLocation ensures unknown lines report no location.
func TestStringSourceUnknownLocation(t *testing.T) {
	contents := "a.b.c"
	source := NewStringSource(contents, "unknown-location")
	if _, found := source.LocationOffset(NewLocation(2, 0)); found {
		t.Error("LocationOffset() found a location for a non-existent line")
	}
}

// TestStringSourceCodePointContent verifies that multi-byte characters are
// addressed by code point rather than by byte.
func TestStringSourceCodePointContent(t *testing.T) {
	contents := "a < 'ӧ'\nb < '\U0001F642'"
	source := NewStringSource(contents, "code-points")
	if source.Content() != contents {
		t.Errorf("Content() got %q, wanted %q", source.Content(), contents)
	}
	if offsets := source.LineOffsets(); !reflect.DeepEqual(offsets, []int32{8, 16}) {
		t.Errorf("LineOffsets() got %v, wanted [8 16]", offsets)
	}
	if snippet, found := source.Snippet(2); !found || snippet != "b < '\U0001F642'" {
		t.Errorf("Snippet(2) got %q", snippet)
	}
}
