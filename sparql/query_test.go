// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package sparql

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/cityres/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *search.Spec {
	t.Helper()

	spec, err := search.Parse(raw)
	require.NoError(t, err)

	return spec
}

func TestBuildQuery(t *testing.T) {
	spec := mustParse(t, "Noosa;-26.3765921,153.0343404,-26.5340226,153.1197593")

	expected := `PREFIX dbo: <http://dbpedia.org/ontology/>
PREFIX geo: <http://www.w3.org/2003/01/geo/wgs84_pos#>

SELECT DISTINCT ?uri WHERE {
    { ?uri a dbo:City . } UNION { ?uri a dbo:Town . }
    ?uri geo:lat ?lat .
    ?uri geo:long ?long .
    FILTER (?lat < -26.3765921 && ?lat > -26.5340226 && ?long > 153.0343404 && ?long < 153.1197593)
}
`

	if diff := cmp.Diff(expected, BuildQuery(spec)); diff != "" {
		t.Errorf("query mismatch (-expected +got):\n%s", diff)
	}
}

func TestBuildQueryIsDeterministic(t *testing.T) {
	spec := mustParse(t, "Bali;0,1,2,3")
	assert.Equal(t, BuildQuery(spec), BuildQuery(spec))
}

func TestBuildQueryBoxOrientation(t *testing.T) {
	// north and south, west and east are never swapped
	spec := mustParse(t, "Bali;0,1,2,3")
	q := BuildQuery(spec)

	assert.Contains(t, q, "?lat < 0 && ?lat > 2 && ?long > 1 && ?long < 3")
}

func TestQueryBuilderTypes(t *testing.T) {
	spec := mustParse(t, "Montreal;45.7,-74,45.4,-73.4")

	tests := []struct {
		name    string
		types   []string
		want    string
		notWant string
	}{
		{
			name:    "single type has no union",
			types:   []string{"dbo:City"},
			want:    "    ?uri a dbo:City .\n",
			notWant: "UNION",
		},
		{
			name:  "full iris",
			types: []string{"<http://dbpedia.org/ontology/City>", "<http://dbpedia.org/ontology/Village>"},
			want:  "{ ?uri a <http://dbpedia.org/ontology/City> . } UNION { ?uri a <http://dbpedia.org/ontology/Village> . }",
		},
		{
			name:  "default when empty",
			types: nil,
			want:  "{ ?uri a dbo:City . } UNION { ?uri a dbo:Town . }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QueryBuilder{Types: tt.types}.Build(spec)
			assert.Contains(t, q, tt.want)

			if tt.notWant != "" {
				assert.NotContains(t, q, tt.notWant)
			}

			assert.True(t, strings.HasSuffix(q, "}\n"))
		})
	}
}

func TestParseCandidates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "header and blanks dropped", input: "header\nA\n\nB\n", want: []string{"A", "B"}},
		{name: "empty input", input: "", want: []string{}},
		{name: "header only", input: "uri\n", want: []string{}},
		{name: "header without newline", input: "uri", want: []string{}},
		{
			name:  "quoted values kept",
			input: "\"uri\"\n\"http://dbpedia.org/resource/Montreal\"\n",
			want:  []string{"\"http://dbpedia.org/resource/Montreal\""},
		},
		{
			name:  "order and duplicates kept",
			input: "uri\nB\nA\nB",
			want:  []string{"B", "A", "B"},
		},
		{
			name:  "whitespace is not trimmed",
			input: "uri\n A \n",
			want:  []string{" A "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseCandidates(tt.input)); diff != "" {
				t.Errorf("ParseCandidates(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}
