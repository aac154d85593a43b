// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

// Package sparql builds the spatial SPARQL query for a search, runs it
// against an endpoint and reads the candidate URIs out of the result.
package sparql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jcodagnone/cityres/search"
)

// Prefixes used by the generated query.
const (
	OntologyNamespace = "http://dbpedia.org/ontology/"
	GeoNamespace      = "http://www.w3.org/2003/01/geo/wgs84_pos#"
)

// DefaultTypes is the set of settlement types a candidate must belong to.
// DBpedia files many cities as dbo:Town only, so both are queried.
var DefaultTypes = []string{"dbo:City", "dbo:Town"}

// QueryBuilder renders the query that selects every typed location inside a
// bounding box.
type QueryBuilder struct {
	// Types are the rdf:type values accepted, as prefixed names or <IRI>s.
	// Empty means DefaultTypes.
	Types []string
}

// Build returns the query text for spec. It does no I/O.
//
// The filter keeps entities with south < lat < north and west < long < east.
func (b QueryBuilder) Build(spec *search.Spec) string {
	types := b.Types
	if len(types) == 0 {
		types = DefaultTypes
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "PREFIX dbo: <%s>\n", OntologyNamespace)
	fmt.Fprintf(&sb, "PREFIX geo: <%s>\n\n", GeoNamespace)
	sb.WriteString("SELECT DISTINCT ?uri WHERE {\n")

	if len(types) == 1 {
		fmt.Fprintf(&sb, "    ?uri a %s .\n", types[0])
	} else {
		blocks := make([]string, len(types))
		for i, t := range types {
			blocks[i] = fmt.Sprintf("{ ?uri a %s . }", t)
		}

		fmt.Fprintf(&sb, "    %s\n", strings.Join(blocks, " UNION "))
	}

	sb.WriteString("    ?uri geo:lat ?lat .\n")
	sb.WriteString("    ?uri geo:long ?long .\n")
	fmt.Fprintf(&sb, "    FILTER (?lat < %s && ?lat > %s && ?long > %s && ?long < %s)\n",
		number(spec.North),
		number(spec.South),
		number(spec.West),
		number(spec.East),
	)
	sb.WriteString("}\n")

	return sb.String()
}

// BuildQuery is Build with the default type set.
func BuildQuery(spec *search.Spec) string {
	return QueryBuilder{}.Build(spec)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
