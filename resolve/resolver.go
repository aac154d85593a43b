// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolve picks, among the entities found inside a bounding box, the
// one whose URI looks the most like the searched place name.
package resolve

import (
	"cmp"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// MatchScore is how a candidate compares to the searched name.
type MatchScore struct {
	// SubsequenceLength is the LCS length between name and candidate, higher is better.
	SubsequenceLength int `json:"subsequence_length"`
	// EditDistance is the Levenshtein distance between name and candidate, lower is better.
	EditDistance int `json:"edit_distance"`
}

// Ranked is a candidate with its score.
type Ranked struct {
	Candidate string     `json:"candidate"`
	Score     MatchScore `json:"score"`
}

// LongestCommonSubsequence returns the length of the longest sequence of code
// points present in both a and b in the same order. It is case sensitive and
// does no normalisation.
func LongestCommonSubsequence(a, b string) int {
	x, y := []rune(a), []rune(b)
	if len(x) < len(y) {
		x, y = y, x
	}

	prev := make([]int, len(y)+1)
	cur := make([]int, len(y)+1)

	for i := 1; i <= len(x); i++ {
		for j := 1; j <= len(y); j++ {
			if x[i-1] == y[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}

		prev, cur = cur, prev
	}

	return prev[len(y)]
}

// EditDistance returns the Levenshtein distance between a and b over code points.
func EditDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Score compares name against a raw candidate string.
func Score(name, candidate string) MatchScore {
	return MatchScore{
		SubsequenceLength: LongestCommonSubsequence(name, candidate),
		EditDistance:      EditDistance(name, candidate),
	}
}

func compareRanked(a, b Ranked) int {
	return cmp.Or(
		cmp.Compare(b.Score.SubsequenceLength, a.Score.SubsequenceLength),
		cmp.Compare(a.Score.EditDistance, b.Score.EditDistance),
		strings.Compare(a.Candidate, b.Candidate),
	)
}

// Rank scores every candidate and sorts them best first, in the order Choose
// uses to decide.
func Rank(name string, candidates []string) []Ranked {
	ret := make([]Ranked, len(candidates))
	for i, c := range candidates {
		ret[i] = Ranked{Candidate: c, Score: Score(name, c)}
	}

	slices.SortStableFunc(ret, compareRanked)

	return ret
}

// Choose returns the candidate that best matches name:
//
//  1. keep the candidates with the longest common subsequence with name;
//  2. among those, keep the ones at the smallest edit distance from name;
//  3. among those, take the first in lexical order.
//
// A single candidate is returned as is, without scoring. Choose panics when
// candidates is empty, callers must handle the no-candidate case first.
func Choose(name string, candidates []string) string {
	switch len(candidates) {
	case 0:
		panic("resolve: Choose called without candidates")
	case 1:
		return candidates[0]
	}

	best := -1

	var tied []string

	for _, c := range candidates {
		l := LongestCommonSubsequence(name, c)

		switch {
		case l > best:
			best = l
			tied = append(tied[:0], c)
		case l == best:
			tied = append(tied, c)
		}
	}

	if len(tied) == 1 {
		return tied[0]
	}

	ranked := make([]Ranked, len(tied))
	for i, c := range tied {
		ranked[i] = Ranked{
			Candidate: c,
			Score:     MatchScore{SubsequenceLength: best, EditDistance: EditDistance(name, c)},
		}
	}

	return slices.MinFunc(ranked, compareRanked).Candidate
}
