package domain

import "strings"

// MinKeywordRatio is the weight a keyword must exceed to be kept.
const MinKeywordRatio = 0.3

// StoryText is the published text of one story, as sent to the tagger.
type StoryText struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Text   string `json:"text"`
}

// TagRequest is the payload of one keyword tagging invocation.
type TagRequest struct {
	EditionID int64       `json:"id"`
	Title     string      `json:"title"`
	Author    string      `json:"author"`
	Stories   []StoryText `json:"stories"`
}

// Keyword is one word emitted by the tagging script with its weight.
// Title and author words carry a ratio of 1; body words carry their
// relative frequency.
type Keyword struct {
	Word      string  `json:"word"`
	EditionID int64   `json:"editionId"`
	Ratio     float64 `json:"ratio"`
}

// MergeKeywords drops keywords whose ratio is at or below MinKeywordRatio,
// lowercases the rest and sums the ratios of a word repeated within an
// edition. Words keep the order of their first kept occurrence.
func MergeKeywords(raw []Keyword) []Keyword {
	type key struct {
		word    string
		edition int64
	}
	merged := []Keyword{}
	index := make(map[key]int)
	for _, k := range raw {
		if k.Ratio <= MinKeywordRatio {
			continue
		}
		k.Word = strings.ToLower(k.Word)
		id := key{k.Word, k.EditionID}
		if i, ok := index[id]; ok {
			merged[i].Ratio += k.Ratio
			continue
		}
		index[id] = len(merged)
		merged = append(merged, k)
	}
	return merged
}
