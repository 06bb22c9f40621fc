package search

import "sort"

// ScoreFusion merges keyword and semantic hit lists by weighted score
// combination. Chunks found by both sources get a weighted sum of their
// similarities; chunks found by one source keep their raw similarity
// unscaled, so single-source hits are not penalized for the other
// source's silence.
type ScoreFusion struct{}

// NewScoreFusion creates a fusion combiner.
func NewScoreFusion() *ScoreFusion {
	return &ScoreFusion{}
}

// Fuse merges the two hit lists into a single ranking sorted by combined
// score descending. Duplicate hits within one list collapse to the
// highest-scoring occurrence. The sort is stable over insertion order
// (keyword hits first, then vector-only hits), so ties resolve
// deterministically.
func (f *ScoreFusion) Fuse(keyword, semantic []Hit, keywordWeight, semanticWeight float64) []*RankedResult {
	merged := make(map[string]*RankedResult, len(keyword)+len(semantic))
	ordered := make([]*RankedResult, 0, len(keyword)+len(semantic))

	getOrCreate := func(h Hit) *RankedResult {
		key := h.DocID + "\x00" + h.ChunkID
		if r, ok := merged[key]; ok {
			return r
		}
		r := &RankedResult{ChunkID: h.ChunkID, DocID: h.DocID}
		merged[key] = r
		ordered = append(ordered, r)
		return r
	}

	for _, h := range keyword {
		r := getOrCreate(h)
		if h.Score > r.KeywordScore {
			r.KeywordScore = h.Score
		}
	}
	for _, h := range semantic {
		r := getOrCreate(h)
		if h.Score > r.SemanticScore {
			r.SemanticScore = h.Score
		}
		if r.KeywordScore > 0 {
			r.InBothLists = true
		}
	}

	for _, r := range ordered {
		switch {
		case r.InBothLists:
			r.Score = r.SemanticScore*semanticWeight + r.KeywordScore*keywordWeight
		case r.SemanticScore > 0:
			r.Score = r.SemanticScore
		default:
			r.Score = r.KeywordScore
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})
	return ordered
}
