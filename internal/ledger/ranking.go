package ledger

import (
	"sort"
	"strings"
	"unicode/utf8"

	"alibi-backend/internal/model"
)

// Favorite bonuses differ between the two categories on purpose; do not
// unify without product input.
const (
	excuseFavoriteBonus  = 3
	apologyFavoriteBonus = 2
)

// strongToneWords mark strong sincerity (+2); softToneWords mark a plain
// apologetic register (+1). Both are case-insensitive substring matches and
// the bonuses stack.
var (
	strongToneWords = []string{"deeply", "sincerely", "truly", "heartfelt"}
	softToneWords   = []string{"sorry", "apologize", "regret", "mistake"}
)

// Score computes the composite score for one ledger record.
func Score(cat model.Category, text string, rec model.ScoreRecord) int {
	if cat == model.Excuse {
		score := rec.Count + rec.UrgencyScore
		if rec.Favorited {
			score += excuseFavoriteBonus
		}
		return score
	}

	score := rec.Count + toneBonus(text) + lengthBonus(text)
	if rec.Favorited {
		score += apologyFavoriteBonus
	}
	if rec.Count > 0 {
		score++ // recency bonus
	}
	return score
}

func toneBonus(text string) int {
	lower := strings.ToLower(text)
	bonus := 0
	for _, w := range strongToneWords {
		if strings.Contains(lower, w) {
			bonus += 2
			break
		}
	}
	for _, w := range softToneWords {
		if strings.Contains(lower, w) {
			bonus++
			break
		}
	}
	return bonus
}

func lengthBonus(text string) int {
	bonus := utf8.RuneCountInString(text) / 100
	if bonus > 3 {
		bonus = 3
	}
	return bonus
}

// Rank orders a ledger snapshot by score descending. Ties break by count
// descending, then by text ascending, so the order is deterministic no
// matter how the snapshot map iterates.
func Rank(cat model.Category, scores map[string]model.ScoreRecord) []model.RankedText {
	ranked := make([]model.RankedText, 0, len(scores))
	for text, rec := range scores {
		ranked = append(ranked, model.RankedText{
			Text:      text,
			Score:     Score(cat, text, rec),
			Count:     rec.Count,
			Favorited: rec.Favorited,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Text < ranked[j].Text
	})
	return ranked
}
