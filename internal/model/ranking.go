package model

import "sort"

// Category identifies one rubric dimension.
type Category string

const (
	CategoryComposition Category = "composition"
	CategoryLighting    Category = "lighting"
	CategoryColor       Category = "color"
	CategoryPose        Category = "pose"
	CategoryCostume     Category = "costume"
)

// Categories returns the rubric dimensions in rubric order.
func Categories() []Category {
	return []Category{CategoryComposition, CategoryLighting, CategoryColor, CategoryPose, CategoryCostume}
}

var categoryLabels = map[Category]string{
	CategoryComposition: "構図・構成",
	CategoryLighting:    "照明・光",
	CategoryColor:       "色彩・トーン",
	CategoryPose:        "ポーズ・配置",
	CategoryCostume:     "衣装・スタイリング",
}

// Label returns the display label of c.
func (c Category) Label() string {
	return categoryLabels[c]
}

// Evaluation returns the evaluation of category c in r.
func (r *AnalysisResult) Evaluation(c Category) CategoryEvaluation {
	switch c {
	case CategoryComposition:
		return r.Composition
	case CategoryLighting:
		return r.Lighting
	case CategoryColor:
		return r.Color
	case CategoryPose:
		return r.Pose
	case CategoryCostume:
		return r.Costume
	}
	return CategoryEvaluation{}
}

// RankedCategory is one entry of the category ranking.
type RankedCategory struct {
	// Rank is 1-based.
	Rank     int
	Category Category
	Label    string
	CategoryEvaluation
}

// RankedCategories returns the five categories of r sorted by score,
// highest first. Ties keep rubric order.
func RankedCategories(r *AnalysisResult) []RankedCategory {
	ranked := make([]RankedCategory, 0, len(Categories()))
	for _, c := range Categories() {
		ranked = append(ranked, RankedCategory{
			Category:           c,
			Label:              c.Label(),
			CategoryEvaluation: r.Evaluation(c),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Tier is the badge tier a score falls into.
type Tier string

const (
	TierExcellent Tier = "excellent" // >= 90
	TierGreat     Tier = "great"     // >= 80
	TierGood      Tier = "good"      // >= 70
	TierFair      Tier = "fair"      // >= 60
	TierPoor      Tier = "poor"
)

// TierFor maps a score to its badge tier.
func TierFor(score int) Tier {
	switch {
	case score >= 90:
		return TierExcellent
	case score >= 80:
		return TierGreat
	case score >= 70:
		return TierGood
	case score >= 60:
		return TierFair
	default:
		return TierPoor
	}
}
