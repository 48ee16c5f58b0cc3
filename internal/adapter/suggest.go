package adapter

import (
	"math"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// nameSimilarity 名称相似度 0-1，忽略大小写
func nameSimilarity(name1, name2 string) float64 {
	n1 := strings.ToLower(strings.TrimSpace(name1))
	n2 := strings.ToLower(strings.TrimSpace(name2))

	if n1 == n2 {
		return 1.0
	}

	maxLen := math.Max(float64(len([]rune(n1))), float64(len([]rune(n2))))
	if maxLen == 0 {
		return 0
	}

	distance := levenshtein.DistanceForStrings([]rune(n1), []rune(n2), levenshtein.DefaultOptions)
	similarity := 1.0 - float64(distance)/maxLen

	// 替换代价为 2，距离可能超过 maxLen
	if similarity < 0 {
		return 0
	}
	return similarity
}

// suggest 返回最相近的候选名称，没有足够相似的返回空字符串
func suggest(name string, candidates []string) string {
	best := ""
	bestScore := 0.5
	for _, c := range candidates {
		if score := nameSimilarity(name, c); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}
