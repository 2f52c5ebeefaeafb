package lint

import (
	"fmt"
	"sort"
	"strings"
)

const (
	maxSuggestDistance = 2
	maxSuggestions     = 3
)

// Suggest returns up to three candidate names within the fixed edit distance
// of name, alphabetical; nil when nothing is close enough. Only the nearest
// tier is kept: при наличии кандидата в одной перестановке дальние имена
// лишь шумят. Deterministic and side-effect free; shared by the
// undefined-variable, undefined-function, undefined-macro and unknown-keyword
// diagnostics.
func Suggest(name string, pool []string) []string {
	type scored struct {
		name string
		dist int
	}
	var hits []scored
	for _, cand := range pool {
		if cand == name {
			continue
		}
		d := editDistance(name, cand)
		if d <= maxSuggestDistance {
			hits = append(hits, scored{name: cand, dist: d})
		}
	}
	if len(hits) == 0 {
		return nil
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].name < hits[j].name
	})
	best := hits[0].dist
	out := make([]string, 0, maxSuggestions)
	for _, h := range hits {
		if h.dist > best || len(out) == maxSuggestions {
			break
		}
		out = append(out, h.name)
	}
	return out
}

// withSuggestions appends a "did you mean" tail to a message.
func withSuggestions(msg, name string, pool []string) string {
	hits := Suggest(name, pool)
	if len(hits) == 0 {
		return msg
	}
	quoted := make([]string, len(hits))
	for i, h := range hits {
		quoted[i] = fmt.Sprintf("%q", h)
	}
	return fmt.Sprintf("%s (did you mean %s?)", msg, strings.Join(quoted, ", "))
}

// editDistance — расстояние Дамерау—Левенштейна (вариант OSA): вставка,
// удаление, замена и перестановка соседних рун стоят по единице. Перестановка
// нужна, чтобы самая частая опечатка ("lenght") находила оригинал раньше
// случайных соседей. DP по трём строкам, без полной матрицы.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				curr[j] = min(curr[j], prev2[j-2]+1)
			}
		}
		prev2, prev, curr = prev, curr, prev2
	}
	return prev[len(rb)]
}
