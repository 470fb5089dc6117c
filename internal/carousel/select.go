// Package carousel выбирает и прокручивает состояния в шапке главной страницы.
package carousel

import (
	"math/rand/v2"
	"slices"

	"github.com/SergeiKhy/affiliate-storefront/internal/models"
)

const (
	minSelected = 3
	maxSelected = 5
)

// Rand источник случайности, *rand.Rand из math/rand/v2 подходит
type Rand interface {
	IntN(n int) int
	Int64N(n int64) int64
	Shuffle(n int, swap func(i, j int))
}

type globalRand struct{}

func (globalRand) IntN(n int) int                     { return rand.IntN(n) }
func (globalRand) Int64N(n int64) int64               { return rand.Int64N(n) }
func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// DefaultRand общий генератор процесса
var DefaultRand Rand = globalRand{}

type Item struct {
	State              models.State `json:"state"`
	BackgroundImageURL string       `json:"background_image_url"`
}

func (i Item) hasImage() bool {
	return i.BackgroundImageURL != ""
}

// ItemsFromStates фон берётся из картинки состояния
func ItemsFromStates(states []models.State) []Item {
	items := make([]Item, 0, len(states))
	for _, s := range states {
		items = append(items, Item{State: s, BackgroundImageURL: s.ImageURL})
	}
	return items
}

// Select выбирает от min(3,n) до min(5,n) случайных элементов.
// Если есть элементы с картинкой, выбор идёт только среди них.
func Select(candidates []Item, r Rand) []Item {
	if r == nil {
		r = DefaultRand
	}

	pool := make([]Item, 0, len(candidates))
	for _, item := range candidates {
		if item.hasImage() {
			pool = append(pool, item)
		}
	}
	if len(pool) == 0 {
		pool = slices.Clone(candidates)
	}

	n := len(pool)
	if n == 0 {
		return []Item{}
	}

	lo, hi := min(minSelected, n), min(maxSelected, n)
	count := lo + r.IntN(hi-lo+1)

	r.Shuffle(n, func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[:count]
}
