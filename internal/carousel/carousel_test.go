package carousel

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRand отдаёт заранее заданные смещения задержки
type stubRand struct {
	mu      sync.Mutex
	offsets []time.Duration
	calls   int
}

func (r *stubRand) IntN(n int) int { return 0 }

func (r *stubRand) Int64N(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.offsets[min(r.calls, len(r.offsets)-1)]
	r.calls++
	return int64(d)
}

func (r *stubRand) Shuffle(n int, swap func(i, j int)) {}

func makeItems(n int, withImage func(i int) bool) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i].State = models.State{ID: int64(i + 1), Name: fmt.Sprintf("state-%d", i+1)}
		if withImage(i) {
			items[i].BackgroundImageURL = fmt.Sprintf("/images/%d.jpg", i+1)
		}
	}
	return items
}

// TestSelect_Size проверяет размер выборки и предпочтение элементов с картинкой
func TestSelect_Size(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for n := 0; n <= 9; n++ {
		for _, pattern := range []string{"all", "none", "even"} {
			withImage := func(i int) bool {
				switch pattern {
				case "all":
					return true
				case "even":
					return i%2 == 0
				}
				return false
			}
			items := makeItems(n, withImage)

			available := n
			if pattern == "even" {
				available = (n + 1) / 2
			}

			for iter := 0; iter < 50; iter++ {
				got := Select(items, r)
				lo, hi := min(3, available), min(5, available)
				assert.GreaterOrEqual(t, len(got), lo, "n=%d pattern=%s", n, pattern)
				assert.LessOrEqual(t, len(got), hi, "n=%d pattern=%s", n, pattern)

				seen := make(map[int64]bool)
				for _, item := range got {
					assert.False(t, seen[item.State.ID], "duplicate item")
					seen[item.State.ID] = true
					if pattern != "none" {
						assert.NotEmpty(t, item.BackgroundImageURL)
					}
				}
			}
		}
	}
}

// TestSelect_CoversRange проверяет, что встречаются все допустимые размеры
func TestSelect_CoversRange(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	items := makeItems(10, func(int) bool { return true })

	sizes := make(map[int]bool)
	for i := 0; i < 200; i++ {
		sizes[len(Select(items, r))] = true
	}
	assert.Equal(t, map[int]bool{3: true, 4: true, 5: true}, sizes)
}

func TestSelect_DoesNotMutateInput(t *testing.T) {
	items := makeItems(6, func(int) bool { return false })
	_ = Select(items, rand.New(rand.NewPCG(3, 4)))

	for i, item := range items {
		assert.Equal(t, int64(i+1), item.State.ID)
	}
}

func newTestCarousel(n int, offsets ...time.Duration) (*Carousel, *clockwork.FakeClock) {
	if len(offsets) == 0 {
		offsets = []time.Duration{500 * time.Millisecond}
	}
	clock := clockwork.NewFakeClock()
	c := New(makeItems(n, func(int) bool { return true }),
		WithClock(clock),
		WithRand(&stubRand{offsets: offsets}),
	)
	return c, clock
}

func waitIndex(t *testing.T, c *Carousel, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.Current() == want && c.Pending()
	}, time.Second, 5*time.Millisecond)
}

// TestCarousel_ZeroItems проверяет, что пустая карусель ничего не планирует
func TestCarousel_ZeroItems(t *testing.T) {
	c, _ := newTestCarousel(0)
	c.Start()

	assert.False(t, c.Pending())
	assert.Empty(t, c.Slides())
	assert.Error(t, c.Jump(0))
}

// TestCarousel_Autoplay проверяет переходы по кругу после задержки
func TestCarousel_Autoplay(t *testing.T) {
	c, clock := newTestCarousel(3)
	c.Start()
	require.True(t, c.Pending())

	clock.Advance(4499 * time.Millisecond)
	assert.Never(t, func() bool { return c.Current() != 0 }, 50*time.Millisecond, 5*time.Millisecond)

	clock.Advance(time.Millisecond)
	waitIndex(t, c, 1)

	clock.Advance(4500 * time.Millisecond)
	waitIndex(t, c, 2)

	clock.Advance(4500 * time.Millisecond)
	waitIndex(t, c, 0)
}

// TestCarousel_DelayRerolled проверяет новую задержку на каждом переходе
func TestCarousel_DelayRerolled(t *testing.T) {
	c, clock := newTestCarousel(3, 0, 1500*time.Millisecond)
	c.Start()

	clock.Advance(4000 * time.Millisecond)
	waitIndex(t, c, 1)

	clock.Advance(4000 * time.Millisecond)
	assert.Never(t, func() bool { return c.Current() != 1 }, 50*time.Millisecond, 5*time.Millisecond)

	clock.Advance(1500 * time.Millisecond)
	waitIndex(t, c, 2)
}

// TestCarousel_PauseResume проверяет паузу при наведении и фокусе
func TestCarousel_PauseResume(t *testing.T) {
	c, clock := newTestCarousel(3)
	c.Start()

	c.PointerEnter()
	assert.True(t, c.Paused())
	assert.False(t, c.Pending())

	clock.Advance(10 * time.Second)
	assert.Never(t, func() bool { return c.Current() != 0 }, 50*time.Millisecond, 5*time.Millisecond)

	c.PointerLeave()
	assert.True(t, c.Pending())

	clock.Advance(4500 * time.Millisecond)
	waitIndex(t, c, 1)

	c.Focus()
	assert.False(t, c.Pending())
	c.Blur()
	assert.True(t, c.Pending())
}

// TestCarousel_JumpReschedules проверяет, что ручной выбор отменяет прежний таймер
func TestCarousel_JumpReschedules(t *testing.T) {
	var mu sync.Mutex
	var changes []int

	clock := clockwork.NewFakeClock()
	c := New(makeItems(4, func(int) bool { return true }),
		WithClock(clock),
		WithRand(&stubRand{offsets: []time.Duration{500 * time.Millisecond}}),
		WithOnChange(func(i int) {
			mu.Lock()
			changes = append(changes, i)
			mu.Unlock()
		}),
	)
	c.Start()

	clock.Advance(3 * time.Second)
	require.NoError(t, c.Jump(2))
	assert.Equal(t, 2, c.Current())

	// старый таймер сработал бы на 4.5s
	clock.Advance(2 * time.Second)
	assert.Never(t, func() bool { return c.Current() != 2 }, 50*time.Millisecond, 5*time.Millisecond)

	clock.Advance(2500 * time.Millisecond)
	waitIndex(t, c, 3)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changes) == 2
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.Equal(t, []int{2, 3}, changes)
	mu.Unlock()

	assert.Error(t, c.Jump(4))
	assert.Error(t, c.Jump(-1))
}

// TestCarousel_SingleTimer проверяет, что после серии действий ждёт один таймер
func TestCarousel_SingleTimer(t *testing.T) {
	c, clock := newTestCarousel(5)
	c.Start()
	c.Start()

	require.NoError(t, c.Jump(1))
	require.NoError(t, c.Jump(3))
	c.PointerEnter()
	c.PointerLeave()
	c.Focus()
	c.Blur()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
}

// TestCarousel_Close проверяет остановку при закрытии
func TestCarousel_Close(t *testing.T) {
	c, clock := newTestCarousel(3)
	c.Start()
	c.Close()

	assert.False(t, c.Pending())
	clock.Advance(10 * time.Second)
	assert.Never(t, func() bool { return c.Current() != 0 }, 50*time.Millisecond, 5*time.Millisecond)

	c.PointerLeave()
	c.Start()
	assert.False(t, c.Pending())
}

func TestCarousel_Slides(t *testing.T) {
	c, _ := newTestCarousel(6)

	slides := c.Slides()
	require.Len(t, slides, 6)
	assert.True(t, slides[0].Visible)
	assert.False(t, slides[1].Visible)
	assert.Equal(t, "/suggestion/1?mode=effects", slides[0].Link)
	assert.Equal(t, slides[0].Background, slides[5].Background)
	assert.NotEqual(t, slides[0].Background, slides[1].Background)
}
