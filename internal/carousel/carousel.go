package carousel

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	minDelay = 4000 * time.Millisecond
	maxDelay = 6000 * time.Millisecond
)

var backgrounds = []string{
	"linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
	"linear-gradient(135deg, #f093fb 0%, #f5576c 100%)",
	"linear-gradient(135deg, #4facfe 0%, #00f2fe 100%)",
	"linear-gradient(135deg, #43e97b 0%, #38f9d7 100%)",
	"linear-gradient(135deg, #fa709a 0%, #fee140 100%)",
}

// Background цвет слайда по его позиции
func Background(index int) string {
	return backgrounds[index%len(backgrounds)]
}

// Link адрес страницы предложений для состояния
func Link(stateID int64) string {
	return fmt.Sprintf("/suggestion/%d?mode=effects", stateID)
}

type Option func(*Carousel)

func WithClock(clock clockwork.Clock) Option {
	return func(c *Carousel) { c.clock = clock }
}

func WithRand(r Rand) Option {
	return func(c *Carousel) { c.rng = r }
}

// WithOnChange вызывается после каждой смены слайда, вне блокировки
func WithOnChange(fn func(index int)) Option {
	return func(c *Carousel) { c.onChange = fn }
}

// Carousel автопрокрутка со случайной задержкой [4s, 6s).
// В любой момент запланировано не больше одного перехода.
type Carousel struct {
	mu       sync.Mutex
	items    []Item
	clock    clockwork.Clock
	rng      Rand
	onChange func(index int)

	current int
	paused  bool
	started bool
	closed  bool
	timer   clockwork.Timer
	// gen отсекает срабатывания уже отменённых таймеров
	gen uint64
}

func New(items []Item, opts ...Option) *Carousel {
	c := &Carousel{
		items: items,
		clock: clockwork.NewRealClock(),
		rng:   DefaultRand,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start включает автопрокрутку. Без элементов ничего не делает.
func (c *Carousel) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.started || len(c.items) == 0 {
		return
	}
	c.started = true
	c.scheduleLocked()
}

func (c *Carousel) PointerEnter() { c.setPaused(true) }
func (c *Carousel) PointerLeave() { c.setPaused(false) }
func (c *Carousel) Focus()        { c.setPaused(true) }
func (c *Carousel) Blur()         { c.setPaused(false) }

func (c *Carousel) setPaused(paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.paused == paused {
		return
	}
	c.paused = paused
	if paused {
		c.stopLocked()
		return
	}
	c.scheduleLocked()
}

// Jump сразу показывает элемент и планирует переход заново
func (c *Carousel) Jump(index int) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.items) {
		c.mu.Unlock()
		return fmt.Errorf("carousel index %d out of range [0, %d)", index, len(c.items))
	}
	c.current = index
	c.scheduleLocked()
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(index)
	}
	return nil
}

// Close останавливает таймер, дальнейшие вызовы ничего не планируют
func (c *Carousel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopLocked()
}

func (c *Carousel) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Carousel) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Pending сообщает, запланирован ли переход
func (c *Carousel) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

func (c *Carousel) Len() int {
	return len(c.items)
}

type Slide struct {
	Item       Item   `json:"item"`
	Background string `json:"background"`
	Link       string `json:"link"`
	Visible    bool   `json:"visible"`
}

// Slides пустой результат означает, что карусель не отображается
func (c *Carousel) Slides() []Slide {
	c.mu.Lock()
	defer c.mu.Unlock()

	slides := make([]Slide, 0, len(c.items))
	for i, item := range c.items {
		slides = append(slides, Slide{
			Item:       item,
			Background: Background(i),
			Link:       Link(item.State.ID),
			Visible:    i == c.current,
		})
	}
	return slides
}

func (c *Carousel) delay() time.Duration {
	return minDelay + time.Duration(c.rng.Int64N(int64(maxDelay-minDelay)))
}

// scheduleLocked отменяет текущий таймер и ставит новый
func (c *Carousel) scheduleLocked() {
	c.stopLocked()
	if c.closed || !c.started || c.paused || len(c.items) == 0 {
		return
	}

	gen := c.gen
	c.timer = c.clock.AfterFunc(c.delay(), func() {
		c.advance(gen)
	})
}

func (c *Carousel) stopLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Carousel) advance(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.closed || c.paused {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.current = (c.current + 1) % len(c.items)
	index := c.current
	c.scheduleLocked()
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(index)
	}
}
