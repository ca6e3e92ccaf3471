package mixer

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/warpdl/slumber/pkg/logger"
)

// Capacity is the number of mixing channels in a Pool.
const Capacity = 8

// DefaultCacheTTL is how long a decoded sound stays cached after its last use.
const DefaultCacheTTL = 10 * time.Minute

// Pool hands out the mixing channels of a Device. It is not safe for
// concurrent use; all calls are expected from the scheduler goroutine.
type Pool struct {
	dev   Device
	log   logger.Logger
	ttl   time.Duration
	cache *cache.Cache
	used  [Capacity]bool
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithCacheTTL sets the sliding expiry of the sound cache.
func WithCacheTTL(ttl time.Duration) PoolOption {
	return func(p *Pool) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// NewPool initialises dev and returns a Pool with every channel free.
func NewPool(dev Device, l logger.Logger, opts ...PoolOption) (*Pool, error) {
	p := &Pool{dev: dev, log: l, ttl: DefaultCacheTTL}
	for _, opt := range opts {
		opt(p)
	}
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("init audio device: %w", err)
	}
	p.cache = cache.New(p.ttl, 2*p.ttl)
	return p, nil
}

// Allocate reserves the lowest free channel and resets its volume to 1.0.
func (p *Pool) Allocate() (int, error) {
	for id, used := range p.used {
		if used {
			continue
		}
		p.used[id] = true
		p.dev.Channel(id).SetVolume(1.0)
		p.log.Debug("[mixer] Allocated channel %d", id)
		return id, nil
	}
	return -1, ErrResourceExhausted
}

// Release stops the channel and returns it to the pool.
func (p *Pool) Release(id int) error {
	ch, err := p.channel(id)
	if err != nil {
		return err
	}
	ch.Stop()
	p.used[id] = false
	p.log.Debug("[mixer] Released channel %d", id)
	return nil
}

// Play loops the sound at path on channel id, fading it in over fadeIn.
func (p *Pool) Play(id int, path string, fadeIn time.Duration) error {
	ch, err := p.channel(id)
	if err != nil {
		return err
	}
	snd, err := p.load(path)
	if err != nil {
		return err
	}
	if err := ch.Play(snd, true, fadeIn); err != nil {
		return fmt.Errorf("play %s on channel %d: %w", path, id, err)
	}
	return nil
}

// SetVolume sets the channel volume, clamped to [0, 1].
func (p *Pool) SetVolume(id int, v float64) error {
	ch, err := p.channel(id)
	if err != nil {
		return err
	}
	ch.SetVolume(clamp(v))
	return nil
}

// Volume returns the channel volume.
func (p *Pool) Volume(id int) (float64, error) {
	ch, err := p.channel(id)
	if err != nil {
		return 0, err
	}
	return ch.Volume(), nil
}

// Fadeout fades the channel to silence over d. The channel stays allocated.
func (p *Pool) Fadeout(id int, d time.Duration) error {
	ch, err := p.channel(id)
	if err != nil {
		return err
	}
	ch.Fadeout(d)
	return nil
}

// Allocated lists the occupied channel ids in ascending order.
func (p *Pool) Allocated() []int {
	var ids []int
	for id, used := range p.used {
		if used {
			ids = append(ids, id)
		}
	}
	return ids
}

// Close stops every channel, drops cached sounds and quits the device.
func (p *Pool) Close() error {
	for id := range p.used {
		if ch := p.dev.Channel(id); ch != nil {
			ch.Stop()
		}
		p.used[id] = false
	}
	p.cache.Flush()
	if err := p.dev.Quit(); err != nil {
		return fmt.Errorf("quit audio device: %w", err)
	}
	p.log.Info("[mixer] Audio device closed")
	return nil
}

func (p *Pool) channel(id int) (Channel, error) {
	if id < 0 || id >= Capacity || !p.used[id] {
		return nil, fmt.Errorf("channel %d: %w", id, ErrInvalidChannel)
	}
	return p.dev.Channel(id), nil
}

// load returns the decoded sound for path, decoding it on a cache miss.
// Every hit renews the entry's expiry.
func (p *Pool) load(path string) (Sound, error) {
	if v, ok := p.cache.Get(path); ok {
		snd := v.(Sound)
		p.cache.SetDefault(path, snd)
		return snd, nil
	}
	snd, err := p.dev.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	p.cache.SetDefault(path, snd)
	return snd, nil
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
