package speech

import (
	"math/rand/v2"
	"radiomirchi/pkg/domain"
	"sync"
)

// MaleVoices are the Aura-2 voices used for male hosts.
var MaleVoices = []string{ //nolint: gochecknoglobals
	"aura-2-odysseus-en", "aura-2-apollo-en", "aura-2-arcas-en", "aura-2-aries-en",
	"aura-2-atlas-en", "aura-2-draco-en", "aura-2-hermes-en", "aura-2-hyperion-en",
	"aura-2-jupiter-en", "aura-2-mars-en", "aura-2-neptune-en", "aura-2-orion-en",
	"aura-2-orpheus-en", "aura-2-pluto-en", "aura-2-saturn-en", "aura-2-zeus-en",
}

// FemaleVoices are the Aura-2 voices used for female hosts and anyone else.
var FemaleVoices = []string{ //nolint: gochecknoglobals
	"aura-2-thalia-en", "aura-2-amalthea-en", "aura-2-andromeda-en", "aura-2-asteria-en",
	"aura-2-athena-en", "aura-2-aurora-en", "aura-2-callista-en", "aura-2-cora-en",
	"aura-2-cordelia-en", "aura-2-delia-en", "aura-2-electra-en", "aura-2-harmonia-en",
	"aura-2-helena-en", "aura-2-hera-en", "aura-2-iris-en", "aura-2-janus-en",
	"aura-2-juno-en", "aura-2-luna-en", "aura-2-minerva-en", "aura-2-ophelia-en",
	"aura-2-pandora-en", "aura-2-phoebe-en", "aura-2-selene-en", "aura-2-theia-en",
	"aura-2-vesta-en",
}

// VoicesFor returns the voice pool of gender.
func VoicesFor(gender domain.Gender) []string {
	if gender == domain.GenderMale {
		return MaleVoices
	}

	return FemaleVoices
}

// Cast assigns each speaker a voice the first time it is asked for and keeps
// it for the lifetime of the Cast. Speakers of the same gender get distinct
// voices while the pool lasts.
type Cast struct {
	mu     sync.Mutex
	rnd    *rand.Rand
	voices map[string]string
	used   map[string]struct{}
}

// NewCast returns a Cast drawing voices from rnd. A nil rnd uses a randomly
// seeded source.
func NewCast(rnd *rand.Rand) *Cast {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint: gosec
	}

	return &Cast{
		rnd:    rnd,
		voices: make(map[string]string),
		used:   make(map[string]struct{}),
	}
}

// Voice returns the voice of the named speaker.
func (c *Cast) Voice(name string, gender domain.Gender) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.voices[name]; ok {
		return v
	}

	pool := VoicesFor(gender)
	free := make([]string, 0, len(pool))
	for _, v := range pool {
		if _, taken := c.used[v]; !taken {
			free = append(free, v)
		}
	}
	if len(free) == 0 {
		free = pool
	}

	v := free[c.rnd.IntN(len(free))]
	c.voices[name] = v
	c.used[v] = struct{}{}

	return v
}
