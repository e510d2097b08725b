package edvs

import (
	"fmt"
	"sync"

	"github.com/arloliu/go-edvs/internal/util"
)

// BiasID identifies one of the twelve programmable biases of the eDVS4337.
type BiasID uint8

const (
	BiasCas BiasID = iota
	BiasInjGnd
	BiasReqPd
	BiasPuX
	BiasDiffOff
	BiasReq
	BiasRefr
	BiasPuY
	BiasDiffOn
	BiasDiff
	BiasFoll
	BiasPr

	// BiasCount is the number of biases.
	BiasCount = 12
)

// biasSize is the number of bytes of a bias value.
const biasSize = 3

// MaxBiasValue is the largest 24-bit bias value.
const MaxBiasValue = 1<<(8*biasSize) - 1

var biasNames = [BiasCount]string{
	"CAS", "INJGND", "REQPD", "PUX", "DIFFOFF", "REQ",
	"REFR", "PUY", "DIFFON", "DIFF", "FOLL", "PR",
}

// defaultBiases is the known-good baseline written by SendDefaultConfig.
var defaultBiases = [BiasCount]uint32{
	BiasCas:     1992,
	BiasInjGnd:  1108364,
	BiasReqPd:   16777215,
	BiasPuX:     8159221,
	BiasDiffOff: 132,
	BiasReq:     309590,
	BiasRefr:    969,
	BiasPuY:     16777215,
	BiasDiffOn:  209995,
	BiasDiff:    13125,
	BiasFoll:    271,
	BiasPr:      217,
}

// ParseBiasID validates a raw bias parameter address.
func ParseBiasID(param uint8) (BiasID, error) {
	if param >= BiasCount {
		return 0, fmt.Errorf("%w: bias %d", ErrUnknownConfigAddress, param)
	}

	return BiasID(param), nil
}

func (id BiasID) String() string {
	if id >= BiasCount {
		return fmt.Sprintf("BiasID(%d)", uint8(id))
	}

	return biasNames[id]
}

// DefaultBias returns the default value of the bias.
func DefaultBias(id BiasID) uint32 {
	if id >= BiasCount {
		return 0
	}

	return defaultBiases[id]
}

// biasCache mirrors the last value written for every bias. The sensor never
// echoes bias values, so the cache is the only source for ConfigGet.
type biasCache struct {
	mu     sync.RWMutex
	values [BiasCount][biasSize]byte
}

func (c *biasCache) set(id BiasID, value uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	util.PutUintBE(c.values[id][:], value)
}

func (c *biasCache) get(id BiasID) uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return util.UintBE(c.values[id][:])
}
