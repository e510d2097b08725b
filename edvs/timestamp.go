package edvs

import (
	"math"

	"github.com/arloliu/go-edvs/event"
)

// shortTimestampModulus is the range of the 16-bit wire timestamp.
const shortTimestampModulus = 1 << 16

// maxWrapAdd is the last wrapAdd value that still fits a 31-bit timestamp.
// Wrapping past it is a big wrap.
const maxWrapAdd = math.MaxInt32 - (shortTimestampModulus - 1)

// timestampContext reconstructs 32-bit timestamps from the 16-bit wire counter.
// It is confined to the acquisition goroutine.
type timestampContext struct {
	lastShort        uint16
	wrapAdd          int32
	wrapOverflow     int32
	lastTimestamp    int32
	currentTimestamp int32
}

// update feeds the next wire timestamp and returns the reconstructed one.
// bigWrap is true when the 31-bit space was exhausted: the timestamp restarts
// from the wire value and wrapOverflow was incremented.
func (c *timestampContext) update(short uint16) (ts int32, bigWrap bool) {
	if short < c.lastShort {
		if c.wrapAdd == maxWrapAdd {
			c.wrapAdd = 0
			c.lastTimestamp = 0
			c.currentTimestamp = 0
			c.wrapOverflow++
			bigWrap = true
		} else {
			c.wrapAdd += shortTimestampModulus
		}
	}

	c.lastShort = short
	c.lastTimestamp = c.currentTimestamp
	c.currentTimestamp = c.wrapAdd + int32(short)

	return c.currentTimestamp, bigWrap
}

func (c *timestampContext) reset() {
	*c = timestampContext{}
}

// full returns the 64-bit timestamp of the current event.
func (c *timestampContext) full() int64 {
	return event.FullTimestamp(c.wrapOverflow, c.currentTimestamp)
}
