package edvs

import (
	"github.com/arloliu/go-edvs/event"
	"github.com/arloliu/go-edvs/logger"
)

// commitFunc receives every sealed container.
type commitFunc func(*event.Container)

// pipeline turns raw bytes into sealed containers: frame decoding, timestamp
// reconstruction and packet assembly. It is confined to the acquisition goroutine.
type pipeline struct {
	decoder frameDecoder
	ts      timestampContext
	asm     *assembler

	metrics *Metrics
	logger  logger.Logger

	// onTimestampReset is called after every applied timestamp reset.
	onTimestampReset func()
}

func newPipeline(metrics *Metrics, l logger.Logger, onTimestampReset func()) *pipeline {
	return &pipeline{
		asm:              newAssembler(),
		metrics:          metrics,
		logger:           l,
		onTimestampReset: onTimestampReset,
	}
}

// reset prepares the pipeline for a new session.
func (p *pipeline) reset(maxPacketSize uint32, maxInterval uint32) {
	p.decoder.reset()
	p.ts.reset()
	p.asm.reset()
	p.asm.configure(maxPacketSize, maxInterval)
}

// discard drops the open packets and any partial frame.
func (p *pipeline) discard() {
	p.decoder.reset()
	p.asm.reset()
}

// feed decodes data and passes every sealed container to commit.
func (p *pipeline) feed(data []byte, commit commitFunc) {
	skipped := p.decoder.decode(data, func(f frame) {
		switch f.kind {
		case polarityFrame:
			p.handlePolarity(f, commit)
		case timestampResetFrame:
			p.logger.Debug("edvs: timestamp reset frame received")
			p.resetTimestamps(commit)
		}
	})

	if skipped > 0 {
		p.metrics.addDecodeErrors(skipped)
		p.logger.Debug("edvs: skipped bytes while resynchronising", "skipped", skipped)
	}
}

func (p *pipeline) handlePolarity(f frame, commit commitFunc) {
	ts, bigWrap := p.ts.update(f.ts)

	if bigWrap {
		// the wrap event closes the previous overflow epoch
		p.metrics.incTimestampWraps()
		p.metrics.incSpecialEvents()
		p.logger.Info("edvs: timestamp big wrap", "overflow", p.ts.wrapOverflow)

		wrap := event.Special{Timestamp: event.WrapTimestamp, Kind: event.TimestampWrap}
		p.emit(commit, p.asm.append(wrap, p.ts.wrapOverflow-1))
		p.emit(commit, p.asm.commit())

		return
	}

	p.metrics.incPolarityEvents()
	ev := event.Polarity{Timestamp: ts, X: f.x, Y: f.y, Polarity: f.polarity}
	p.emit(commit, p.asm.append(ev, p.ts.wrapOverflow))
}

// resetTimestamps restarts the timestamp context from zero. Open packets are
// sealed first so that no container mixes timestamps from before and after
// the reset; the TimestampReset event is committed on its own.
func (p *pipeline) resetTimestamps(commit commitFunc) {
	p.emit(commit, p.asm.commit())

	p.ts.reset()
	p.asm.restartClock()

	p.metrics.incSpecialEvents()
	reset := event.Special{Timestamp: 0, Kind: event.TimestampReset}
	p.emit(commit, p.asm.append(reset, p.ts.wrapOverflow))
	p.emit(commit, p.asm.commit())

	if p.onTimestampReset != nil {
		p.onTimestampReset()
	}
}

func (p *pipeline) emit(commit commitFunc, c *event.Container) {
	if c == nil {
		return
	}

	p.metrics.incContainersCommitted()
	commit(c)
}
