package edvs

import "github.com/arloliu/go-edvs/internal/util"

// Event frames of the "E2" output format are four bytes long:
//
//	polarity: 1yyyyyyy pxxxxxxx tsHi tsLo
//	special:  00000000 cccccccc tsHi tsLo
//
// p is set for a brightness increase. c is the special code.
const (
	frameSize = 4

	polarityFlag  = 0x80
	coordMask     = 0x7F
	specialHeader = 0x00

	specialCodeTimestampReset = 0x01
)

type decodeState uint8

const (
	awaitingHeader decodeState = iota
	parsingPolarityBody
	parsingSpecialBody
)

type frameKind uint8

const (
	polarityFrame frameKind = iota
	timestampResetFrame
)

// frame is one complete wire frame.
type frame struct {
	kind     frameKind
	x        uint8
	y        uint8
	polarity bool
	ts       uint16
}

// frameDecoder is the byte-level protocol state machine. Partial frames are
// kept across decode calls.
type frameDecoder struct {
	state decodeState
	buf   [frameSize]byte
	n     int
}

// decode consumes data and calls emit for every complete frame.
// It returns the number of bytes skipped to resynchronise on a frame header.
func (d *frameDecoder) decode(data []byte, emit func(frame)) (skipped int) {
	for i := 0; i < len(data); i++ {
		b := data[i]

		switch d.state {
		case awaitingHeader:
			switch {
			case b&polarityFlag != 0:
				d.begin(b, parsingPolarityBody)
			case b == specialHeader:
				d.begin(b, parsingSpecialBody)
			default:
				skipped++
			}

		case parsingPolarityBody:
			d.buf[d.n] = b
			d.n++
			if d.n == frameSize {
				d.state = awaitingHeader
				emit(frame{
					kind:     polarityFrame,
					y:        d.buf[0] & coordMask,
					x:        d.buf[1] & coordMask,
					polarity: d.buf[1]&polarityFlag != 0,
					ts:       uint16(util.UintBE(d.buf[2:4])),
				})
			}

		case parsingSpecialBody:
			if d.n == 1 && b != specialCodeTimestampReset {
				// drop the header and re-examine b as a header candidate
				skipped++
				d.state = awaitingHeader
				i--

				continue
			}

			d.buf[d.n] = b
			d.n++
			if d.n == frameSize {
				d.state = awaitingHeader
				emit(frame{kind: timestampResetFrame, ts: uint16(util.UintBE(d.buf[2:4]))})
			}
		}
	}

	return skipped
}

func (d *frameDecoder) begin(header byte, next decodeState) {
	d.buf[0] = header
	d.n = 1
	d.state = next
}

// pending returns the number of bytes of the incomplete frame.
func (d *frameDecoder) pending() int {
	if d.state == awaitingHeader {
		return 0
	}

	return d.n
}

func (d *frameDecoder) reset() {
	*d = frameDecoder{}
}
