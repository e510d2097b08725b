// Package edvs implements the host-side driver core for the serial eDVS4337
// event-based vision sensor.
//
// A Device owns one serial port. DataStart spawns an acquisition goroutine
// that reads the raw byte stream, decodes 4-byte event frames, reconstructs
// a monotonic 32-bit timestamp from the 16-bit wire counter, assembles
// events into per-type packets and seals them into event.Container values
// according to the size and interval commit thresholds. Sealed containers are
// handed to the consumer through a bounded exchange buffer read with DataGet.
//
// Basic usage:
//
//	dev, err := edvs.Open(1, "/dev/ttyUSB0", 4000000)
//	if err != nil {
//	    // handle error
//	}
//	defer dev.Close()
//
//	_ = dev.SendDefaultConfig()
//	sess, err := dev.DataStart()
//	if err != nil {
//	    // handle error
//	}
//
//	for n := range sess.Notifications() {
//	    if n.Kind != edvs.Increase {
//	        continue
//	    }
//	    if c := dev.DataGet(); c != nil {
//	        // consume container
//	    }
//	}
//
// Device and host parameters share one address space, see ConfigSet and ConfigGet.
// Negative module addresses select host-side parameters, non-negative ones are
// forwarded to the sensor.
package edvs
