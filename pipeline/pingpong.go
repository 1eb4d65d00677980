package pipeline

import "clfft/device"

// pingPong holds the two pass buffers. Slot 0 receives the input. The roles
// are swapped by flipping a flag; the handles never move.
type pingPong struct {
	slots [2]device.Buffer
	// swapped is set when slot 1 holds the current-input role.
	swapped bool
}

func (p *pingPong) inSlot() int {
	if p.swapped {
		return 1
	}
	return 0
}

func (p *pingPong) outSlot() int { return 1 - p.inSlot() }

func (p *pingPong) in() device.Buffer  { return p.slots[p.inSlot()] }
func (p *pingPong) out() device.Buffer { return p.slots[p.outSlot()] }

func (p *pingPong) swap() { p.swapped = !p.swapped }

func (p *pingPong) reset() { p.swapped = false }

// resultSlot is the slot written by the most recent pass, which after the
// swap holds the current-input role. With no passes it is slot 0, still
// holding the input.
func (p *pingPong) resultSlot() int { return p.inSlot() }

// release frees both slots, src first, attempting each one.
func (p *pingPong) release() error {
	var firstErr error
	for i, buf := range p.slots {
		if buf == nil {
			continue
		}
		if err := buf.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.slots[i] = nil
	}
	p.swapped = false
	return firstErr
}

func slotName(i int) string {
	if i == 0 {
		return "src"
	}
	return "dst"
}
