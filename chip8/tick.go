package chip8

// Tick advances the machine by one timer period. It executes at most one
// instruction (if Running, or if a step was requested), then counts down
// the delay and sound timers and releases all keys.
//
// While m.PC does not address a complete instruction the machine idles:
// no instruction is executed, no error is reported and any requested step
// is dropped.
//
// The returned error is the HaltError from Exec, if any. The timers and
// keys are updated regardless.
func (m *Machine) Tick() error {
	var err error
	if m.Idle() {
		m.Step = false
	} else if m.Running || m.Step {
		err = m.Exec()
		if m.Step {
			m.Step = false
			m.Running = false
		}
	}
	if m.DT > 0 {
		m.DT--
	}
	if m.ST > 0 {
		m.ST--
		if m.ST == 0 {
			m.tone(false)
		}
	}
	m.Keys = [NumKeys]bool{}
	return err
}

// Idle reports whether m.PC has run past the last complete instruction in
// memory.
func (m *Machine) Idle() bool { return m.PC > MemSize-2 }
