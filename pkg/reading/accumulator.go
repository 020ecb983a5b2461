package reading

// Accumulator keeps running sums of particulate samples within one duty cycle.
type Accumulator struct {
	pm1_0 uint32
	pm2_5 uint32
	pm10  uint32
	count uint32
	last  Counts
}

// Add adds a sample to the sums and increments the count.
func (a *Accumulator) Add(p Particulate) {
	a.pm1_0 += uint32(p.PM1_0)
	a.pm2_5 += uint32(p.PM2_5)
	a.pm10 += uint32(p.PM10)
	a.last = p.Counts
	a.count++
}

// Count returns the number of accumulated samples.
func (a *Accumulator) Count() int {
	return int(a.count)
}

// Finalize returns the per-channel averages.
// ok is false when nothing was accumulated, in which case avg must be ignored.
// Particle counts are copied from the last added sample, not averaged.
func (a *Accumulator) Finalize() (avg Particulate, ok bool) {
	if a.count == 0 {
		return Particulate{}, false
	}
	return Particulate{
		PM1_0:  uint16(a.pm1_0 / a.count),
		PM2_5:  uint16(a.pm2_5 / a.count),
		PM10:   uint16(a.pm10 / a.count),
		Counts: a.last,
	}, true
}

// Reset zeroes the accumulator.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

// Apply copies the averaged particulate values into the composite reading.
func (c *Composite) Apply(p Particulate) {
	c.PM1_0 = p.PM1_0
	c.PM2_5 = p.PM2_5
	c.PM10 = p.PM10
	c.Counts = p.Counts
}
