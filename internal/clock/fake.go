package clock

// Fake is a test double with a manually driven counter.
type Fake struct {
	// Ms is the value returned by the next call to Now (before Step is applied).
	Ms uint32

	// Step is added to Ms after every call to Now. A non-zero step lets
	// busy-wait loops make progress without a second goroutine.
	Step uint32

	// Calls counts calls to Now.
	Calls int
}

// NewFake creates a Fake starting at ms.
func NewFake(ms uint32) *Fake {
	return &Fake{Ms: ms}
}

// Now returns the current value and then advances by Step.
func (f *Fake) Now() uint32 {
	f.Calls++
	v := f.Ms
	f.Ms += f.Step
	return v
}

// Set moves the counter to ms.
func (f *Fake) Set(ms uint32) {
	f.Ms = ms
}

// Advance moves the counter forward by ms, wrapping like the real counter.
func (f *Fake) Advance(ms uint32) {
	f.Ms += ms
}
