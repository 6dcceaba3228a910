package session

// Presenter holds the latest Result for display. It is a data sink: nothing
// it holds feeds back into compilation.
type Presenter struct {
	latest Result
	runs   int64
}

// Publish replaces the latest result.
func (p *Presenter) Publish(r Result) {
	p.latest = r
	p.runs++
}

// Latest returns the most recently published result.
func (p *Presenter) Latest() Result {
	return p.latest
}

// StatusLine returns the latest result's status text.
func (p *Presenter) StatusLine() string {
	return p.latest.StatusLine()
}

// Artifact returns the latest result's program listing; empty after a failure.
func (p *Presenter) Artifact() string {
	return p.latest.Artifact
}

// Runs returns how many results have been published.
func (p *Presenter) Runs() int64 {
	return p.runs
}
