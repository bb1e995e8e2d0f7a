package model

// ObserverContext holds one Observer analysis per round at index round_number-1.
// Entries are nil until that round's analysis completes.
type ObserverContext []*Analysis

func (c ObserverContext) At(i int) *Analysis {
	if i < 0 || i >= len(c) {
		return nil
	}
	return c[i]
}

// Set returns c with index i overwritten, growing with nil entries as needed.
func (c ObserverContext) Set(i int, a *Analysis) ObserverContext {
	if i < 0 {
		return c
	}
	if i >= len(c) {
		grown := make(ObserverContext, i+1)
		copy(grown, c)
		c = grown
	}
	c[i] = a
	return c
}

// PriorTo returns the analysis of the round before roundNumber, or nil.
func (c ObserverContext) PriorTo(roundNumber int) *Analysis {
	return c.At(roundNumber - 2)
}
