package market

// Candle is one completed OHLC bar. Only the fields the indicator engine
// consumes are carried; open is not used anywhere downstream.
type Candle struct {
	High  float64
	Low   float64
	Close float64
}

// Closes extracts the close series from a slice of candles.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
