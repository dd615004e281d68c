package data

import "github.com/tantralabs/sena/models"

type fillType struct {
	Open   string
	Close  string
	MeanOC string
	MeanHL string
}

// FillType lists the candle prices a replayed tick can be priced at.
func FillType() fillType {
	return fillType{
		Open:   "open",
		Close:  "close",
		MeanOC: "mean_oc",
		MeanHL: "mean_hl",
	}
}

// FillPrice is the price of c under fill. Unknown fills use the close.
func FillPrice(c models.Candle, fill string) float64 {
	switch fill {
	case FillType().Open:
		return c.Open
	case FillType().MeanOC:
		return (c.Open + c.Close) / 2
	case FillType().MeanHL:
		return (c.High + c.Low) / 2
	default:
		return c.Close
	}
}
