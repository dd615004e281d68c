package data

import (
	"io"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/tantralabs/sena/models"
)

// ReadCandles parses symbol,timestamp,open,high,low,close,volume rows and
// returns them sorted by timestamp.
func ReadCandles(r io.Reader) ([]models.Candle, error) {
	candles := []models.Candle{}
	if err := gocsv.Unmarshal(r, &candles); err != nil {
		return nil, errors.Wrap(err, "parse candles")
	}
	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Timestamp < candles[j].Timestamp })
	return candles, nil
}

func LoadCSV(fileName string) ([]models.Candle, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", fileName)
	}
	defer f.Close()
	return ReadCandles(f)
}
