package fx

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/sharelot/sharelot/date"
	"github.com/sharelot/sharelot/money"
)

// RatesCache persists fetched rates so reruns do not hit the provider.
type RatesCache interface {
	ReadRates(from, to money.Currency) ([]Rate, error)
	WriteRates(from, to money.Currency, rates []Rate) error
}

// MemRatesCache is an in-memory RatesCache for tests.
type MemRatesCache struct {
	RatesByPair map[string][]Rate
}

func NewMemRatesCache() *MemRatesCache {
	return &MemRatesCache{RatesByPair: make(map[string][]Rate)}
}

func pairKey(from, to money.Currency) string {
	return string(from) + string(to)
}

func (c *MemRatesCache) ReadRates(from, to money.Currency) ([]Rate, error) {
	return c.RatesByPair[pairKey(from, to)], nil
}

func (c *MemRatesCache) WriteRates(from, to money.Currency, rates []Rate) error {
	c.RatesByPair[pairKey(from, to)] = rates
	return nil
}

// CsvRatesCache stores one CSV file per currency pair under Dir, each row
// being "date,multiplier".
type CsvRatesCache struct {
	Dir string
}

func HomeDirFile(fname string) (string, error) {
	const dir = ".sharelot"
	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	dirPath := filepath.Join(usr.HomeDir, dir)
	os.MkdirAll(dirPath, 0700)
	return filepath.Join(dirPath, fname), err
}

func (c *CsvRatesCache) ratesFile(from, to money.Currency, write bool) (*os.File, error) {
	fname := fmt.Sprintf("rates-%s.csv", pairKey(from, to))
	var path string
	if c.Dir != "" {
		os.MkdirAll(c.Dir, 0700)
		path = filepath.Join(c.Dir, fname)
	} else {
		var err error
		path, err = HomeDirFile(fname)
		if err != nil {
			return nil, err
		}
	}
	if write {
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	}
	return os.Open(path)
}

func (c *CsvRatesCache) ReadRates(from, to money.Currency) ([]Rate, error) {
	file, err := c.ratesFile(from, to, false)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()
	return ratesFromCsv(file, from, to)
}

func ratesFromCsv(r io.Reader, from, to money.Currency) ([]Rate, error) {
	csvR := csv.NewReader(r)
	csvR.FieldsPerRecord = 2
	records, err := csvR.ReadAll()
	if err != nil {
		return nil, err
	}

	rates := make([]Rate, 0, len(records))
	for _, record := range records {
		day, err := date.Parse(date.DefaultFormat, record[0])
		if err != nil {
			return nil, fmt.Errorf("rates csv: bad date %q: %w", record[0], err)
		}
		mult, err := decimal.NewFromString(record[1])
		if err != nil {
			return nil, fmt.Errorf("rates csv: bad multiplier %q: %w", record[1], err)
		}
		rates = append(rates, Rate{From: from, To: to, Date: day, Multiplier: mult})
	}
	return rates, nil
}

func (c *CsvRatesCache) WriteRates(from, to money.Currency, rates []Rate) (err error) {
	file, err := c.ratesFile(from, to, true)
	if err != nil {
		return err
	}
	defer func() {
		cerr := file.Close()
		if err == nil {
			err = cerr
		}
	}()

	csvW := csv.NewWriter(file)
	for _, rate := range rates {
		if err = csvW.Write([]string{rate.Date.String(), rate.Multiplier.String()}); err != nil {
			return err
		}
	}
	csvW.Flush()
	return csvW.Error()
}
