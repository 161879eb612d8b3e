package fx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/shopspring/decimal"

	"github.com/sharelot/sharelot/date"
	"github.com/sharelot/sharelot/log"
	"github.com/sharelot/sharelot/money"
)

// HTTPProvider fetches rates and price history from a JSON observation
// service:
//
//	GET {base}/rates/{FROM}{TO}/json?start_date=D&end_date=D
//	GET {base}/history/{SYMBOL}/json?start_date=D
//
// Both return {"observations": [...]}, dates formatted YYYY-MM-DD.
type HTTPProvider struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{BaseURL: baseURL, Client: http.DefaultClient}
}

type jsonRateObs struct {
	Date string `json:"d"`
	Val  string `json:"v"`
}

type jsonRateRoot struct {
	Observations []jsonRateObs `json:"observations"`
}

func (p *HTTPProvider) getJson(url string, into interface{}) error {
	log.Fverbosef(os.Stderr, "Getting %s\n", url)
	resp, err := p.Client.Get(url)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("get %s: status %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(into)
}

// GetRate looks up the observation on day, requesting a few extra days to
// skim over market holidays, and returns the first value on or after day.
func (p *HTTPProvider) GetRate(from, to money.Currency, day date.Date) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/rates/%s%s/json?start_date=%s&end_date=%s",
		p.BaseURL, from, to, day, day.AddDays(3))

	var root jsonRateRoot
	if err := p.getJson(url, &root); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}

	for _, obs := range root.Observations {
		if obs.Val == "" {
			continue
		}
		obsDate, err := date.Parse(date.DefaultFormat, obs.Date)
		if err != nil || obsDate.Before(day) {
			continue
		}
		mult, err := decimal.NewFromString(obs.Val)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse rate %q for %s: %w", obs.Val, obs.Date, err)
		}
		return mult, nil
	}
	return decimal.Zero, fmt.Errorf("no %s%s observation on %s: %w", from, to, day, ErrRateUnavailable)
}

type jsonPriceObs struct {
	Date   string `json:"d"`
	Open   string `json:"o"`
	High   string `json:"h"`
	Low    string `json:"l"`
	Close  string `json:"c"`
	Volume int64  `json:"vol"`
	Split  string `json:"split"`
}

type jsonPriceRoot struct {
	Observations []jsonPriceObs `json:"observations"`
}

func parseObsDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func (p *HTTPProvider) GetPriceHistory(symbol string, startDate date.Date) ([]PricePoint, error) {
	url := fmt.Sprintf("%s/history/%s/json?start_date=%s", p.BaseURL, symbol, startDate)

	var root jsonPriceRoot
	if err := p.getJson(url, &root); err != nil {
		return nil, err
	}

	points := make([]PricePoint, 0, len(root.Observations))
	for _, obs := range root.Observations {
		day, err := date.Parse(date.DefaultFormat, obs.Date)
		if err != nil {
			log.Verbosef("Unable to parse %s history date %q: %v\n", symbol, obs.Date, err)
			continue
		}
		point := PricePoint{Date: day, Volume: obs.Volume}
		fields := []struct {
			raw  string
			into *decimal.Decimal
		}{
			{obs.Open, &point.Open},
			{obs.High, &point.High},
			{obs.Low, &point.Low},
			{obs.Close, &point.Close},
			{obs.Split, &point.SplitRatio},
		}
		bad := false
		for _, f := range fields {
			if *f.into, err = parseObsDecimal(f.raw); err != nil {
				log.Verbosef("Unable to parse %s history value for %s: %v\n", symbol, obs.Date, err)
				bad = true
				break
			}
		}
		if bad {
			continue
		}
		points = append(points, point)
	}
	return points, nil
}
