package app

import (
	"io"

	"github.com/sharelot/sharelot/app/outfmt"
	"github.com/sharelot/sharelot/audit"
	"github.com/sharelot/sharelot/fiscal"
	"github.com/sharelot/sharelot/fx"
	"github.com/sharelot/sharelot/log"
	"github.com/sharelot/sharelot/money"
	ptf "github.com/sharelot/sharelot/portfolio"
)

type DescribedReader struct {
	Desc   string
	Reader io.Reader
}

type Options struct {
	Currency          money.Currency
	FiscalYearType    fiscal.YearType
	Policy            ptf.AllocationPolicy
	PlaceholderPolicy fx.PlaceholderPolicy

	RatesCache    fx.RatesCache
	MarketDataURL string

	// UpdatePrices refreshes each instrument's price history before
	// rendering holdings. Needs MarketDataURL.
	UpdatePrices     bool
	RenderFullValues bool

	AuditWriter io.Writer
}

// RunApp parses the command CSVs, applies them to a fresh book and
// renders the gains and holdings reports through the writer.
func RunApp(
	csvFileReaders []DescribedReader,
	opts Options,
	writer outfmt.ReportWriter,
	errPrinter log.ErrorPrinter) (retErr error) {

	var provider fx.Provider
	if opts.MarketDataURL != "" {
		provider = fx.NewHTTPProvider(opts.MarketDataURL)
	}
	rates := fx.NewStore(opts.RatesCache, provider, opts.PlaceholderPolicy)

	var sink audit.Sink
	if opts.AuditWriter != nil {
		sink = audit.NewLogSink(opts.AuditWriter)
	}

	book := ptf.NewBook(ptf.Config{
		Currency:       opts.Currency,
		FiscalYearType: opts.FiscalYearType,
		Policy:         opts.Policy,
		Audit:          sink,
		Rates:          rates,
		MarketData:     provider,
	})

	allCmds := make([]*ptf.Command, 0, 20)
	for _, csvReader := range csvFileReaders {
		cmds, err := ptf.ParseCommandCsv(csvReader.Reader, csvReader.Desc)
		if err != nil {
			errPrinter.Ln("Error:", err)
			retErr = err
			return
		}
		allCmds = append(allCmds, cmds...)
	}

	if err := ptf.ApplyCommands(book, allCmds); err != nil {
		errPrinter.Ln("Error:", err)
		retErr = err
		return
	}

	if opts.UpdatePrices {
		for _, inst := range book.Store().Instruments() {
			if err := book.UpdatePriceHistory(inst.Name); err != nil {
				errPrinter.Ln("Error updating prices:", err)
			}
		}
	}

	rows := book.RealizedGains()
	totals := ptf.AggregateGainsByFiscalYear(rows, book.Currency())

	gainsModel := ptf.RenderGainsTableModel(rows, totals, opts.RenderFullValues)
	if err := writer.PrintRenderTable(outfmt.Gains, "gains", gainsModel); err != nil {
		return err
	}
	aggModel := ptf.RenderAggregateGainsTableModel(totals, opts.RenderFullValues)
	if err := writer.PrintRenderTable(outfmt.AggregateGains, "aggregate-gains", aggModel); err != nil {
		return err
	}
	holdingsModel := ptf.RenderHoldingsTableModel(book.Holdings(), opts.RenderFullValues)
	if err := writer.PrintRenderTable(outfmt.Holdings, "holdings", holdingsModel); err != nil {
		return err
	}
	return retErr
}
