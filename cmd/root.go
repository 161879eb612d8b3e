package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sharelot/sharelot/app"
	"github.com/sharelot/sharelot/app/outfmt"
	"github.com/sharelot/sharelot/fiscal"
	"github.com/sharelot/sharelot/fx"
	"github.com/sharelot/sharelot/log"
	"github.com/sharelot/sharelot/money"
	ptf "github.com/sharelot/sharelot/portfolio"
)

const (
	CsvDateFormatDefault string = "2006-01-02"
)

var BaseCurrency string
var PolicyOpt string
var PlaceholderOpt string
var RatesDir string
var MarketDataURL string
var FyStart string
var CsvOutputDir string
var UpdatePrices = false
var RenderFullValues = false
var AuditLog = false

func parseFiscalYearType() (fiscal.YearType, error) {
	switch strings.ToLower(FyStart) {
	case "", "july", "australian":
		return fiscal.Australian(), nil
	case "january", "calendar":
		return fiscal.Calendar(), nil
	}
	return fiscal.YearType{}, fmt.Errorf("invalid fiscal year start '%s' (want july or january)", FyStart)
}

func parsePlaceholderPolicy() (fx.PlaceholderPolicy, error) {
	switch strings.ToLower(PlaceholderOpt) {
	case "", "none":
		return fx.NoPlaceholder, nil
	case "one":
		return fx.PlaceholderOne, nil
	}
	return fx.NoPlaceholder, fmt.Errorf("invalid placeholder policy '%s' (want none or one)", PlaceholderOpt)
}

func runRootCmd(cmd *cobra.Command, args []string) {
	errPrinter := &log.StderrErrorPrinter{}

	fyType, err := parseFiscalYearType()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	policy, err := ptf.ParseAllocationPolicy(PolicyOpt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	placeholder, err := parsePlaceholderPolicy()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cache := &fx.CsvRatesCache{Dir: RatesDir}

	var writer outfmt.ReportWriter
	if CsvOutputDir != "" {
		writer, err = outfmt.NewCSVWriter(CsvOutputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		writer = outfmt.NewSTDWriter(os.Stdout)
	}

	opts := app.Options{
		Currency:          money.Currency(strings.ToUpper(BaseCurrency)),
		FiscalYearType:    fyType,
		Policy:            policy,
		PlaceholderPolicy: placeholder,
		RatesCache:        cache,
		MarketDataURL:     MarketDataURL,
		UpdatePrices:      UpdatePrices,
		RenderFullValues:  RenderFullValues,
	}
	if AuditLog {
		opts.AuditWriter = os.Stderr
	}

	readers := make([]app.DescribedReader, 0, len(args))
	var files []*os.File
	defer func() {
		for _, fp := range files {
			fp.Close()
		}
	}()
	for _, csvName := range args {
		fp, err := os.Open(csvName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		files = append(files, fp)
		readers = append(readers, app.DescribedReader{Desc: csvName, Reader: fp})
	}

	if err := app.RunApp(readers, opts, writer, errPrinter); err != nil {
		os.Exit(1)
	}
}

func cmdName() string {
	binName := os.Args[0]
	return filepath.Base(binName)
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   cmdName() + " [CSV_FILE ...]",
	Short: "Parcel-tracked capital gains calculation tool",
	Long: fmt.Sprintf(
		`A cli tool which tracks share parcels through buys, sells, splits and
cost base adjustments, and reports realized capital gains per fiscal year.

Trades can be in other currencies; conversion rates are fetched and cached
when a rate source is configured.

Each CSV provided should contain a header with these column names:
%s
Non-essential columns like exchange rates and currency columns are optional.

Exchange rates are always provided to be multiplied with the given amount to
produce the equivalent value in the base currency.
 `, strings.Join(ptf.ColNames, ", ")),
	Run:     runRootCmd,
	Args:    cobra.MinimumNArgs(1),
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&log.VerboseEnabled, "verbose", "v", false,
		"Print verbose output")
	RootCmd.PersistentFlags().StringVar(&ptf.CsvDateFormat, "date-fmt", CsvDateFormatDefault,
		"Format of how dates appear in the csv file. Must represent Jan 2, 2006")
	RootCmd.PersistentFlags().StringVarP(&BaseCurrency, "base-currency", "c", "AUD",
		"Currency trades are converted into for reporting")
	RootCmd.PersistentFlags().StringVar(&PolicyOpt, "policy", "partial",
		"Allocation policy when a sell exceeds held quantity: partial or strict")
	RootCmd.PersistentFlags().StringVar(&PlaceholderOpt, "placeholder", "none",
		"Rate placeholder policy when a rate cannot be fetched: none or one")
	RootCmd.PersistentFlags().StringVar(&RatesDir, "rates-dir", "",
		"Directory for the exchange rate cache (default ~/.sharelot)")
	RootCmd.PersistentFlags().StringVar(&MarketDataURL, "market-data-url", "",
		"Base URL of the exchange rate and price history source")
	RootCmd.PersistentFlags().StringVar(&FyStart, "fy-start", "july",
		"Fiscal year start: july (Australian) or january (calendar)")
	RootCmd.PersistentFlags().StringVar(&CsvOutputDir, "csv-output-dir", "",
		"Write reports as CSV files into this directory instead of stdout")
	RootCmd.PersistentFlags().BoolVar(&UpdatePrices, "update-prices", false,
		"Refresh price history from the market data source before reporting holdings")
	RootCmd.PersistentFlags().BoolVar(&RenderFullValues, "full-values", false,
		"Print all decimal places of dollar values")
	RootCmd.PersistentFlags().BoolVar(&AuditLog, "audit-log", false,
		"Print an audit event log to stderr")
}
