package portfolio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sharelot/sharelot/date"
	"github.com/sharelot/sharelot/fx"
	"github.com/sharelot/sharelot/money"
	"github.com/sharelot/sharelot/util"
)

// CsvDateFormat is the layout used for every date column. Defaults to
// ISO dates; cmd overrides it from a flag.
var CsvDateFormat string = "2006-01-02"

// CommandAction names what a CSV row asks the book to do.
type CommandAction int

const (
	NoAction CommandAction = iota
	BuyAction
	SellAction
	SplitAction
	AdjustmentAction
)

func (a CommandAction) String() string {
	switch a {
	case BuyAction:
		return "BUY"
	case SellAction:
		return "SELL"
	case SplitAction:
		return "SPLIT"
	case AdjustmentAction:
		return "ADJUSTMENT"
	}
	return "NONE"
}

// Command is one parsed CSV row, not yet applied to a book.
type Command struct {
	Security string
	Date     date.Date
	Action   CommandAction

	Shares         decimal.Decimal
	AmountPerShare decimal.Decimal
	Commission     decimal.Decimal
	Currency       money.Currency
	ExchangeRate   decimal.Decimal
	Strategy       Strategy

	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal

	Amount        decimal.Decimal
	FiscalYearEnd date.Date
	Method        AllocationMethod

	Memo string

	// ReadIndex preserves file order for same-date commands.
	ReadIndex int
}

type ColParser func(string, *Command) error

var colParserMap = map[string]ColParser{
	"security":        parseSecurity,
	"date":            parseCmdDate,
	"action":          parseAction,
	"shares":          parseShares,
	"amount/share":    parseAmountPerShare,
	"commission":      parseCommission,
	"currency":        parseCurrency,
	"exchange rate":   parseExchangeRate,
	"strategy":        parseCmdStrategy,
	"quantity before": parseQuantityBefore,
	"quantity after":  parseQuantityAfter,
	"amount":          parseAmount,
	"fy end":          parseFiscalYearEnd,
	"method":          parseMethod,
	"memo":            parseMemo,
}

var ColNames []string

func init() {
	ColNames = make([]string, 0, len(colParserMap))
	for name := range colParserMap {
		ColNames = append(ColNames, name)
	}
	sort.Strings(ColNames)
}

func DefaultCommand() *Command {
	return &Command{
		Strategy: MinCGT,
		Method:   QtyHeld,
	}
}

func CheckCommandSanity(cmd *Command) error {
	if cmd.Security == "" {
		return fmt.Errorf("row has no security")
	} else if cmd.Date.IsZero() {
		return fmt.Errorf("row has no date")
	} else if cmd.Action == NoAction {
		return fmt.Errorf("row has no action (buy, sell, split, adjustment)")
	}
	switch cmd.Action {
	case BuyAction, SellAction:
		if !cmd.Shares.IsPositive() {
			return fmt.Errorf("%s of %s needs a positive share count", cmd.Action, cmd.Security)
		}
	case SplitAction:
		if !cmd.QuantityBefore.IsPositive() || !cmd.QuantityAfter.IsPositive() {
			return fmt.Errorf("split of %s needs positive quantity before and after", cmd.Security)
		}
	case AdjustmentAction:
		if cmd.Amount.IsZero() {
			return fmt.Errorf("adjustment of %s needs a non-zero amount", cmd.Security)
		}
		if cmd.FiscalYearEnd.IsZero() {
			return fmt.Errorf("adjustment of %s needs a fy end date", cmd.Security)
		}
	}
	return nil
}

// ParseCommandCsv reads header-mapped rows from r. desc names the source
// in errors, typically a file name.
func ParseCommandCsv(r io.Reader, desc string) ([]*Command, error) {
	csvR := csv.NewReader(r)
	csvR.FieldsPerRecord = -1
	records, err := csvR.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV %s: %v", desc, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no rows found in %s", desc)
	}

	header := records[0]
	colParsers := make([]ColParser, len(header))
	warned := util.NewSet[string]()
	for i, col := range header {
		sanCol := strings.TrimSpace(strings.ToLower(col))
		if parser, ok := colParserMap[sanCol]; ok {
			colParsers[i] = parser
		} else {
			if !warned.Has(sanCol) {
				warned.Add(sanCol)
				fmt.Fprintf(os.Stderr, "Warning: Unrecognized column %s\n", sanCol)
			}
			colParsers[i] = parseNothing
		}
	}

	cmds := make([]*Command, 0, len(records)-1)
	for i, record := range records[1:] {
		cmd := DefaultCommand()
		cmd.ReadIndex = i
		for j, col := range record {
			if j >= len(colParsers) {
				break
			}
			if err := colParsers[j](col, cmd); err != nil {
				return nil, fmt.Errorf("error parsing %s at line:col %d:%d: %v", desc, i+2, j, err)
			}
		}
		if err := CheckCommandSanity(cmd); err != nil {
			return nil, fmt.Errorf("error parsing %s at line %d: %v", desc, i+2, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func ParseCommandCsvFile(fname string) ([]*Command, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return ParseCommandCsv(fp, fname)
}

// SortCommands orders commands by date, preserving file order for same
// day rows.
func SortCommands(cmds []*Command) {
	sort.SliceStable(cmds, func(i, j int) bool {
		if cmds[i].Date.Equal(cmds[j].Date) {
			return cmds[i].ReadIndex < cmds[j].ReadIndex
		}
		return cmds[i].Date.Before(cmds[j].Date)
	})
}

// ApplyCommands sorts and applies commands to the book.
func ApplyCommands(book *Book, cmds []*Command) error {
	SortCommands(cmds)
	for _, cmd := range cmds {
		if err := applyCommand(book, cmd); err != nil {
			return fmt.Errorf("%s %s on %s: %w", cmd.Action, cmd.Security, cmd.Date, err)
		}
	}
	return nil
}

func applyCommand(book *Book, cmd *Command) error {
	currency := cmd.Currency
	if currency == "" {
		currency = book.Currency()
	}
	trade := Trade{
		Instrument: cmd.Security,
		Date:       cmd.Date,
		Quantity:   cmd.Shares,
		UnitPrice:  money.New(cmd.AmountPerShare, currency),
		Brokerage:  money.New(cmd.Commission, currency),
		Memo:       cmd.Memo,
	}
	if !cmd.ExchangeRate.IsZero() {
		trade.Rate = &fx.Rate{
			From:       currency,
			To:         book.Currency(),
			Date:       cmd.Date,
			Multiplier: cmd.ExchangeRate,
		}
	}

	switch cmd.Action {
	case BuyAction:
		_, err := book.ProcessBuy(&Buy{Trade: trade})
		return err
	case SellAction:
		_, err := book.ProcessSell(&Sell{Trade: trade, Strategy: cmd.Strategy})
		return err
	case SplitAction:
		return book.ProcessSplit(&ShareSplit{
			Instrument:     cmd.Security,
			QuantityBefore: cmd.QuantityBefore,
			QuantityAfter:  cmd.QuantityAfter,
			Date:           cmd.Date,
		})
	case AdjustmentAction:
		return book.ProcessAdjustment(&CostBaseAdjustment{
			Instrument:       cmd.Security,
			CostBaseIncrease: money.New(cmd.Amount, currency),
			FiscalYearEnd:    cmd.FiscalYearEnd,
			Method:           cmd.Method,
		})
	}
	return fmt.Errorf("action %s is not applicable", cmd.Action)
}

func parseNothing(string, *Command) error { return nil }

func parseSecurity(data string, cmd *Command) error {
	cmd.Security = data
	return nil
}

func parseCmdDate(data string, cmd *Command) error {
	d, err := date.Parse(CsvDateFormat, data)
	if err != nil {
		return fmt.Errorf("failed to parse date %q: %v", data, err)
	}
	cmd.Date = d
	return nil
}

func parseAction(data string, cmd *Command) error {
	switch strings.TrimSpace(strings.ToLower(data)) {
	case "buy":
		cmd.Action = BuyAction
	case "sell":
		cmd.Action = SellAction
	case "split":
		cmd.Action = SplitAction
	case "adjustment":
		cmd.Action = AdjustmentAction
	default:
		return fmt.Errorf("invalid action %q", data)
	}
	return nil
}

func parseDecimalInto(data string, field *decimal.Decimal, what string) error {
	if strings.TrimSpace(data) == "" {
		return nil
	}
	d, err := decimal.NewFromString(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s %q", what, data)
	}
	*field = d
	return nil
}

func parseShares(data string, cmd *Command) error {
	return parseDecimalInto(data, &cmd.Shares, "shares")
}

func parseAmountPerShare(data string, cmd *Command) error {
	return parseDecimalInto(data, &cmd.AmountPerShare, "amount/share")
}

func parseCommission(data string, cmd *Command) error {
	return parseDecimalInto(data, &cmd.Commission, "commission")
}

func parseCurrency(data string, cmd *Command) error {
	cmd.Currency = money.Currency(strings.ToUpper(strings.TrimSpace(data)))
	return nil
}

func parseExchangeRate(data string, cmd *Command) error {
	return parseDecimalInto(data, &cmd.ExchangeRate, "exchange rate")
}

func parseCmdStrategy(data string, cmd *Command) error {
	if strings.TrimSpace(data) == "" {
		return nil
	}
	strategy, err := ParseStrategy(strings.ToUpper(strings.TrimSpace(data)))
	if err != nil {
		return err
	}
	cmd.Strategy = strategy
	return nil
}

func parseQuantityBefore(data string, cmd *Command) error {
	return parseDecimalInto(data, &cmd.QuantityBefore, "quantity before")
}

func parseQuantityAfter(data string, cmd *Command) error {
	return parseDecimalInto(data, &cmd.QuantityAfter, "quantity after")
}

func parseAmount(data string, cmd *Command) error {
	return parseDecimalInto(data, &cmd.Amount, "amount")
}

func parseFiscalYearEnd(data string, cmd *Command) error {
	if strings.TrimSpace(data) == "" {
		return nil
	}
	d, err := date.Parse(CsvDateFormat, data)
	if err != nil {
		return fmt.Errorf("failed to parse fy end %q: %v", data, err)
	}
	cmd.FiscalYearEnd = d
	return nil
}

func parseMethod(data string, cmd *Command) error {
	if strings.TrimSpace(data) == "" {
		return nil
	}
	method, err := ParseAllocationMethod(strings.ToUpper(strings.TrimSpace(data)))
	if err != nil {
		return err
	}
	cmd.Method = method
	return nil
}

func parseMemo(data string, cmd *Command) error {
	cmd.Memo = data
	return nil
}
