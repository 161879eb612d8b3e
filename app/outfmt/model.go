package outfmt

import (
	"github.com/sharelot/sharelot/portfolio"
)

type OutputType int

const (
	Gains OutputType = iota
	AggregateGains
	Holdings
)

type ReportWriter interface {
	PrintRenderTable(outType OutputType, name string, tableModel *portfolio.RenderTable) error
}
