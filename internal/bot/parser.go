package bot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Richetti123/CashFlow/internal/domain"
)

// Batch registration line: `<name> <+number> <day> de cada <unit> (<amount><flag>)`
// e.g. `Victoria +569292929292 21 de cada mes ($3000🇨🇱)`.
// The flag is one or more regional-indicator glyphs; the amount is any
// non-space token before it (currency formats vary by locale).
var batchLineRe = regexp.MustCompile(
	`^(?P<name>.+?)\s+(?P<number>\+\d+)\s+(?P<day>\d{1,2})\s+de\s+cada\s+\S+\s+\(\s*(?P<amount>[^\s()\x{1F1E6}-\x{1F1FF}]+)\s*(?P<flag>[\x{1F1E6}-\x{1F1FF}]+)\s*\)$`,
)

type ParsedClient struct {
	Name   string
	Number string
	Day    int
	Amount string
	Flag   string
}

// ParseBatchLine parses one registration line against the fixed grammar.
func ParseBatchLine(line string) (ParsedClient, error) {
	line = strings.TrimSpace(line)
	m := batchLineRe.FindStringSubmatch(line)
	if m == nil {
		return ParsedClient{}, fmt.Errorf("formato incorrecto o faltan datos (nombre, +número, día, monto y bandera)")
	}

	var p ParsedClient
	for i, name := range batchLineRe.SubexpNames() {
		switch name {
		case "name":
			p.Name = strings.TrimSpace(m[i])
		case "number":
			p.Number = m[i]
		case "day":
			p.Day, _ = strconv.Atoi(m[i])
		case "amount":
			p.Amount = strings.TrimSpace(m[i])
		case "flag":
			p.Flag = strings.TrimSpace(m[i])
		}
	}

	if err := domain.ValidateBillingDay(p.Day); err != nil {
		return ParsedClient{}, err
	}
	if err := domain.ValidateNumber(p.Number); err != nil {
		return ParsedClient{}, err
	}
	return p, nil
}

// BatchOutcome is the per-line result of a batch registration.
type BatchOutcome struct {
	Added  []string // client names committed
	Failed []string // "<line> (<reason>)" entries
}
