package universe

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/GRTran/backtester/pkg/errors"
	"github.com/gocarina/gocsv"
)

// Member is one row of a universe reference table such as the S&P 500 list.
type Member struct {
	Symbol      string `csv:"symbol"`
	Security    string `csv:"security"`
	Sector      string `csv:"GICS sector"`
	SubIndustry string `csv:"GICS sub-industry"`
}

// Universe is a named set of eligible securities.
type Universe struct {
	Name    string
	Members []Member
}

// Load reads a universe table from a CSV file with a symbol, security,
// GICS sector, GICS sub-industry header. Extra columns, such as a leading
// index column, are ignored. The universe is named after the file.
func Load(path string) (*Universe, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open universe %s", path)
	}
	defer file.Close()

	var rows []Member
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMalformedData, err, "failed to parse universe %s", path)
	}

	members := make([]Member, 0, len(rows))

	for _, row := range rows {
		row.Symbol = strings.TrimSpace(row.Symbol)
		if row.Symbol == "" {
			continue
		}

		row.Security = strings.TrimSpace(row.Security)
		row.Sector = strings.TrimSpace(row.Sector)
		row.SubIndustry = strings.TrimSpace(row.SubIndustry)
		members = append(members, row)
	}

	if len(members) == 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidUniverse, "universe %s has no symbols", path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return &Universe{Name: name, Members: members}, nil
}

// Symbols returns the distinct member symbols in table order.
func (u *Universe) Symbols() []string {
	seen := make(map[string]struct{}, len(u.Members))
	symbols := make([]string, 0, len(u.Members))

	for _, m := range u.Members {
		if _, ok := seen[m.Symbol]; ok {
			continue
		}

		seen[m.Symbol] = struct{}{}
		symbols = append(symbols, m.Symbol)
	}

	return symbols
}

// Sector returns the members whose GICS sector matches sector, ignoring case.
func (u *Universe) Sector(sector string) *Universe {
	filtered := &Universe{Name: u.Name + ":" + sector}

	for _, m := range u.Members {
		if strings.EqualFold(m.Sector, strings.TrimSpace(sector)) {
			filtered.Members = append(filtered.Members, m)
		}
	}

	return filtered
}
