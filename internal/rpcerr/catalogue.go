package rpcerr

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

//go:embed catalogue.csv
var catalogueCSV string

// entry is one row of the embedded catalogue: a known error_code/pattern
// pair with a human-readable description, matched against a parsed Error
// to produce a better log line than the bare error_message.
type entry struct {
	code    int32
	pattern *regexp.Regexp
	desc    string
}

var (
	catalogueOnce sync.Once
	catalogue     []entry
	catalogueErr  error
)

func loadCatalogue() {
	r := csv.NewReader(strings.NewReader(catalogueCSV))
	r.FieldsPerRecord = 3
	records, err := r.ReadAll()
	if err != nil {
		catalogueErr = fmt.Errorf("rpcerr: parse catalogue.csv: %w", err)
		return
	}
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		var code int32
		if _, err := fmt.Sscanf(rec[0], "%d", &code); err != nil {
			catalogueErr = fmt.Errorf("rpcerr: catalogue.csv row %d: invalid code %q", i, rec[0])
			return
		}
		pat := "^" + regexp.QuoteMeta(rec[1])
		pat = strings.ReplaceAll(pat, regexp.QuoteMeta("X"), `(-?\d+)`)
		re, err := regexp.Compile(pat + "$")
		if err != nil {
			catalogueErr = fmt.Errorf("rpcerr: catalogue.csv row %d: %w", i, err)
			return
		}
		catalogue = append(catalogue, entry{code: code, pattern: re, desc: rec[2]})
	}
}

// Describe looks up e's error_message against the embedded catalogue and
// returns a human-readable description, or "" if no entry matches. This
// is purely informational (logging/metrics labels); recovery decisions go
// through Parse/IsFloodWait/IsMigrate/Recoverable instead.
func Describe(e *Error) string {
	catalogueOnce.Do(loadCatalogue)
	if catalogueErr != nil {
		return ""
	}
	for _, ent := range catalogue {
		if ent.code != 0 && ent.code != e.Code {
			continue
		}
		if ent.pattern.MatchString(e.Message) {
			return ent.desc
		}
	}
	return ""
}
