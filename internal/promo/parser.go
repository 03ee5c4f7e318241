package promo

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	apperrors "sjsage522/promonotifier/pkg/errors"
)

const (
	// parserSource names the parser in CheckError messages
	parserSource = "code_table"

	// cellsPerRow is the column count of the exchange code table:
	// code, rewards, occasion, date, expired
	cellsPerRow = 5

	// notExpired is the literal the expired column holds for usable codes
	notExpired = "No"
)

// ParseCodes extracts the exchange codes from every table body inside <main>.
//
// Rows with five data cells become entries, rows with five header cells are
// skipped, and any other row aborts parsing with a parsing CheckError.
// No partial list is returned on failure.
func ParseCodes(r io.Reader) (CodeList, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, apperrors.NewParsing(parserSource, "failed to parse HTML document", err)
	}

	main := doc.Find("main").First()
	if main.Length() == 0 {
		return nil, apperrors.NewParsing(parserSource, "<main> not found", nil)
	}

	var codes CodeList
	var parseErr error
	main.Find("tbody").EachWithBreak(func(_ int, body *goquery.Selection) bool {
		body.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
			entry, ok, err := parseRow(row)
			if err != nil {
				parseErr = apperrors.NewParsing(parserSource, fmt.Sprintf("invalid <td> number in row %d", i), err)
				return false
			}
			if ok {
				codes = append(codes, entry)
			}
			return true
		})
		return parseErr == nil
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return codes, nil
}

// parseRow returns ok=false for header rows
func parseRow(row *goquery.Selection) (CodeEntry, bool, error) {
	cells := row.Find("td")
	if cells.Length() != cellsPerRow {
		if headers := row.Find("th").Length(); headers != cellsPerRow {
			return CodeEntry{}, false, fmt.Errorf("found %d data and %d header cells", cells.Length(), headers)
		}
		return CodeEntry{}, false, nil
	}

	return CodeEntry{
		Code:    strings.TrimSpace(cells.Eq(0).Text()),
		Expired: strings.TrimSpace(cells.Eq(cellsPerRow-1).Text()) != notExpired,
	}, true, nil
}
