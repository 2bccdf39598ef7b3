package services

import (
	"unicode/utf8"

	"github.com/dmitrijs2005/aiinterview/internal/common"
)

// Column widths of the users, candidates, employers and interviews tables.
const (
	maxEmailLen       = 120
	maxNameLen        = 50
	maxPhoneLen       = 20
	maxJobTitleLen    = 100
	maxCompanyNameLen = 100
	maxIndustryLen    = 100
	maxCompanySizeLen = 50
	maxWebsiteLen     = 255
	maxTitleLen       = 100
)

type fieldLimit struct {
	name  string
	value string
	max   int
}

// checkLengths rejects the first field longer than its column allows.
// Lengths are counted in characters, as VARCHAR(n) does.
func checkLengths(fields ...fieldLimit) error {
	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > f.max {
			return common.NewValidationError("Field %s must be at most %d characters", f.name, f.max)
		}
	}
	return nil
}
