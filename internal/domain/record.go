package domain

import (
	"context"
	"errors"
	"fmt"
)

// Fixed-width field offsets into an NCDC record line, 0-indexed byte
// positions. These match the published dataset layout byte-for-byte;
// downstream correctness depends on exact alignment, so they are literal
// constants rather than anything inferred.
const (
	yearStart = 15
	yearEnd   = 19

	temperatureStart = 87
	temperatureEnd   = 92

	qualityPos = 92

	// MinRecordLen is the shortest line that can carry all three fields.
	MinRecordLen = qualityPos + 1
)

var (
	// ErrTooShort marks a line too short to contain the temperature and
	// quality fields. Expected in dirty data; never fatal.
	ErrTooShort = errors.New("record shorter than minimum length")

	// ErrMalformedTemperature marks a temperature field that is not a sign
	// byte followed by four digits.
	ErrMalformedTemperature = errors.New("malformed temperature field")
)

// RawLine is one unprocessed record line plus the transport metadata needed
// to acknowledge it. Batch sources leave everything but Text zero.
type RawLine struct {
	Text      string
	Topic     string
	Partition int
	Offset    int64
	Commit    func(ctx context.Context) error
}

// Candidate is a successfully parsed record, not yet quality-filtered.
type Candidate struct {
	Year        string
	Temperature int
	Quality     byte
}

// AcceptedRecord is a candidate that passed filtering: the unit of
// aggregation and the payload of the accepted-record stream.
type AcceptedRecord struct {
	Year        string `json:"year"`
	Temperature int    `json:"temperature"`
}

// String renders the record in the two-field stream format consumed by the
// downstream GROUP BY stage: "<year> <temperature>", no quoting.
func (r AcceptedRecord) String() string {
	return fmt.Sprintf("%s %d", r.Year, r.Temperature)
}

// Parse decodes one fixed-width NCDC line into a Candidate.
// It returns ErrTooShort for lines under MinRecordLen and
// ErrMalformedTemperature when the temperature field is not [+-] followed by
// exactly four digits. The year is extracted verbatim: implausible calendar
// years are a downstream concern, not a parse failure.
func Parse(line string) (Candidate, error) {
	if len(line) < MinRecordLen {
		return Candidate{}, ErrTooShort
	}

	temp, err := parseTemperature(line[temperatureStart:temperatureEnd])
	if err != nil {
		return Candidate{}, err
	}

	return Candidate{
		Year:        line[yearStart:yearEnd],
		Temperature: temp,
		Quality:     line[qualityPos],
	}, nil
}

// parseTemperature decodes a five-byte signed field: '+' is stripped, '-' is
// preserved, and the remaining four bytes must all be digits. strconv.Atoi is
// deliberately avoided here: it would tolerate a second sign byte inside the
// digit run.
func parseTemperature(field string) (int, error) {
	sign := field[0]
	if sign != '+' && sign != '-' {
		return 0, ErrMalformedTemperature
	}

	v := 0
	for i := 1; i < len(field); i++ {
		d := field[i]
		if d < '0' || d > '9' {
			return 0, ErrMalformedTemperature
		}
		v = v*10 + int(d-'0')
	}

	if sign == '-' {
		v = -v
	}
	return v, nil
}
