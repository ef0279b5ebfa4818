package domain

// MissingTemperature is the dataset's sentinel for an absent reading,
// encoded "+9999" on the wire. The check is on the parsed integer, so a
// hypothetical "-9999" (-999.9°C) would still be admitted.
const MissingTemperature = 9999

// Accept reports whether a parsed candidate is admissible for aggregation:
// the reading must be present and its quality code must be one of the trusted
// codes {0, 1, 4, 5, 9}. Both conditions are independent, so evaluation order
// does not matter.
func Accept(c Candidate) bool {
	return c.Temperature != MissingTemperature && trustedQuality(c.Quality)
}

// trustedQuality reports whether a quality code comes from the source
// agency's passing QA outcomes. The set is an NCDC convention; codes outside
// it (suspect, erroneous, or missing QA) are excluded.
func trustedQuality(q byte) bool {
	switch q {
	case '0', '1', '4', '5', '9':
		return true
	default:
		return false
	}
}
