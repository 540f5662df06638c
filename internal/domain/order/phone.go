package order

import "strings"

// FormatPhone renders a phone number as "(XXX) XXX-XXXX" using the last ten
// digits. An eleven-digit number with a leading country-code "1" drops the
// prefix. Inputs with fewer than ten digits are passed through unchanged;
// formatting never fails.
func FormatPhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	d := digits.String()
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	if len(d) < 10 {
		return raw
	}
	d = d[len(d)-10:]

	return "(" + d[0:3] + ") " + d[3:6] + "-" + d[6:10]
}
