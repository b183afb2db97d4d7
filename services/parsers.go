package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	priceStripRegex   = regexp.MustCompile(`[^\d,.\-\s]`)
	priceTokenRegex   = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	bathDigitsRegex   = regexp.MustCompile(`\d+(\.\d+)?`)
	bathNumberRegex   = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	amenitySplitRegex = regexp.MustCompile(`[,|]`)

	dashReplacer = strings.NewReplacer(
		"\u00a0", " ",
		"\u202f", " ",
		"\u2013", "-",
		"\u2014", "-",
	)
)

// ParsePrice converts a raw price cell into a number. It accepts decimal
// commas, thousands separators, ranges like "120-150" (mean of both ends)
// and stray currency symbols. ok is false when nothing usable is found.
func ParsePrice(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	s = dashReplacer.Replace(s)
	s = priceStripRegex.ReplaceAllString(s, "")

	if strings.Contains(s, "-") && !strings.HasPrefix(s, "-") {
		nums := priceTokenRegex.FindAllString(s, -1)
		if len(nums) >= 2 {
			a, errA := strconv.ParseFloat(strings.ReplaceAll(nums[0], ",", "."), 64)
			b, errB := strconv.ParseFloat(strings.ReplaceAll(nums[1], ",", "."), 64)
			if errA == nil && errB == nil {
				return (a + b) / 2, true
			}
		}
	}

	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "'", "")
	if strings.Count(s, ",") == 1 && isAllDigits(s[strings.Index(s, ",")+1:]) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if strings.Count(s, ".") > 1 {
		s = strings.ReplaceAll(s, ".", "")
	}

	return parseFinite(s)
}

// ParseBathrooms extracts a bathroom count from text like "1.5 baths"
// or "Half-bath"
func ParseBathrooms(raw string) (float64, bool) {
	s := strings.ToLower(raw)
	if strings.Contains(s, "half") && !bathDigitsRegex.MatchString(s) {
		return 0.5, true
	}
	m := bathNumberRegex.FindStringSubmatch(s)
	if len(m) < 2 {
		return 0, false
	}
	return parseFinite(m[1])
}

// ParseNumeric coerces a cell to a number; invalid input is not ok
func ParseNumeric(raw string) (float64, bool) {
	return parseFinite(raw)
}

// CountAmenities counts the non-empty tokens of an amenities cell such as
// `["Wifi", "Kitchen"]` or "Wifi|Kitchen"
func CountAmenities(raw string) int {
	if raw == "nan" || raw == "" || raw == "[]" {
		return 0
	}
	count := 0
	for _, a := range amenitySplitRegex.Split(strings.Trim(raw, "[]"), -1) {
		if strings.TrimSpace(a) != "" {
			count++
		}
	}
	return count
}

func parseFinite(s string) (float64, bool) {
	val, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}
	return val, true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
