package analytics

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"brokerage/server/internal/models"
)

// ParseAmount converts an upstream monetary or score value to a float. Missing, negative
// or non-numeric input yields 0. Currency affixes, spaces and thousands separators are stripped.
func ParseAmount(raw *string) float64 {
	v, ok := parseDecimal(raw)
	if !ok || v.IsNegative() {
		return 0
	}
	f, _ := v.Float64()
	return f
}

// ParseOptionalAmount is ParseAmount for fields where absence must stay distinguishable from 0.
func ParseOptionalAmount(raw *string) *float64 {
	v, ok := parseDecimal(raw)
	if !ok {
		return nil
	}
	if v.IsNegative() {
		v = decimal.Zero
	}
	f, _ := v.Float64()
	return &f
}

func parseDecimal(raw *string) (decimal.Decimal, bool) {
	if raw == nil {
		return decimal.Zero, false
	}
	s := cleanNumber(*raw)
	if s == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

var (
	plainNumber    = regexp.MustCompile(`^[0-9.,]+$`)
	exponentNumber = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?[eE][+-]?[0-9]+$`)
)

func isCurrencyAffix(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.Sc, r) || unicode.IsSpace(r)
}

// cleanNumber returns a string decimal.NewFromString accepts, or "" when raw is not a
// number. Currency prefixes and suffixes ("R$", "BRL") and whitespace are dropped; a sign
// is only accepted in first position.
func cleanNumber(raw string) string {
	s := strings.TrimSpace(raw)
	if exponentNumber.MatchString(s) {
		return s
	}

	s = strings.TrimFunc(s, isCurrencyAffix)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if !plainNumber.MatchString(s) {
		return ""
	}

	resolved, ok := resolveSeparators(s)
	if !ok {
		return ""
	}
	return sign + resolved
}

// resolveSeparators turns grouped digits into a plain decimal. When both '.' and ','
// appear the last one is the decimal separator. A single separator followed by exactly
// three digits is thousands grouping ("500.000", "1,000") unless the integer part is 0;
// any other single separator is decimal. Repeated separators must group by three.
func resolveSeparators(s string) (string, bool) {
	lastDot, lastComma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")

	if lastDot >= 0 && lastComma >= 0 {
		decimalSep, groupSep, at := ",", ".", lastComma
		if lastDot > lastComma {
			decimalSep, groupSep, at = ".", ",", lastDot
		}
		if strings.Count(s, decimalSep) > 1 || !validGrouping(s[:at], groupSep) {
			return "", false
		}
		return strings.ReplaceAll(s[:at], groupSep, "") + "." + s[at+1:], true
	}

	sep, at := ".", lastDot
	if lastComma >= 0 {
		sep, at = ",", lastComma
	}
	switch n := strings.Count(s, sep); {
	case n == 0:
		return s, true
	case n > 1:
		if !validGrouping(s, sep) {
			return "", false
		}
		return strings.ReplaceAll(s, sep, ""), true
	}

	whole, frac := s[:at], s[at+1:]
	if len(frac) == 3 && whole != "" && whole != "0" {
		return whole + frac, true
	}
	return whole + "." + frac, true
}

// validGrouping reports whether s is 1-3 leading digits followed by groups of exactly three.
func validGrouping(s, sep string) bool {
	groups := strings.Split(s, sep)
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// NormalizeStatus maps free-form status text onto the known property statuses.
func NormalizeStatus(raw *string) models.PropertyStatus {
	if raw == nil {
		return models.StatusUnknown
	}
	switch s := models.PropertyStatus(strings.ToLower(strings.TrimSpace(*raw))); s {
	case models.StatusAvailable, models.StatusSold, models.StatusReserved, models.StatusRented:
		return s
	default:
		return models.StatusUnknown
	}
}

var addressFields = []string{"street", "number", "complement", "neighborhood", "city", "state", "zip", "zip_code", "country"}

// NormalizeAddress flattens a plain, JSON-encoded string or JSON object address into one line.
func NormalizeAddress(raw *string) string {
	if raw == nil {
		return ""
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return ""
	}

	switch s[0] {
	case '"':
		var str string
		if err := json.Unmarshal([]byte(s), &str); err == nil {
			return strings.TrimSpace(str)
		}
	case '{':
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(s), &obj); err == nil {
			parts := make([]string, 0, len(addressFields))
			for _, key := range addressFields {
				if v := addressPart(obj[key]); v != "" {
					parts = append(parts, v)
				}
			}
			return strings.Join(parts, ", ")
		}
	}
	return s
}

func addressPart(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return decimal.NewFromFloat(t).String()
	default:
		return ""
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func NormalizeProperty(r models.PropertyRecord) models.Property {
	p := models.Property{
		ID:        r.ID,
		Title:     stringValue(r.Title),
		Price:     ParseAmount(r.Price),
		Status:    NormalizeStatus(r.Status),
		Type:      strings.ToLower(stringValue(r.PropertyType)),
		Bedrooms:  r.Bedrooms,
		Bathrooms: r.Bathrooms,
		Address:   NormalizeAddress(r.Address),
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Area != nil && *r.Area > 0 {
		area := *r.Area
		p.Area = &area
	}
	return p
}

func NormalizeProperties(records []models.PropertyRecord) []models.Property {
	out := make([]models.Property, 0, len(records))
	for _, r := range records {
		out = append(out, NormalizeProperty(r))
	}
	return out
}

func NormalizeClient(r models.ClientRecord) models.Client {
	c := models.Client{
		ID:        r.ID,
		Name:      stringValue(r.Name),
		Email:     strings.ToLower(stringValue(r.Email)),
		Phone:     stringValue(r.Phone),
		Status:    strings.ToLower(stringValue(r.Status)),
		CreatedAt: r.CreatedAt,
	}
	if r.IsOwner != nil {
		c.IsOwner = *r.IsOwner
	}
	return c
}

func NormalizeClients(records []models.ClientRecord) []models.Client {
	out := make([]models.Client, 0, len(records))
	for _, r := range records {
		out = append(out, NormalizeClient(r))
	}
	return out
}

// NormalizeLead parses the ML score and clamps it to [0,100]; an unparseable score leaves the lead unscored.
func NormalizeLead(r models.LeadRecord) models.Lead {
	l := models.Lead{
		ID:        r.ID,
		Name:      stringValue(r.Name),
		Email:     strings.ToLower(stringValue(r.Email)),
		Phone:     stringValue(r.Phone),
		Status:    models.LeadStatus(strings.ToLower(stringValue(r.Status))),
		BudgetMin: ParseOptionalAmount(r.BudgetMin),
		BudgetMax: ParseOptionalAmount(r.BudgetMax),
		CreatedAt: r.CreatedAt,
	}
	if score := ParseOptionalAmount(r.MLScore); score != nil {
		s := *score
		if s > 100 {
			s = 100
		}
		l.MLScore = &s
	}
	return l
}

func NormalizeLeads(records []models.LeadRecord) []models.Lead {
	out := make([]models.Lead, 0, len(records))
	for _, r := range records {
		out = append(out, NormalizeLead(r))
	}
	return out
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the timestamp layouts found in exported records. Empty or
// unparseable input yields nil.
func ParseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
