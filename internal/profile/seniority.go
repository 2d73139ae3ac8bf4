package profile

import (
	"fmt"
	"reflect"
	"strings"
)

// Seniority is an ordinal career level. The numeric order matters: scoring
// measures the distance between the extracted and the target level.
type Seniority int

const (
	SeniorityUnknown Seniority = iota
	SeniorityIntern
	SeniorityJunior
	SeniorityMid
	SenioritySenior
	SeniorityStaff
	SeniorityPrincipal
)

var seniorityNames = map[Seniority]string{
	SeniorityUnknown:   "unknown",
	SeniorityIntern:    "intern",
	SeniorityJunior:    "junior",
	SeniorityMid:       "mid",
	SenioritySenior:    "senior",
	SeniorityStaff:     "staff",
	SeniorityPrincipal: "principal",
}

func (s Seniority) String() string {
	if name, ok := seniorityNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSeniority maps common level spellings onto the ordinal scale. Unknown
// spellings yield SeniorityUnknown without an error: extraction output is
// model text and "not mapped" means "not mentioned", never a failure.
func ParseSeniority(s string) Seniority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "intern", "internship", "trainee":
		return SeniorityIntern
	case "junior", "jr", "entry", "entry-level", "entry level", "associate":
		return SeniorityJunior
	case "mid", "middle", "mid-level", "mid level", "intermediate", "regular":
		return SeniorityMid
	case "senior", "sr":
		return SenioritySenior
	case "staff", "lead", "team lead", "tech lead":
		return SeniorityStaff
	case "principal", "distinguished", "architect":
		return SeniorityPrincipal
	default:
		return SeniorityUnknown
	}
}

// Distance returns the absolute number of levels between two known
// seniorities. Comparisons involving SeniorityUnknown are meaningless and
// reported as -1.
func (s Seniority) Distance(other Seniority) int {
	if s == SeniorityUnknown || other == SeniorityUnknown {
		return -1
	}
	d := int(s) - int(other)
	if d < 0 {
		d = -d
	}
	return d
}

func decodeSeniority(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(Seniority(0)) || from.Kind() != reflect.String {
		return data, nil
	}
	return ParseSeniority(data.(string)), nil
}

func decodeRemotePolicy(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(RemotePolicy("")) || from.Kind() != reflect.String {
		return data, nil
	}
	policy, err := ParseRemotePolicy(data.(string))
	if err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	return policy, nil
}
