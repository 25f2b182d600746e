package domain

import "fmt"

// Topic is one of the fixed mention topics
type Topic string

const (
	TopicZoning        Topic = "zoning"
	TopicOpposition    Topic = "opposition"
	TopicEnvironmental Topic = "environmental"
	TopicAnnouncement  Topic = "announcement"
	TopicGovernment    Topic = "government"
	TopicLegal         Topic = "legal"
)

// Topics lists all accepted topics in prompt order
var Topics = []Topic{TopicZoning, TopicOpposition, TopicEnvironmental, TopicAnnouncement, TopicGovernment, TopicLegal}

// ParseTopic converts a raw string to Topic, only exact lowercase values are accepted
func ParseTopic(s string) (Topic, error) {
	t := Topic(s)
	for _, known := range Topics {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown topic %q", s)
}

// Importance is the editorial weight of a mention
type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

// ParseImportance converts a raw string to Importance, only exact lowercase values are accepted
func ParseImportance(s string) (Importance, error) {
	switch imp := Importance(s); imp {
	case ImportanceHigh, ImportanceMedium, ImportanceLow:
		return imp, nil
	default:
		return "", fmt.Errorf("unknown importance %q", s)
	}
}

// States is the closed set of US state codes, including DC
var States = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
	"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
	"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
	"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
	"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
	"DC",
}

var stateSet = func() map[string]struct{} {
	res := make(map[string]struct{}, len(States))
	for _, s := range States {
		res[s] = struct{}{}
	}
	return res
}()

// ParseState checks a two-letter uppercase state code
func ParseState(s string) (string, error) {
	if _, ok := stateSet[s]; !ok {
		return "", fmt.Errorf("unknown state %q", s)
	}
	return s, nil
}

// Place is the location extracted by classification, state is mandatory
type Place struct {
	City   string
	County string
	State  string
}

// Classification is the validated output of the classification service
type Classification struct {
	Location       Place
	Companies      []string
	GovEntities    []string
	Topics         []Topic
	Importance     Importance
	Summary        string
	RelevanceScore int
}
