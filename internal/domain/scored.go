package domain

import "fmt"

// ScoredUser is the classifier output for one candidate.
type ScoredUser struct {
	UserID      int64
	IsLead      bool    // probability > decision threshold
	Probability float64 // positive-class probability in [0,1]
}

// Audience selects the candidate source and the target queue table.
type Audience string

const (
	// AudienceMobile covers app installs attributed via apps_flyer;
	// leads go to google_mobile_adwords_queue.
	AudienceMobile Audience = "mobile"

	// AudienceWeb covers registrations attributed via adwords click history;
	// leads go to google_adwords_queue.
	AudienceWeb Audience = "web"
)

// Validate returns an error for an unknown audience value.
func (a Audience) Validate() error {
	switch a {
	case AudienceMobile, AudienceWeb:
		return nil
	}
	return fmt.Errorf("unknown audience: %q", string(a))
}

// Audiences lists all audiences in processing order.
func Audiences() []Audience {
	return []Audience{AudienceMobile, AudienceWeb}
}
