package client

import (
	"errors"
	"regexp"
	"strings"

	"github.com/dashgram/go-client/dashgram/tracklevel"
	"github.com/splitio/go-toolkit/v5/logging"
)

var eventNameRegexp = regexp.MustCompile(`^[a-zA-Z0-9][-_\.a-zA-Z0-9]{0,62}$`)

// inputValidation struct is responsible for checking any input of the track methods
type inputValidation struct {
	logger logging.LoggerInterface
}

// ValidateTrackInputs implements the validation for Track calls
func (i *inputValidation) ValidateTrackInputs(eventName string, level int) error {
	if strings.TrimSpace(eventName) == "" {
		return errors.New("Track: eventName must not be an empty String")
	}
	if !eventNameRegexp.MatchString(eventName) {
		return errors.New("Track: eventName must adhere to the regular expression ^[a-zA-Z0-9][-_\\.a-zA-Z0-9]{0,62}$")
	}
	if !tracklevel.Valid(level) {
		return errors.New("Track: level must be 1, 2 or 3")
	}
	return nil
}
