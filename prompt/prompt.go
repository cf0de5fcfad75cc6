// Package prompt collects the values for a new resource entry from the
// user. The interactive implementation is survey-based; callers that
// already have all values (flags, scripts) bypass it entirely.
package prompt

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"

	"github.com/minios-linux/reskit/resx"
)

// Request describes what to ask for. An empty Key means the key itself
// must be collected too. The labels come from the resolved language
// configuration, e.g. "English Translation".
type Request struct {
	Key            string
	PrimaryLabel   string
	SecondaryLabel string
}

// Result carries the collected values. SecondaryValue may be empty; the
// secondary translation is optional.
type Result struct {
	Key            string
	PrimaryValue   string
	SecondaryValue string
}

// Prompter collects a Result for a Request.
type Prompter interface {
	Collect(req Request) (Result, error)
}

// ---------------------------------------------------------------------------
// Survey prompter
// ---------------------------------------------------------------------------

// SurveyPrompter asks on the terminal using survey input prompts.
type SurveyPrompter struct{}

// validKey adapts the store's key rule to a survey validator.
func validKey(ans interface{}) error {
	s, ok := ans.(string)
	if !ok || !resx.ValidKey(s) {
		return fmt.Errorf("key must be a letter or underscore followed by letters, digits or underscores")
	}
	return nil
}

// Collect asks for the key (when not supplied), the primary value, and
// the secondary value. The primary value is required; the secondary one
// may be left empty.
func (SurveyPrompter) Collect(req Request) (Result, error) {
	res := Result{Key: req.Key}

	if res.Key == "" {
		q := &survey.Input{Message: "Resource key:"}
		if err := survey.AskOne(q, &res.Key, survey.WithValidator(validKey)); err != nil {
			return Result{}, err
		}
	}

	primary := &survey.Input{Message: req.PrimaryLabel + ":"}
	if err := survey.AskOne(primary, &res.PrimaryValue, survey.WithValidator(survey.Required)); err != nil {
		return Result{}, err
	}

	secondary := &survey.Input{Message: req.SecondaryLabel + " (optional):"}
	if err := survey.AskOne(secondary, &res.SecondaryValue); err != nil {
		return Result{}, err
	}

	return res, nil
}

// ---------------------------------------------------------------------------
// Static prompter
// ---------------------------------------------------------------------------

// StaticPrompter returns preset values without any terminal interaction.
// It backs the non-interactive flag path and the tests.
type StaticPrompter struct {
	Result Result
	Err    error
}

func (p StaticPrompter) Collect(req Request) (Result, error) {
	if p.Err != nil {
		return Result{}, p.Err
	}
	res := p.Result
	if res.Key == "" {
		res.Key = req.Key
	}
	return res, nil
}
