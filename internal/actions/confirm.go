package actions

import (
	"github.com/AlecAivazis/survey/v2"

	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/errors"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/runtime"
)

// SurveyConfirm asks a yes/no question on the terminal, defaulting to no
func SurveyConfirm(message string) (bool, error) {
	confirmed := false
	prompt := &survey.Confirm{
		Message: message,
		Default: false,
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, err
	}
	return confirmed, nil
}

// confirm returns errors.ErrAborted when the user declines. It is a no-op
// when the context has no confirmer (non-interactive or --yes).
func confirm(ctx *runtime.Context, message string) error {
	if ctx.Confirm == nil {
		return nil
	}
	ok, err := ctx.Confirm(message)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrAborted
	}
	return nil
}
