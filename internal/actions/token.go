package actions

import (
	"fmt"
	"time"

	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/runtime"
)

// RegistrationTokenAction creates an organization runner registration token and prints it
func RegistrationTokenAction(ctx *runtime.Context) error {
	token, _, err := ctx.AdminClient.Actions.CreateOrganizationRegistrationToken(ctx, ctx.Org())
	if err != nil {
		return fmt.Errorf("failed to create registration token: %w", err)
	}

	ctx.Splog.Debug("Registration token expires at %s", token.GetExpiresAt().Format(time.RFC3339))
	ctx.Println(token.GetToken())
	return nil
}

// RemovalTokenAction creates an organization runner removal token and prints it
func RemovalTokenAction(ctx *runtime.Context) error {
	token, _, err := ctx.AdminClient.Actions.CreateOrganizationRemoveToken(ctx, ctx.Org())
	if err != nil {
		return fmt.Errorf("failed to create removal token: %w", err)
	}

	ctx.Splog.Debug("Removal token expires at %s", token.GetExpiresAt().Format(time.RFC3339))
	ctx.Println(token.GetToken())
	return nil
}
