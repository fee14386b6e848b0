// Package actions provides the business logic behind each CLI command.
//
// Each action corresponds to an actions-runner-manager command (group-create,
// repos-add, token-add, etc.) and orchestrates calls against the GitHub API.
//
// Key patterns:
//   - Actions accept runtime.Context which provides the clients, Splog and output writer
//   - Actions assume the caller has already passed the maintainer check
//   - Runner group and repository names are resolved through the lookup package
package actions
