// Package runtime provides the execution context for actions-runner-manager commands.
//
// It encapsulates shared dependencies and configuration needed by actions,
// such as the GitHub clients, the organization, the logger and the output writer.
package runtime
