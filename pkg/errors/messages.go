package errors

import (
	"fmt"
	"strings"
)

// FormatUserError returns a user-friendly error message with actionable guidance.
// It examines the error chain and provides context-appropriate help text.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	var configErr *ConfigError
	if As(err, &configErr) {
		return formatConfigError(configErr)
	}

	var ghErr *GitHubError
	if As(err, &ghErr) {
		return formatGitHubError(ghErr)
	}

	var actionErr *ActionError
	if As(err, &actionErr) {
		return formatActionError(actionErr)
	}

	// Default: return the error message as-is
	return err.Error()
}

// FormatWarning returns a single-line advisory message for errors that do not
// stop the run. Interactive and per-query failures go through this path so the
// output stays compact while the session continues.
func FormatWarning(err error) string {
	if err == nil {
		return ""
	}
	return "Warning: " + err.Error()
}

// formatConfigError formats a ConfigError with actionable guidance.
func formatConfigError(err *ConfigError) string {
	var b strings.Builder

	if err.Field != "" {
		fmt.Fprintf(&b, "Configuration error in '%s': %s\n", err.Field, err.Message)
	} else {
		fmt.Fprintf(&b, "Configuration error: %s\n", err.Message)
	}

	b.WriteString("\nTo fix this:\n")
	b.WriteString("  • Check your config file: ~/.config/pr-finder/config.toml\n")
	b.WriteString("  • Or remove the offending key to fall back to the default\n")

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatGitHubError formats a GitHubError with actionable guidance based on status code.
func formatGitHubError(err *GitHubError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "GitHub error during %s: %s\n", err.Operation, err.Message)

	switch err.StatusCode {
	case 401:
		b.WriteString("\nAuthentication failed. To fix this:\n")
		b.WriteString("  • Run 'gh auth login' to authenticate the gh CLI\n")
		b.WriteString("  • Or set the GITHUB_TOKEN environment variable\n")
		b.WriteString("  • Ensure your token has the required scopes (repo, read:org)\n")

	case 403:
		b.WriteString("\nPermission denied. To fix this:\n")
		b.WriteString("  • Check that your token has the 'repo' scope\n")
		b.WriteString("  • If using SSO, ensure the token is authorized for your organization\n")

	case 404:
		b.WriteString("\nResource not found. To fix this:\n")
		b.WriteString("  • Verify the pull request still exists\n")
		b.WriteString("  • Check that you have access to the repository\n")

	case 429:
		b.WriteString("\nRate limit exceeded. To fix this:\n")
		b.WriteString("  • Wait a few minutes before retrying\n")
		b.WriteString("  • Lower --limit to reduce the number of search calls\n")

	case 500, 502, 503, 504:
		b.WriteString("\nGitHub server error. To fix this:\n")
		b.WriteString("  • Wait a few moments and try again\n")
		b.WriteString("  • Check GitHub Status: https://www.githubstatus.com\n")
	}

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatActionError formats an ActionError. Action failures are advisory and
// formatted as a single line so the interactive session stays readable.
func formatActionError(err *ActionError) string {
	switch err.Step {
	case "merge":
		return fmt.Sprintf("Merge failed: %s. Resolve it on GitHub: %s", err.Message, err.URL)
	case "inspect":
		return fmt.Sprintf("Could not check mergeability: %s. The pull request was left in the list.", err.Message)
	default:
		return err.Error()
	}
}
