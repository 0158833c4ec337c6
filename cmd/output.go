package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/errs"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String("format", formatText, "Output format (text|json|yaml)")
}

// writeOutput renders value as json or yaml, or falls back to text for the
// default format.
func writeOutput(cmd *cobra.Command, value any, text func(w io.Writer) error) error {
	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", formatText:
		return text(out)
	case formatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(value); err != nil {
			return errs.Wrap(err, "write json output")
		}
		return nil
	case formatYAML:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return errs.Wrap(err, "write yaml output")
		}
		return encoder.Close()
	default:
		return errs.Validation("unsupported format %q (expected: text, json or yaml)", format)
	}
}

// resolveIdentity reads --user, then $HD_USER.
func resolveIdentity(cmd *cobra.Command, required bool) (string, error) {
	user, _ := cmd.Flags().GetString("user")
	user = strings.TrimSpace(user)
	if user == "" {
		user = strings.TrimSpace(os.Getenv("HD_USER"))
	}
	if required && user == "" {
		return "", errs.Validation("user is required (set --user or HD_USER)")
	}
	return user, nil
}

// resolveSecret reads --secret, then $HD_MASTER_SECRET. The secret is
// never logged or persisted.
func resolveSecret(cmd *cobra.Command) []byte {
	secret, _ := cmd.Flags().GetString("secret")
	if secret == "" {
		secret = os.Getenv("HD_MASTER_SECRET")
	}
	if secret == "" {
		return nil
	}
	return []byte(secret)
}

func addSecretFlag(cmd *cobra.Command) {
	cmd.Flags().String("secret", "", "Master secret for sensitive notes (default $HD_MASTER_SECRET)")
}

func resolveText(cmd *cobra.Command, flag string, required bool) (string, error) {
	inline, _ := cmd.Flags().GetString(flag)
	file, _ := cmd.Flags().GetString(flag + "-file")

	if strings.TrimSpace(inline) != "" && strings.TrimSpace(file) != "" {
		return "", fmt.Errorf("%s and %s-file are mutually exclusive", flag, flag)
	}
	if strings.TrimSpace(file) != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", errs.Wrapf(err, "read %s file %q", flag, file)
		}
		inline = string(raw)
	}

	if required && strings.TrimSpace(inline) == "" {
		return "", fmt.Errorf("%s is required (set --%s or --%s-file)", flag, flag, flag)
	}
	return inline, nil
}

func addTextFlags(cmd *cobra.Command, flag string, usage string) {
	cmd.Flags().String(flag, "", usage)
	cmd.Flags().String(flag+"-file", "", usage+" (read from file)")
}

func parseTicketArg(args []string) (uint64, error) {
	if len(args) != 1 {
		return 0, errors.New("exactly one ticket reference is required")
	}
	return ticket.ParseRef(args[0])
}

func parseIDArg(kind string, args []string) (uint64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("exactly one %s id is required", kind)
	}
	id, err := ticket.ParseRef(args[0])
	if err != nil {
		return 0, errs.Validation("invalid %s id %q", kind, args[0])
	}
	return id, nil
}

func valueOr(value *string, fallback string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return fallback
	}
	return *value
}
