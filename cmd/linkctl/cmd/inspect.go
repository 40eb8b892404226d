package cmd

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/securedocs/internal/config"
	"github.com/templui/securedocs/internal/service"
)

func InspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect TOKEN|URL",
		Short: "Decode a secure link and print why it is accepted or rejected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			codec := service.NewTokenCodec(cfg.SecureLinkSecret)
			return inspectToken(cmd.OutOrStdout(), codec, args[0], time.Now())
		},
	}
}

// tokenFromArg accepts either a bare token or a full secure link URL.
func tokenFromArg(arg string) string {
	if !strings.Contains(arg, "://") {
		return arg
	}
	u, err := url.Parse(arg)
	if err != nil {
		return arg
	}
	// RawQuery keeps the token percent-encoded; Decode unescapes it.
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if value, ok := strings.CutPrefix(pair, "token="); ok {
			return value
		}
	}
	return arg
}

func inspectToken(out io.Writer, codec *service.TokenCodec, arg string, now time.Time) error {
	link, err := codec.Decode(tokenFromArg(arg))
	if err != nil {
		fmt.Fprintf(out, "rejected: %s\n", service.TokenDiagnosis(err))
		return err
	}

	fmt.Fprintf(out, "document:   %s\n", link.DocumentID)
	fmt.Fprintf(out, "action:     %s\n", link.Action)
	fmt.Fprintf(out, "file index: %d\n", link.FileIndex)
	fmt.Fprintf(out, "issued:     %s\n", link.IssuedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "expires:    %s (in %s)\n", link.ExpiresAt.UTC().Format(time.RFC3339), link.ExpiresAt.Sub(now).Round(time.Second))
	return nil
}
