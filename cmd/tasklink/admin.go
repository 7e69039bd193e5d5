package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tasklink/internal/auth"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative commands",
	}

	cmd.AddCommand(newAdminHashTokenCmd())
	return cmd
}

func newAdminHashTokenCmd() *cobra.Command {
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "hash-token",
		Short: "Generate an admin token and the hash to store in admin_token_hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, generated, err := adminTokenInput(fromStdin, os.Stdin)
			if err != nil {
				return err
			}
			hash, err := auth.HashToken(token)
			if err != nil {
				return err
			}

			if generated {
				if err := writePlain("token: %s\n", token); err != nil {
					return err
				}
			}
			if err := writePlain("hash:  %s\n", hash); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "store the hash with: tasklink config set --global admin_token_hash '%s'\n", hash)
			fmt.Fprintln(os.Stderr, "then pass the token to clients via TASKLINK_ADMIN_TOKEN")
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "hash a token read from stdin instead of generating one")
	return cmd
}

// adminTokenInput reads the first line of r when fromStdin is set and
// otherwise generates a fresh token.
func adminTokenInput(fromStdin bool, r io.Reader) (string, bool, error) {
	if !fromStdin {
		token, err := auth.GenerateToken()
		return token, true, err
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	token := strings.TrimRight(line, "\r\n")
	if token == "" {
		return "", false, errors.New("no token on stdin")
	}
	return token, false, nil
}
