package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-user/app/service"
	"github.com/vibast-solutions/ms-go-user/app/types"
	"golang.org/x/term"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var (
	createFirstName string
	createLastName  string
)

var userCreateCmd = &cobra.Command{
	Use:   "create <email> <username>",
	Short: "Create a user; the password is read from the terminal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userAuthService, cfg, db, err := newCommandService()
		if err != nil {
			return err
		}
		defer db.Close()

		password, err := promptPassword(os.Stdin, "Password: ")
		if err != nil {
			return err
		}

		req := &types.SignupRequest{
			Email:    args[0],
			Username: args[1],
			Password: password,
		}
		if createFirstName != "" {
			req.FirstName = &createFirstName
		}
		if createLastName != "" {
			req.LastName = &createLastName
		}
		if err = req.Validate(cfg.Password.Policy); err != nil {
			return err
		}

		result, err := userAuthService.Signup(commandContext(cmd), req)
		if err != nil {
			if errors.Is(err, service.ErrUserExists) {
				return fmt.Errorf("a user with email %q or username %q already exists", req.Email, req.Username)
			}
			return err
		}

		fmt.Printf("id: %s\n", result.ID)
		fmt.Printf("username: %s\n", result.Username)
		fmt.Printf("email: %s\n", result.Email)
		return nil
	},
}

// promptPassword reads without echo from a terminal and falls back to a plain
// line read when input is piped.
func promptPassword(in *os.File, prompt string) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	userCreateCmd.Flags().StringVar(&createFirstName, "first-name", "", "optional first name")
	userCreateCmd.Flags().StringVar(&createLastName, "last-name", "", "optional last name")
	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}
