package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ntpusu/su-services/representatives/internal/app"
)

var errInterrupted = errors.New("interrupted")

func newHashPasswordCommand(opts *rootOptions) *cobra.Command {
	var overwrite, insecureUnmask bool

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Create the credential file protecting the sync endpoint",
		Long: "Creates an auth.secret file with an Argon2id hashed password.\n\n" +
			"The file location is server.auth_file, then the AUTH_FILE environment\n" +
			"variable, then auth.secret next to the binary.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := app.AuthFilePath(opts.cfg.Server.AuthFile)
			if err != nil {
				return err
			}
			return runHashPassword(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), path, overwrite, insecureUnmask)
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite existing auth file without asking")
	cmd.Flags().BoolVar(&insecureUnmask, "insecure-unmask-password", false, "show password as plain text (INSECURE!)")
	return cmd
}

func runHashPassword(in io.Reader, out, errOut io.Writer, path string, overwrite, insecureUnmask bool) error {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "Enter username: ")
	username, err := readLine(reader)
	if err != nil {
		return fmt.Errorf("error reading username: %w", err)
	}
	if username == "" {
		return errors.New("username cannot be empty")
	}

	var password, passwordConfirm string
	if insecureUnmask {
		fmt.Fprintln(errOut, "WARNING: Password will be visible on screen!")
		fmt.Fprint(out, "Enter password:   ")
		if password, err = readLine(reader); err != nil {
			return fmt.Errorf("error reading password: %w", err)
		}
		fmt.Fprint(out, "Confirm password: ")
		if passwordConfirm, err = readLine(reader); err != nil {
			return fmt.Errorf("error reading password confirmation: %w", err)
		}
	} else {
		if password, err = readPasswordWithMask(out, "Enter password:   "); err != nil {
			return err
		}
		if passwordConfirm, err = readPasswordWithMask(out, "Confirm password: "); err != nil {
			return err
		}
	}

	if password == "" {
		return errors.New("password cannot be empty")
	}
	if password != passwordConfirm {
		return errors.New("passwords do not match")
	}

	return app.CreateAuthFile(path, username, password, overwrite, reader, out)
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPasswordWithMask reads a password from the terminal echoing asterisks
func readPasswordWithMask(out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	fd := int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		// Not a terminal: fall back to hidden input
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		return string(password), err
	}
	defer term.Restore(fd, oldState)

	var password []rune
	reader := bufio.NewReader(os.Stdin)

	for {
		char, _, err := reader.ReadRune()
		if err != nil {
			break
		}

		switch char {
		case '\n', '\r':
			fmt.Fprint(out, "\r\n")
			return string(password), nil
		case 127, 8: // Backspace or Delete
			if len(password) > 0 {
				password = password[:len(password)-1]
				fmt.Fprint(out, "\b \b")
			}
		case 3: // Ctrl+C
			fmt.Fprint(out, "\r\n")
			return "", errInterrupted
		default:
			if char >= 32 && char != 127 {
				password = append(password, char)
				fmt.Fprint(out, "*")
			}
		}
	}

	fmt.Fprint(out, "\r\n")
	return string(password), nil
}
