package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/atotto/clipboard"
	"github.com/fedlogin/fedlogin/internal/browser"
	"github.com/fedlogin/fedlogin/internal/federation"
	"github.com/fedlogin/fedlogin/internal/log"
	"github.com/fedlogin/fedlogin/internal/ui"
	"github.com/spf13/cobra"
)

const defaultProfile = "default"

func runLogin(cmd *cobra.Command, args []string) error {
	profile := defaultProfile
	if len(args) > 0 {
		profile = args[0]
	}

	duration := federation.DefaultDuration
	if len(args) > 1 {
		seconds, err := strconv.Atoi(args[1])
		if err != nil {
			ui.Errorf("invalid duration %q: expected seconds as an integer", args[1])
			return err
		}
		duration = time.Duration(seconds) * time.Second
	}
	if duration < federation.MinDuration {
		err := fmt.Errorf("duration must be at least %d seconds", int(federation.MinDuration.Seconds()))
		ui.Error(err.Error())
		return err
	}

	ctx := cmd.Context()

	client, err := federation.New(ctx, profile)
	if err != nil {
		return reportLoginError(profile, err)
	}

	log.Debug("requesting credentials", "profile", profile, "duration", duration)
	creds, err := client.Credentials(ctx, duration)
	if err != nil {
		return reportLoginError(profile, err)
	}

	token, err := client.SigninToken(ctx, creds)
	if err != nil {
		ui.Error("could not reach the AWS federation service; check your network connection and try again")
		if debugMode {
			fmt.Fprintf(os.Stderr, "detail: %v\n", err)
		}
		return err
	}

	presentURL(federation.SigninURL(token, client.Issuer()))
	return nil
}

// reportLoginError prints a remediation message for a failed login. The
// underlying cause may name accounts or ARNs, so it only reaches the
// terminal in debug mode.
func reportLoginError(profile string, err error) error {
	var loginErr *federation.LoginError
	if errors.As(err, &loginErr) {
		ui.Errorf("unable to log in with AWS profile %q", profile)
		if loginErr.Hint != "" {
			ui.Info(loginErr.Hint)
		}
		if debugMode {
			fmt.Fprintf(os.Stderr, "detail: %v\n", loginErr.Cause)
		} else {
			ui.Info("Run with --debug for detailed error information.")
		}
		return err
	}
	ui.Error(err.Error())
	return err
}

// presentURL hands the sign-in URL to the user. The URL grants console
// access, so it is never printed by default: the browser gets it, or the
// clipboard, or stderr under --debug.
func presentURL(signinURL string) {
	if err := browser.Open(signinURL); err == nil {
		return
	}

	ui.Warnf("could not automatically open a browser")
	if debugMode {
		fmt.Fprintln(os.Stderr, "WARNING: the sign-in URL below grants console access until the session expires.")
		fmt.Fprintln(os.Stderr, signinURL)
		return
	}

	ui.Info("For security reasons the sign-in URL is not displayed.")
	if err := clipboard.WriteAll(signinURL); err == nil {
		ui.Info("The sign-in URL has been copied to your clipboard.")
	} else {
		ui.Warnf("no clipboard available; run with --debug to print the URL instead")
	}
}
