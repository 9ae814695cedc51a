// Package federation signs a user into the AWS console with short-lived
// credentials. It exchanges profile credentials for a federation sign-in
// token via STS and the AWS federation endpoint, then builds the console
// login URL. IAM-user profiles go through GetFederationToken; role-based
// profiles fall back to AssumeRole using the profile's role_arn.
package federation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/user"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

const (
	// FederationBaseURL is the AWS federation endpoint.
	FederationBaseURL = "https://signin.aws.amazon.com/federation"
	// ConsoleURL is the sign-in destination.
	ConsoleURL = "https://console.aws.amazon.com/"

	// maxSessionNameLength is the STS limit on session names.
	maxSessionNameLength = 32

	// MinDuration is the shortest session STS will grant.
	MinDuration = 15 * time.Minute
	// DefaultDuration matches a working day's console session.
	DefaultDuration = 12 * time.Hour

	// requestTimeout bounds the federation endpoint request.
	requestTimeout = 10 * time.Second
)

// sessionPolicy scopes the federated session; the profile's own permissions
// still bound what the session can do.
const sessionPolicy = `{"Version":"2012-10-17","Statement":[{"Action":"*","Effect":"Allow","Resource":"*"}]}`

// STSAPI is the subset of the STS client the login flow uses (enables testing).
type STSAPI interface {
	GetFederationToken(ctx context.Context, params *sts.GetFederationTokenInput, optFns ...func(*sts.Options)) (*sts.GetFederationTokenOutput, error)
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// Credentials holds the short-lived session credentials.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// LoginError is a user-facing login failure with remediation hints. The
// cause may contain account details, so callers only surface it in debug
// mode.
type LoginError struct {
	Profile string
	Cause   error
	Hint    string
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("profile %q: %v", e.Profile, e.Cause)
}

func (e *LoginError) Unwrap() error {
	return e.Cause
}

// Client drives the federation login flow for one profile.
type Client struct {
	Profile string

	// STS is replaceable for tests.
	STS STSAPI
	// HTTPClient is replaceable for tests; nil means a default client with
	// the federation request timeout.
	HTTPClient *http.Client
	// BaseURL overrides the federation endpoint (for tests).
	BaseURL string

	// roleARN resolves the profile's role_arn from the shared AWS config.
	roleARN func(ctx context.Context, profile string) (string, error)
}

// New loads the shared AWS config for profile and returns a login client.
func New(ctx context.Context, profile string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithSharedConfigProfile(profile))
	if err != nil {
		return nil, &LoginError{
			Profile: profile,
			Cause:   err,
			Hint:    "Verify the profile name in ~/.aws/config or ~/.aws/credentials and that it is correctly configured.",
		}
	}
	return &Client{
		Profile: profile,
		STS:     sts.NewFromConfig(cfg),
		BaseURL: FederationBaseURL,
		roleARN: lookupRoleARN,
	}, nil
}

// Issuer identifies this tool in session names and the sign-in URL.
func (c *Client) Issuer() string {
	return c.Profile + "-fedlogin"
}

// SessionName builds the STS session name, truncated to the STS limit.
// The limit counts characters, so truncation happens on runes: a multi-byte
// OS username must not leave a broken code point at the cut.
func SessionName(osUser, issuer string) string {
	name := osUser + "-" + issuer
	if r := []rune(name); len(r) > maxSessionNameLength {
		name = string(r[:maxSessionNameLength])
	}
	return name
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

// Credentials acquires short-lived credentials for the profile. IAM users
// get a federation token; when that fails, role-based profiles are retried
// with AssumeRole against the profile's role_arn.
func (c *Client) Credentials(ctx context.Context, duration time.Duration) (*Credentials, error) {
	seconds := int32(duration / time.Second)
	name := SessionName(currentUser(), c.Issuer())

	out, fedErr := c.STS.GetFederationToken(ctx, &sts.GetFederationTokenInput{
		Name:            aws.String(name),
		DurationSeconds: aws.Int32(seconds),
		Policy:          aws.String(sessionPolicy),
	})
	if fedErr == nil {
		if out.Credentials == nil {
			return nil, &LoginError{Profile: c.Profile, Cause: fmt.Errorf("STS returned empty credentials")}
		}
		return &Credentials{
			AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
			SecretAccessKey: aws.ToString(out.Credentials.SecretAccessKey),
			SessionToken:    aws.ToString(out.Credentials.SessionToken),
		}, nil
	}

	// Federation tokens are only available to IAM users. Role-based
	// profiles carry a role_arn in the shared config; assume it instead.
	roleARN, err := c.roleARN(ctx, c.Profile)
	if err != nil || roleARN == "" {
		return nil, &LoginError{
			Profile: c.Profile,
			Cause:   fedErr,
			Hint:    "Ensure the profile's credentials can call sts:GetFederationToken, or configure role_arn for role-based access.",
		}
	}

	assumed, err := c.STS.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(c.Issuer()),
		DurationSeconds: aws.Int32(seconds),
	})
	if err != nil {
		return nil, &LoginError{
			Profile: c.Profile,
			Cause:   err,
			Hint:    fmt.Sprintf("Ensure you have permission to assume %s.", roleARN),
		}
	}
	if assumed.Credentials == nil {
		return nil, &LoginError{Profile: c.Profile, Cause: fmt.Errorf("STS returned empty credentials for role %s", roleARN)}
	}
	return &Credentials{
		AccessKeyID:     aws.ToString(assumed.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(assumed.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(assumed.Credentials.SessionToken),
	}, nil
}

// lookupRoleARN reads the profile's role_arn from the shared AWS config file.
func lookupRoleARN(ctx context.Context, profile string) (string, error) {
	shared, err := config.LoadSharedConfigProfile(ctx, profile)
	if err != nil {
		return "", err
	}
	return shared.RoleARN, nil
}

// SigninToken exchanges session credentials for a federation sign-in token.
func (c *Client) SigninToken(ctx context.Context, creds *Credentials) (string, error) {
	session, err := json.Marshal(map[string]string{
		"sessionId":    creds.AccessKeyID,
		"sessionKey":   creds.SecretAccessKey,
		"sessionToken": creds.SessionToken,
	})
	if err != nil {
		return "", fmt.Errorf("encoding session: %w", err)
	}

	q := url.Values{}
	q.Set("Action", "getSigninToken")
	q.Set("Session", string(session))

	base := c.BaseURL
	if base == "" {
		base = FederationBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting sign-in token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("federation endpoint returned %s", resp.Status)
	}

	var body struct {
		SigninToken string `json:"SigninToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding sign-in token response: %w", err)
	}
	if body.SigninToken == "" {
		return "", fmt.Errorf("federation endpoint returned no sign-in token")
	}
	return body.SigninToken, nil
}

// SigninURL builds the console login URL from a sign-in token. The URL
// grants console access until the session expires; treat it as a secret.
func SigninURL(token, issuer string) string {
	q := url.Values{}
	q.Set("Action", "login")
	q.Set("Issuer", issuer)
	q.Set("Destination", ConsoleURL)
	q.Set("SigninToken", token)
	return FederationBaseURL + "?" + q.Encode()
}
