package bridge

import (
	"context"
	"encoding/json"
)

// LaunchConfig is the session configuration passed to Launch.
type LaunchConfig struct {
	// ProfileName names the profile the session belongs to.
	ProfileName string `json:"profileName"`

	// WorkingDir is where the provider session operates.
	WorkingDir string `json:"workingDir"`

	// PermissionMode controls how the provider asks before acting,
	// e.g. "ask".
	PermissionMode string `json:"permissionMode"`
}

type launchParams struct {
	Profile  string       `json:"profile"`
	Provider string       `json:"provider"`
	Config   LaunchConfig `json:"config"`
}

type profileParams struct {
	Profile string `json:"profile"`
}

type messageParams struct {
	Profile string `json:"profile"`
	Message string `json:"message"`
}

type authParams struct {
	Provider    string `json:"provider"`
	ProfileName string `json:"profileName"`
}

type createProfileParams struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

type profileIDParams struct {
	ProfileID string `json:"profileId"`
}

type apiKeyLoginParams struct {
	ProfileName string         `json:"profileName"`
	Provider    string         `json:"provider"`
	APIKey      string         `json:"apiKey"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type profileProviderParams struct {
	ProfileName string `json:"profileName"`
	Provider    string `json:"provider"`
}

// emptyParams marshals as {} rather than null.
var emptyParams = struct{}{}

// Launch starts or reuses a provider session for a profile.
func (c *Client) Launch(ctx context.Context, profile, provider string, cfg LaunchConfig) (json.RawMessage, error) {
	return c.Call(ctx, "launch", launchParams{Profile: profile, Provider: provider, Config: cfg})
}

// SendMessage sends a user message into the profile's provider session.
// Incremental output arrives as events on the configured sink.
func (c *Client) SendMessage(ctx context.Context, profile, message string) (json.RawMessage, error) {
	return c.Call(ctx, "sendMessage", messageParams{Profile: profile, Message: message})
}

// Stop ends the profile's provider session.
func (c *Client) Stop(ctx context.Context, profile string) (json.RawMessage, error) {
	return c.Call(ctx, "stop", profileParams{Profile: profile})
}

// ListProviders returns the providers the bridge supports.
func (c *Client) ListProviders(ctx context.Context) (json.RawMessage, error) {
	return c.Call(ctx, "listProviders", emptyParams)
}

// CheckAuth reports whether the provider credentials for a profile are valid.
func (c *Client) CheckAuth(ctx context.Context, provider, profileName string) (json.RawMessage, error) {
	return c.Call(ctx, "checkAuth", authParams{Provider: provider, ProfileName: profileName})
}

// ListProfiles returns all stored profiles.
func (c *Client) ListProfiles(ctx context.Context) (json.RawMessage, error) {
	return c.Call(ctx, "listProfiles", emptyParams)
}

// CreateProfile creates a new profile for a provider.
func (c *Client) CreateProfile(ctx context.Context, name, provider string) (json.RawMessage, error) {
	return c.Call(ctx, "createProfile", createProfileParams{Name: name, Provider: provider})
}

// SwitchProfile makes the given profile current.
func (c *Client) SwitchProfile(ctx context.Context, profileID string) (json.RawMessage, error) {
	return c.Call(ctx, "switchProfile", profileIDParams{ProfileID: profileID})
}

// DeleteProfile removes a profile.
func (c *Client) DeleteProfile(ctx context.Context, profileID string) (json.RawMessage, error) {
	return c.Call(ctx, "deleteProfile", profileIDParams{ProfileID: profileID})
}

// GetCurrentProfile returns the currently selected profile.
func (c *Client) GetCurrentProfile(ctx context.Context) (json.RawMessage, error) {
	return c.Call(ctx, "getCurrentProfile", emptyParams)
}

// LoginWithAPIKey stores an API key credential for a profile. Metadata is
// optional and omitted from the wire frame when nil.
func (c *Client) LoginWithAPIKey(
	ctx context.Context,
	profileName, provider, apiKey string,
	metadata map[string]any,
) (json.RawMessage, error) {
	return c.Call(ctx, "loginWithApiKey", apiKeyLoginParams{
		ProfileName: profileName,
		Provider:    provider,
		APIKey:      apiKey,
		Metadata:    metadata,
	})
}

// GetAuthOptions returns the authentication options for a provider and
// profile combination.
func (c *Client) GetAuthOptions(ctx context.Context, profileName, provider string) (json.RawMessage, error) {
	return c.Call(ctx, "getAuthOptions", profileProviderParams{ProfileName: profileName, Provider: provider})
}

// LinkExistingCredential links credentials already present on the machine
// to a profile.
func (c *Client) LinkExistingCredential(ctx context.Context, profileName, provider string) (json.RawMessage, error) {
	return c.Call(ctx, "linkExistingCredential", profileProviderParams{ProfileName: profileName, Provider: provider})
}
