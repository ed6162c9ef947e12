package app

import (
	"fmt"

	"github.com/composable-com/ct-connect-akeneo/internal/commerce"
	"github.com/composable-com/ct-connect-akeneo/internal/config"
	"github.com/composable-com/ct-connect-akeneo/internal/pim"
	pkgsync "github.com/composable-com/ct-connect-akeneo/internal/sync"
)

// NewPIMClient builds the PIM client from the akeneo section.
func NewPIMClient(cfg *config.Config) (*pim.Client, error) {
	secret, err := cfg.Akeneo.GetClientSecret()
	if err != nil {
		return nil, err
	}
	password, err := cfg.Akeneo.GetPassword()
	if err != nil {
		return nil, err
	}

	return pim.NewClient(pim.Config{
		BaseURL:      cfg.Akeneo.BaseURL,
		ClientID:     cfg.Akeneo.ClientID,
		ClientSecret: secret,
		Username:     cfg.Akeneo.Username,
		Password:     password,
		Timeout:      cfg.Akeneo.GetTimeout(),
	})
}

// NewCommerceClient builds the commerce client from the commercetools section.
func NewCommerceClient(cfg *config.Config) (*commerce.Client, error) {
	ct := cfg.Commercetools
	secret, err := ct.GetClientSecret()
	if err != nil {
		return nil, err
	}

	return commerce.NewClient(commerce.Config{
		APIURL:       ct.GetAPIURL(),
		AuthURL:      ct.GetAuthURL(),
		ProjectKey:   ct.ProjectKey,
		ClientID:     ct.ClientID,
		ClientSecret: secret,
		Scopes:       ct.GetScopes(),
		Timeout:      ct.GetTimeout(),
	})
}

// SyncSettings merges the sync section over the engine defaults and checks
// the result.
func SyncSettings(cfg *config.Config) (pkgsync.Settings, error) {
	sc := cfg.GetSync()
	settings := pkgsync.DefaultSettings()

	if sc.PageSize > 0 {
		settings.PageSize = sc.PageSize
	}
	if d := parseDuration(sc.TimeBudget); d > 0 {
		settings.TimeBudget = d
	}
	if sc.MaxFailed > 0 {
		settings.MaxFailed = sc.MaxFailed
	}
	if sc.Concurrency > 0 {
		settings.Concurrency = sc.Concurrency
	}
	if d := parseDuration(sc.DeltaLookback); d > 0 {
		settings.DeltaLookback = d
	}
	if sc.Completeness != "" {
		settings.Completeness = sc.Completeness
	}

	if err := settings.Validate(); err != nil {
		return pkgsync.Settings{}, fmt.Errorf("invalid sync settings: %w", err)
	}
	return settings, nil
}
