package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envBinding maps a config key to its environment variables. The prefixed
// name always applies; aliases keep the variable names the hosted connector
// was deployed with.
type envBinding struct {
	key     string
	aliases []string
}

// envName returns the prefixed variable for key, e.g. akeneo.baseURL is read
// from AKENEO_SYNC_AKENEO_BASEURL
func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

var envBindings = []envBinding{
	{key: "serviceURL", aliases: []string{"CONNECT_SERVICE_URL"}},
	{key: "akeneo.baseURL", aliases: []string{"AKENEO_BASE_URL"}},
	{key: "akeneo.clientID", aliases: []string{"AKENEO_CLIENT_ID"}},
	{key: "akeneo.clientSecret", aliases: []string{"AKENEO_CLIENT_SECRET"}},
	{key: "akeneo.username", aliases: []string{"AKENEO_USERNAME"}},
	{key: "akeneo.password", aliases: []string{"AKENEO_PASSWORD"}},
	{key: "commercetools.region", aliases: []string{"CTP_REGION"}},
	{key: "commercetools.apiURL", aliases: []string{"CTP_API_URL"}},
	{key: "commercetools.authURL", aliases: []string{"CTP_AUTH_URL"}},
	{key: "commercetools.projectKey", aliases: []string{"CTP_PROJECT_KEY"}},
	{key: "commercetools.clientID", aliases: []string{"CTP_CLIENT_ID"}},
	{key: "commercetools.clientSecret", aliases: []string{"CTP_CLIENT_SECRET"}},
	{key: "commercetools.scopes", aliases: []string{"CTP_SCOPE"}},
	{key: "storage.type"},
	{key: "sync.pageSize"},
	{key: "sync.maxFailed"},
	{key: "sync.concurrency"},
	{key: "sync.timeBudget"},
	{key: "sync.setPublishedToModified", aliases: []string{"SET_PUBLISHED_TO_MODIFIED"}},
	{key: "coordinator.interval"},
}

// applyEnv binds the environment into v and copies every variable that is set
// over the values read from the file
func applyEnv(v *viper.Viper, cfg *Config) error {
	for _, b := range envBindings {
		names := append([]string{envName(b.key)}, b.aliases...)
		if err := v.BindEnv(append([]string{b.key}, names...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b.key, err)
		}
	}

	setString(v, "serviceURL", &cfg.ServiceURL)

	setString(v, "akeneo.baseURL", &cfg.Akeneo.BaseURL)
	setString(v, "akeneo.clientID", &cfg.Akeneo.ClientID)
	setString(v, "akeneo.clientSecret", &cfg.Akeneo.ClientSecret)
	setString(v, "akeneo.username", &cfg.Akeneo.Username)
	setString(v, "akeneo.password", &cfg.Akeneo.Password)

	ct := &cfg.Commercetools
	setString(v, "commercetools.region", &ct.Region)
	setString(v, "commercetools.apiURL", &ct.APIURL)
	setString(v, "commercetools.authURL", &ct.AuthURL)
	setString(v, "commercetools.projectKey", &ct.ProjectKey)
	setString(v, "commercetools.clientID", &ct.ClientID)
	setString(v, "commercetools.clientSecret", &ct.ClientSecret)
	if v.IsSet("commercetools.scopes") {
		// CTP_SCOPE is space separated like the OAuth scope parameter
		ct.Scopes = strings.Fields(strings.ReplaceAll(v.GetString("commercetools.scopes"), ",", " "))
	}

	if v.IsSet("storage.type") {
		if cfg.Storage == nil {
			cfg.Storage = &StorageConfig{}
		}
		cfg.Storage.Type = StorageType(v.GetString("storage.type"))
	}

	if syncKeysSet(v) && cfg.Sync == nil {
		cfg.Sync = &SyncConfig{}
	}
	if s := cfg.Sync; s != nil {
		setInt(v, "sync.pageSize", &s.PageSize)
		setInt(v, "sync.maxFailed", &s.MaxFailed)
		setInt(v, "sync.concurrency", &s.Concurrency)
		setString(v, "sync.timeBudget", &s.TimeBudget)
		if v.IsSet("sync.setPublishedToModified") {
			publish := v.GetBool("sync.setPublishedToModified")
			s.SetPublishedToModified = &publish
		}
	}

	if v.IsSet("coordinator.interval") {
		if cfg.Coordinator == nil {
			cfg.Coordinator = &CoordinatorConfig{}
		}
		cfg.Coordinator.Interval = v.GetString("coordinator.interval")
	}
	return nil
}

func syncKeysSet(v *viper.Viper) bool {
	for _, key := range []string{"sync.pageSize", "sync.maxFailed", "sync.concurrency", "sync.timeBudget", "sync.setPublishedToModified"} {
		if v.IsSet(key) {
			return true
		}
	}
	return false
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}
