package config

// Defaults applied when the matching environment variable is unset.
const (
	DefaultPort           = "2222"
	DefaultHostKeyPath    = "host_key"
	DefaultMapsDir        = "assets/maps"
	DefaultZonesFile      = "assets/zones.yaml"
	DefaultBestiaryFile   = "assets/bestiary.yaml"
	DefaultMapName        = "Meadow"
	DefaultAdminAddr      = "127.0.0.1:9090"
	DefaultFlashDuration  = "1s"
	DefaultSavedPlayerTTL = "30m"
	DefaultDayLength      = "20m"
)
