package config

import "time"

// Settings contains the application config
type Settings struct {
	Port        int    `env:"PORT"`
	MonPort     int    `env:"MON_PORT"`
	EnablePprof bool   `env:"ENABLE_PPROF"`
	LogLevel    string `env:"LOG_LEVEL"`
	ServiceName string `env:"SERVICE_NAME"`

	DiscordWebhookURL    string `env:"DISCORD_WEBHOOK_URL"`
	DiscordMessageFormat string `env:"DISCORD_MESSAGE_FORMAT"`
	DiscordUsername      string `env:"DISCORD_USERNAME"`
	// DispatchTimeout is in seconds.
	DispatchTimeout int `env:"DISPATCH_TIMEOUT"`

	NotifyCondition string `env:"NOTIFY_CONDITION"`
	TagAliasFile    string `env:"TAG_ALIAS_FILE"`

	KafkaBrokers    string `env:"KAFKA_BROKERS"`
	ShopEventsTopic string `env:"SHOP_EVENTS_TOPIC"`
	KafkaGroupID    string `env:"KAFKA_GROUP_ID"`
	// KafkaMaxInFlight bounds concurrently processed Kafka events.
	KafkaMaxInFlight int `env:"KAFKA_MAX_IN_FLIGHT"`
}

// DispatchTimeoutDuration returns the outbound request timeout, 30s when unset.
func (s *Settings) DispatchTimeoutDuration() time.Duration {
	if s.DispatchTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.DispatchTimeout) * time.Second
}

// KafkaEnabled reports whether the shop events topic should be consumed.
func (s *Settings) KafkaEnabled() bool {
	return s.KafkaBrokers != "" && s.ShopEventsTopic != ""
}
