package config

type Config struct {
	Db_conn               string `mapstructure:"DB_CONN"`
	Stripe_secret         string `mapstructure:"STRIPE_SECRET"`
	Stripe_webhook_secret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	Rabbit_mq_conn        string `mapstructure:"RABBIT_MQ_CONN"`
	Host                  string `mapstructure:"HOST"`
	Reaper_interval_min   int    `mapstructure:"REAPER_INTERVAL_MIN"`
	Pending_timeout_min   int    `mapstructure:"PENDING_TIMEOUT_MIN"`
}
