package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port                          string `mapstructure:"PORT"`
	DatabasePath                  string `mapstructure:"DATABASE_PATH"`
	JWTSecret                     string `mapstructure:"JWT_SECRET"`
	AdminUsername                 string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword                 string `mapstructure:"ADMIN_PASSWORD"`
	DiscordBotToken               string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	PaymentGatewayURL             string `mapstructure:"PAYMENT_GATEWAY_URL"`
	PaymentTokenURL               string `mapstructure:"PAYMENT_TOKEN_URL"`
	PaymentClientID               string `mapstructure:"PAYMENT_CLIENT_ID"`
	PaymentClientSecret           string `mapstructure:"PAYMENT_CLIENT_SECRET"`
	PaymentRedirectBase           string `mapstructure:"PAYMENT_REDIRECT_BASE"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "skyparking.db")
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("PAYMENT_REDIRECT_BASE", "https://pay.example.com/redirect")

	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("ADMIN_USERNAME")
	viper.BindEnv("ADMIN_PASSWORD")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("PAYMENT_GATEWAY_URL")
	viper.BindEnv("PAYMENT_TOKEN_URL")
	viper.BindEnv("PAYMENT_CLIENT_ID")
	viper.BindEnv("PAYMENT_CLIENT_SECRET")
	viper.BindEnv("PAYMENT_REDIRECT_BASE")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
